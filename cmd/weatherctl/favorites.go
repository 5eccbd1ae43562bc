package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-browser/internal/favorites"
)

var favNameFlag string

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage saved places",
}

var favListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites in display order",
	Args:  cobra.NoArgs,
	RunE:  runFavList,
}

var favAddCmd = &cobra.Command{
	Use:   "add <lat> <lon>",
	Short: "Save a place",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavAdd,
}

var favRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavRemove,
}

var favAliasCmd = &cobra.Command{
	Use:   "alias <id> <alias>",
	Short: "Rename a favorite",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavAlias,
}

var favResetAliasCmd = &cobra.Command{
	Use:   "reset-alias <id>",
	Short: "Restore a favorite's original name",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavResetAlias,
}

var favReorderCmd = &cobra.Command{
	Use:   "reorder <active-id> <over-id>",
	Short: "Move a favorite to another favorite's position",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavReorder,
}

func init() {
	favAddCmd.Flags().StringVar(&favNameFlag, "name", "", "Display name (defaults to the coordinates)")
	favoritesCmd.AddCommand(favListCmd, favAddCmd, favRemoveCmd, favAliasCmd, favResetAliasCmd, favReorderCmd)
	rootCmd.AddCommand(favoritesCmd)
}

// withLedger opens storage, loads the ledger and runs fn.
func withLedger(fn func(ctx context.Context, l *favorites.Ledger) error) error {
	ctx, cancel := newContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := favorites.New(ctx, s)
	if err != nil {
		return err
	}
	return fn(ctx, l)
}

func printFavorites(list []favorites.Favorite) error {
	if len(list) == 0 {
		fmt.Println(faint("저장된 장소가 없습니다"))
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", heading("#"), heading("ID"), heading("NAME"), heading("COORDINATES"))
	for i, f := range list {
		name := f.Name
		if f.Name != f.OriginalName && f.OriginalName != "" {
			name = fmt.Sprintf("%s %s", f.Name, faint("("+f.OriginalName+")"))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f, %.4f\n", i+1, f.ID, name, f.Latitude, f.Longitude)
	}
	return w.Flush()
}

func runFavList(cmd *cobra.Command, args []string) error {
	return withLedger(func(_ context.Context, l *favorites.Ledger) error {
		if err := printFavorites(l.List()); err != nil {
			return err
		}
		fmt.Println(faint(fmt.Sprintf("%d/%d", l.Len(), favorites.MaxFavorites)))
		return nil
	})
}

func parseCoords(latArg, lonArg string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(lonArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	return lat, lon, nil
}

func runFavAdd(cmd *cobra.Command, args []string) error {
	lat, lon, err := parseCoords(args[0], args[1])
	if err != nil {
		return err
	}
	return withLedger(func(ctx context.Context, l *favorites.Ledger) error {
		f, err := l.Add(ctx, favorites.Candidate{
			Name:         favNameFlag,
			OriginalName: favNameFlag,
			Latitude:     lat,
			Longitude:    lon,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", success("added"), f.Name, faint(f.ID))
		return nil
	})
}

func runFavRemove(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, l *favorites.Ledger) error {
		if _, ok := l.Get(args[0]); !ok {
			return favorites.ErrNotFound
		}
		if err := l.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println(success("removed"), args[0])
		return nil
	})
}

func runFavAlias(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, l *favorites.Ledger) error {
		f, err := l.UpdateAlias(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(success("renamed"), f.Name)
		return nil
	})
}

func runFavResetAlias(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, l *favorites.Ledger) error {
		f, err := l.ResetAlias(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(success("restored"), f.Name)
		return nil
	})
}

func runFavReorder(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, l *favorites.Ledger) error {
		if err := l.Reorder(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printFavorites(l.List())
	})
}
