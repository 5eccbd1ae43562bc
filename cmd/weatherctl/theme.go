package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-browser/internal/theme"
)

var systemThemeFlag string

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the colour theme preference",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored and effective theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTheme(func(context.Context, *theme.Store) error { return nil })
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark|system>",
	Short:     "Store a theme preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := theme.Parse(args[0])
		if err != nil {
			return err
		}
		return withTheme(func(ctx context.Context, s *theme.Store) error {
			return s.Set(ctx, t)
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTheme(func(ctx context.Context, s *theme.Store) error {
			_, err := s.Toggle(ctx)
			return err
		})
	},
}

func init() {
	themeCmd.PersistentFlags().StringVar(&systemThemeFlag, "system", "light", "Theme the platform prefers (light or dark)")
	themeCmd.AddCommand(themeGetCmd, themeSetCmd, themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}

// withTheme runs fn against the stored preference and prints the result.
func withTheme(fn func(ctx context.Context, s *theme.Store) error) error {
	ctx, cancel := newContext()
	defer cancel()

	sys, err := theme.Parse(systemThemeFlag)
	if err != nil {
		return err
	}
	kvStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer kvStore.Close()

	s, err := theme.New(ctx, kvStore, sys)
	if err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", heading(s.Get()), faint(fmt.Sprintf("(resolved: %s)", s.Resolved())))
	return nil
}
