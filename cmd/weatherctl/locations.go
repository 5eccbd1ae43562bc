package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/weather/providers"
)

var searchLimitFlag int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the district gazetteer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var planCmd = &cobra.Command{
	Use:   "plan <entry-id>",
	Short: "Show the geocoding queries tried for an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <entry-id>",
	Short: "Resolve an entry to coordinates",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", gazetteer.DefaultLimit, "Maximum number of matches")
	rootCmd.AddCommand(searchCmd, planCmd, resolveCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ix, err := loadGazetteer()
	if err != nil {
		return err
	}
	hits := ix.Search(strings.Join(args, " "), searchLimitFlag)
	if len(hits) == 0 {
		fmt.Println(warn("검색 결과가 없습니다"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", heading("ID"), heading("NAME"))
	for _, e := range hits {
		fmt.Fprintf(w, "%d\t%s\n", e.ID, e.DisplayName)
	}
	return w.Flush()
}

func entryArg(ix *gazetteer.Index, arg string) (gazetteer.Entry, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return gazetteer.Entry{}, fmt.Errorf("entry id must be an integer: %q", arg)
	}
	e, ok := ix.Get(id)
	if !ok {
		return gazetteer.Entry{}, fmt.Errorf("unknown entry %d", id)
	}
	return e, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ix, err := loadGazetteer()
	if err != nil {
		return err
	}
	e, err := entryArg(ix, args[0])
	if err != nil {
		return err
	}
	fmt.Println(heading(e.DisplayName))
	for i, q := range location.Plan(e) {
		fmt.Printf("  %d. %s\n", i+1, q)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	ix, err := loadGazetteer()
	if err != nil {
		return err
	}
	e, err := entryArg(ix, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	geo := providers.NewOpenMeteoGeocoder(httpClient(), "ko", "KR", 10)
	res, err := location.ResolveEntry(ctx, geo, e, location.DefaultOptions())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", success(res.Name), faint(fmt.Sprintf("(%.4f, %.4f)", res.Latitude, res.Longitude)))
	return nil
}
