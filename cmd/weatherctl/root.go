package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/kv"
	"github.com/i474232898/weather-browser/internal/logger"
)

var (
	storageFlag   string
	dsnFlag       string
	redisAddrFlag string
	timeoutFlag   time.Duration
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "weatherctl",
	Short: "Browse Korean districts, favorites and weather from the terminal",
	Long: `weatherctl works against the same gazetteer, favorites ledger and theme
preference as the weather-browser server.

Examples:
  weatherctl search 종로
  weatherctl resolve 42
  weatherctl favorites add 37.5735 126.979 --name 종로구
  weatherctl weather 37.5735 126.979`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verboseFlag {
			level = "debug"
		}
		logger.SetupLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "sqlite", "Storage driver: memory, sqlite, postgres, redis")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "weather-browser.db", "SQLite path or Postgres DSN")
	rootCmd.PersistentFlags().StringVar(&redisAddrFlag, "redis-addr", "localhost:6379", "Redis address when --storage=redis")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 15*time.Second, "Timeout for network calls")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")
}

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint   = color.New(color.FgHiBlack).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeoutFlag)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: timeoutFlag}
}

func openStore(ctx context.Context) (kv.Store, error) {
	s, err := kv.Open(ctx, kv.Options{
		Driver:    storageFlag,
		DSN:       dsnFlag,
		RedisAddr: redisAddrFlag,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", storageFlag, err)
	}
	return s, nil
}

func loadGazetteer() (*gazetteer.Index, error) {
	ix, err := gazetteer.Default()
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	return ix, nil
}
