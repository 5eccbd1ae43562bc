package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	waitURLFlag      string
	waitTimeoutFlag  time.Duration
	waitIntervalFlag time.Duration
)

var waitReadyCmd = &cobra.Command{
	Use:   "waitready",
	Short: "Block until the server's health endpoint answers 200",
	Args:  cobra.NoArgs,
	RunE:  runWaitReady,
}

func init() {
	waitReadyCmd.Flags().StringVar(&waitURLFlag, "url", "http://localhost:8080/health", "Health endpoint")
	waitReadyCmd.Flags().DurationVar(&waitTimeoutFlag, "wait", 30*time.Second, "Give up after this long")
	waitReadyCmd.Flags().DurationVar(&waitIntervalFlag, "interval", 500*time.Millisecond, "Poll interval")
	rootCmd.AddCommand(waitReadyCmd)
}

func runWaitReady(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeoutFlag)
	defer cancel()

	client := &http.Client{Timeout: waitIntervalFlag * 2}
	ticker := time.NewTicker(waitIntervalFlag)
	defer ticker.Stop()

	for {
		if ready(ctx, client, waitURLFlag) {
			fmt.Println(success("ready"), waitURLFlag)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready after %s", waitURLFlag, waitTimeoutFlag)
		case <-ticker.C:
		}
	}
}

func ready(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
