package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/backend"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past chat sessions, most recent first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show at most this many sessions (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runHistoryWith(cmd.Context(), gatewayFactory(cfg), historyLimit, cmd.OutOrStdout())
}

// runHistoryWith allows injecting the gateway and output for testing
func runHistoryWith(ctx context.Context, gw backend.Gateway, limit int, out io.Writer) error {
	entries, err := gw.ListHistory(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No sessions yet.")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.ID))
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(e.ID, width), e.DisplayTitle())
	}
	return nil
}
