package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// HistoryList prints recent searches, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	entries, err := r.history.Recent(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		r.writePlain("No searches recorded yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Search history (%d)", len(entries)))
	for i, entry := range entries {
		r.writePlain("%2d. %s  (%s)\n", i+1, entry.Query, entry.SearchedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// HistoryClear removes all recorded searches.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	if err := r.history.Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Search history cleared\n")
	return nil
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect or clear the search history",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries to show",
				Value:   50,
			},
		},
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Delete all recorded searches",
				Action: r.HistoryClear,
			},
		},
	}
}
