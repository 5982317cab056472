package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recommend runs one recommendation query and prints the ranked result.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("%w: query text", shared.ErrMissingArgument)
	}

	limit := int(cmd.Int("limit"))
	asJSON := cmd.Bool("json")
	raw := cmd.Bool("raw")

	r.logger.Info("recommendation requested", "query", query, "limit", limit)

	// Progress goes to stdout only in plain mode; JSON output stays clean.
	progressCh := make(chan recommend.ProgressUpdate, 50)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			if asJSON {
				continue
			}
			switch update.Phase {
			case recommend.Resolve:
				r.writePlain("🔎 %s\n", update.Message)
			case recommend.FetchSimilarTracks, recommend.FetchSimilarArtists:
				r.writePlain("📡 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Recommend(ctx, progressCh, query, limit)
	close(progressCh)
	<-progressDone
	if err != nil {
		return err
	}

	if !raw {
		if err := r.openDatabase(); err != nil {
			r.logger.Warn("personalization unavailable", "error", err)
		} else {
			result.Items = r.personalize(result.Items)
			if err := r.history.Record(query); err != nil {
				r.logger.Warn("failed to record search", "error", err)
			}
		}
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader(result.Message)
	if len(result.Items) == 0 {
		return nil
	}

	for _, item := range result.Items {
		r.writePlain("%2d. %s - %s%s\n", item.Rank, item.Artist, item.Track, itemMarkers(item))
		if item.Reason != "" {
			r.writePlain("    %s\n", item.Reason)
		}
		if item.PreviewURL != "" {
			r.writePlain("    preview: %s\n", item.PreviewURL)
		}
	}

	return nil
}

func itemMarkers(item models.TrackRecommendation) string {
	var parts []string
	if item.Similarity != nil {
		parts = append(parts, fmt.Sprintf("[%.2f]", *item.Similarity))
	}
	if item.HasPreview() {
		parts = append(parts, "♪")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Aliases:   []string{"rec"},
		Usage:     "Recommend tracks for a query ('track - artist' or just an artist)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of recommendations",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the full result as JSON",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Skip personalization and history recording",
			},
		},
		Action: r.Recommend,
	}
}
