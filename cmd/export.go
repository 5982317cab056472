package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunesift/tunesift/internal/formatter"
	"github.com/tunesift/tunesift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export runs a recommendation query and writes the result to disk in the
// requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("%w: query text", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	output := cmd.String("output")
	limit := int(cmd.Int("limit"))

	result, err := r.engine.Recommend(ctx, nil, query, limit)
	if err != nil {
		return err
	}

	if err := r.openDatabase(); err == nil {
		result.Items = r.personalize(result.Items)
	} else {
		r.logger.Warn("personalization unavailable", "error", err)
	}

	switch format {
	case "csv":
		exportResult, err := formatter.WriteCSVExport(result, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks\n", len(result.Items))
		r.writePlain("  Tracks: %s\n", exportResult.TracksFile)
		r.writePlain("  Metadata: %s\n", exportResult.MetadataFile)

	case "md", "markdown":
		var coverURL string
		if len(result.Items) > 0 {
			coverURL = result.Items[0].ArtworkURL
		}
		exportResult, err := formatter.WriteMarkdownExport(result, output, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", len(result.Items), exportResult.Directory)

	case "txt", "text":
		path, err := formatter.WriteTextExport(result, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", len(result.Items), path)

	default:
		return fmt.Errorf("%w: unknown format %q (want csv, md, or txt)", shared.ErrInvalidFlag, format)
	}

	return nil
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Run a query and export the recommendations to a file",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, md, or txt",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (base name for csv, directory for md)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of recommendations",
				Value:   20,
			},
		},
		Action: r.Export,
	}
}
