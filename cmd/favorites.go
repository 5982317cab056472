package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints all stored favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	favorites, err := r.favorites.List()
	if err != nil {
		return fmt.Errorf("failed to list favorites: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(favorites, true)
	}

	if len(favorites) == 0 {
		r.writePlain("No favorites saved yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(favorites)))
	for i, rec := range favorites {
		r.writePlain("%2d. %s - %s\n", i+1, rec.Artist, rec.Track)
		if len(rec.Tags) > 0 {
			r.writePlain("    tags: %s\n", strings.Join(rec.Tags, ", "))
		}
	}

	return nil
}

// FavoritesAdd stores a favorite by track and artist name.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	rec := models.TrackRecommendation{
		Track:  cmd.String("track"),
		Artist: cmd.String("artist"),
	}
	if err := r.favorites.Add(rec); err != nil {
		return err
	}

	r.writePlain("✓ Saved %s - %s to favorites\n", rec.Artist, rec.Track)
	return nil
}

// FavoritesRemove deletes a favorite by track and artist name.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	track, artist := cmd.String("track"), cmd.String("artist")
	if err := r.favorites.Remove(models.FavoriteKey(track, artist)); err != nil {
		if errors.Is(err, shared.ErrNotFavorite) {
			r.writePlain("%s - %s is not in favorites\n", artist, track)
			return nil
		}
		return err
	}

	r.writePlain("✓ Removed %s - %s from favorites\n", artist, track)
	return nil
}

func trackArtistFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "track",
			Aliases:  []string{"t"},
			Usage:    "Track name",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "artist",
			Aliases:  []string{"a"},
			Usage:    "Artist name",
			Required: true,
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Manage saved favorite tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved favorites",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit favorites as JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:   "add",
				Usage:  "Save a track as a favorite",
				Flags:  trackArtistFlags(),
				Action: r.FavoritesAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a track from favorites",
				Flags:   trackArtistFlags(),
				Action:  r.FavoritesRemove,
			},
		},
	}
}
