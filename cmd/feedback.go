package main

import (
	"context"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/urfave/cli/v3"
)

// Like records a positive reaction for a track.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	track, artist := cmd.String("track"), cmd.String("artist")
	if err := r.feedback.Like(models.FavoriteKey(track, artist)); err != nil {
		return err
	}

	r.writePlain("👍 Liked %s - %s\n", artist, track)
	return nil
}

// Dislike records a negative reaction for a track.
func (r *Runner) Dislike(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	track, artist := cmd.String("track"), cmd.String("artist")
	if err := r.feedback.Dislike(models.FavoriteKey(track, artist)); err != nil {
		return err
	}

	r.writePlain("👎 Disliked %s - %s\n", artist, track)
	return nil
}

func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "like",
		Usage:  "Like a track to boost it in future rankings",
		Flags:  trackArtistFlags(),
		Action: r.Like,
	}
}

func dislikeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dislike",
		Usage:  "Dislike a track to demote it in future rankings",
		Flags:  trackArtistFlags(),
		Action: r.Dislike,
	}
}
