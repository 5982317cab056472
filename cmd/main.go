package main

import (
	"context"
	"errors"
	"os"

	"github.com/tunesift/tunesift/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tunesift",
		Usage:    "Track recommendations from Last.fm, MusicBrainz & iTunes",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			logger.Error("missing credentials; run 'tunesift setup' and set providers.lastfm.api_key", "error", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
