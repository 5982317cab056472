package main

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/tunesift/tunesift/internal/services"
	"github.com/tunesift/tunesift/internal/shared"
	mocks "github.com/tunesift/tunesift/internal/testing"
	"github.com/urfave/cli/v3"
)

func testDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testRunner(t *testing.T, sim *mocks.MockSimilarity) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		Similarity: sim,
		Resolver:   &mocks.MockResolver{},
		Enricher:   &mocks.MockEnricher{},
		Logger:     shared.NewLogger(output),
		Output:     output,
		DB:         testDatabase(t),
	})
	return runner, output
}

func runApp(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "tunesift",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"tunesift"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			sim := &mocks.MockSimilarity{}
			resolver := &mocks.MockResolver{}
			enricher := &mocks.MockEnricher{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Similarity: sim,
				Resolver:   resolver,
				Enricher:   enricher,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.similarity != services.SimilarityProvider(sim) {
				t.Error("expected similarity provider to be set")
			}
			if runner.resolver != services.IdentityResolver(resolver) {
				t.Error("expected resolver to be set")
			}
			if runner.enricher != services.Enricher(enricher) {
				t.Error("expected enricher to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Similarity: &mocks.MockSimilarity{}})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.cache == nil {
				t.Error("expected cache to be built")
			}
		})

		t.Run("missing lastfm key leaves similarity nil", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Providers.LastFM.APIKey = ""

			runner := NewRunner(RunnerOpts{Config: config})

			if runner.similarity != nil {
				t.Error("expected nil similarity provider without an API key")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Similarity: &mocks.MockSimilarity{}, Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("failed write surfaces error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Similarity: &mocks.MockSimilarity{}, Output: &mocks.FWriter{}})

			if err := runner.writeJSON("data", false); err == nil {
				t.Error("expected write error")
			}
		})
	})
}

func TestRecommendCommand(t *testing.T) {
	match := 0.9
	sim := &mocks.MockSimilarity{
		SimilarTracksResult: []services.SimilarTrack{
			{Name: "No Surprises", Artist: "Radiohead", Match: &match},
		},
	}

	t.Run("requires a query", func(t *testing.T) {
		runner, _ := testRunner(t, sim)

		if err := runApp(t, runner, "recommend"); err == nil {
			t.Error("expected missing argument error")
		}
	})

	t.Run("prints ranked tracks", func(t *testing.T) {
		runner, output := testRunner(t, sim)

		if err := runApp(t, runner, "recommend", "Karma Police - Radiohead"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Recommendations based on 'Karma Police - Radiohead'") {
			t.Errorf("missing result message in output:\n%s", got)
		}
		if !strings.Contains(got, "1. Radiohead - No Surprises") {
			t.Errorf("missing track line in output:\n%s", got)
		}
	})

	t.Run("records history", func(t *testing.T) {
		runner, _ := testRunner(t, sim)

		if err := runApp(t, runner, "recommend", "Karma Police - Radiohead"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := runner.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to read history: %v", err)
		}
		if len(entries) != 1 || entries[0].Query != "Karma Police - Radiohead" {
			t.Errorf("unexpected history %+v", entries)
		}
	})

	t.Run("raw skips history", func(t *testing.T) {
		runner, _ := testRunner(t, sim)

		if err := runApp(t, runner, "recommend", "--raw", "Karma Police - Radiohead"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := runner.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to read history: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty history, got %+v", entries)
		}
	})

	t.Run("json output", func(t *testing.T) {
		runner, output := testRunner(t, sim)

		if err := runApp(t, runner, "recommend", "--json", "--raw", "Karma Police - Radiohead"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"mode": "track"`) {
			t.Errorf("expected JSON result, got:\n%s", output.String())
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	runner, output := testRunner(t, &mocks.MockSimilarity{})

	if err := runApp(t, runner, "favorites", "add", "--track", "Karma Police", "--artist", "Radiohead"); err != nil {
		t.Fatalf("failed to add favorite: %v", err)
	}
	if !strings.Contains(output.String(), "Saved Radiohead - Karma Police") {
		t.Errorf("unexpected output:\n%s", output.String())
	}

	output.Reset()
	if err := runApp(t, runner, "favorites", "list"); err != nil {
		t.Fatalf("failed to list favorites: %v", err)
	}
	if !strings.Contains(output.String(), "Radiohead - Karma Police") {
		t.Errorf("favorite missing from list:\n%s", output.String())
	}

	output.Reset()
	if err := runApp(t, runner, "favorites", "remove", "--track", "Karma Police", "--artist", "Radiohead"); err != nil {
		t.Fatalf("failed to remove favorite: %v", err)
	}

	output.Reset()
	if err := runApp(t, runner, "favorites", "remove", "--track", "Karma Police", "--artist", "Radiohead"); err != nil {
		t.Fatalf("removing a missing favorite should not error: %v", err)
	}
	if !strings.Contains(output.String(), "not in favorites") {
		t.Errorf("unexpected output:\n%s", output.String())
	}
}

func TestFeedbackCommands(t *testing.T) {
	runner, output := testRunner(t, &mocks.MockSimilarity{})

	if err := runApp(t, runner, "like", "--track", "Karma Police", "--artist", "Radiohead"); err != nil {
		t.Fatalf("failed to like: %v", err)
	}
	if err := runApp(t, runner, "dislike", "--track", "Creep", "--artist", "Radiohead"); err != nil {
		t.Fatalf("failed to dislike: %v", err)
	}

	likes, _, lastAction, err := runner.feedback.Get("karma police|radiohead")
	if err != nil {
		t.Fatalf("failed to read feedback: %v", err)
	}
	if likes != 1 || lastAction != "like" {
		t.Errorf("unexpected feedback %d/%q", likes, lastAction)
	}
	if !strings.Contains(output.String(), "Liked Radiohead - Karma Police") {
		t.Errorf("unexpected output:\n%s", output.String())
	}
}

func TestHistoryCommands(t *testing.T) {
	runner, output := testRunner(t, &mocks.MockSimilarity{})

	if err := runner.history.Record("karma police"); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}
	if err := runApp(t, runner, "history"); err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if !strings.Contains(output.String(), "karma police") {
		t.Errorf("expected recorded query in output:\n%s", output.String())
	}

	output.Reset()
	if err := runApp(t, runner, "history", "clear"); err != nil {
		t.Fatalf("failed to clear history: %v", err)
	}

	output.Reset()
	if err := runApp(t, runner, "history"); err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if !strings.Contains(output.String(), "No searches recorded") {
		t.Errorf("expected empty history message:\n%s", output.String())
	}
}
