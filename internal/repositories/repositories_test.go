package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/shared"
)

func setupDB(t *testing.T) *testDB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &testDB{
		favorites: NewFavoriteRepository(db),
		feedback:  NewFeedbackRepository(db),
		history:   NewHistoryRepository(db),
	}
}

type testDB struct {
	favorites *FavoriteRepository
	feedback  *FeedbackRepository
	history   *HistoryRepository
}

func TestFavoriteRepository(t *testing.T) {
	rec := models.TrackRecommendation{
		Track:      "Karma Police",
		Artist:     "Radiohead",
		Tags:       []string{"rock", "alternative"},
		LastFMURL:  "https://last.fm/karma-police",
		PreviewURL: "https://example.com/p.m4a",
		Reason:     "Similar track based on similarity",
	}

	t.Run("add and list", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.favorites.Add(rec); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		favorites, err := repos.favorites.List()
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 1 {
			t.Fatalf("expected 1 favorite, got %d", len(favorites))
		}

		got := favorites[0]
		if got.Track != rec.Track || got.Artist != rec.Artist {
			t.Errorf("unexpected favorite %q / %q", got.Track, got.Artist)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "rock" {
			t.Errorf("unexpected tags %v", got.Tags)
		}
		if got.PreviewURL != rec.PreviewURL {
			t.Errorf("unexpected preview URL %q", got.PreviewURL)
		}
	})

	t.Run("re-adding refreshes metadata", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.favorites.Add(rec); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		updated := rec
		updated.PreviewURL = "https://example.com/fresh.m4a"
		if err := repos.favorites.Add(updated); err != nil {
			t.Fatalf("failed to re-add favorite: %v", err)
		}

		favorites, err := repos.favorites.List()
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 1 {
			t.Fatalf("expected dedup to 1 favorite, got %d", len(favorites))
		}
		if favorites[0].PreviewURL != updated.PreviewURL {
			t.Errorf("expected refreshed preview URL, got %q", favorites[0].PreviewURL)
		}
	})

	t.Run("remove", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.favorites.Add(rec); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}
		if err := repos.favorites.Remove(rec.FavoriteKey()); err != nil {
			t.Fatalf("failed to remove favorite: %v", err)
		}

		if err := repos.favorites.Remove(rec.FavoriteKey()); !errors.Is(err, shared.ErrNotFavorite) {
			t.Errorf("expected ErrNotFavorite, got %v", err)
		}
	})

	t.Run("rejects nameless favorites", func(t *testing.T) {
		repos := setupDB(t)

		err := repos.favorites.Add(models.TrackRecommendation{Track: "Orphan"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.favorites.Add(rec); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		snap, err := repos.favorites.Snapshot()
		if err != nil {
			t.Fatalf("failed to snapshot favorites: %v", err)
		}

		if !snap.IsFavorite(models.FavoriteKey("karma police", "RADIOHEAD")) {
			t.Error("expected case-insensitive favorite lookup")
		}
		if _, ok := snap.FavoriteArtists()["radiohead"]; !ok {
			t.Error("expected lowercased artist in snapshot")
		}
		if _, ok := snap.FavoriteTags()["alternative"]; !ok {
			t.Error("expected tags in snapshot")
		}
	})
}

func TestFeedbackRepository(t *testing.T) {
	key := models.FavoriteKey("Karma Police", "Radiohead")

	t.Run("like and dislike accumulate", func(t *testing.T) {
		repos := setupDB(t)

		for i := 0; i < 3; i++ {
			if err := repos.feedback.Like(key); err != nil {
				t.Fatalf("failed to record like: %v", err)
			}
		}
		if err := repos.feedback.Dislike(key); err != nil {
			t.Fatalf("failed to record dislike: %v", err)
		}

		likes, dislikes, lastAction, err := repos.feedback.Get(key)
		if err != nil {
			t.Fatalf("failed to get feedback: %v", err)
		}
		if likes != 3 || dislikes != 1 {
			t.Errorf("expected 3 likes and 1 dislike, got %d/%d", likes, dislikes)
		}
		if lastAction != recommend.ActionDislike {
			t.Errorf("expected last action %q, got %q", recommend.ActionDislike, lastAction)
		}
	})

	t.Run("unknown key yields zero counters", func(t *testing.T) {
		repos := setupDB(t)

		likes, dislikes, lastAction, err := repos.feedback.Get("nobody|nothing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if likes != 0 || dislikes != 0 || lastAction != "" {
			t.Errorf("expected empty feedback, got %d/%d/%q", likes, dislikes, lastAction)
		}
	})

	t.Run("snapshot feeds the scorer", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.feedback.Like(key); err != nil {
			t.Fatalf("failed to record like: %v", err)
		}

		snap, err := repos.feedback.Snapshot()
		if err != nil {
			t.Fatalf("failed to snapshot feedback: %v", err)
		}

		likes, dislikes, lastAction := snap.Feedback(key)
		if likes != 1 || dislikes != 0 || lastAction != recommend.ActionLike {
			t.Errorf("unexpected snapshot entry %d/%d/%q", likes, dislikes, lastAction)
		}
	})
}

func TestHistoryRepository(t *testing.T) {
	t.Run("records and lists most recent first", func(t *testing.T) {
		repos := setupDB(t)

		for _, q := range []string{"first query", "second query", "third query"} {
			if err := repos.history.Record(q); err != nil {
				t.Fatalf("failed to record %q: %v", q, err)
			}
		}

		entries, err := repos.history.Recent(2)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Query != "third query" {
			t.Errorf("expected most recent first, got %q", entries[0].Query)
		}
	})

	t.Run("deduplicates case-insensitively", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.history.Record("Karma Police"); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := repos.history.Record("karma POLICE"); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		entries, err := repos.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 deduplicated entry, got %d", len(entries))
		}
		if entries[0].Query != "karma POLICE" {
			t.Errorf("expected latest casing kept, got %q", entries[0].Query)
		}
	})

	t.Run("ignores empty queries", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.history.Record("   "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := repos.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty history, got %d entries", len(entries))
		}
	})

	t.Run("caps at fifty entries", func(t *testing.T) {
		repos := setupDB(t)

		for i := 0; i < 55; i++ {
			if err := repos.history.Record(fmt.Sprintf("query %02d", i)); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		entries, err := repos.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 50 {
			t.Errorf("expected history capped at 50, got %d", len(entries))
		}
	})

	t.Run("clear", func(t *testing.T) {
		repos := setupDB(t)

		if err := repos.history.Record("something"); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := repos.history.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}

		entries, err := repos.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty history after clear, got %d", len(entries))
		}
	})
}
