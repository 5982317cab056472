package recommend

import (
	"testing"

	"github.com/tunesift/tunesift/internal/models"
)

type fakePrefs struct {
	favorites map[string]struct{}
	artists   map[string]struct{}
	tags      map[string]struct{}
}

func (f *fakePrefs) IsFavorite(key string) bool {
	_, ok := f.favorites[key]
	return ok
}

func (f *fakePrefs) FavoriteArtists() map[string]struct{} { return f.artists }
func (f *fakePrefs) FavoriteTags() map[string]struct{}    { return f.tags }

type fakeFeedback struct {
	entries map[string][3]int // likes, dislikes, lastAction (1 like, -1 dislike)
}

func (f *fakeFeedback) Feedback(key string) (int, int, string) {
	e, ok := f.entries[key]
	if !ok {
		return 0, 0, ""
	}
	action := ""
	switch e[2] {
	case 1:
		action = ActionLike
	case -1:
		action = ActionDislike
	}
	return e[0], e[1], action
}

func TestScorerScore(t *testing.T) {
	t.Run("nil sources reduce to preview and similarity", func(t *testing.T) {
		s := NewScorer(nil, nil)

		it := models.TrackRecommendation{
			Track:      "Song",
			Artist:     "Artist",
			Similarity: ptrFloat(0.5),
			PreviewURL: "https://example.com/p",
		}
		if got := s.Score(it); got != 1050 {
			t.Errorf("expected 1050, got %v", got)
		}

		it.PreviewURL = ""
		it.Similarity = nil
		if got := s.Score(it); got != 0 {
			t.Errorf("expected 0 for bare item, got %v", got)
		}
	})

	t.Run("favorite artist bonus is case-insensitive", func(t *testing.T) {
		prefs := &fakePrefs{artists: map[string]struct{}{"radiohead": {}}}
		s := NewScorer(prefs, nil)

		it := models.TrackRecommendation{Track: "Song", Artist: "  Radiohead "}
		if got := s.Score(it); got != favArtistBonus {
			t.Errorf("expected %v, got %v", favArtistBonus, got)
		}
	})

	t.Run("tag overlap counts each match", func(t *testing.T) {
		prefs := &fakePrefs{tags: map[string]struct{}{"rock": {}, "90s": {}}}
		s := NewScorer(prefs, nil)

		it := models.TrackRecommendation{
			Track:  "Song",
			Artist: "Artist",
			Tags:   []string{"Rock", "90s", "british"},
		}
		if got := s.Score(it); got != 2*tagOverlapWeight {
			t.Errorf("expected %v, got %v", 2*tagOverlapWeight, got)
		}
	})

	t.Run("stored favorite bonus", func(t *testing.T) {
		key := models.FavoriteKey("Song", "Artist")
		prefs := &fakePrefs{favorites: map[string]struct{}{key: {}}}
		s := NewScorer(prefs, nil)

		it := models.TrackRecommendation{Track: "Song", Artist: "Artist"}
		if got := s.Score(it); got != favoriteBonus {
			t.Errorf("expected %v, got %v", favoriteBonus, got)
		}
	})

	t.Run("feedback signal", func(t *testing.T) {
		key := models.FavoriteKey("Song", "Artist")
		fb := &fakeFeedback{entries: map[string][3]int{key: {3, 1, 1}}}
		s := NewScorer(nil, fb)

		it := models.TrackRecommendation{Track: "Song", Artist: "Artist"}
		want := feedbackWeight*2 + lastActionBonus
		if got := s.Score(it); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}

		fb.entries[key] = [3]int{0, 2, -1}
		want = feedbackWeight*-2 - lastActionBonus
		if got := s.Score(it); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestScorerRank(t *testing.T) {
	t.Run("favoriting reorders a copy", func(t *testing.T) {
		items := []models.TrackRecommendation{
			{Track: "First", Artist: "A", Rank: 1, Similarity: ptrFloat(0.9)},
			{Track: "Second", Artist: "B", Rank: 2, Similarity: ptrFloat(0.8)},
		}

		key := models.FavoriteKey("Second", "B")
		prefs := &fakePrefs{favorites: map[string]struct{}{key: {}}}
		ranked := NewScorer(prefs, nil).Rank(items)

		if ranked[0].Track != "Second" {
			t.Errorf("expected favorited item first, got %q", ranked[0].Track)
		}
		if ranked[0].Rank != 1 || ranked[1].Rank != 2 {
			t.Errorf("expected dense ranks after reorder, got %d,%d", ranked[0].Rank, ranked[1].Rank)
		}

		// Input slice must keep the base order.
		if items[0].Track != "First" || items[0].Rank != 1 {
			t.Error("input slice was mutated")
		}
	})

	t.Run("equal scores keep incoming order", func(t *testing.T) {
		items := []models.TrackRecommendation{
			{Track: "A", Artist: "X", Rank: 1},
			{Track: "B", Artist: "Y", Rank: 2},
			{Track: "C", Artist: "Z", Rank: 3},
		}
		ranked := NewScorer(nil, nil).Rank(items)

		for i, want := range []string{"A", "B", "C"} {
			if ranked[i].Track != want {
				t.Fatalf("position %d: expected %q got %q", i, want, ranked[i].Track)
			}
		}
	})

	t.Run("idempotent when preferences do not change", func(t *testing.T) {
		prefs := &fakePrefs{artists: map[string]struct{}{"b": {}}}
		s := NewScorer(prefs, nil)

		items := []models.TrackRecommendation{
			{Track: "One", Artist: "A", Rank: 1, Similarity: ptrFloat(0.9)},
			{Track: "Two", Artist: "B", Rank: 2, Similarity: ptrFloat(0.5)},
		}

		once := s.Rank(items)
		twice := s.Rank(once)
		for i := range once {
			if once[i].Track != twice[i].Track || once[i].Rank != twice[i].Rank {
				t.Fatalf("re-ranking changed order at %d: %q/%d vs %q/%d",
					i, once[i].Track, once[i].Rank, twice[i].Track, twice[i].Rank)
			}
		}
	})
}
