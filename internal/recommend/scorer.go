package recommend

import (
	"sort"
	"strings"

	"github.com/tunesift/tunesift/internal/models"
)

// Score weights. Preview availability dominates everything else, similarity
// separates items within a preview class, and the preference signals nudge
// items the listener has already reacted to.
const (
	previewWeight    = 1000.0
	similarityWeight = 100.0
	favArtistBonus   = 60.0
	tagOverlapWeight = 10.0
	favoriteBonus    = 80.0
	feedbackWeight   = 120.0
	lastActionBonus  = 40.0
)

// LastAction values recorded by the feedback store.
const (
	ActionLike    = "like"
	ActionDislike = "dislike"
)

// PreferenceSource exposes the listener's stored taste to the scorer.
// Artist and tag sets are keyed by lowercased names.
type PreferenceSource interface {
	IsFavorite(key string) bool
	FavoriteArtists() map[string]struct{}
	FavoriteTags() map[string]struct{}
}

// FeedbackSource exposes per-track like/dislike counters. lastAction is
// one of [ActionLike], [ActionDislike], or empty when no feedback exists.
type FeedbackSource interface {
	Feedback(key string) (likes, dislikes int, lastAction string)
}

// Scorer re-ranks a recommendation list against the listener's stored
// preferences. Either source may be nil; the corresponding signals then
// contribute nothing and the order reduces to preview-then-similarity.
type Scorer struct {
	prefs    PreferenceSource
	feedback FeedbackSource
}

// NewScorer creates a Scorer over the given preference and feedback sources.
func NewScorer(prefs PreferenceSource, feedback FeedbackSource) *Scorer {
	return &Scorer{prefs: prefs, feedback: feedback}
}

// Score computes the personalization score of a single item.
func (s *Scorer) Score(it models.TrackRecommendation) float64 {
	score := 0.0

	if it.HasPreview() {
		score += previewWeight
	}
	if it.Similarity != nil {
		score += similarityWeight * *it.Similarity
	}

	if s.prefs != nil {
		if _, ok := s.prefs.FavoriteArtists()[strings.ToLower(strings.TrimSpace(it.Artist))]; ok {
			score += favArtistBonus
		}

		favTags := s.prefs.FavoriteTags()
		for _, tag := range it.Tags {
			if _, ok := favTags[strings.ToLower(tag)]; ok {
				score += tagOverlapWeight
			}
		}

		if s.prefs.IsFavorite(it.FavoriteKey()) {
			score += favoriteBonus
		}
	}

	if s.feedback != nil {
		likes, dislikes, lastAction := s.feedback.Feedback(it.FavoriteKey())
		score += feedbackWeight * float64(likes-dislikes)
		switch lastAction {
		case ActionLike:
			score += lastActionBonus
		case ActionDislike:
			score -= lastActionBonus
		}
	}

	return score
}

// Rank returns a copy of items sorted by descending score and re-ranked
// densely from 1. The input slice is left untouched so the engine's base
// order stays available. Equal scores keep their incoming relative order.
func (s *Scorer) Rank(items []models.TrackRecommendation) []models.TrackRecommendation {
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = s.Score(it)
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]models.TrackRecommendation, len(items))
	for pos, idx := range order {
		out[pos] = items[idx]
	}
	models.Rerank(out)
	return out
}
