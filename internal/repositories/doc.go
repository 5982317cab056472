// Package repositories provides sqlite-backed persistence for listener
// preferences and search history.
//
// Three repositories cover the personalization surface: FavoriteRepository
// stores saved recommendations along with derived artist and tag sets,
// FeedbackRepository keeps per-track like/dislike counters, and
// HistoryRepository retains a bounded, case-insensitive deduplicated log of
// past queries.
//
// Repositories expose point-in-time snapshots (PreferenceSnapshot,
// FeedbackSnapshot) for the scoring layer, which needs synchronous lookups
// without database round trips.
package repositories
