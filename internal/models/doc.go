// Package models defines the data transfer types shared by the
// recommendation engine, stores, exporters, and UI layers.
//
// A [TrackRecommendation] is one ranked candidate. [RecommendResult] is the
// outcome of a single engine invocation and is never mutated after it is
// returned; re-ranking operations work on copies of the item slice.
//
// Identity across favorites, feedback, and personalization uses
// [FavoriteKey]: the trimmed, lowercased "track|artist" pair.
package models
