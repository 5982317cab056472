// Package recommend orchestrates the catalog providers into ranked track
// recommendations with real-time progress reporting.
//
// # Strategy
//
// [Engine.Recommend] runs one request through a two-mode decision procedure:
//
//  1. Empty input returns [models.ModeNone] without touching a provider.
//  2. When the query parses to both a track and an artist, the pair is
//     canonicalized through the resolver and the direct similar-track
//     strategy runs. One or more valid candidates ends the request in
//     [models.ModeTrack]; track mode never falls through once it has items.
//  3. Otherwise (or when track mode came up empty) the artist-fallback
//     strategy walks up to ten similar artists and takes up to three top
//     tracks from each, inheriting each similar artist's match score, and
//     ends in [models.ModeArtistFallback].
//
// Fallback tag resolution is a three-step chain (similar-artist tags, then
// query-artist tags, then track tags); the first non-empty result wins.
//
// # Degradation
//
// Provider failures degrade the field they were fetching: tags become
// empty, enrichment fields stay absent, resolution keeps the raw input.
// The only propagated error is total inability to fetch any candidate
// list at all.
//
// # Ranking
//
// Items carry a dense 1-based rank. The engine's own deterministic order
// puts preview-carrying items first, then similarity descending (absent
// lowest), stable within ties. [Scorer.Rank] applies preference-based
// re-ranking on top and is re-invoked by callers whenever preference state
// changes.
//
// # Progress Reporting
//
// All phases emit [ProgressUpdate] values on a non-blocking channel using
// select with default, so display layers can lag without stalling the
// request.
package recommend
