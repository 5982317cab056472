package models

import "strings"

// Mode identifies which strategy produced a RecommendResult.
type Mode string

const (
	// ModeNone is returned for empty input; no provider calls are made.
	ModeNone Mode = "none"
	// ModeTrack means the direct similar-track strategy produced the items.
	ModeTrack Mode = "track"
	// ModeArtistFallback means the items were assembled from similar
	// artists' top tracks.
	ModeArtistFallback Mode = "artist_fallback"
)

// TrackRecommendation is one ranked candidate track.
type TrackRecommendation struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
	// Rank is 1-based and dense; it is reassigned whenever the containing
	// list is reordered.
	Rank int `json:"rank"`
	// Similarity is the provider-reported match score when one was
	// parseable. In track mode it is a per-track similarity; in
	// artist-fallback mode top tracks inherit the match score of the
	// similar artist that produced them, so it describes the artist, not
	// the track. Nil when the provider reported nothing usable.
	Similarity *float64 `json:"similarity,omitempty"`

	LastFMURL     string `json:"lastfm_url,omitempty"`
	PreviewURL    string `json:"preview_url,omitempty"`
	ArtworkURL    string `json:"artwork_url,omitempty"`
	StorefrontURL string `json:"storefront_url,omitempty"`

	// Tags preserves provider relevance order and may be empty.
	Tags []string `json:"tags,omitempty"`
	// Reason explains why the item was included, e.g.
	// "Top track from similar artist: CHVRCHES | tags: synthpop, indie".
	Reason string `json:"reason,omitempty"`
}

// FavoriteKey returns the identity key for this recommendation.
func (r TrackRecommendation) FavoriteKey() string {
	return FavoriteKey(r.Track, r.Artist)
}

// HasPreview reports whether a preview URL was attached during enrichment.
func (r TrackRecommendation) HasPreview() bool {
	return r.PreviewURL != ""
}

// RecommendResult is the outcome of one recommendation request.
type RecommendResult struct {
	Mode           Mode                  `json:"mode"`
	ResolvedTrack  string                `json:"resolved_track,omitempty"`
	ResolvedArtist string                `json:"resolved_artist,omitempty"`
	QueryRaw       string                `json:"query_raw"`
	Items          []TrackRecommendation `json:"items"`
	Message        string                `json:"message"`
}

// FavoriteKey builds the case-insensitive identity key for a (track, artist)
// pair: both parts trimmed, lowercased, and joined with "|".
func FavoriteKey(track, artist string) string {
	t := strings.ToLower(strings.TrimSpace(track))
	a := strings.ToLower(strings.TrimSpace(artist))
	return t + "|" + a
}

// Rerank reassigns dense 1-based ranks in slice order.
func Rerank(items []TrackRecommendation) {
	for i := range items {
		items[i].Rank = i + 1
	}
}
