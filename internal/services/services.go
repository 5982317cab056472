package services

import (
	"context"
)

// SimilarityProvider supplies the similarity graph: similar tracks for a
// (track, artist) pair, similar artists for an artist, an artist's top
// tracks, and tag vocabularies for tracks and artists.
type SimilarityProvider interface {
	// SimilarTracks returns up to limit tracks similar to the given track,
	// in provider relevance order.
	SimilarTracks(ctx context.Context, track, artist string, limit int) ([]SimilarTrack, error)

	// SimilarArtists returns up to limit artists similar to the given
	// artist, in provider relevance order.
	SimilarArtists(ctx context.Context, artist string, limit int) ([]SimilarArtist, error)

	// TopTracks returns up to limit of the artist's most popular tracks.
	TopTracks(ctx context.Context, artist string, limit int) ([]TopTrack, error)

	// TrackTags returns up to limit tags for a track, most relevant first.
	TrackTags(ctx context.Context, track, artist string, limit int) ([]string, error)

	// ArtistTags returns up to limit tags for an artist, most relevant first.
	ArtistTags(ctx context.Context, artist string, limit int) ([]string, error)

	// Name returns the provider name (e.g., "Last.fm")
	Name() string
}

// IdentityResolver disambiguates user-typed names against an authoritative
// catalog. Both operations are best-effort: provider failure degrades
// silently to the original input and never reaches the caller.
type IdentityResolver interface {
	// ResolveTrackArtist returns the canonical spelling for a (track,
	// artist) pair, or the inputs unchanged when nothing matched or the
	// lookup failed.
	ResolveTrackArtist(ctx context.Context, track, artist string) (string, string)

	// ResolveArtist returns the canonical artist name. The second return
	// value is false when nothing matched or the lookup failed; the caller
	// falls back to the raw input.
	ResolveArtist(ctx context.Context, artist string) (string, bool)

	// Name returns the provider name (e.g., "MusicBrainz")
	Name() string
}

// Enricher attaches storefront metadata to a (track, artist) pair.
type Enricher interface {
	// FindTrack returns the best storefront match, or (nil, nil) when
	// nothing matched.
	FindTrack(ctx context.Context, track, artist string) (*TrackMatch, error)

	// Name returns the provider name (e.g., "iTunes")
	Name() string
}

// SimilarTrack is a normalized similar-track record.
type SimilarTrack struct {
	Name   string
	Artist string
	URL    string
	// Match is the provider similarity score when parseable, else nil.
	Match *float64
}

// SimilarArtist is a normalized similar-artist record.
type SimilarArtist struct {
	Name string
	URL  string
	// Match is the provider match score when parseable, else nil.
	Match *float64
}

// TopTrack is a normalized top-track record. Artist may be empty when the
// provider omitted the credit; callers fall back to the owning artist.
type TopTrack struct {
	Name   string
	Artist string
	URL    string
}

// TrackMatch is a normalized enrichment record.
type TrackMatch struct {
	PreviewURL    string
	ArtworkURL    string
	StorefrontURL string
}
