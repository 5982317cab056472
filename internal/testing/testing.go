// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tunesift/tunesift/internal/services"
)

// MockSimilarity is a configurable test double for [services.SimilarityProvider]
type MockSimilarity struct {
	mu sync.Mutex

	SimilarTracksResult  []services.SimilarTrack
	SimilarTracksErr     error
	SimilarArtistsResult []services.SimilarArtist
	SimilarArtistsErr    error
	TopTracksResult      map[string][]services.TopTrack
	TrackTagsResult      map[string][]string
	ArtistTagsResult     map[string][]string

	Calls []string
}

func (m *MockSimilarity) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockSimilarity) SimilarTracks(_ context.Context, track, artist string, _ int) ([]services.SimilarTrack, error) {
	m.record("similarTracks:" + track + "|" + artist)
	return m.SimilarTracksResult, m.SimilarTracksErr
}

func (m *MockSimilarity) SimilarArtists(_ context.Context, artist string, _ int) ([]services.SimilarArtist, error) {
	m.record("similarArtists:" + artist)
	return m.SimilarArtistsResult, m.SimilarArtistsErr
}

func (m *MockSimilarity) TopTracks(_ context.Context, artist string, limit int) ([]services.TopTrack, error) {
	m.record("topTracks:" + artist)
	tracks := m.TopTracksResult[artist]
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (m *MockSimilarity) TrackTags(_ context.Context, track, artist string, _ int) ([]string, error) {
	m.record("trackTags:" + track + "|" + artist)
	return m.TrackTagsResult[track+"|"+artist], nil
}

func (m *MockSimilarity) ArtistTags(_ context.Context, artist string, _ int) ([]string, error) {
	m.record("artistTags:" + artist)
	return m.ArtistTagsResult[artist], nil
}

func (m *MockSimilarity) Name() string { return "mock" }

// MockResolver is a test double for [services.IdentityResolver] that
// returns its configured identity, or echoes the input when unset.
type MockResolver struct {
	Track    string
	Artist   string
	ArtistOK bool
}

func (m *MockResolver) ResolveTrackArtist(_ context.Context, track, artist string) (string, string) {
	if m.Track == "" && m.Artist == "" {
		return track, artist
	}
	return m.Track, m.Artist
}

func (m *MockResolver) ResolveArtist(_ context.Context, artist string) (string, bool) {
	if !m.ArtistOK {
		return "", false
	}
	return m.Artist, true
}

func (m *MockResolver) Name() string { return "mock" }

// MockEnricher is a test double for [services.Enricher] keyed by
// "track|artist".
type MockEnricher struct {
	Matches map[string]*services.TrackMatch
	Err     error
}

func (m *MockEnricher) FindTrack(_ context.Context, track, artist string) (*services.TrackMatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches[track+"|"+artist], nil
}

func (m *MockEnricher) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
