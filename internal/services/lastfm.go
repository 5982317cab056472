// Last.fm implementation of [SimilarityProvider]
//
// Response types based on https://www.last.fm/api (track.getSimilar,
// artist.getSimilar, artist.getTopTracks, track.getTopTags,
// artist.getTopTags)
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tunesift/tunesift/internal/cache"
	"github.com/tunesift/tunesift/internal/shared"
)

const defaultLastFMBaseURL = "https://ws.audioscrobbler.com/2.0/"

// oneOrMany accepts either a JSON array or a single object and always
// normalizes to a slice. Last.fm collapses one-element lists to objects.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}

	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*o = oneOrMany[T]{single}
	return nil
}

// lfScore accepts a JSON number or a numeric string. Anything unparseable
// degrades to absent rather than failing the payload.
type lfScore struct {
	value *float64
}

func (s *lfScore) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s.value = &num
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			s.value = &f
		}
	}
	return nil
}

type lfArtistRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type lfTrack struct {
	Name   string      `json:"name"`
	URL    string      `json:"url"`
	Match  lfScore     `json:"match"`
	Artist lfArtistRef `json:"artist"`
}

type lfArtist struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Match lfScore `json:"match"`
}

type lfTag struct {
	Name string `json:"name"`
}

type lfSimilarTracksResponse struct {
	SimilarTracks struct {
		Track oneOrMany[lfTrack] `json:"track"`
	} `json:"similartracks"`
}

type lfSimilarArtistsResponse struct {
	SimilarArtists struct {
		Artist oneOrMany[lfArtist] `json:"artist"`
	} `json:"similarartists"`
}

type lfTopTracksResponse struct {
	TopTracks struct {
		Track oneOrMany[lfTrack] `json:"track"`
	} `json:"toptracks"`
}

type lfTopTagsResponse struct {
	TopTags struct {
		Tag oneOrMany[lfTag] `json:"tag"`
	} `json:"toptags"`
}

// lfEnvelope carries Last.fm application errors, which arrive with a 200
// status as {"error": N, "message": "..."}.
type lfEnvelope struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// LastFMService implements [SimilarityProvider] against the Last.fm REST
// API. All calls read and write through the shared TTL cache.
type LastFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	ttl        time.Duration
	logger     *log.Logger
}

// NewLastFMService creates a Last.fm client. A missing API key is fatal
// here rather than at call time.
func NewLastFMService(cfg shared.LastFMConfig, store *cache.Cache, ttl time.Duration, logger *log.Logger) (*LastFMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: lastfm api_key", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLastFMBaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &LastFMService{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		ttl:        ttl,
		logger:     shared.WithLogger(logger, "provider", "lastfm"),
	}, nil
}

func (s *LastFMService) Name() string {
	return "Last.fm"
}

// get performs a GET against the Last.fm API and decodes the body into
// target. The cache key is built from params only, so the API key never
// appears in cache keys; successful raw bodies are cached.
func (s *LastFMService) get(ctx context.Context, params map[string]string, target any) error {
	key := cache.Key("lastfm:", params)
	if cached, ok := s.cache.Get(key); ok {
		if body, ok := cached.([]byte); ok {
			return json.Unmarshal(body, target)
		}
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("api_key", s.apiKey)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: lastfm status %d", shared.ErrProviderRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}

	var envelope lfEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderResponse, err)
	}
	if envelope.Error != 0 {
		return fmt.Errorf("%w: lastfm error %d: %s", shared.ErrProviderResponse, envelope.Error, envelope.Message)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderResponse, err)
	}

	s.cache.Set(key, body, s.ttl)
	return nil
}

// SimilarTracks fetches tracks similar to (track, artist) via track.getSimilar.
func (s *LastFMService) SimilarTracks(ctx context.Context, track, artist string, limit int) ([]SimilarTrack, error) {
	params := map[string]string{
		"method":      "track.getSimilar",
		"track":       track,
		"artist":      artist,
		"limit":       strconv.Itoa(limit),
		"autocorrect": "1",
	}

	var resp lfSimilarTracksResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]SimilarTrack, 0, len(resp.SimilarTracks.Track))
	for _, t := range resp.SimilarTracks.Track {
		tracks = append(tracks, SimilarTrack{
			Name:   t.Name,
			Artist: t.Artist.Name,
			URL:    t.URL,
			Match:  t.Match.value,
		})
	}
	return tracks, nil
}

// SimilarArtists fetches artists similar to artist via artist.getSimilar.
func (s *LastFMService) SimilarArtists(ctx context.Context, artist string, limit int) ([]SimilarArtist, error) {
	params := map[string]string{
		"method":      "artist.getSimilar",
		"artist":      artist,
		"limit":       strconv.Itoa(limit),
		"autocorrect": "1",
	}

	var resp lfSimilarArtistsResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	artists := make([]SimilarArtist, 0, len(resp.SimilarArtists.Artist))
	for _, a := range resp.SimilarArtists.Artist {
		artists = append(artists, SimilarArtist{
			Name:  a.Name,
			URL:   a.URL,
			Match: a.Match.value,
		})
	}
	return artists, nil
}

// TopTracks fetches an artist's most popular tracks via artist.getTopTracks.
func (s *LastFMService) TopTracks(ctx context.Context, artist string, limit int) ([]TopTrack, error) {
	params := map[string]string{
		"method":      "artist.getTopTracks",
		"artist":      artist,
		"limit":       strconv.Itoa(limit),
		"autocorrect": "1",
	}

	var resp lfTopTracksResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]TopTrack, 0, len(resp.TopTracks.Track))
	for _, t := range resp.TopTracks.Track {
		tracks = append(tracks, TopTrack{
			Name:   t.Name,
			Artist: t.Artist.Name,
			URL:    t.URL,
		})
	}
	return tracks, nil
}

// TrackTags fetches up to limit tags for a track via track.getTopTags.
func (s *LastFMService) TrackTags(ctx context.Context, track, artist string, limit int) ([]string, error) {
	params := map[string]string{
		"method":      "track.getTopTags",
		"track":       track,
		"artist":      artist,
		"autocorrect": "1",
	}
	return s.tags(ctx, params, limit)
}

// ArtistTags fetches up to limit tags for an artist via artist.getTopTags.
func (s *LastFMService) ArtistTags(ctx context.Context, artist string, limit int) ([]string, error) {
	params := map[string]string{
		"method":      "artist.getTopTags",
		"artist":      artist,
		"autocorrect": "1",
	}
	return s.tags(ctx, params, limit)
}

// tags decodes a toptags response and applies the limit client-side; the
// API ignores limit for tag methods.
func (s *LastFMService) tags(ctx context.Context, params map[string]string, limit int) ([]string, error) {
	var resp lfTopTagsResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	tags := make([]string, 0, limit)
	for _, tag := range resp.TopTags.Tag {
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag.Name)
		if len(tags) >= limit {
			break
		}
	}
	return tags, nil
}
