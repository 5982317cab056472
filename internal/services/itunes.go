// iTunes Search API implementation of [Enricher]
//
// https://performance-partners.apple.com/search-api (anonymous, no
// credentials required)
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tunesift/tunesift/internal/cache"
	"github.com/tunesift/tunesift/internal/shared"
)

const defaultITunesBaseURL = "https://itunes.apple.com/search"

type itunesResult struct {
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	PreviewURL    string `json:"previewUrl"`
	ArtworkURL100 string `json:"artworkUrl100"`
	TrackViewURL  string `json:"trackViewUrl"`
}

type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

// ITunesService implements [Enricher] against the iTunes Search API.
type ITunesService struct {
	baseURL    string
	country    string
	httpClient *http.Client
	cache      *cache.Cache
	ttl        time.Duration
	logger     *log.Logger
}

// NewITunesService creates an iTunes Search client.
func NewITunesService(cfg shared.ITunesConfig, store *cache.Cache, ttl time.Duration, logger *log.Logger) *ITunesService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultITunesBaseURL
	}

	country := cfg.Country
	if country == "" {
		country = "US"
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ITunesService{
		baseURL:    baseURL,
		country:    country,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		ttl:        ttl,
		logger:     shared.WithLogger(logger, "provider", "itunes"),
	}
}

func (s *ITunesService) Name() string {
	return "iTunes"
}

// FindTrack looks up the best storefront match for (track, artist).
// Returns (nil, nil) when nothing matched; only found matches are cached.
func (s *ITunesService) FindTrack(ctx context.Context, track, artist string) (*TrackMatch, error) {
	params := map[string]string{
		"term":    track + " " + artist,
		"media":   "music",
		"entity":  "song",
		"limit":   "1",
		"country": s.country,
	}

	key := cache.Key("itunes:", params)
	if cached, ok := s.cache.Get(key); ok {
		if match, ok := cached.(*TrackMatch); ok {
			return match, nil
		}
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: itunes status %d", shared.ErrProviderRequest, resp.StatusCode)
	}

	var payload itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderResponse, err)
	}

	if len(payload.Results) == 0 {
		return nil, nil
	}

	hit := payload.Results[0]
	match := &TrackMatch{
		PreviewURL:    hit.PreviewURL,
		ArtworkURL:    hit.ArtworkURL100,
		StorefrontURL: hit.TrackViewURL,
	}

	s.cache.Set(key, match, s.ttl)
	return match, nil
}
