// MusicBrainz implementation of [IdentityResolver]
//
// Uses the /ws/2 search endpoints with Lucene queries. MusicBrainz requires
// a descriptive User-Agent and asks clients to stay at or below one request
// per second, enforced here with a [rate.Limiter].
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
	"github.com/tunesift/tunesift/internal/query"
	"github.com/tunesift/tunesift/internal/shared"
	"golang.org/x/time/rate"
)

const defaultMBBaseURL = "https://musicbrainz.org/ws/2/"

type mbArtistCredit struct {
	Name string `json:"name"`
}

type mbRecording struct {
	Title        string           `json:"title"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
}

type mbArtist struct {
	Name string `json:"name"`
}

type mbRecordingResponse struct {
	Recordings []mbRecording `json:"recordings"`
}

type mbArtistResponse struct {
	Artists []mbArtist `json:"artists"`
}

// MusicBrainzService implements [IdentityResolver] against the MusicBrainz
// search API. Lookups are best-effort: any failure degrades to the caller's
// original input.
type MusicBrainzService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *cache.Cache
	ttl        time.Duration
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewMusicBrainzService creates a MusicBrainz client. An empty User-Agent
// is fatal; MusicBrainz rejects anonymous clients.
func NewMusicBrainzService(cfg shared.MusicBrainzConfig, store *cache.Cache, ttl time.Duration, logger *log.Logger) (*MusicBrainzService, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("%w: musicbrainz user_agent", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultMBBaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &MusicBrainzService{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		ttl:        ttl,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     shared.WithLogger(logger, "provider", "musicbrainz"),
	}, nil
}

func (s *MusicBrainzService) Name() string {
	return "MusicBrainz"
}

// search performs a GET against one search endpoint ("recording" or
// "artist") and decodes the body into target. Cache keys are namespaced
// per endpoint ("mb:recording:", "mb:artist:").
func (s *MusicBrainzService) search(ctx context.Context, endpoint, luceneQuery string, limit int, target any) error {
	params := map[string]string{
		"query": luceneQuery,
		"limit": strconv.Itoa(limit),
		"fmt":   "json",
	}

	key := cache.Key("mb:"+endpoint+":", params)
	if cached, ok := s.cache.Get(key); ok {
		if body, ok := cached.([]byte); ok {
			return json.Unmarshal(body, target)
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint+"/?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: musicbrainz status %d", shared.ErrProviderRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderResponse, err)
	}

	s.cache.Set(key, body, s.ttl)
	return nil
}

// ResolveTrackArtist canonicalizes a (track, artist) pair through a
// recording search, limit 3, top result wins. Missing fields and failures
// keep the corresponding input.
func (s *MusicBrainzService) ResolveTrackArtist(ctx context.Context, track, artist string) (string, string) {
	luceneQuery := fmt.Sprintf(`recording:"%s" AND artist:"%s"`, track, artist)

	var resp mbRecordingResponse
	if err := s.search(ctx, "recording", luceneQuery, 3, &resp); err != nil {
		s.logger.Debug("recording lookup degraded", "track", track, "artist", artist, "error", err)
		return track, artist
	}
	if len(resp.Recordings) == 0 {
		return track, artist
	}

	best := resp.Recordings[0]

	resolvedTrack := track
	if best.Title != "" {
		resolvedTrack = query.NormalizeSpace(best.Title)
	}

	resolvedArtist := artist
	if len(best.ArtistCredit) > 0 && best.ArtistCredit[0].Name != "" {
		resolvedArtist = query.NormalizeSpace(best.ArtistCredit[0].Name)
	}

	return resolvedTrack, resolvedArtist
}

// ResolveArtist canonicalizes an artist name through an artist search,
// limit 3, top result wins. Returns false when nothing matched or the
// lookup failed.
func (s *MusicBrainzService) ResolveArtist(ctx context.Context, artist string) (string, bool) {
	luceneQuery := fmt.Sprintf(`artist:"%s"`, artist)

	var resp mbArtistResponse
	if err := s.search(ctx, "artist", luceneQuery, 3, &resp); err != nil {
		s.logger.Debug("artist lookup degraded", "artist", artist, "error", err)
		return "", false
	}
	if len(resp.Artists) == 0 || resp.Artists[0].Name == "" {
		return "", false
	}

	return query.NormalizeSpace(resp.Artists[0].Name), true
}
