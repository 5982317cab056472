package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/query"
	"github.com/tunesift/tunesift/internal/services"
	"github.com/tunesift/tunesift/internal/shared"
)

const (
	// DefaultLimit is the item cap used when a caller passes a
	// non-positive limit.
	DefaultLimit = 20

	similarArtistLimit = 10
	topTracksPerArtist = 3
	tagFetchLimit      = 5
	reasonTagLimit     = 3
	annotateWorkers    = 4
)

// Engine orchestrates the catalog providers into a ranked RecommendResult.
//
// The resolver and enricher are optional: a nil resolver keeps raw input
// names, a nil enricher leaves preview/artwork fields absent.
type Engine struct {
	similarity services.SimilarityProvider
	resolver   services.IdentityResolver
	enricher   services.Enricher
	logger     *log.Logger
}

// NewEngine creates an Engine with the provided providers.
func NewEngine(similarity services.SimilarityProvider, resolver services.IdentityResolver, enricher services.Enricher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		similarity: similarity,
		resolver:   resolver,
		enricher:   enricher,
		logger:     shared.WithLogger(logger, "component", "engine"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls a request.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Recommend runs one recommendation request to completion.
//
// The returned result is never mutated afterwards; re-ranking operations
// (see [Scorer]) work on copies. The returned error is reserved for total
// inability to compute any candidate list; every partial provider failure
// degrades the field it was fetching instead.
func (e *Engine) Recommend(ctx context.Context, progress chan<- ProgressUpdate, text string, limit int) (*models.RecommendResult, error) {
	if e.similarity == nil {
		return nil, fmt.Errorf("%w: similarity provider", shared.ErrMissingConfig)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	raw := query.NormalizeSpace(text)
	if raw == "" {
		return &models.RecommendResult{
			Mode:     models.ModeNone,
			QueryRaw: raw,
			Message:  "Empty input. Type a track or artist to get recommendations.",
		}, nil
	}

	parsed := query.Parse(raw)

	var trackErr error
	if parsed.Track != "" && parsed.Artist != "" {
		e.sendProgress(progress, resolveUpdate(raw))
		resolvedTrack, resolvedArtist := e.resolveTrackArtist(ctx, parsed.Track, parsed.Artist)

		items, err := e.recommendByTrack(ctx, progress, resolvedTrack, resolvedArtist, limit)
		if err != nil {
			trackErr = err
			e.logger.Debug("track mode degraded", "track", resolvedTrack, "artist", resolvedArtist, "error", err)
		}
		if len(items) > 0 {
			return &models.RecommendResult{
				Mode:           models.ModeTrack,
				ResolvedTrack:  resolvedTrack,
				ResolvedArtist: resolvedArtist,
				QueryRaw:       raw,
				Items:          items,
				Message:        fmt.Sprintf("Recommendations based on '%s - %s'", resolvedTrack, resolvedArtist),
			}, nil
		}
	}

	fallbackArtist := parsed.Artist
	if fallbackArtist == "" {
		fallbackArtist = raw
	}
	e.sendProgress(progress, resolveUpdate(fallbackArtist))
	if e.resolver != nil {
		if resolved, ok := e.resolver.ResolveArtist(ctx, fallbackArtist); ok {
			fallbackArtist = resolved
		}
	}

	items, err := e.recommendByArtistFallback(ctx, progress, fallbackArtist, limit)
	if err != nil {
		if trackErr != nil {
			return nil, fmt.Errorf("failed to fetch candidates (track mode: %v): %w", trackErr, err)
		}
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	if len(items) == 0 {
		return &models.RecommendResult{
			Mode:           models.ModeArtistFallback,
			ResolvedArtist: fallbackArtist,
			QueryRaw:       raw,
			Items:          []models.TrackRecommendation{},
			Message:        "Could not build a recommendation. Try a more precise artist or track name.",
		}, nil
	}

	return &models.RecommendResult{
		Mode:           models.ModeArtistFallback,
		ResolvedArtist: fallbackArtist,
		QueryRaw:       raw,
		Items:          items,
		Message:        fmt.Sprintf("Recommendations based on artist '%s'", fallbackArtist),
	}, nil
}

func (e *Engine) resolveTrackArtist(ctx context.Context, track, artist string) (string, string) {
	if e.resolver == nil {
		return track, artist
	}
	return e.resolver.ResolveTrackArtist(ctx, track, artist)
}

// recommendByTrack builds candidates from tracks similar to (track, artist).
func (e *Engine) recommendByTrack(ctx context.Context, progress chan<- ProgressUpdate, track, artist string, limit int) ([]models.TrackRecommendation, error) {
	e.sendProgress(progress, similarTracksUpdate(track, artist))

	similar, err := e.similarity.SimilarTracks(ctx, track, artist, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.TrackRecommendation, 0, len(similar))
	for _, s := range similar {
		// Candidates without a track or artist name cannot be ranked,
		// deduplicated, or enriched.
		if s.Name == "" || s.Artist == "" {
			continue
		}
		items = append(items, models.TrackRecommendation{
			Track:      s.Name,
			Artist:     s.Artist,
			Similarity: s.Match,
			LastFMURL:  s.URL,
		})
		if len(items) >= limit {
			break
		}
	}
	models.Rerank(items)

	e.annotate(ctx, progress, items, func(ctx context.Context, it *models.TrackRecommendation) {
		tags := e.firstNonEmptyTags(ctx,
			func(ctx context.Context) ([]string, error) {
				return e.similarity.TrackTags(ctx, it.Track, it.Artist, tagFetchLimit)
			},
		)
		it.Tags = tags
		it.Reason = withTagSuffix("Similar track based on similarity", tags)
	})

	sortBase(items)
	e.sendProgress(progress, rankUpdate(len(items)))
	return items, nil
}

// recommendByArtistFallback builds candidates from the top tracks of
// artists similar to artist. Each top track inherits the match score of the
// similar artist that produced it; no track-level similarity exists on this
// path.
func (e *Engine) recommendByArtistFallback(ctx context.Context, progress chan<- ProgressUpdate, artist string, limit int) ([]models.TrackRecommendation, error) {
	e.sendProgress(progress, similarArtistsUpdate(artist))

	similar, err := e.similarity.SimilarArtists(ctx, artist, similarArtistLimit)
	if err != nil {
		return nil, err
	}

	items := make([]models.TrackRecommendation, 0, limit)
	sources := make([]string, 0, limit)

emit:
	for i, sa := range similar {
		if sa.Name == "" {
			continue
		}

		e.sendProgress(progress, topTracksUpdate(i+1, len(similar), sa.Name))
		topTracks, err := e.similarity.TopTracks(ctx, sa.Name, topTracksPerArtist)
		if err != nil {
			e.logger.Debug("top tracks degraded", "artist", sa.Name, "error", err)
			continue
		}

		for _, tt := range topTracks {
			if tt.Name == "" {
				continue
			}
			creditedArtist := tt.Artist
			if creditedArtist == "" {
				creditedArtist = sa.Name
			}
			items = append(items, models.TrackRecommendation{
				Track:      tt.Name,
				Artist:     creditedArtist,
				Similarity: sa.Match,
				LastFMURL:  tt.URL,
			})
			sources = append(sources, sa.Name)
			if len(items) >= limit {
				break emit
			}
		}
	}
	models.Rerank(items)

	e.annotate(ctx, progress, items, func(ctx context.Context, it *models.TrackRecommendation) {
		source := sources[it.Rank-1]
		tags := e.firstNonEmptyTags(ctx,
			func(ctx context.Context) ([]string, error) {
				return e.similarity.ArtistTags(ctx, source, tagFetchLimit)
			},
			func(ctx context.Context) ([]string, error) {
				return e.similarity.ArtistTags(ctx, artist, tagFetchLimit)
			},
			func(ctx context.Context) ([]string, error) {
				return e.similarity.TrackTags(ctx, it.Track, it.Artist, tagFetchLimit)
			},
		)
		it.Tags = tags
		it.Reason = withTagSuffix("Top track from similar artist: "+source, tags)
	})

	sortBase(items)
	e.sendProgress(progress, rankUpdate(len(items)))
	return items, nil
}

// annotate runs fn for every item on a small worker pool, then attaches
// enrichment. Each worker owns distinct indices, so items are written
// without further synchronization.
func (e *Engine) annotate(ctx context.Context, progress chan<- ProgressUpdate, items []models.TrackRecommendation, fn func(context.Context, *models.TrackRecommendation)) {
	if len(items) == 0 {
		return
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	var done sync.WaitGroup

	workers := annotateWorkers
	if workers > len(items) {
		workers = len(items)
	}

	for w := 0; w < workers; w++ {
		done.Add(1)
		go func() {
			defer done.Done()
			for i := range jobs {
				e.sendProgress(progress, tagsUpdate(i+1, len(items)))
				fn(ctx, &items[i])

				e.sendProgress(progress, enrichUpdate(i+1, len(items)))
				e.enrich(ctx, &items[i])
			}
		}()
	}
	done.Wait()
}

// enrich attaches preview/artwork/storefront links. Failure (including
// "no match") leaves the fields absent and never removes a candidate.
func (e *Engine) enrich(ctx context.Context, it *models.TrackRecommendation) {
	if e.enricher == nil {
		return
	}

	match, err := e.enricher.FindTrack(ctx, it.Track, it.Artist)
	if err != nil {
		e.logger.Debug("enrichment degraded", "track", it.Track, "artist", it.Artist, "error", err)
		return
	}
	if match == nil {
		return
	}

	it.PreviewURL = match.PreviewURL
	it.ArtworkURL = match.ArtworkURL
	it.StorefrontURL = match.StorefrontURL
}

// firstNonEmptyTags tries each attempt in order and returns the first
// non-empty tag list. Attempt failures are swallowed; exhausting the chain
// yields nil.
func (e *Engine) firstNonEmptyTags(ctx context.Context, attempts ...func(context.Context) ([]string, error)) []string {
	for _, attempt := range attempts {
		tags, err := attempt(ctx)
		if err != nil {
			e.logger.Debug("tag lookup degraded", "error", err)
			continue
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}

// withTagSuffix appends " | tags: a, b, c" using at most three tags.
func withTagSuffix(reason string, tags []string) string {
	if len(tags) == 0 {
		return reason
	}
	if len(tags) > reasonTagLimit {
		tags = tags[:reasonTagLimit]
	}
	return reason + " | tags: " + strings.Join(tags, ", ")
}

// sortBase applies the pipeline's deterministic order: items with a
// preview URL first, then similarity descending with absent values lowest.
// The sort is stable and ranks are reassigned afterwards.
func sortBase(items []models.TrackRecommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].HasPreview() != items[j].HasPreview() {
			return items[i].HasPreview()
		}
		return similarityValue(items[i]) > similarityValue(items[j])
	})
	models.Rerank(items)
}

func similarityValue(it models.TrackRecommendation) float64 {
	if it.Similarity == nil {
		return math.Inf(-1)
	}
	return *it.Similarity
}
