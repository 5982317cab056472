package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/repositories"
	"github.com/tunesift/tunesift/internal/services"
	"github.com/tunesift/tunesift/internal/shared"
	mocks "github.com/tunesift/tunesift/internal/testing"
)

func newTestAPI(t *testing.T, sim *mocks.MockSimilarity, withRepos bool) *API {
	t.Helper()

	logger := shared.NewLogger(nil)
	engine := recommend.NewEngine(sim, nil, nil, logger)

	if !withRepos {
		return NewAPI(engine, nil, nil, nil, logger)
	}

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewAPI(engine,
		repositories.NewFavoriteRepository(db),
		repositories.NewFeedbackRepository(db),
		repositories.NewHistoryRepository(db),
		logger,
	)
}

func serveRequest(api *API, target string) *httptest.ResponseRecorder {
	router := NewBasicRouter()
	router.Use(RequestIDMiddleware())
	router.Handler(api)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestAPI(t *testing.T) {
	match := 0.9
	sim := &mocks.MockSimilarity{
		SimilarTracksResult: []services.SimilarTrack{
			{Name: "No Surprises", Artist: "Radiohead", Match: &match},
		},
	}

	t.Run("health", func(t *testing.T) {
		recorder := serveRequest(newTestAPI(t, sim, false), "/api/health")

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
			t.Errorf("unexpected body %s", recorder.Body.String())
		}
		if recorder.Header().Get("X-Request-ID") == "" {
			t.Error("expected a request ID header")
		}
	})

	t.Run("recommend requires q", func(t *testing.T) {
		recorder := serveRequest(newTestAPI(t, sim, false), "/api/recommend")

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), "missing query parameter") {
			t.Errorf("unexpected body %s", recorder.Body.String())
		}
	})

	t.Run("recommend rejects bad limit", func(t *testing.T) {
		recorder := serveRequest(newTestAPI(t, sim, false), "/api/recommend?q=radiohead&limit=zero")

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("recommend returns ranked items", func(t *testing.T) {
		recorder := serveRequest(newTestAPI(t, sim, false), "/api/recommend?q=Karma+Police+-+Radiohead")

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var result models.RecommendResult
		if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result.Mode != models.ModeTrack {
			t.Errorf("expected track mode, got %q", result.Mode)
		}
		if len(result.Items) != 1 || result.Items[0].Track != "No Surprises" {
			t.Errorf("unexpected items %+v", result.Items)
		}
	})

	t.Run("recommend records history", func(t *testing.T) {
		api := newTestAPI(t, sim, true)

		recorder := serveRequest(api, "/api/recommend?q=Karma+Police+-+Radiohead")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		entries, err := api.history.Recent(0)
		if err != nil {
			t.Fatalf("failed to read history: %v", err)
		}
		if len(entries) != 1 || entries[0].Query != "Karma Police - Radiohead" {
			t.Errorf("unexpected history %+v", entries)
		}
	})

	t.Run("recommend applies stored preferences", func(t *testing.T) {
		lowMatch, highMatch := 0.2, 0.9
		twoTracks := &mocks.MockSimilarity{
			SimilarTracksResult: []services.SimilarTrack{
				{Name: "High", Artist: "A", Match: &highMatch},
				{Name: "Low", Artist: "B", Match: &lowMatch},
			},
		}
		api := newTestAPI(t, twoTracks, true)

		if err := api.favorites.Add(models.TrackRecommendation{Track: "Low", Artist: "B"}); err != nil {
			t.Fatalf("failed to seed favorite: %v", err)
		}

		recorder := serveRequest(api, "/api/recommend?q=Song+-+Artist")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		var result models.RecommendResult
		if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(result.Items) != 2 || result.Items[0].Track != "Low" {
			t.Errorf("expected favorited track first, got %+v", result.Items)
		}
		if result.Items[0].Rank != 1 || result.Items[1].Rank != 2 {
			t.Errorf("expected dense ranks, got %d/%d", result.Items[0].Rank, result.Items[1].Rank)
		}
	})

	t.Run("provider failure maps to bad gateway", func(t *testing.T) {
		broken := &mocks.MockSimilarity{
			SimilarTracksErr:  shared.ErrProviderRequest,
			SimilarArtistsErr: shared.ErrProviderRequest,
		}
		recorder := serveRequest(newTestAPI(t, broken, false), "/api/recommend?q=Song+-+Artist")

		if recorder.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", recorder.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method dispatch with allow header", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("got"))
		}))

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/thing", nil))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
		if recorder.Header().Get("Allow") != http.MethodGet {
			t.Errorf("expected Allow header GET, got %q", recorder.Header().Get("Allow"))
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		router := NewBasicRouter()
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/thing", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}
