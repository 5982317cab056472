package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/repositories"
	"github.com/tunesift/tunesift/internal/shared"
)

// API serves the JSON recommendation endpoints.
//
// The repositories are optional: without them results keep the engine's
// base order and no history is recorded.
type API struct {
	engine    *recommend.Engine
	favorites *repositories.FavoriteRepository
	feedback  *repositories.FeedbackRepository
	history   *repositories.HistoryRepository
	logger    *log.Logger
}

// NewAPI creates the API handler around a recommendation engine.
func NewAPI(engine *recommend.Engine, favorites *repositories.FavoriteRepository, feedback *repositories.FeedbackRepository, history *repositories.HistoryRepository, logger *log.Logger) *API {
	return &API{
		engine:    engine,
		favorites: favorites,
		feedback:  feedback,
		history:   history,
		logger:    logger,
	}
}

// Routes returns the path patterns this handler serves.
func (a *API) Routes() []string {
	return []string{"/api/recommend", "/api/health"}
}

// ServeHTTP dispatches to the endpoint handlers.
func (a *API) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/api/recommend":
		a.handleRecommend(w, req)
	case "/api/health":
		a.handleHealth(w, req)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (a *API) handleRecommend(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := req.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	result, err := a.engine.Recommend(req.Context(), nil, q, limit)
	if err != nil {
		a.logger.Error("recommendation failed", "query", q, "error", err)
		writeError(w, http.StatusBadGateway, "recommendation providers unavailable")
		return
	}

	if ranked, ok := a.personalize(result.Items); ok {
		result.Items = ranked
	}

	if a.history != nil {
		if err := a.history.Record(q); err != nil {
			a.logger.Warn("failed to record search", "query", q, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// personalize re-ranks items against the stored preferences. Snapshot
// failures keep the base order.
func (a *API) personalize(items []models.TrackRecommendation) ([]models.TrackRecommendation, bool) {
	if a.favorites == nil && a.feedback == nil {
		return nil, false
	}

	var prefs recommend.PreferenceSource
	if a.favorites != nil {
		snap, err := a.favorites.Snapshot()
		if err != nil {
			a.logger.Warn("failed to snapshot favorites", "error", err)
			return nil, false
		}
		prefs = snap
	}

	var feedback recommend.FeedbackSource
	if a.feedback != nil {
		snap, err := a.feedback.Snapshot()
		if err != nil {
			a.logger.Warn("failed to snapshot feedback", "error", err)
			return nil, false
		}
		feedback = snap
	}

	return recommend.NewScorer(prefs, feedback).Rank(items), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
