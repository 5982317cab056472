package ui

import (
	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
)

// searchDoneMsg carries a finished recommendation run into the model.
type searchDoneMsg struct {
	result *models.RecommendResult
	err    error
}

// progressMsg wraps one engine progress update.
type progressMsg recommend.ProgressUpdate

// rerankedMsg carries the re-scored item order after a preference change.
type rerankedMsg struct {
	items []models.TrackRecommendation
	err   error
}
