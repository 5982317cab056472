package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/tunesift/tunesift/internal/models"
)

var _ list.Item = resultItem{}

// resultItem wraps [models.TrackRecommendation] to implement [list.Item].
type resultItem struct {
	rec      models.TrackRecommendation
	favorite bool
}

func (i resultItem) FilterValue() string { return i.rec.Track + " " + i.rec.Artist }

func (i resultItem) Title() string {
	var markers []string
	if i.favorite {
		markers = append(markers, "★")
	}
	if i.rec.HasPreview() {
		markers = append(markers, "♪")
	}

	title := fmt.Sprintf("%d. %s - %s", i.rec.Rank, i.rec.Artist, i.rec.Track)
	if len(markers) > 0 {
		title = fmt.Sprintf("%s %s", title, strings.Join(markers, " "))
	}
	return title
}

func (i resultItem) Description() string {
	desc := i.rec.Reason
	if i.rec.Similarity != nil {
		desc = fmt.Sprintf("%.2f • %s", *i.rec.Similarity, desc)
	}
	return desc
}
