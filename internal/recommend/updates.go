package recommend

import "fmt"

// ProgressUpdate represents a progress event during a recommendation request.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	Resolve Phase = iota
	FetchSimilarTracks
	FetchSimilarArtists
	FetchTopTracks
	FetchTags
	Enrich
	Rank
)

func (p Phase) String() string {
	switch p {
	case Resolve:
		return "resolve"
	case FetchSimilarTracks:
		return "fetch_similar_tracks"
	case FetchSimilarArtists:
		return "fetch_similar_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchTags:
		return "fetch_tags"
	case Enrich:
		return "enrich"
	case Rank:
		return "rank"
	default:
		return ""
	}
}

func resolveUpdate(text string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %q...", text),
	}
}

func similarTracksUpdate(track, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilarTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks similar to %s - %s...", track, artist),
	}
}

func similarArtistsUpdate(artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilarArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching artists similar to %s...", artist),
	}
}

func topTracksUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching top tracks for %s...", artist),
	}
}

func tagsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTags,
		Step:    step,
		Total:   total,
		Message: "Fetching tags...",
	}
}

func enrichUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    step,
		Total:   total,
		Message: "Looking up previews and artwork...",
	}
}

func rankUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Rank,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Ranking %d candidates...", count),
	}
}
