package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tunesift/tunesift/internal/recommend"
)

// FeedbackRepository accumulates like/dislike counters per favorite key.
// Counters only grow; the most recent reaction is kept separately so the
// scorer can weight it on top of the running totals.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new FeedbackRepository with the given database connection
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Like records a positive reaction for the favorite key.
func (r *FeedbackRepository) Like(key string) error {
	return r.react(key, recommend.ActionLike)
}

// Dislike records a negative reaction for the favorite key.
func (r *FeedbackRepository) Dislike(key string) error {
	return r.react(key, recommend.ActionDislike)
}

func (r *FeedbackRepository) react(key, action string) error {
	likeDelta, dislikeDelta := 1, 0
	if action == recommend.ActionDislike {
		likeDelta, dislikeDelta = 0, 1
	}

	query := `
		INSERT INTO feedback (favorite_key, likes, dislikes, last_action, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(favorite_key) DO UPDATE SET
			likes = likes + ?,
			dislikes = dislikes + ?,
			last_action = excluded.last_action,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, key, likeDelta, dislikeDelta, action, time.Now(), likeDelta, dislikeDelta)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", action, err)
	}

	return nil
}

// Get retrieves the counters for a favorite key. A key without feedback
// yields zero counters and an empty last action.
func (r *FeedbackRepository) Get(key string) (likes, dislikes int, lastAction string, err error) {
	query := `SELECT likes, dislikes, last_action FROM feedback WHERE favorite_key = ?`

	err = r.db.QueryRow(query, key).Scan(&likes, &dislikes, &lastAction)
	if err == sql.ErrNoRows {
		return 0, 0, "", nil
	}
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to query feedback: %w", err)
	}

	return likes, dislikes, lastAction, nil
}

// Snapshot loads all feedback rows into memory for synchronous scoring
// lookups.
func (r *FeedbackRepository) Snapshot() (*FeedbackSnapshot, error) {
	rows, err := r.db.Query(`SELECT favorite_key, likes, dislikes, last_action FROM feedback`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	snap := &FeedbackSnapshot{entries: make(map[string]feedbackEntry)}
	for rows.Next() {
		var key string
		var entry feedbackEntry
		if err := rows.Scan(&key, &entry.likes, &entry.dislikes, &entry.lastAction); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		snap.entries[key] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snap, nil
}

type feedbackEntry struct {
	likes      int
	dislikes   int
	lastAction string
}

// FeedbackSnapshot is a point-in-time view of the feedback table.
type FeedbackSnapshot struct {
	entries map[string]feedbackEntry
}

// Feedback returns the counters recorded for the key at snapshot time.
func (s *FeedbackSnapshot) Feedback(key string) (likes, dislikes int, lastAction string) {
	entry := s.entries[key]
	return entry.likes, entry.dislikes, entry.lastAction
}
