package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tunesift/tunesift/internal/query"
	"github.com/tunesift/tunesift/internal/shared"
)

// historyCap bounds the search history table. Recording a new query prunes
// the oldest rows beyond the cap.
const historyCap = 50

// HistoryRepository keeps a bounded log of past search queries,
// deduplicated case-insensitively. Repeating a query moves it to the top
// and keeps the latest casing.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SearchEntry is one recorded query.
type SearchEntry struct {
	Query      string
	SearchedAt time.Time
}

// Record stores a query in the history. Empty input after whitespace
// normalization is silently dropped.
func (r *HistoryRepository) Record(text string) error {
	normalized := query.NormalizeSpace(text)
	if normalized == "" {
		return nil
	}

	insert := `
		INSERT INTO search_history (id, query, query_folded, searched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query_folded) DO UPDATE SET
			query = excluded.query,
			searched_at = excluded.searched_at
	`

	_, err := r.db.Exec(insert, shared.GenerateID(), normalized, strings.ToLower(normalized), time.Now())
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	prune := `
		DELETE FROM search_history
		WHERE id NOT IN (
			SELECT id FROM search_history
			ORDER BY searched_at DESC
			LIMIT ?
		)
	`

	if _, err := r.db.Exec(prune, historyCap); err != nil {
		return fmt.Errorf("failed to prune search history: %w", err)
	}

	return nil
}

// Recent retrieves up to limit entries, most recent first. A non-positive
// limit returns the whole (already bounded) history.
func (r *HistoryRepository) Recent(limit int) ([]SearchEntry, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}

	rows, err := r.db.Query(`
		SELECT query, searched_at FROM search_history
		ORDER BY searched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var entry SearchEntry
		if err := rows.Scan(&entry.Query, &entry.SearchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear removes the entire search history.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
