package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/shared"
)

// FavoriteRepository persists saved recommendations keyed by their
// case-folded "track|artist" favorite key. Saving an already favorited
// track refreshes its stored metadata instead of failing.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new FavoriteRepository with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add stores a recommendation as a favorite. Upserts on the favorite key so
// re-favoriting after a fresh recommendation run picks up newer preview and
// artwork links.
func (r *FavoriteRepository) Add(rec models.TrackRecommendation) error {
	if rec.Track == "" || rec.Artist == "" {
		return fmt.Errorf("%w: favorite needs a track and artist", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO favorites (id, favorite_key, track, artist, tags, lastfm_url, preview_url, artwork_url, storefront_url, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(favorite_key) DO UPDATE SET
			tags = excluded.tags,
			lastfm_url = excluded.lastfm_url,
			preview_url = excluded.preview_url,
			artwork_url = excluded.artwork_url,
			storefront_url = excluded.storefront_url,
			reason = excluded.reason
	`

	_, err := r.db.Exec(query,
		shared.GenerateID(),
		rec.FavoriteKey(),
		rec.Track,
		rec.Artist,
		joinTags(rec.Tags),
		rec.LastFMURL,
		rec.PreviewURL,
		rec.ArtworkURL,
		rec.StorefrontURL,
		rec.Reason,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}

	return nil
}

// Remove deletes a favorite by key. Returns [shared.ErrNotFavorite] when
// nothing was stored under the key.
func (r *FavoriteRepository) Remove(key string) error {
	result, err := r.db.Exec(`DELETE FROM favorites WHERE favorite_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrNotFavorite
	}

	return nil
}

// List retrieves all favorites, most recently saved first.
func (r *FavoriteRepository) List() ([]models.TrackRecommendation, error) {
	query := `
		SELECT track, artist, tags, lastfm_url, preview_url, artwork_url, storefront_url, reason
		FROM favorites
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []models.TrackRecommendation
	for rows.Next() {
		var rec models.TrackRecommendation
		var tags string
		if err := rows.Scan(&rec.Track, &rec.Artist, &tags, &rec.LastFMURL, &rec.PreviewURL, &rec.ArtworkURL, &rec.StorefrontURL, &rec.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		rec.Tags = splitTags(tags)
		favorites = append(favorites, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return favorites, nil
}

// Snapshot loads the favorite keys plus the derived artist and tag sets
// into memory for synchronous scoring lookups.
func (r *FavoriteRepository) Snapshot() (*PreferenceSnapshot, error) {
	favorites, err := r.List()
	if err != nil {
		return nil, err
	}

	snap := &PreferenceSnapshot{
		favorites: make(map[string]struct{}, len(favorites)),
		artists:   make(map[string]struct{}),
		tags:      make(map[string]struct{}),
	}
	for _, rec := range favorites {
		snap.favorites[rec.FavoriteKey()] = struct{}{}
		snap.artists[strings.ToLower(strings.TrimSpace(rec.Artist))] = struct{}{}
		for _, tag := range rec.Tags {
			snap.tags[strings.ToLower(tag)] = struct{}{}
		}
	}

	return snap, nil
}

// PreferenceSnapshot is a point-in-time view of the favorites table. Sets
// are keyed by lowercased names.
type PreferenceSnapshot struct {
	favorites map[string]struct{}
	artists   map[string]struct{}
	tags      map[string]struct{}
}

// IsFavorite reports whether the favorite key was stored at snapshot time.
func (s *PreferenceSnapshot) IsFavorite(key string) bool {
	_, ok := s.favorites[key]
	return ok
}

// FavoriteArtists returns the set of lowercased favorited artist names.
func (s *PreferenceSnapshot) FavoriteArtists() map[string]struct{} { return s.artists }

// FavoriteTags returns the set of lowercased tags across all favorites.
func (s *PreferenceSnapshot) FavoriteTags() map[string]struct{} { return s.tags }

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
