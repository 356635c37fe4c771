package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resonate/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetTrackBySlug(ctx context.Context, slug string) (*model.Track, error)
	GetPublicTracks(ctx context.Context, limit int) ([]*model.Track, error)
	GetPublicTracksByTitle(ctx context.Context) ([]*model.Track, error)
	GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error)
	ToggleLike(ctx context.Context, trackID, userID int64) (bool, error)
	IncrementPlays(ctx context.Context, trackID int64) error
	UpdateTrack(ctx context.Context, id int64, update model.TrackUpdate) error
	DeleteTrack(ctx context.Context, id int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = `id, user_id, username, title, artist,
	COALESCE(genre, ''), COALESCE(description, ''), is_public, audio_url,
	COALESCE(cover_url, ''), share_slug, plays, likes, comments, created_at, updated_at`

func scanTrack(row interface{ Scan(...any) error }) (*model.Track, error) {
	track := &model.Track{}
	err := row.Scan(&track.ID, &track.UserID, &track.Username, &track.Title, &track.Artist,
		&track.Genre, &track.Description, &track.IsPublic, &track.AudioURL,
		&track.CoverURL, &track.ShareSlug, &track.Plays, &track.Likes, &track.Comments,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (user_id, username, title, artist, genre, description, is_public,
	           audio_url, cover_url, share_slug, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, track.UserID, track.Username, track.Title, track.Artist,
		track.Genre, track.Description, track.IsPublic, track.AudioURL, track.CoverURL, track.ShareSlug, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID, including the liked-by set.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}

	if err := r.loadLikedBy(ctx, []*model.Track{track}); err != nil {
		return nil, err
	}
	return track, nil
}

// GetTrackBySlug retrieves a track by its shareable slug.
func (r *mysqlTrackRepository) GetTrackBySlug(ctx context.Context, slug string) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE share_slug = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by slug %s: %w", slug, err)
	}

	if err := r.loadLikedBy(ctx, []*model.Track{track}); err != nil {
		return nil, err
	}
	return track, nil
}

// GetPublicTracks retrieves public tracks ordered by recency, bounded.
func (r *mysqlTrackRepository) GetPublicTracks(ctx context.Context, limit int) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE is_public = 1 ORDER BY created_at DESC LIMIT ?`
	return r.queryTracks(ctx, query, limit)
}

// GetPublicTracksByTitle retrieves all public tracks ordered by title.
// Substring search filtering is applied by the service, not in SQL.
func (r *mysqlTrackRepository) GetPublicTracksByTitle(ctx context.Context) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE is_public = 1 ORDER BY title`
	return r.queryTracks(ctx, query)
}

// GetTracksByUserID retrieves a user's tracks ordered by recency.
func (r *mysqlTrackRepository) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE user_id = ? ORDER BY created_at DESC`
	return r.queryTracks(ctx, query, userID)
}

func (r *mysqlTrackRepository) queryTracks(ctx context.Context, query string, args ...any) ([]*model.Track, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during track rows iteration: %w", err)
	}

	if err := r.loadLikedBy(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// loadLikedBy fills the LikedBy sets for the given tracks in one query.
func (r *mysqlTrackRepository) loadLikedBy(ctx context.Context, tracks []*model.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Track, len(tracks))
	placeholders := make([]string, 0, len(tracks))
	args := make([]any, 0, len(tracks))
	for _, t := range tracks {
		t.LikedBy = []int64{}
		byID[t.ID] = t
		placeholders = append(placeholders, "?")
		args = append(args, t.ID)
	}

	query := `SELECT track_id, user_id FROM track_likes WHERE track_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query track likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trackID, userID int64
		if err := rows.Scan(&trackID, &userID); err != nil {
			return fmt.Errorf("failed to scan track like row: %w", err)
		}
		if t, ok := byID[trackID]; ok {
			t.LikedBy = append(t.LikedBy, userID)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error during like rows iteration: %w", err)
	}
	return nil
}

// ToggleLike flips userID's like on trackID inside one transaction, keeping
// the likes counter equal to the liked-by row count. Returns the new state.
func (r *mysqlTrackRepository) ToggleLike(ctx context.Context, trackID, userID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin ToggleLike transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM track_likes WHERE track_id = ? AND user_id = ?`, trackID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like for track %d: %w", trackID, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read ToggleLike rows affected: %w", err)
	}

	var liked bool
	if removed > 0 {
		// Was liked: membership removed, decrement the counter.
		if _, err := tx.ExecContext(ctx, `UPDATE tracks SET likes = likes - 1 WHERE id = ? AND likes > 0`, trackID); err != nil {
			return false, fmt.Errorf("failed to decrement likes for track %d: %w", trackID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT INTO track_likes (track_id, user_id) VALUES (?, ?)`, trackID, userID); err != nil {
			return false, fmt.Errorf("failed to insert like for track %d: %w", trackID, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tracks SET likes = likes + 1 WHERE id = ?`, trackID); err != nil {
			return false, fmt.Errorf("failed to increment likes for track %d: %w", trackID, err)
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit ToggleLike transaction: %w", err)
	}
	return liked, nil
}

// IncrementPlays bumps the play counter in a single statement.
func (r *mysqlTrackRepository) IncrementPlays(ctx context.Context, trackID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE tracks SET plays = plays + 1 WHERE id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to increment plays for track %d: %w", trackID, err)
	}
	return nil
}

// UpdateTrack applies the non-nil fields of update.
func (r *mysqlTrackRepository) UpdateTrack(ctx context.Context, id int64, update model.TrackUpdate) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Artist != nil {
		sets = append(sets, "artist = ?")
		args = append(args, *update.Artist)
	}
	if update.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *update.Genre)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *update.IsPublic)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := `UPDATE tracks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute UpdateTrack for track ID %d: %w", id, err)
	}
	return nil
}

// DeleteTrack removes the track row; likes, comments and reposts cascade.
func (r *mysqlTrackRepository) DeleteTrack(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for track ID %d: %w", id, err)
	}
	return nil
}
