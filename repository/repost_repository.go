package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resonate/model"
)

// RepostRepository defines the interface for repost data operations.
type RepostRepository interface {
	Exists(ctx context.Context, userID, trackID int64) (bool, error)
	CreateRepost(ctx context.Context, repost *model.Repost) (int64, error)
	DeleteByUserAndTrack(ctx context.Context, userID, trackID int64) error
	GetRepostsByUser(ctx context.Context, userID int64) ([]*model.Repost, error)
}

// mysqlRepostRepository implements RepostRepository for MySQL.
type mysqlRepostRepository struct {
	db *sql.DB
}

// NewMySQLRepostRepository creates a new mysqlRepostRepository.
func NewMySQLRepostRepository(db *sql.DB) RepostRepository {
	return &mysqlRepostRepository{db: db}
}

// Exists reports whether the user already reposted the track.
func (r *mysqlRepostRepository) Exists(ctx context.Context, userID, trackID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reposts WHERE user_id = ? AND track_id = ? LIMIT 1`, userID, trackID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check repost existence: %w", err)
	}
	return true, nil
}

// CreateRepost inserts a repost record.
func (r *mysqlRepostRepository) CreateRepost(ctx context.Context, repost *model.Repost) (int64, error) {
	query := `INSERT INTO reposts (user_id, username, track_id, original_user_id, original_username, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, repost.UserID, repost.Username, repost.TrackID,
		repost.OriginalUserID, repost.OriginalUsername, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateRepost: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateRepost: %w", err)
	}
	repost.ID = id
	repost.CreatedAt = now
	return id, nil
}

// DeleteByUserAndTrack removes all repost rows for the pair. Duplicates
// produced by the guard's race window are cleaned up together.
func (r *mysqlRepostRepository) DeleteByUserAndTrack(ctx context.Context, userID, trackID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM reposts WHERE user_id = ? AND track_id = ?`, userID, trackID); err != nil {
		return fmt.Errorf("failed to delete reposts for user %d track %d: %w", userID, trackID, err)
	}
	return nil
}

// GetRepostsByUser retrieves a user's reposts, newest first.
func (r *mysqlRepostRepository) GetRepostsByUser(ctx context.Context, userID int64) ([]*model.Repost, error) {
	query := `SELECT id, user_id, username, track_id, original_user_id, original_username, created_at
	           FROM reposts WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reposts for user %d: %w", userID, err)
	}
	defer rows.Close()

	reposts := make([]*model.Repost, 0)
	for rows.Next() {
		rp := &model.Repost{}
		if err := rows.Scan(&rp.ID, &rp.UserID, &rp.Username, &rp.TrackID,
			&rp.OriginalUserID, &rp.OriginalUsername, &rp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repost row: %w", err)
		}
		reposts = append(reposts, rp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during repost rows iteration: %w", err)
	}
	return reposts, nil
}
