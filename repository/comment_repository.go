package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resonate/model"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) (int64, error)
	GetCommentsByTrack(ctx context.Context, trackID int64) ([]*model.Comment, error)
	CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int, error)
}

// mysqlCommentRepository implements CommentRepository for MySQL.
type mysqlCommentRepository struct {
	db *sql.DB
}

// NewMySQLCommentRepository creates a new mysqlCommentRepository.
func NewMySQLCommentRepository(db *sql.DB) CommentRepository {
	return &mysqlCommentRepository{db: db}
}

// CreateComment inserts the comment and bumps the track's comment counter
// in one transaction.
func (r *mysqlCommentRepository) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin CreateComment transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO comments (track_id, user_id, username, content, created_at, last_activity) VALUES (?, ?, ?, ?, ?, ?)`,
		comment.TrackID, comment.UserID, comment.Username, comment.Content, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateComment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE tracks SET comments = comments + 1 WHERE id = ?`, comment.TrackID); err != nil {
		return 0, fmt.Errorf("failed to increment comment counter for track %d: %w", comment.TrackID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit CreateComment transaction: %w", err)
	}

	comment.ID = id
	comment.CreatedAt = now
	comment.LastActivity = now
	return id, nil
}

// GetCommentsByTrack retrieves a track's comments, newest first.
func (r *mysqlCommentRepository) GetCommentsByTrack(ctx context.Context, trackID int64) ([]*model.Comment, error) {
	query := `SELECT id, track_id, user_id, username, content, created_at, last_activity
	           FROM comments WHERE track_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for track %d: %w", trackID, err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		c := &model.Comment{}
		if err := rows.Scan(&c.ID, &c.TrackID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt, &c.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during comment rows iteration: %w", err)
	}
	return comments, nil
}

// CountRecentByUser counts the user's comments with activity after since.
// Feeds the rolling-window rate limit check.
func (r *mysqlCommentRepository) CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE user_id = ? AND last_activity > ?`, userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent comments for user %d: %w", userID, err)
	}
	return count, nil
}
