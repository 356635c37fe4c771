package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resonate/model"
)

// FriendRepository defines the interface for friend request and
// friendship data operations.
type FriendRepository interface {
	HasPendingBetween(ctx context.Context, userA, userB int64) (bool, error)
	HasFriendshipBetween(ctx context.Context, userA, userB int64) (bool, error)
	CreateRequest(ctx context.Context, request *model.FriendRequest) (int64, error)
	GetRequestByID(ctx context.Context, id int64) (*model.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, id int64, status model.FriendRequestStatus) error
	AcceptRequest(ctx context.Context, requestID int64, friendship *model.Friendship) error
	GetPendingRequestsFor(ctx context.Context, userID int64) ([]*model.FriendRequest, error)
	GetFriendshipsOf(ctx context.Context, userID int64) ([]*model.Friendship, error)
}

// mysqlFriendRepository implements FriendRepository for MySQL.
type mysqlFriendRepository struct {
	db *sql.DB
}

// NewMySQLFriendRepository creates a new mysqlFriendRepository.
func NewMySQLFriendRepository(db *sql.DB) FriendRepository {
	return &mysqlFriendRepository{db: db}
}

// HasPendingBetween reports whether a pending request exists between the
// pair in either direction.
func (r *mysqlFriendRepository) HasPendingBetween(ctx context.Context, userA, userB int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM friend_requests
		  WHERE status = 'pending'
		    AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))
		  LIMIT 1`,
		userA, userB, userB, userA).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return true, nil
}

// HasFriendshipBetween reports whether the pair is already friends.
func (r *mysqlFriendRepository) HasFriendshipBetween(ctx context.Context, userA, userB int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM friendships
		  WHERE (user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)
		  LIMIT 1`,
		userA, userB, userB, userA).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check friendship existence: %w", err)
	}
	return true, nil
}

// CreateRequest inserts a pending friend request.
func (r *mysqlFriendRepository) CreateRequest(ctx context.Context, request *model.FriendRequest) (int64, error) {
	query := `INSERT INTO friend_requests (from_user_id, from_username, to_user_id, to_username, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, request.FromUserID, request.FromUsername,
		request.ToUserID, request.ToUsername, model.FriendRequestPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateRequest: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateRequest: %w", err)
	}
	request.ID = id
	request.Status = model.FriendRequestPending
	request.CreatedAt = now
	return id, nil
}

// GetRequestByID retrieves a friend request by id.
func (r *mysqlFriendRepository) GetRequestByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	query := `SELECT id, from_user_id, from_username, to_user_id, to_username, status, created_at
	           FROM friend_requests WHERE id = ?`
	req := &model.FriendRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.FromUserID, &req.FromUsername,
		&req.ToUserID, &req.ToUsername, &req.Status, &req.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Request not found
		}
		return nil, fmt.Errorf("failed to scan friend request by ID %d: %w", id, err)
	}
	return req, nil
}

// UpdateRequestStatus sets the request's status.
func (r *mysqlFriendRepository) UpdateRequestStatus(ctx context.Context, id int64, status model.FriendRequestStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to update status for friend request %d: %w", id, err)
	}
	return nil
}

// AcceptRequest marks the request accepted and materializes the friendship
// in one transaction.
func (r *mysqlFriendRepository) AcceptRequest(ctx context.Context, requestID int64, friendship *model.Friendship) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin AcceptRequest transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE friend_requests SET status = ? WHERE id = ?`, model.FriendRequestAccepted, requestID); err != nil {
		return fmt.Errorf("failed to mark friend request %d accepted: %w", requestID, err)
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO friendships (user1_id, user1_username, user2_id, user2_username, created_at) VALUES (?, ?, ?, ?, ?)`,
		friendship.User1ID, friendship.User1Username, friendship.User2ID, friendship.User2Username, now)
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID for friendship: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit AcceptRequest transaction: %w", err)
	}

	friendship.ID = id
	friendship.CreatedAt = now
	return nil
}

// GetPendingRequestsFor retrieves requests addressed to the user with
// status pending, newest first.
func (r *mysqlFriendRepository) GetPendingRequestsFor(ctx context.Context, userID int64) ([]*model.FriendRequest, error) {
	query := `SELECT id, from_user_id, from_username, to_user_id, to_username, status, created_at
	           FROM friend_requests WHERE to_user_id = ? AND status = 'pending' ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	requests := make([]*model.FriendRequest, 0)
	for rows.Next() {
		req := &model.FriendRequest{}
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.FromUsername,
			&req.ToUserID, &req.ToUsername, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during request rows iteration: %w", err)
	}
	return requests, nil
}

// GetFriendshipsOf retrieves friendships where the user is either side,
// newest first.
func (r *mysqlFriendRepository) GetFriendshipsOf(ctx context.Context, userID int64) ([]*model.Friendship, error) {
	query := `SELECT id, user1_id, user1_username, user2_id, user2_username, created_at
	           FROM friendships WHERE user1_id = ? OR user2_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships for user %d: %w", userID, err)
	}
	defer rows.Close()

	friendships := make([]*model.Friendship, 0)
	for rows.Next() {
		f := &model.Friendship{}
		if err := rows.Scan(&f.ID, &f.User1ID, &f.User1Username, &f.User2ID, &f.User2Username, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship row: %w", err)
		}
		friendships = append(friendships, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during friendship rows iteration: %w", err)
	}
	return friendships, nil
}
