package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resonate/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByUsername(ctx context.Context, limit int) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id int64, displayName, bio string) error
	UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash,
	COALESCE(display_name, ''), COALESCE(photo_url, ''), COALESCE(bio, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.DisplayName, &user.PhotoURL, &user.Bio, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, display_name, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.DisplayName, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateUser: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUser: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by id.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user by ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *mysqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by username %s: %w", username, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by email: %w", err)
	}
	return user, nil
}

// ListUsersByUsername returns a bounded page of users ordered by username.
// Substring filtering happens in the service layer, not in SQL.
func (r *mysqlUserRepository) ListUsersByUsername(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user in ListUsersByUsername: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListUsersByUsername: %w", err)
	}
	return users, nil
}

// UpdateProfile updates the editable profile fields.
func (r *mysqlUserRepository) UpdateProfile(ctx context.Context, id int64, displayName, bio string) error {
	query := `UPDATE users SET display_name = ?, bio = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, displayName, bio, time.Now(), id); err != nil {
		return fmt.Errorf("failed to execute UpdateProfile for user ID %d: %w", id, err)
	}
	return nil
}

// UpdatePhotoURL sets the user's avatar URL.
func (r *mysqlUserRepository) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	query := `UPDATE users SET photo_url = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, photoURL, time.Now(), id); err != nil {
		return fmt.Errorf("failed to execute UpdatePhotoURL for user ID %d: %w", id, err)
	}
	return nil
}
