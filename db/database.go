package db

import (
	"database/sql"
	"fmt"

	"resonate/config"
	"resonate/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to the database")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
// Messages and notifications are migrated separately via GORM (see gorm.go).
func InitDB() error {
	statements := map[string]string{
		"users": `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			display_name VARCHAR(100),
			photo_url VARCHAR(767),
			bio TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`,
		"tracks": `
		CREATE TABLE IF NOT EXISTS tracks (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			username VARCHAR(100) NOT NULL,
			title VARCHAR(255) NOT NULL,
			artist VARCHAR(255) NOT NULL,
			genre VARCHAR(100),
			description TEXT,
			is_public TINYINT(1) NOT NULL DEFAULT 1,
			audio_url VARCHAR(767) NOT NULL,
			cover_url VARCHAR(767),
			share_slug VARCHAR(191) NOT NULL,
			plays BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			comments BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_tracks_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			CONSTRAINT uq_tracks_slug UNIQUE (share_slug),
			INDEX idx_tracks_public_created (is_public, created_at),
			INDEX idx_tracks_user (user_id)
		);`,
		"track_likes": `
		CREATE TABLE IF NOT EXISTS track_likes (
			track_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (track_id, user_id),
			CONSTRAINT fk_likes_track FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE
		);`,
		"comments": `
		CREATE TABLE IF NOT EXISTS comments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			track_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			username VARCHAR(100) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_activity TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_comments_track FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE,
			INDEX idx_comments_track_created (track_id, created_at),
			INDEX idx_comments_user_activity (user_id, last_activity)
		);`,
		"reposts": `
		CREATE TABLE IF NOT EXISTS reposts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			username VARCHAR(100) NOT NULL,
			track_id BIGINT NOT NULL,
			original_user_id BIGINT NOT NULL,
			original_username VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_reposts_track FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE,
			INDEX idx_reposts_user_created (user_id, created_at),
			INDEX idx_reposts_user_track (user_id, track_id)
		);`,
		"friend_requests": `
		CREATE TABLE IF NOT EXISTS friend_requests (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			from_user_id BIGINT NOT NULL,
			from_username VARCHAR(100) NOT NULL,
			to_user_id BIGINT NOT NULL,
			to_username VARCHAR(100) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_requests_to_status (to_user_id, status),
			INDEX idx_requests_pair (from_user_id, to_user_id)
		);`,
		"friendships": `
		CREATE TABLE IF NOT EXISTS friendships (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user1_id BIGINT NOT NULL,
			user1_username VARCHAR(100) NOT NULL,
			user2_id BIGINT NOT NULL,
			user2_username VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_friendships_user1 (user1_id),
			INDEX idx_friendships_user2 (user2_id)
		);`,
	}

	// Creation order matters for foreign keys.
	for _, name := range []string{"users", "tracks", "track_likes", "comments", "reposts", "friend_requests", "friendships"} {
		if _, err := DB.Exec(statements[name]); err != nil {
			return fmt.Errorf("failed to create %s table: %w", name, err)
		}
	}

	logger.Info("Database schema initialized")
	return nil
}
