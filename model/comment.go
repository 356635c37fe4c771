package model

import "time"

// Comment is a user comment on a track. Comments are append-only.
type Comment struct {
	ID           int64     `json:"id"`
	TrackID      int64     `json:"trackId"`
	UserID       int64     `json:"userId"`
	Username     string    `json:"username"` // Denormalized at comment time
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}
