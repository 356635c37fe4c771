package model

import "time"

// Repost is a join record between a user and a track they reshared.
// At most one repost may exist per (UserID, TrackID) pair.
type Repost struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	Username         string    `json:"username"`
	TrackID          int64     `json:"trackId"`
	OriginalUserID   int64     `json:"originalUserId"`
	OriginalUsername string    `json:"originalUsername"`
	CreatedAt        time.Time `json:"createdAt"`
}
