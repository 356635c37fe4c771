package model

import "time"

// Track represents an uploaded audio track and its social counters.
type Track struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"` // Denormalized at upload time
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Genre       string    `json:"genre,omitempty"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	AudioURL    string    `json:"audioUrl"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	ShareSlug   string    `json:"shareSlug"` // Human-shareable unique id, e.g. "alice-1718000000000"
	Plays       int64     `json:"plays"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	LikedBy     []int64   `json:"likedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LikedByUser reports whether userID is in the track's liked-by set.
func (t *Track) LikedByUser(userID int64) bool {
	for _, id := range t.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// TrackUpdate carries the editable track fields. Nil means "leave unchanged".
type TrackUpdate struct {
	Title       *string `json:"title,omitempty"`
	Artist      *string `json:"artist,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}
