package model

import "time"

// NotificationType enumerates the events that fan out to users.
type NotificationType string

const (
	NotificationFriendRequest         NotificationType = "friendRequest"
	NotificationFriendRequestAccepted NotificationType = "friendRequestAccepted"
	NotificationMessage               NotificationType = "message"
	NotificationTrackLike             NotificationType = "trackLike"
	NotificationTrackComment          NotificationType = "trackComment"
)

// Notification is a side-effect record produced by social mutations.
// Creation is best-effort: the primary write never fails on its account.
type Notification struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64            `gorm:"not null;index:idx_notifications_user" json:"userId"`
	Type         NotificationType `gorm:"size:50;not null" json:"type"`
	FromUserID   int64            `gorm:"column:from_user_id;not null" json:"fromUserId"`
	FromUsername string           `gorm:"column:from_username;size:100;not null" json:"fromUsername"`
	TrackID      *int64           `gorm:"column:track_id" json:"trackId,omitempty"`
	TrackTitle   string           `gorm:"column:track_title;size:255" json:"trackTitle,omitempty"`
	Read         bool             `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
