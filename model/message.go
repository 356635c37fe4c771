package model

import "time"

// Message is one entry in the append-only point-to-point message log.
// Messages are never edited or deleted.
type Message struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID   int64     `gorm:"column:from_user_id;not null;index:idx_messages_from" json:"fromUserId"`
	FromUsername string    `gorm:"column:from_username;size:100;not null" json:"fromUsername"`
	ToUserID     int64     `gorm:"column:to_user_id;not null;index:idx_messages_to" json:"toUserId"`
	ToUsername   string    `gorm:"column:to_username;size:100;not null" json:"toUsername"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Read         bool      `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}

// ConversationSummary is one row of the conversations list: the newest
// message exchanged with a counterparty, folded per counterparty id.
type ConversationSummary struct {
	UserID          int64     `json:"userId"`
	Username        string    `json:"username"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	Unread          bool      `json:"unread"`
}
