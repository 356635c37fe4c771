package repository

import (
	"context"

	"resonate/model"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for the point-to-point message log.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetConversation(ctx context.Context, userA, userB int64) ([]*model.Message, error)
	GetMessagesInvolving(ctx context.Context, userID int64) ([]*model.Message, error)
	MarkConversationRead(ctx context.Context, toUserID, fromUserID int64) error
}

// gormMessageRepository implements MessageRepository with GORM.
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a GORM message repository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// CreateMessage appends a message to the log.
func (r *gormMessageRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetConversation returns the full two-party transcript in chronological order.
func (r *gormMessageRepository) GetConversation(ctx context.Context, userA, userB int64) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// GetMessagesInvolving returns every message the user sent or received,
// newest first. The conversation fold happens in the service layer.
func (r *gormMessageRepository) GetMessagesInvolving(ctx context.Context, userID int64) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead flips the read flag on messages addressed to
// toUserID from fromUserID.
func (r *gormMessageRepository) MarkConversationRead(ctx context.Context, toUserID, fromUserID int64) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("to_user_id = ? AND from_user_id = ? AND is_read = ?", toUserID, fromUserID, false).
		Update("is_read", true).Error
}
