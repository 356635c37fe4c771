package social

import (
	"context"
	"fmt"
	"strings"

	"resonate/apperror"
	"resonate/model"
	"resonate/repository"
)

// MessageService is the point-to-point messaging layer. The message log
// is append-only; conversation views are derived from it at read time.
type MessageService struct {
	messageRepo   repository.MessageRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, notifications *NotificationService) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// Send appends a message from actor to toUserID. Content is trimmed and
// must be non-empty. Sending to yourself is rejected.
func (s *MessageService) Send(ctx context.Context, actor model.Actor, toUserID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ErrInvalidInput
	}
	if toUserID == actor.ID {
		return nil, apperror.ErrInvalidInput
	}

	recipient, err := s.userRepo.GetUserByID(ctx, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}
	if recipient == nil {
		return nil, apperror.ErrNotFound
	}

	msg := &model.Message{
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
		ToUserID:     recipient.ID,
		ToUsername:   recipient.Username,
		Content:      content,
	}
	if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	NotifyBestEffort(ctx, s.notifications, &model.Notification{
		UserID:       recipient.ID,
		Type:         model.NotificationMessage,
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
	})

	return msg, nil
}

// Conversation returns the full message history between the actor and
// otherUserID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, actor model.Actor, otherUserID int64) ([]*model.Message, error) {
	return s.messageRepo.GetConversation(ctx, actor.ID, otherUserID)
}

// Conversations folds the actor's message log into one summary per
// counterparty, keeping the newest message for each. A conversation is
// unread when its newest inbound message has not been read.
func (s *MessageService) Conversations(ctx context.Context, userID int64) ([]model.ConversationSummary, error) {
	messages, err := s.messageRepo.GetMessagesInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	// Messages arrive newest first, so the first sighting of each
	// counterparty is that conversation's latest message.
	seen := make(map[int64]bool)
	summaries := make([]model.ConversationSummary, 0)
	for _, msg := range messages {
		otherID := msg.FromUserID
		otherName := msg.FromUsername
		if msg.FromUserID == userID {
			otherID = msg.ToUserID
			otherName = msg.ToUsername
		}
		if seen[otherID] {
			continue
		}
		seen[otherID] = true
		summaries = append(summaries, model.ConversationSummary{
			UserID:          otherID,
			Username:        otherName,
			LastMessage:     msg.Content,
			LastMessageTime: msg.CreatedAt,
			Unread:          msg.ToUserID == userID && !msg.Read,
		})
	}
	return summaries, nil
}

// MarkConversationRead marks every message from otherUserID to the actor
// as read.
func (s *MessageService) MarkConversationRead(ctx context.Context, actor model.Actor, otherUserID int64) error {
	return s.messageRepo.MarkConversationRead(ctx, actor.ID, otherUserID)
}
