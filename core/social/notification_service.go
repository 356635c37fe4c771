package social

import (
	"context"
	"encoding/json"
	"fmt"

	"resonate/logger"
	"resonate/model"
	"resonate/repository"

	"github.com/redis/go-redis/v9"
)

// NotificationService records side-effect notifications and fans them out
// over Redis pub/sub for pollers that want a cheap wake-up. Every caller
// treats notification failures as best-effort: they are logged upstream
// and never fail the primary write.
type NotificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

// NewNotificationService creates a notification service. redisClient may
// be nil, in which case the pub/sub fan-out is skipped.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) *NotificationService {
	return &NotificationService{repo: repo, redisClient: redisClient}
}

// notificationChannel is the per-user pub/sub channel name.
func notificationChannel(userID int64) string {
	return fmt.Sprintf("user:notifications:%d", userID)
}

// Notify persists the notification and publishes it to the owner's channel.
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(n); err == nil {
			s.redisClient.Publish(ctx, notificationChannel(n.UserID), payload)
		}
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64) ([]*model.Notification, error) {
	return s.repo.GetNotificationsByUser(ctx, userID)
}

// MarkRead acknowledges one of the user's own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead acknowledges all of the user's notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// NotifyBestEffort logs and swallows notification failures so the
// primary write they decorate is never rolled back on their account.
func NotifyBestEffort(ctx context.Context, svc *NotificationService, n *model.Notification) {
	if svc == nil {
		return
	}
	if err := svc.Notify(ctx, n); err != nil {
		logger.Warn("notification delivery failed",
			logger.String("type", string(n.Type)),
			logger.Int64("userID", n.UserID),
			logger.ErrorField(err))
	}
}
