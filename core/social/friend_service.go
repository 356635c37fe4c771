package social

import (
	"context"
	"fmt"

	"resonate/apperror"
	"resonate/model"
	"resonate/repository"
)

// FriendService manages friend requests and friendships. Requests are
// directed, friendships are undirected and stored once per pair.
type FriendService struct {
	friendRepo    repository.FriendRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, notifications *NotificationService) *FriendService {
	return &FriendService{
		friendRepo:    friendRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// SendRequest creates a pending request from actor to toUserID. Rejected
// when the target is the actor, a pending request already exists in
// either direction, or the pair is already friends.
func (s *FriendService) SendRequest(ctx context.Context, actor model.Actor, toUserID int64) (*model.FriendRequest, error) {
	if toUserID == actor.ID {
		return nil, apperror.ErrSelfRequest
	}

	target, err := s.userRepo.GetUserByID(ctx, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target user: %w", err)
	}
	if target == nil {
		return nil, apperror.ErrNotFound
	}

	pending, err := s.friendRepo.HasPendingBetween(ctx, actor.ID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, apperror.ErrRequestPending
	}

	friends, err := s.friendRepo.HasFriendshipBetween(ctx, actor.ID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if friends {
		return nil, apperror.ErrAlreadyFriends
	}

	request := &model.FriendRequest{
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
		ToUserID:     target.ID,
		ToUsername:   target.Username,
		Status:       model.FriendRequestPending,
	}
	id, err := s.friendRepo.CreateRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	request.ID = id

	NotifyBestEffort(ctx, s.notifications, &model.Notification{
		UserID:       target.ID,
		Type:         model.NotificationFriendRequest,
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
	})

	return request, nil
}

// AcceptRequest accepts a pending request addressed to the actor and
// creates the friendship. Only the addressee may accept, and only while
// the request is still pending.
func (s *FriendService) AcceptRequest(ctx context.Context, actor model.Actor, requestID int64) (*model.Friendship, error) {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend request: %w", err)
	}
	if request == nil {
		return nil, apperror.ErrNotFound
	}
	if request.ToUserID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	if request.Status != model.FriendRequestPending {
		return nil, apperror.ErrRequestClosed
	}

	friendship := &model.Friendship{
		User1ID:       request.FromUserID,
		User1Username: request.FromUsername,
		User2ID:       request.ToUserID,
		User2Username: request.ToUsername,
	}
	if err := s.friendRepo.AcceptRequest(ctx, requestID, friendship); err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}

	NotifyBestEffort(ctx, s.notifications, &model.Notification{
		UserID:       request.FromUserID,
		Type:         model.NotificationFriendRequestAccepted,
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
	})

	return friendship, nil
}

// DeclineRequest marks a pending request addressed to the actor as
// declined. Declined requests stay in the log; the pair may try again.
func (s *FriendService) DeclineRequest(ctx context.Context, actor model.Actor, requestID int64) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load friend request: %w", err)
	}
	if request == nil {
		return apperror.ErrNotFound
	}
	if request.ToUserID != actor.ID {
		return apperror.ErrForbidden
	}
	if request.Status != model.FriendRequestPending {
		return apperror.ErrRequestClosed
	}

	if err := s.friendRepo.UpdateRequestStatus(ctx, requestID, model.FriendRequestDeclined); err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// PendingRequests returns the pending requests addressed to the actor.
func (s *FriendService) PendingRequests(ctx context.Context, userID int64) ([]*model.FriendRequest, error) {
	return s.friendRepo.GetPendingRequestsFor(ctx, userID)
}

// Friends returns the actor's friendships projected to the other party.
func (s *FriendService) Friends(ctx context.Context, userID int64) ([]model.Friend, error) {
	friendships, err := s.friendRepo.GetFriendshipsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friendships: %w", err)
	}
	friends := make([]model.Friend, 0, len(friendships))
	for _, f := range friendships {
		friends = append(friends, f.OtherParty(userID))
	}
	return friends, nil
}
