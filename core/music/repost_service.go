package music

import (
	"context"
	"fmt"

	"resonate/apperror"
	"resonate/model"
	"resonate/repository"
)

// RepostService lets a user surface someone else's track on their own
// profile. A user reposts a given track at most once.
type RepostService struct {
	repostRepo repository.RepostRepository
	trackRepo  repository.TrackRepository
}

func NewRepostService(repostRepo repository.RepostRepository, trackRepo repository.TrackRepository) *RepostService {
	return &RepostService{repostRepo: repostRepo, trackRepo: trackRepo}
}

// Repost records the actor's repost of a track. Duplicate reposts are
// rejected; reposting your own track is allowed.
func (s *RepostService) Repost(ctx context.Context, actor model.Actor, trackID int64) (*model.Repost, error) {
	track, err := s.trackRepo.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to load track: %w", err)
	}
	if track == nil {
		return nil, apperror.ErrNotFound
	}

	exists, err := s.repostRepo.Exists(ctx, actor.ID, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing repost: %w", err)
	}
	if exists {
		return nil, apperror.ErrAlreadyReposted
	}

	repost := &model.Repost{
		UserID:           actor.ID,
		Username:         actor.Username,
		TrackID:          track.ID,
		OriginalUserID:   track.UserID,
		OriginalUsername: track.Username,
	}
	id, err := s.repostRepo.CreateRepost(ctx, repost)
	if err != nil {
		return nil, fmt.Errorf("failed to create repost: %w", err)
	}
	repost.ID = id
	return repost, nil
}

// RemoveRepost deletes the actor's repost of a track, if any.
func (s *RepostService) RemoveRepost(ctx context.Context, actor model.Actor, trackID int64) error {
	return s.repostRepo.DeleteByUserAndTrack(ctx, actor.ID, trackID)
}

// RepostsByUser returns a user's reposts, newest first.
func (s *RepostService) RepostsByUser(ctx context.Context, userID int64) ([]*model.Repost, error) {
	return s.repostRepo.GetRepostsByUser(ctx, userID)
}
