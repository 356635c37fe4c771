package music

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resonate/apperror"
	"resonate/cache"
	"resonate/core/social"
	"resonate/logger"
	"resonate/model"
	"resonate/repository"
	"resonate/storage"
)

// UploadInput carries the metadata and file streams for a track upload.
// Cover is optional; CoverSize must be set when Cover is non-nil.
type UploadInput struct {
	Title       string
	Artist      string
	Genre       string
	Description string
	IsPublic    bool

	Audio            io.Reader
	AudioSize        int64
	AudioFilename    string
	AudioContentType string

	Cover            io.Reader
	CoverSize        int64
	CoverFilename    string
	CoverContentType string
}

// TrackService owns the track lifecycle: upload, feeds, likes, plays,
// comments, edits and deletion.
type TrackService struct {
	trackRepo   repository.TrackRepository
	commentRepo repository.CommentRepository

	store         storage.ObjectStore
	feedCache     *cache.FeedCache
	notifications *social.NotificationService

	feedLimit         int
	commentRateLimit  int
	commentRateWindow time.Duration

	now func() time.Time
}

// NewTrackService wires the track service. feedCache and notifications
// may be nil; both degrade to no-ops.
func NewTrackService(
	trackRepo repository.TrackRepository,
	commentRepo repository.CommentRepository,
	store storage.ObjectStore,
	feedCache *cache.FeedCache,
	notifications *social.NotificationService,
	feedLimit int,
	commentRateLimit int,
	commentRateWindow time.Duration,
) *TrackService {
	return &TrackService{
		trackRepo:         trackRepo,
		commentRepo:       commentRepo,
		store:             store,
		feedCache:         feedCache,
		notifications:     notifications,
		feedLimit:         feedLimit,
		commentRateLimit:  commentRateLimit,
		commentRateWindow: commentRateWindow,
		now:               time.Now,
	}
}

// Upload stores the audio (and optional cover) in the object store and
// creates the track row. The share slug is username-unixmillis, which is
// unique per user per millisecond.
func (s *TrackService) Upload(ctx context.Context, actor model.Actor, input UploadInput) (*model.Track, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.Audio == nil {
		return nil, apperror.ErrInvalidInput
	}
	if input.Artist == "" {
		input.Artist = actor.Username
	}

	audioKey := storage.ObjectKey("tracks", actor.ID, input.AudioFilename)
	audioURL, err := s.store.Upload(ctx, audioKey, input.Audio, input.AudioSize, input.AudioContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	var coverURL string
	if input.Cover != nil {
		coverKey := storage.ObjectKey("covers", actor.ID, input.CoverFilename)
		coverURL, err = s.store.Upload(ctx, coverKey, input.Cover, input.CoverSize, input.CoverContentType)
		if err != nil {
			// Audio already landed; drop it so a failed upload leaves
			// no orphaned objects behind.
			s.deleteObjectBestEffort(ctx, audioURL)
			return nil, fmt.Errorf("failed to store cover: %w", err)
		}
	}

	track := &model.Track{
		UserID:      actor.ID,
		Username:    actor.Username,
		Title:       input.Title,
		Artist:      input.Artist,
		Genre:       input.Genre,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		AudioURL:    audioURL,
		CoverURL:    coverURL,
		ShareSlug:   fmt.Sprintf("%s-%d", actor.Username, s.now().UnixMilli()),
		LikedBy:     []int64{},
	}
	id, err := s.trackRepo.CreateTrack(ctx, track)
	if err != nil {
		s.deleteObjectBestEffort(ctx, audioURL)
		s.deleteObjectBestEffort(ctx, coverURL)
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	track.ID = id

	if track.IsPublic {
		s.invalidateFeed(ctx)
	}
	return track, nil
}

// PublicFeed returns the newest public tracks, served from the Redis
// cache when it is warm.
func (s *TrackService) PublicFeed(ctx context.Context) ([]*model.Track, error) {
	if tracks, ok := s.feedCache.GetPublicFeed(ctx); ok {
		return tracks, nil
	}

	tracks, err := s.trackRepo.GetPublicTracks(ctx, s.feedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load public feed: %w", err)
	}
	if err := s.feedCache.SetPublicFeed(ctx, tracks); err != nil {
		logger.Warn("failed to cache public feed", logger.ErrorField(err))
	}
	return tracks, nil
}

// TracksByUser returns all of a user's tracks, newest first. Callers are
// responsible for hiding private tracks from other viewers.
func (s *TrackService) TracksByUser(ctx context.Context, userID int64) ([]*model.Track, error) {
	return s.trackRepo.GetTracksByUserID(ctx, userID)
}

// ByID returns one track.
func (s *TrackService) ByID(ctx context.Context, id int64) (*model.Track, error) {
	track, err := s.trackRepo.GetTrackByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load track: %w", err)
	}
	if track == nil {
		return nil, apperror.ErrNotFound
	}
	return track, nil
}

// BySlug resolves a share slug to its track.
func (s *TrackService) BySlug(ctx context.Context, slug string) (*model.Track, error) {
	track, err := s.trackRepo.GetTrackBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load track by slug: %w", err)
	}
	if track == nil {
		return nil, apperror.ErrNotFound
	}
	return track, nil
}

// Search filters public tracks by a case-insensitive substring match on
// title, artist and uploader username.
func (s *TrackService) Search(ctx context.Context, query string) ([]*model.Track, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*model.Track{}, nil
	}

	tracks, err := s.trackRepo.GetPublicTracksByTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}

	matches := make([]*model.Track, 0)
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Artist), query) ||
			strings.Contains(strings.ToLower(t.Username), query) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// ToggleLike flips the actor's like on a track and returns the new state.
// The likes counter and the liked-by set move together in one
// transaction. Liking someone else's track notifies the owner; unliking
// never does.
func (s *TrackService) ToggleLike(ctx context.Context, actor model.Actor, trackID int64) (bool, error) {
	track, err := s.ByID(ctx, trackID)
	if err != nil {
		return false, err
	}

	liked, err := s.trackRepo.ToggleLike(ctx, trackID, actor.ID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	if liked && track.UserID != actor.ID {
		s.notifyTrack(ctx, track, actor, model.NotificationTrackLike)
	}
	return liked, nil
}

// IncrementPlays bumps the play counter. Unauthenticated listeners count.
// Best-effort: a failed increment is logged and never interrupts playback.
func (s *TrackService) IncrementPlays(ctx context.Context, trackID int64) {
	if err := s.trackRepo.IncrementPlays(ctx, trackID); err != nil {
		logger.Warn("play counter increment failed",
			logger.Int64("trackID", trackID),
			logger.ErrorField(err))
	}
}

// AddComment appends a comment to a track. Each user may post at most
// commentRateLimit comments inside any rolling commentRateWindow,
// counted across all tracks.
func (s *TrackService) AddComment(ctx context.Context, actor model.Actor, trackID int64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ErrInvalidInput
	}

	track, err := s.ByID(ctx, trackID)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-s.commentRateWindow)
	recent, err := s.commentRepo.CountRecentByUser(ctx, actor.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to check comment rate: %w", err)
	}
	if recent >= s.commentRateLimit {
		return nil, apperror.ErrRateLimited
	}

	comment := &model.Comment{
		TrackID:  trackID,
		UserID:   actor.ID,
		Username: actor.Username,
		Content:  content,
	}
	id, err := s.commentRepo.CreateComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id

	if track.UserID != actor.ID {
		s.notifyTrack(ctx, track, actor, model.NotificationTrackComment)
	}
	return comment, nil
}

// Comments returns a track's comments, newest first.
func (s *TrackService) Comments(ctx context.Context, trackID int64) ([]*model.Comment, error) {
	return s.commentRepo.GetCommentsByTrack(ctx, trackID)
}

// Update edits track metadata. Only the owner may edit.
func (s *TrackService) Update(ctx context.Context, actor model.Actor, trackID int64, update model.TrackUpdate) (*model.Track, error) {
	track, err := s.ByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track.UserID != actor.ID {
		return nil, apperror.ErrForbidden
	}

	if err := s.trackRepo.UpdateTrack(ctx, trackID, update); err != nil {
		return nil, fmt.Errorf("failed to update track: %w", err)
	}
	s.invalidateFeed(ctx)
	return s.ByID(ctx, trackID)
}

// Delete removes a track, its stored audio and cover objects, and its
// dependent rows. Only the owner may delete.
func (s *TrackService) Delete(ctx context.Context, actor model.Actor, trackID int64) error {
	track, err := s.ByID(ctx, trackID)
	if err != nil {
		return err
	}
	if track.UserID != actor.ID {
		return apperror.ErrForbidden
	}

	if err := s.trackRepo.DeleteTrack(ctx, trackID); err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	// The row is gone; object cleanup failures only leak storage.
	s.deleteObjectBestEffort(ctx, track.AudioURL)
	s.deleteObjectBestEffort(ctx, track.CoverURL)
	s.invalidateFeed(ctx)
	return nil
}

func (s *TrackService) notifyTrack(ctx context.Context, track *model.Track, actor model.Actor, typ model.NotificationType) {
	trackID := track.ID
	social.NotifyBestEffort(ctx, s.notifications, &model.Notification{
		UserID:       track.UserID,
		Type:         typ,
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
		TrackID:      &trackID,
		TrackTitle:   track.Title,
	})
}

func (s *TrackService) deleteObjectBestEffort(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.DeleteByURL(ctx, url); err != nil {
		logger.Warn("failed to delete stored object", logger.String("url", url), logger.ErrorField(err))
	}
}

func (s *TrackService) invalidateFeed(ctx context.Context) {
	if err := s.feedCache.InvalidatePublicFeed(ctx); err != nil {
		logger.Warn("failed to invalidate feed cache", logger.ErrorField(err))
	}
}
