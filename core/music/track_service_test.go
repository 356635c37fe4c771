package music

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"resonate/apperror"
	"resonate/core/social"
	"resonate/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTrackRepo is an in-memory TrackRepository.
type fakeTrackRepo struct {
	nextID   int64
	tracks   map[int64]*model.Track
	likes    map[int64]map[int64]bool // trackID -> userID set
	playsErr error
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{
		nextID: 1,
		tracks: make(map[int64]*model.Track),
		likes:  make(map[int64]map[int64]bool),
	}
}

func (r *fakeTrackRepo) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	id := r.nextID
	r.nextID++
	clone := *track
	clone.ID = id
	clone.CreatedAt = time.Now()
	r.tracks[id] = &clone
	r.likes[id] = make(map[int64]bool)
	return id, nil
}

func (r *fakeTrackRepo) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	track, ok := r.tracks[id]
	if !ok {
		return nil, nil
	}
	clone := *track
	clone.LikedBy = r.likedBy(id)
	return &clone, nil
}

func (r *fakeTrackRepo) GetTrackBySlug(ctx context.Context, slug string) (*model.Track, error) {
	for id, t := range r.tracks {
		if t.ShareSlug == slug {
			return r.GetTrackByID(ctx, id)
		}
	}
	return nil, nil
}

func (r *fakeTrackRepo) GetPublicTracks(ctx context.Context, limit int) ([]*model.Track, error) {
	out := r.publicTracks()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTrackRepo) GetPublicTracksByTitle(ctx context.Context) ([]*model.Track, error) {
	return r.publicTracks(), nil
}

func (r *fakeTrackRepo) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	out := make([]*model.Track, 0)
	for id, t := range r.tracks {
		if t.UserID == userID {
			track, _ := r.GetTrackByID(ctx, id)
			out = append(out, track)
		}
	}
	return out, nil
}

func (r *fakeTrackRepo) ToggleLike(ctx context.Context, trackID, userID int64) (bool, error) {
	track, ok := r.tracks[trackID]
	if !ok {
		return false, errors.New("track not found")
	}
	set := r.likes[trackID]
	if set[userID] {
		delete(set, userID)
		track.Likes--
		return false, nil
	}
	set[userID] = true
	track.Likes++
	return true, nil
}

func (r *fakeTrackRepo) IncrementPlays(ctx context.Context, trackID int64) error {
	if r.playsErr != nil {
		return r.playsErr
	}
	track, ok := r.tracks[trackID]
	if !ok {
		return errors.New("track not found")
	}
	track.Plays++
	return nil
}

func (r *fakeTrackRepo) UpdateTrack(ctx context.Context, id int64, update model.TrackUpdate) error {
	track, ok := r.tracks[id]
	if !ok {
		return errors.New("track not found")
	}
	if update.Title != nil {
		track.Title = *update.Title
	}
	if update.Artist != nil {
		track.Artist = *update.Artist
	}
	if update.Genre != nil {
		track.Genre = *update.Genre
	}
	if update.Description != nil {
		track.Description = *update.Description
	}
	if update.IsPublic != nil {
		track.IsPublic = *update.IsPublic
	}
	return nil
}

func (r *fakeTrackRepo) DeleteTrack(ctx context.Context, id int64) error {
	delete(r.tracks, id)
	delete(r.likes, id)
	return nil
}

func (r *fakeTrackRepo) likedBy(trackID int64) []int64 {
	ids := make([]int64, 0)
	for userID := range r.likes[trackID] {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *fakeTrackRepo) publicTracks() []*model.Track {
	out := make([]*model.Track, 0)
	for id, t := range r.tracks {
		if t.IsPublic {
			track, _ := r.GetTrackByID(context.Background(), id)
			out = append(out, track)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// fakeCommentRepo is an in-memory CommentRepository. It stamps rows from the
// fixture clock so window queries line up with the service's view of time.
type fakeCommentRepo struct {
	nextID   int64
	clock    *time.Time
	comments []*model.Comment
}

func newFakeCommentRepo(clock *time.Time) *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1, clock: clock}
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	id := r.nextID
	r.nextID++
	clone := *comment
	clone.ID = id
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = *r.clock
	}
	r.comments = append(r.comments, &clone)
	return id, nil
}

func (r *fakeCommentRepo) GetCommentsByTrack(ctx context.Context, trackID int64) ([]*model.Comment, error) {
	out := make([]*model.Comment, 0)
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].TrackID == trackID {
			out = append(out, r.comments[i])
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int, error) {
	count := 0
	for _, c := range r.comments {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// fakeObjectStore records uploads and deletions.
type fakeObjectStore struct {
	objects map[string][]byte // url -> content
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "http://store.test/" + key
	s.objects[url] = data
	return url, nil
}

func (s *fakeObjectStore) DeleteByURL(ctx context.Context, url string) error {
	delete(s.objects, url)
	return nil
}

// fakeNotificationRepo collects notifications in memory.
type fakeNotificationRepo struct {
	nextID        int64
	notifications []*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	clone := *n
	r.notifications = append(r.notifications, &clone)
	return nil
}

func (r *fakeNotificationRepo) GetNotificationsByUser(ctx context.Context, userID int64) ([]*model.Notification, error) {
	out := make([]*model.Notification, 0)
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type trackServiceFixture struct {
	svc           *TrackService
	trackRepo     *fakeTrackRepo
	commentRepo   *fakeCommentRepo
	store         *fakeObjectStore
	notifications *fakeNotificationRepo
	clock         *time.Time
}

func newTrackServiceFixture(t *testing.T) *trackServiceFixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	trackRepo := newFakeTrackRepo()
	commentRepo := newFakeCommentRepo(clock)
	store := newFakeObjectStore()
	notifRepo := newFakeNotificationRepo()
	notifications := social.NewNotificationService(notifRepo, nil)

	svc := NewTrackService(trackRepo, commentRepo, store, nil, notifications, 20, 5, time.Minute)
	svc.now = func() time.Time { return *clock }

	return &trackServiceFixture{
		svc:           svc,
		trackRepo:     trackRepo,
		commentRepo:   commentRepo,
		store:         store,
		notifications: notifRepo,
		clock:         clock,
	}
}

func (f *trackServiceFixture) upload(t *testing.T, actor model.Actor, title string, public bool) *model.Track {
	t.Helper()
	track, err := f.svc.Upload(context.Background(), actor, UploadInput{
		Title:         title,
		IsPublic:      public,
		Audio:         bytes.NewReader([]byte("audio-bytes")),
		AudioSize:     11,
		AudioFilename: "song.mp3",
	})
	require.NoError(t, err)
	return track
}

var (
	alice = model.Actor{ID: 1, Username: "alice"}
	bob   = model.Actor{ID: 2, Username: "bob"}
)

func TestUploadSetsSlugAndStoresAudio(t *testing.T) {
	f := newTrackServiceFixture(t)

	track := f.upload(t, alice, "First Song", true)

	assert.Equal(t, fmt.Sprintf("alice-%d", f.clock.UnixMilli()), track.ShareSlug)
	assert.Equal(t, "alice", track.Artist, "artist defaults to uploader")
	assert.NotEmpty(t, track.AudioURL)
	assert.Contains(t, f.store.objects, track.AudioURL)

	found, err := f.svc.BySlug(context.Background(), track.ShareSlug)
	require.NoError(t, err)
	assert.Equal(t, track.ID, found.ID)
}

func TestUploadRejectsEmptyTitle(t *testing.T) {
	f := newTrackServiceFixture(t)

	_, err := f.svc.Upload(context.Background(), alice, UploadInput{
		Title: "   ",
		Audio: bytes.NewReader([]byte("x")),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestToggleLikeSequence(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	liked, err := f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes)
	assert.True(t, got.LikedByUser(bob.ID))

	liked, err = f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Likes)
	assert.False(t, got.LikedByUser(bob.ID))

	liked, err = f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err = f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes)
}

func TestToggleLikeIsPerUser(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()
	carol := model.Actor{ID: 3, Username: "carol"}

	_, err := f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, carol, track.ID)
	require.NoError(t, err)

	got, err := f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Likes)
	assert.Len(t, got.LikedBy, 2)

	// Bob unliking leaves Carol's like intact.
	_, err = f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)

	got, err = f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes)
	assert.True(t, got.LikedByUser(carol.ID))
	assert.False(t, got.LikedByUser(bob.ID))
}

func TestLikeNotifiesOwnerOnlyOnLike(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	_, err := f.svc.ToggleLike(ctx, bob, track.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, bob, track.ID) // unlike
	require.NoError(t, err)

	require.Len(t, f.notifications.notifications, 1)
	n := f.notifications.notifications[0]
	assert.Equal(t, model.NotificationTrackLike, n.Type)
	assert.Equal(t, alice.ID, n.UserID)
	assert.Equal(t, bob.ID, n.FromUserID)
	assert.Equal(t, track.Title, n.TrackTitle)
}

func TestLikeOwnTrackDoesNotNotify(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)

	_, err := f.svc.ToggleLike(context.Background(), alice, track.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifications.notifications)
}

func TestCommentRateLimit(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.AddComment(ctx, bob, track.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
		*f.clock = f.clock.Add(time.Second)
	}

	// Sixth comment inside the rolling window is rejected.
	_, err := f.svc.AddComment(ctx, bob, track.ID, "one too many")
	assert.ErrorIs(t, err, apperror.ErrRateLimited)

	// Other users are unaffected.
	_, err = f.svc.AddComment(ctx, alice, track.ID, "hello")
	require.NoError(t, err)

	// Once the oldest comment ages out of the window, posting resumes.
	*f.clock = f.clock.Add(time.Minute)
	_, err = f.svc.AddComment(ctx, bob, track.ID, "back again")
	require.NoError(t, err)
}

func TestAddCommentUpdatesCountAndNotifies(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	comment, err := f.svc.AddComment(ctx, bob, track.ID, "  nice track  ")
	require.NoError(t, err)
	assert.Equal(t, "nice track", comment.Content, "content is trimmed")
	assert.Equal(t, "bob", comment.Username)

	require.Len(t, f.notifications.notifications, 1)
	assert.Equal(t, model.NotificationTrackComment, f.notifications.notifications[0].Type)

	_, err = f.svc.AddComment(ctx, bob, track.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestSearchMatchesSubstrings(t *testing.T) {
	f := newTrackServiceFixture(t)
	f.upload(t, alice, "Midnight Drive", true)
	f.upload(t, bob, "Sunrise", true)
	f.upload(t, alice, "Hidden Gem", false)
	ctx := context.Background()

	tracks, err := f.svc.Search(ctx, "NIGHT")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Midnight Drive", tracks[0].Title)

	// Username matches count too.
	tracks, err = f.svc.Search(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Sunrise", tracks[0].Title)

	// Private tracks never appear.
	tracks, err = f.svc.Search(ctx, "gem")
	require.NoError(t, err)
	assert.Empty(t, tracks)

	// Empty query matches nothing.
	tracks, err = f.svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	newTitle := "Renamed"
	_, err := f.svc.Update(ctx, bob, track.ID, model.TrackUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.svc.Update(ctx, alice, track.ID, model.TrackUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestDeleteRemovesTrackAndObjects(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	err := f.svc.Delete(ctx, bob, track.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, alice, track.ID))

	_, err = f.svc.ByID(ctx, track.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NotContains(t, f.store.objects, track.AudioURL)
}

func TestIncrementPlays(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.svc.IncrementPlays(ctx, track.ID)
	}

	got, err := f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Plays)
}

func TestIncrementPlaysSwallowsRepositoryErrors(t *testing.T) {
	f := newTrackServiceFixture(t)
	track := f.upload(t, alice, "Song", true)
	ctx := context.Background()

	f.trackRepo.playsErr = errors.New("db gone")
	f.svc.IncrementPlays(ctx, track.ID)

	got, err := f.svc.ByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Plays, "failed increment leaves the counter alone")
}
