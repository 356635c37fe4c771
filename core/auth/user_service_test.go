package auth

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"resonate/apperror"
	"resonate/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*model.User)}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	id := r.nextID
	r.nextID++
	clone := *user
	clone.ID = id
	clone.CreatedAt = time.Now()
	r.users[id] = &clone
	return id, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListUsersByUsername(ctx context.Context, limit int) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id int64, displayName, bio string) error {
	if u, ok := r.users[id]; ok {
		u.DisplayName = displayName
		u.Bio = bio
	}
	return nil
}

func (r *fakeUserRepo) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	if u, ok := r.users[id]; ok {
		u.PhotoURL = photoURL
	}
	return nil
}

type fakeObjectStore struct {
	objects map[string][]byte
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

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeObjectStore) {
	t.Helper()
	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	svc := NewUserService(repo, NewTokenIssuer("test-secret", time.Hour), store, 20)
	return svc, repo, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.Equal(t, "alice", user.DisplayName)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, token)

	loggedIn, token, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	// Username works as the login identifier too.
	loggedIn, _, err = svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// The token identifies the user.
	issuer := NewTokenIssuer("test-secret", time.Hour)
	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, apperror.ErrUsernameTaken)

	_, _, err = svc.Register(ctx, "alice2", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "a@example.com", "secret123")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, _, err = svc.Register(ctx, "alice", "", "secret123")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, _, err = svc.Register(ctx, "alice", "a@example.com", "short")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	actor := model.Actor{ID: user.ID, Username: user.Username}

	updated, err := svc.UpdateProfile(ctx, actor, "Alice A.", "making noise")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)
	assert.Equal(t, "making noise", updated.Bio)

	_, err = svc.UpdateProfile(ctx, actor, "   ", "bio")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUploadAvatarReplacesOldObject(t *testing.T) {
	svc, repo, store := newUserFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	actor := model.Actor{ID: user.ID, Username: user.Username}

	first, err := svc.UploadAvatar(ctx, actor, bytes.NewReader([]byte("img1")), 4, "me.png", "image/png")
	require.NoError(t, err)
	assert.Contains(t, store.objects, first)

	second, err := svc.UploadAvatar(ctx, actor, bytes.NewReader([]byte("img2")), 4, "me2.png", "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, store.objects, first, "old avatar object is removed")

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.PhotoURL)
}

func TestSearchUsersBySubstring(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "alicia", "alicia@example.com", "secret123")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "bob", "bob@example.com", "secret123")
	require.NoError(t, err)

	users, err := svc.Search(ctx, "ALI")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.Search(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	// Display names match too.
	_, err = svc.UpdateProfile(ctx, model.Actor{ID: users[0].ID, Username: "bob"}, "Robert", "")
	require.NoError(t, err)
	users, err = svc.Search(ctx, "robert")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	users, err = svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, users)
}
