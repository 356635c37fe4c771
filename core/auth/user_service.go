package auth

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resonate/apperror"
	"resonate/logger"
	"resonate/model"
	"resonate/repository"
	"resonate/storage"
)

// UserService owns accounts: registration, login, profiles and avatars.
type UserService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	store    storage.ObjectStore

	searchLimit int
}

func NewUserService(userRepo repository.UserRepository, tokens *TokenIssuer, store storage.ObjectStore, searchLimit int) *UserService {
	return &UserService{
		userRepo:    userRepo,
		tokens:      tokens,
		store:       store,
		searchLimit: searchLimit,
	}
}

// Register creates an account and returns the user with a signed token.
// Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || len(password) < 6 {
		return nil, "", apperror.ErrInvalidInput
	}

	if existing, err := s.userRepo.GetUserByUsername(ctx, username); err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, "", apperror.ErrUsernameTaken
	}

	if existing, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, "", apperror.ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  username,
	}
	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("user registered", logger.Int64("userID", user.ID), logger.String("username", user.Username))
	return user, token, nil
}

// Login checks the credentials and returns the user with a signed token.
// identifier is an email or a username; bad identifier and bad password
// are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)

	var user *model.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// ByID returns one user.
func (s *UserService) ByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ByUsername resolves a username to its user.
func (s *UserService) ByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// UpdateProfile sets the actor's display name and bio.
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, displayName, bio string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperror.ErrInvalidInput
	}
	if err := s.userRepo.UpdateProfile(ctx, actor.ID, displayName, bio); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.ByID(ctx, actor.ID)
}

// UploadAvatar stores a new profile photo and returns its URL. The old
// photo object is removed once the row points at the new one.
func (s *UserService) UploadAvatar(ctx context.Context, actor model.Actor, r io.Reader, size int64, filename, contentType string) (string, error) {
	user, err := s.ByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}

	key := storage.ObjectKey("avatars", actor.ID, filename)
	url, err := s.store.Upload(ctx, key, r, size, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.userRepo.UpdatePhotoURL(ctx, actor.ID, url); err != nil {
		return "", fmt.Errorf("failed to update photo url: %w", err)
	}

	if user.PhotoURL != "" {
		if err := s.store.DeleteByURL(ctx, user.PhotoURL); err != nil {
			logger.Warn("failed to delete old avatar", logger.String("url", user.PhotoURL), logger.ErrorField(err))
		}
	}
	return url, nil
}

// Search returns users whose username or display name contains the
// query, case-insensitively. An empty query matches nobody.
func (s *UserService) Search(ctx context.Context, query string) ([]*model.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*model.User{}, nil
	}

	users, err := s.userRepo.ListUsersByUsername(ctx, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	matches := make([]*model.User, 0)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.DisplayName), query) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}
