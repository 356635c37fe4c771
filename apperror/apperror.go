// Package apperror defines the service error taxonomy: validation errors
// raised before any store call, policy rejections raised after a guard
// query, and everything else treated as a transport/store failure.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// Policy rejections. Each guard failure gets its own sentinel so the
	// HTTP layer can surface a specific message.
	ErrRateLimited     = errors.New("rate limit exceeded, please wait before commenting again")
	ErrAlreadyReposted = errors.New("track already reposted")
	ErrRequestPending  = errors.New("friend request already exists")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrRequestClosed   = errors.New("friend request is not pending")
	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")

	// Account errors.
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// IsPolicy reports whether err is a guard rejection rather than a
// validation or transport failure.
func IsPolicy(err error) bool {
	for _, sentinel := range []error{
		ErrRateLimited, ErrAlreadyReposted, ErrRequestPending,
		ErrAlreadyFriends, ErrRequestClosed, ErrSelfRequest,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// MapErrorToStatus maps service errors to HTTP status codes. Unknown
// errors are treated as internal store/transport failures.
func MapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSelfRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrAlreadyReposted),
		errors.Is(err, ErrRequestPending),
		errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrRequestClosed),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
