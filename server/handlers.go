package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"resonate/apperror"
	"resonate/config"
	"resonate/core/auth"
	"resonate/core/music"
	"resonate/core/social"
	"resonate/logger"
	"resonate/model"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

// APIHandler handles all API requests.
type APIHandler struct {
	users         *auth.UserService
	tracks        *music.TrackService
	reposts       *music.RepostService
	friends       *social.FriendService
	messages      *social.MessageService
	notifications *social.NotificationService
	tokens        *auth.TokenIssuer
	cfg           *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	users *auth.UserService,
	tracks *music.TrackService,
	reposts *music.RepostService,
	friends *social.FriendService,
	messages *social.MessageService,
	notifications *social.NotificationService,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		users:         users,
		tracks:        tracks,
		reposts:       reposts,
		friends:       friends,
		messages:      messages,
		notifications: notifications,
		tokens:        tokens,
		cfg:           cfg,
	}
}

// AuthMiddleware checks for a valid bearer token and stores the caller's
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuthMiddleware stores the caller's identity when a valid
// bearer token is present and proceeds anonymously when it is not.
func (h *APIHandler) OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := h.tokens.ParseToken(parts[1]); err == nil {
				ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
				ctx = context.WithValue(ctx, usernameKey, claims.Username)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	}
}

// ActorFromContext extracts the authenticated caller set by AuthMiddleware.
func ActorFromContext(ctx context.Context) (model.Actor, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return model.Actor{}, errors.New("user not found in context")
	}
	username, ok := ctx.Value(usernameKey).(string)
	if !ok {
		return model.Actor{}, errors.New("username not found in context")
	}
	return model.Actor{ID: userID, Username: username}, nil
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to its HTTP status. Internal
// errors are logged and hidden behind a generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	status := apperror.MapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// pathID parses the named path variable as an int64 id.
func pathID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errors.New("missing path parameter: " + name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid path parameter: " + name)
	}
	return id, nil
}

// muxVar returns the named path variable.
func muxVar(r *http.Request, name string) (string, bool) {
	raw, ok := mux.Vars(r)[name]
	return raw, ok && raw != ""
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
