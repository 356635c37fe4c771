package server

import (
	"net/http"

	"resonate/logger"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest accepts either field as the login identifier; "email"
// is kept for older clients.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// RegisterHandler creates a new account.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user.PublicProfile()})
}

// LoginHandler authenticates by email or username plus password.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	user, token, err := h.users.Login(r.Context(), identifier, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user.PublicProfile()})
}

// MeHandler returns the authenticated user's own profile.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.ByID(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.PublicProfile())
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// UpdateProfileHandler edits the caller's display name and bio.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), actor, req.DisplayName, req.Bio)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.PublicProfile())
}

// UploadAvatarHandler replaces the caller's profile photo.
// Expected multipart form field: avatarFile.
func (h *APIHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil { // 8MB max memory
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("avatarFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'avatarFile' in form")
		return
	}
	defer file.Close()

	url, err := h.users.UploadAvatar(r.Context(), actor, file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("avatar uploaded", logger.Int64("userID", actor.ID))
	respondJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

// GetUserHandler returns a user's public profile by username.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	username, ok := muxVar(r, "username")
	if !ok {
		respondError(w, http.StatusBadRequest, "missing username")
		return
	}

	user, err := h.users.ByUsername(r.Context(), username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.PublicProfile())
}

// SearchUsersHandler filters users by username substring.
func (h *APIHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	profiles := make([]interface{}, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	respondJSON(w, http.StatusOK, profiles)
}
