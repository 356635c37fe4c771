package server

import (
	"net/http"
)

type friendRequestBody struct {
	ToUserID int64 `json:"toUserId"`
}

// SendFriendRequestHandler creates a pending friend request.
func (h *APIHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req friendRequestBody
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.friends.SendRequest(r.Context(), actor, req.ToUserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, request)
}

// AcceptFriendRequestHandler accepts a pending request addressed to the caller.
func (h *APIHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	friendship, err := h.friends.AcceptRequest(r.Context(), actor, requestID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, friendship)
}

// DeclineFriendRequestHandler declines a pending request addressed to the caller.
func (h *APIHandler) DeclineFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.friends.DeclineRequest(r.Context(), actor, requestID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// PendingFriendRequestsHandler lists pending requests addressed to the caller.
func (h *APIHandler) PendingFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := h.friends.PendingRequests(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// FriendsHandler lists the caller's friends.
func (h *APIHandler) FriendsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	friends, err := h.friends.Friends(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, friends)
}
