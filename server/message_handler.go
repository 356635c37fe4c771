package server

import (
	"net/http"
)

type sendMessageRequest struct {
	ToUserID int64  `json:"toUserId"`
	Content  string `json:"content"`
}

// SendMessageHandler appends a message to the caller's conversation with
// the recipient.
func (h *APIHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messages.Send(r.Context(), actor, req.ToUserID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// ConversationsHandler lists the caller's conversations, one summary per
// counterparty, newest first.
func (h *APIHandler) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summaries, err := h.messages.Conversations(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// ConversationHandler returns the full history with one counterparty,
// oldest first.
func (h *APIHandler) ConversationHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.messages.Conversation(r.Context(), actor, otherID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// MarkConversationReadHandler marks all messages from the counterparty
// to the caller as read.
func (h *APIHandler) MarkConversationReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.messages.MarkConversationRead(r.Context(), actor, otherID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
