package server

import (
	"net/http"
)

// NotificationsHandler lists the caller's notifications, newest first.
func (h *APIHandler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notifications, err := h.notifications.List(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// UnreadNotificationCountHandler returns the caller's unread count.
func (h *APIHandler) UnreadNotificationCountHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkNotificationReadHandler acknowledges one of the caller's notifications.
func (h *APIHandler) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, actor.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// MarkAllNotificationsReadHandler acknowledges all of the caller's
// notifications.
func (h *APIHandler) MarkAllNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), actor.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
