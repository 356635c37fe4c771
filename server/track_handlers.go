package server

import (
	"net/http"

	"resonate/core/music"
	"resonate/logger"
	"resonate/model"
)

// UploadTrackHandler handles audio uploads with metadata.
// Expected multipart form fields:
// - audioFile: the audio file
// - title: track title
// - artist: track artist (optional, defaults to uploader)
// - genre, description: optional metadata
// - isPublic: "true" or "false" (default true)
// - coverFile: cover art image (optional)
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil { // 64MB max memory
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	audioFile, audioHeader, err := r.FormFile("audioFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'audioFile' in form")
		return
	}
	defer audioFile.Close()

	input := music.UploadInput{
		Title:            r.FormValue("title"),
		Artist:           r.FormValue("artist"),
		Genre:            r.FormValue("genre"),
		Description:      r.FormValue("description"),
		IsPublic:         r.FormValue("isPublic") != "false",
		Audio:            audioFile,
		AudioSize:        audioHeader.Size,
		AudioFilename:    audioHeader.Filename,
		AudioContentType: audioHeader.Header.Get("Content-Type"),
	}

	if coverFile, coverHeader, err := r.FormFile("coverFile"); err == nil {
		defer coverFile.Close()
		input.Cover = coverFile
		input.CoverSize = coverHeader.Size
		input.CoverFilename = coverHeader.Filename
		input.CoverContentType = coverHeader.Header.Get("Content-Type")
	}

	track, err := h.tracks.Upload(r.Context(), actor, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("track uploaded",
		logger.Int64("trackID", track.ID),
		logger.Int64("userID", actor.ID),
		logger.String("title", track.Title))
	respondJSON(w, http.StatusCreated, track)
}

// PublicFeedHandler returns the newest public tracks.
func (h *APIHandler) PublicFeedHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.tracks.PublicFeed(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// SearchTracksHandler filters public tracks by substring.
func (h *APIHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.tracks.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// GetTrackHandler returns one track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.tracks.ByID(r.Context(), trackID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// GetTrackBySlugHandler resolves a share slug. Private tracks stay
// reachable through their slug, matching the share-link behavior.
func (h *APIHandler) GetTrackBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug, ok := muxVar(r, "slug")
	if !ok {
		respondError(w, http.StatusBadRequest, "missing slug")
		return
	}

	track, err := h.tracks.BySlug(r.Context(), slug)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// UserTracksHandler returns a user's tracks. Private tracks are only
// visible to their owner.
func (h *APIHandler) UserTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.tracks.TracksByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	actor, actorErr := ActorFromContext(r.Context())
	if actorErr != nil || actor.ID != userID {
		visible := make([]*model.Track, 0, len(tracks))
		for _, t := range tracks {
			if t.IsPublic {
				visible = append(visible, t)
			}
		}
		tracks = visible
	}
	respondJSON(w, http.StatusOK, tracks)
}

// ToggleLikeHandler flips the caller's like on a track.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	liked, err := h.tracks.ToggleLike(r.Context(), actor, trackID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// PlayHandler bumps a track's play counter. No auth required.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.tracks.IncrementPlays(r.Context(), trackID)
	respondJSON(w, http.StatusNoContent, nil)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddCommentHandler appends a comment to a track.
func (h *APIHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.tracks.AddComment(r.Context(), actor, trackID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// GetCommentsHandler returns a track's comments, newest first.
func (h *APIHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.tracks.Comments(r.Context(), trackID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// UpdateTrackHandler edits track metadata. Owner only.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var update model.TrackUpdate
	if err := decodeBody(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.tracks.Update(r.Context(), actor, trackID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// DeleteTrackHandler removes a track and its stored media. Owner only.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tracks.Delete(r.Context(), actor, trackID); err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("track deleted", logger.Int64("trackID", trackID), logger.Int64("userID", actor.ID))
	respondJSON(w, http.StatusNoContent, nil)
}
