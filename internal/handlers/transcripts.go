package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/transcript"
)

const maxBatchVideos = 50

// JobQueue accepts batch transcript work. Implemented by worker.Pool.
type JobQueue interface {
	Enqueue(ctx context.Context, userID uuid.UUID, videoRefs []string, refresh bool) ([]models.Job, error)
}

type TranscriptHandler struct {
	manager *services.TranscriptManager
	store   *repository.ContentStore
	queue   JobQueue
}

// NewTranscriptHandler takes an optional queue; without one, batches run
// inline in the request.
func NewTranscriptHandler(manager *services.TranscriptManager, store *repository.ContentStore, queue JobQueue) *TranscriptHandler {
	return &TranscriptHandler{manager: manager, store: store, queue: queue}
}

func (h *TranscriptHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req models.FetchTranscriptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Video) == "" {
		validationError(w, r, map[string]string{"video": "A video URL or id is required"})
		return
	}
	if refresh, err := strconv.ParseBool(r.URL.Query().Get("refresh")); err == nil && refresh {
		req.Refresh = true
	}

	rec, err := h.manager.Fetch(r.Context(), middleware.GetUserID(r.Context()), req.Video, req.Refresh)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	rec, found := h.store.Transcript(r.Context(), videoID)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No transcript stored for this video", r))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *TranscriptHandler) Search(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		validationError(w, r, map[string]string{"q": "A search term is required"})
		return
	}

	rec, found := h.store.Transcript(r.Context(), videoID)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No transcript stored for this video", r))
		return
	}

	matches := transcript.Search(rec, query)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video_id": videoID,
		"query":    query,
		"count":    len(matches),
		"matches":  matches,
	})
}

func (h *TranscriptHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchTranscriptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	refs := make([]string, 0, len(req.Videos))
	for _, v := range req.Videos {
		if v = strings.TrimSpace(v); v != "" {
			refs = append(refs, v)
		}
	}
	switch {
	case len(refs) == 0:
		validationError(w, r, map[string]string{"videos": "At least one video is required"})
		return
	case len(refs) > maxBatchVideos:
		validationError(w, r, map[string]string{"videos": "At most 50 videos per batch"})
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	userID := middleware.GetUserID(r.Context())

	if h.queue == nil {
		results := h.manager.FetchBatch(r.Context(), userID, refs, refresh)
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
		return
	}

	jobs, err := h.queue.Enqueue(r.Context(), userID, refs, refresh)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("QUEUE_UNAVAILABLE", "Could not queue transcript jobs", r))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"jobs": jobs})
}

// videoIDParam normalizes the {videoId} path segment, which may also be a
// URL-escaped watch link.
func videoIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	videoID, err := transcript.ExtractVideoID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidReference, err.Error(), r))
		return "", false
	}
	return videoID, true
}
