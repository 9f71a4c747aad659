package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coursegen-backend/internal/models"
	"coursegen-backend/internal/repository"
)

// artifactKind binds one saved-artifact collection of the content store to
// its HTTP routes.
type artifactKind[T any] struct {
	list     func(ctx context.Context, videoID string) []T
	save     func(ctx context.Context, videoID string, item *T) error
	remove   func(ctx context.Context, videoID, id string) error
	setID    func(item *T, id string)
	validate func(item *T) map[string]string
}

func (k artifactKind[T]) List(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.list(r.Context(), videoID))
}

// Save handles PUT on the collection (new artifact) and on an item (replace
// in place, keeping the path id).
func (k artifactKind[T]) Save(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	var item T
	if !decodeBody(w, r, &item) {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		k.setID(&item, id)
	}
	if fields := k.validate(&item); len(fields) > 0 {
		validationError(w, r, fields)
		return
	}

	if err := k.save(r.Context(), videoID, &item); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("STORE_ERROR", "Failed to save content", r))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (k artifactKind[T]) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	if err := k.remove(r.Context(), videoID, chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("STORE_ERROR", "Failed to delete content", r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ContentHandler struct {
	store        *repository.ContentStore
	Quizzes      artifactKind[models.Quiz]
	Discussions  artifactKind[models.DiscussionSet]
	Descriptions artifactKind[models.CourseDescription]
}

func NewContentHandler(store *repository.ContentStore) *ContentHandler {
	return &ContentHandler{
		store: store,
		Quizzes: artifactKind[models.Quiz]{
			list:   store.Quizzes,
			save:   store.SaveQuiz,
			remove: store.DeleteQuiz,
			setID:  func(q *models.Quiz, id string) { q.ID = id },
			validate: func(q *models.Quiz) map[string]string {
				if len(q.Questions) == 0 {
					return map[string]string{"questions": "A quiz needs at least one question"}
				}
				return nil
			},
		},
		Discussions: artifactKind[models.DiscussionSet]{
			list:   store.Discussions,
			save:   store.SaveDiscussion,
			remove: store.DeleteDiscussion,
			setID:  func(d *models.DiscussionSet, id string) { d.ID = id },
			validate: func(d *models.DiscussionSet) map[string]string {
				if len(d.DiscussionSeeds) == 0 {
					return map[string]string{"discussionSeeds": "A discussion set needs at least one question"}
				}
				return nil
			},
		},
		Descriptions: artifactKind[models.CourseDescription]{
			list:   store.Descriptions,
			save:   store.SaveDescription,
			remove: store.DeleteDescription,
			setID:  func(d *models.CourseDescription, id string) { d.ID = id },
			validate: func(d *models.CourseDescription) map[string]string {
				if strings.TrimSpace(d.Title) == "" {
					return map[string]string{"title": "A title is required"}
				}
				return nil
			},
		},
	}
}

func (h *ContentHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": h.store.VideoIDs(r.Context())})
}

func (h *ContentHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.Bucket(r.Context(), videoID))
}

func (h *ContentHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteVideo(r.Context(), videoID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("STORE_ERROR", "Failed to delete video content", r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
