package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/transcript"
)

// QueueReporter exposes the completion queue depth for progress events.
type QueueReporter interface {
	QueueLength() int
}

// GenerateHandler returns artifact previews. Nothing is persisted until the
// client saves the preview through the video routes.
type GenerateHandler struct {
	manager   *services.TranscriptManager
	generator *services.ContentGenerator
	notifier  services.Notifier
	queue     QueueReporter
}

func NewGenerateHandler(manager *services.TranscriptManager, generator *services.ContentGenerator, notifier services.Notifier, queue QueueReporter) *GenerateHandler {
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	return &GenerateHandler{manager: manager, generator: generator, notifier: notifier, queue: queue}
}

func (h *GenerateHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.run(w, r, "quiz", req.VideoID, func(ctx context.Context, videoID, text string) (interface{}, error) {
		return h.generator.GenerateQuiz(ctx, videoID, text, req.Options)
	})
}

func (h *GenerateHandler) Discussion(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDiscussionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.run(w, r, "discussion", req.VideoID, func(ctx context.Context, videoID, text string) (interface{}, error) {
		return h.generator.GenerateDiscussion(ctx, videoID, text, req.Options)
	})
}

func (h *GenerateHandler) Description(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDescriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.run(w, r, "description", req.VideoID, func(ctx context.Context, videoID, text string) (interface{}, error) {
		return h.generator.GenerateDescription(ctx, videoID, text, req.Options)
	})
}

type generateFunc func(ctx context.Context, videoID, transcriptText string) (interface{}, error)

func (h *GenerateHandler) run(w http.ResponseWriter, r *http.Request, artifact, videoRef string, generate generateFunc) {
	if strings.TrimSpace(videoRef) == "" {
		validationError(w, r, map[string]string{"video_id": "A video id is required"})
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	rec, err := h.manager.Ensure(ctx, userID, videoRef)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.publish(ctx, userID, artifact, rec.VideoID, "queued")
	out, err := generate(ctx, rec.VideoID, transcript.CleanForAI(rec.Text))
	if err != nil {
		h.publish(ctx, userID, artifact, rec.VideoID, "failed")
		handleServiceError(w, r, err)
		return
	}
	h.publish(ctx, userID, artifact, rec.VideoID, "completed")

	writeJSON(w, http.StatusOK, out)
}

func (h *GenerateHandler) publish(ctx context.Context, userID uuid.UUID, artifact, videoID, stage string) {
	event := models.GenerationEvent{Artifact: artifact, VideoID: videoID, Stage: stage}
	if h.queue != nil {
		event.QueueLength = h.queue.QueueLength()
	}
	h.notifier.Publish(context.WithoutCancel(ctx), userID, models.WSMessage{Type: "generation", Payload: event})
}
