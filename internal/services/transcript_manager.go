package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"coursegen-backend/internal/models"
	"coursegen-backend/internal/transcript"
)

// TranscriptSource acquires transcripts. Implemented by transcript.Acquirer.
type TranscriptSource interface {
	GetTranscript(ctx context.Context, videoRef string) (*models.TranscriptRecord, error)
	Refresh(ctx context.Context, videoRef string) (*models.TranscriptRecord, error)
}

// TranscriptStore is the part of the content store that tracks transcripts.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, rec *models.TranscriptRecord) error
	Transcript(ctx context.Context, videoID string) (*models.TranscriptRecord, bool)
	SetTranscriptStatus(ctx context.Context, videoID string, status models.TranscriptStatus, errMsg string) error
}

type BatchResult struct {
	VideoRef string                  `json:"video_ref"`
	VideoID  string                  `json:"video_id,omitempty"`
	Status   models.TranscriptStatus `json:"status"`
	Source   string                  `json:"source,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// TranscriptManager fetches lesson transcripts, keeps their status in the
// content store and tells the requesting user about each transition.
type TranscriptManager struct {
	source   TranscriptSource
	store    TranscriptStore
	notifier Notifier
	logger   *slog.Logger
}

func NewTranscriptManager(source TranscriptSource, store TranscriptStore, notifier Notifier, logger *slog.Logger) *TranscriptManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TranscriptManager{
		source:   source,
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "transcript_manager"),
	}
}

func (m *TranscriptManager) setStatus(ctx context.Context, userID uuid.UUID, videoID string, status models.TranscriptStatus, source, errMsg string) {
	if err := m.store.SetTranscriptStatus(ctx, videoID, status, errMsg); err != nil {
		m.logger.Warn("failed to record transcript status", "video_id", videoID, "status", status, "error", err)
	}
	m.notifier.Publish(ctx, userID, models.WSMessage{
		Type:    "transcript_status",
		Payload: models.StatusUpdate{VideoID: videoID, Status: status, Source: source},
	})
}

// Fetch acquires a transcript and stores it. With refresh set the acquirer's
// cache is bypassed.
func (m *TranscriptManager) Fetch(ctx context.Context, userID uuid.UUID, videoRef string, refresh bool) (*models.TranscriptRecord, error) {
	videoID, err := transcript.ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}

	m.setStatus(ctx, userID, videoID, models.TranscriptLoading, "", "")

	var rec *models.TranscriptRecord
	if refresh {
		rec, err = m.source.Refresh(ctx, videoID)
	} else {
		rec, err = m.source.GetTranscript(ctx, videoID)
	}
	if err != nil {
		m.setStatus(ctx, userID, videoID, models.TranscriptFailed, "", err.Error())
		m.notifier.Publish(ctx, userID, models.WSMessage{
			Type: "error",
			Payload: models.ErrorEvent{
				VideoID:      videoID,
				ErrorCode:    ErrorCode(err),
				ErrorMessage: err.Error(),
			},
		})
		return nil, err
	}

	if err := m.store.SaveTranscript(ctx, rec); err != nil {
		m.setStatus(ctx, userID, videoID, models.TranscriptFailed, "", err.Error())
		return nil, err
	}

	m.notifier.Publish(ctx, userID, models.WSMessage{
		Type:    "transcript_status",
		Payload: models.StatusUpdate{VideoID: videoID, Status: models.TranscriptLoaded, Source: rec.Source},
	})
	return rec, nil
}

// Ensure returns the stored transcript for a video, fetching it first when
// none has been stored yet.
func (m *TranscriptManager) Ensure(ctx context.Context, userID uuid.UUID, videoRef string) (*models.TranscriptRecord, error) {
	videoID, err := transcript.ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}
	if rec, ok := m.store.Transcript(ctx, videoID); ok && rec.Text != "" {
		return rec, nil
	}
	return m.Fetch(ctx, userID, videoID, false)
}

// FetchBatch fetches each reference in turn. A failure is recorded in its
// result and does not stop the rest of the batch.
func (m *TranscriptManager) FetchBatch(ctx context.Context, userID uuid.UUID, videoRefs []string, refresh bool) []BatchResult {
	results := make([]BatchResult, 0, len(videoRefs))
	for _, ref := range videoRefs {
		if ctx.Err() != nil {
			results = append(results, BatchResult{VideoRef: ref, Status: models.TranscriptPending, Error: ctx.Err().Error()})
			continue
		}

		res := BatchResult{VideoRef: ref}
		if id, err := transcript.ExtractVideoID(ref); err == nil {
			res.VideoID = id
		}

		rec, err := m.Fetch(ctx, userID, ref, refresh)
		if err != nil {
			res.Status = models.TranscriptFailed
			res.Error = err.Error()
		} else {
			res.Status = models.TranscriptLoaded
			res.Source = rec.Source
		}
		results = append(results, res)
	}
	return results
}
