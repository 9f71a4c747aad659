package transcript

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coursegen-backend/internal/models"
)

const (
	SourceCache      = "cache"
	DefaultRetention = 7 * 24 * time.Hour
)

// Strategy is one way of obtaining caption segments for a video.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, videoID string) ([]models.Segment, error)
}

type Acquirer struct {
	strategies []Strategy
	cache      Cache
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewAcquirer tries strategies in the order given. A nil cache disables caching.
func NewAcquirer(cache Cache, ttl time.Duration, logger *slog.Logger, strategies ...Strategy) *Acquirer {
	if ttl <= 0 {
		ttl = DefaultRetention
	}
	return &Acquirer{
		strategies: strategies,
		cache:      cache,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger.With("component", "transcript"),
	}
}

// Strategies lists the configured strategy names in order.
func (a *Acquirer) Strategies() []string {
	names := make([]string, len(a.strategies))
	for i, s := range a.strategies {
		names[i] = s.Name()
	}
	return names
}

// GetTranscript returns a cached transcript when one is fresh, otherwise
// acquires and caches a new one.
func (a *Acquirer) GetTranscript(ctx context.Context, videoRef string) (*models.TranscriptRecord, error) {
	videoID, err := ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}

	if rec := a.cached(ctx, videoID); rec != nil {
		return rec, nil
	}
	return a.acquire(ctx, videoID)
}

// Refresh skips the cache read and overwrites the cached copy on success.
func (a *Acquirer) Refresh(ctx context.Context, videoRef string) (*models.TranscriptRecord, error) {
	videoID, err := ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}
	return a.acquire(ctx, videoID)
}

// Forget drops a cached transcript.
func (a *Acquirer) Forget(ctx context.Context, videoRef string) error {
	videoID, err := ExtractVideoID(videoRef)
	if err != nil {
		return err
	}
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete(ctx, videoID)
}

func (a *Acquirer) cached(ctx context.Context, videoID string) *models.TranscriptRecord {
	if a.cache == nil {
		return nil
	}

	rec, ok, err := a.cache.Get(ctx, videoID)
	if err != nil {
		a.logger.Warn("transcript cache read failed", "video_id", videoID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	if a.now().Sub(rec.ProcessedAt) >= a.ttl {
		a.logger.Debug("cached transcript expired", "video_id", videoID, "processed_at", rec.ProcessedAt)
		return nil
	}

	rec.Source = SourceCache
	return rec
}

func (a *Acquirer) acquire(ctx context.Context, videoID string) (*models.TranscriptRecord, error) {
	var attempts []error

	for _, s := range a.strategies {
		segments, err := s.Fetch(ctx, videoID)
		if err == nil && len(segments) == 0 {
			err = errNoSegments
		}
		if err != nil {
			a.logger.Debug("transcript strategy failed", "video_id", videoID, "strategy", s.Name(), "error", err)
			attempts = append(attempts, &StrategyError{Strategy: s.Name(), Err: err})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			continue
		}

		rec := &models.TranscriptRecord{
			VideoID:     videoID,
			Text:        JoinSegments(segments),
			Segments:    segments,
			ProcessedAt: a.now(),
			Source:      s.Name(),
		}

		if a.cache != nil {
			if err := a.cache.Set(ctx, rec, a.ttl); err != nil {
				a.logger.Warn("transcript cache write failed", "video_id", videoID, "error", err)
			}
		}

		a.logger.Info("transcript acquired",
			"video_id", videoID,
			"strategy", s.Name(),
			"segments", len(segments),
			"chars", len(rec.Text),
		)
		return rec, nil
	}

	noTranscript := &NoTranscriptAvailableError{VideoID: videoID, Attempts: attempts}
	a.logger.Info("transcript strategies exhausted", "video_id", videoID, "attempts", noTranscript.Detail())
	return nil, noTranscript
}

// IsNoTranscript reports whether err means every strategy failed.
func IsNoTranscript(err error) bool {
	var target *NoTranscriptAvailableError
	return errors.As(err, &target)
}
