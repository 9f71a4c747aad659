package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coursegen-backend/internal/models"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/transcript"
)

const (
	QueueTranscriptFetch = "queue:transcript-fetch"
	JobTypeTranscript    = "transcript-fetch"

	popTimeout = 30 * time.Second
	lockTTL    = 10 * time.Minute
)

// TranscriptFetcher is the part of the transcript manager a job needs.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, userID uuid.UUID, videoRef string, refresh bool) (*models.TranscriptRecord, error)
}

type Pool struct {
	redis       *redis.Client
	fetcher     TranscriptFetcher
	notifier    services.Notifier
	workerCount int
	logger      *slog.Logger

	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewPool(redisClient *redis.Client, fetcher TranscriptFetcher, notifier services.Notifier, workerCount int, logger *slog.Logger) *Pool {
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		fetcher:     fetcher,
		notifier:    notifier,
		workerCount: workerCount,
		logger:      logger.With("component", "worker"),
		stopChan:    make(chan struct{}),
	}
}

// Enqueue appends one job per video reference and returns the jobs in
// submission order.
func (p *Pool) Enqueue(ctx context.Context, userID uuid.UUID, videoRefs []string, refresh bool) ([]models.Job, error) {
	if p.redis == nil {
		return nil, errors.New("job queue is not configured")
	}

	jobs := make([]models.Job, 0, len(videoRefs))
	payloads := make([]interface{}, 0, len(videoRefs))
	now := time.Now().UTC()
	for _, ref := range videoRefs {
		job := models.Job{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      JobTypeTranscript,
			VideoRef:  ref,
			Refresh:   refresh,
			CreatedAt: now,
		}
		data, err := json.Marshal(job)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		payloads = append(payloads, data)
	}
	if len(payloads) == 0 {
		return jobs, nil
	}

	if err := p.redis.RPush(ctx, QueueTranscriptFetch, payloads...).Err(); err != nil {
		return nil, fmt.Errorf("enqueue transcript jobs: %w", err)
	}
	p.logger.Info("transcript jobs queued", "user_id", userID, "count", len(jobs))
	return jobs, nil
}

func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("worker pool started", "workers", p.workerCount)
}

// Stop signals every worker and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.stopChan)
		if p.cancel != nil {
			p.cancel()
		}
	})
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With("worker", id)

	for {
		select {
		case <-p.stopChan:
			logger.Debug("worker shutting down")
			return
		default:
		}

		result, err := p.redis.BLPop(ctx, popTimeout, QueueTranscriptFetch).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				logger.Warn("queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			logger.Error("failed to parse job", "error", err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue
		}

		// Jobs already popped finish even when Stop is called mid-flight.
		p.process(context.WithoutCancel(ctx), &job)
	}
}

func (p *Pool) process(ctx context.Context, job *models.Job) error {
	p.logger.Info("processing job", "job_id", job.ID, "type", job.Type, "video_ref", job.VideoRef)

	if job.Type != JobTypeTranscript {
		err := fmt.Errorf("unknown job type %q", job.Type)
		p.handleFailure(ctx, job, err)
		return err
	}

	rec, err := p.fetcher.Fetch(ctx, job.UserID, job.VideoRef, job.Refresh)
	if err != nil {
		p.handleFailure(ctx, job, err)
		return err
	}
	p.handleSuccess(ctx, job, rec)
	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, rec *models.TranscriptRecord) {
	jobID := job.ID
	p.notifier.Publish(ctx, job.UserID, models.WSMessage{
		Type: "job_completed",
		Payload: models.StatusUpdate{
			VideoID: rec.VideoID,
			Status:  models.TranscriptLoaded,
			Source:  rec.Source,
			JobID:   &jobID,
		},
	})
	p.logger.Info("job completed", "job_id", job.ID, "video_id", rec.VideoID, "source", rec.Source)
}

// handleFailure reports the error. Jobs are not requeued: an exhausted
// strategy list is final for that attempt.
func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	jobID := job.ID
	videoID, _ := transcript.ExtractVideoID(job.VideoRef)
	p.notifier.Publish(ctx, job.UserID, models.WSMessage{
		Type: "job_failed",
		Payload: models.ErrorEvent{
			VideoID:      videoID,
			JobID:        &jobID,
			ErrorCode:    services.ErrorCode(err),
			ErrorMessage: err.Error(),
		},
	})
	p.logger.Warn("job failed", "job_id", job.ID, "video_ref", job.VideoRef, "error", err)
}
