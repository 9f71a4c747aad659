package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"coursegen-backend/internal/models"
)

const (
	DefaultKey       = "coursegen:video-content"
	maxWriteAttempts = 5
)

var (
	ErrEmptyVideoID = errors.New("video id is required")

	errNoChange = errors.New("no change")
)

// document is the persisted shape: one bucket per video id.
type document map[string]*models.VideoBucket

func (d document) bucket(videoID string) *models.VideoBucket {
	b, ok := d[videoID]
	if !ok || b == nil {
		b = &models.VideoBucket{}
		d[videoID] = b
	}
	return b
}

type artifact interface {
	ArtifactID() string
}

func upsert[T artifact](items []T, item T) []T {
	for i := range items {
		if items[i].ArtifactID() == item.ArtifactID() {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T artifact](items []T, id string) ([]T, bool) {
	for i := range items {
		if items[i].ArtifactID() == id {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// ContentStore keeps transcripts and generated artifacts grouped by video id
// inside a single document. Writers are serialized in process and every save
// carries the version it was based on; a conflict reloads and reapplies.
type ContentStore struct {
	backend Backend
	key     string
	mu      sync.Mutex
	now     func() time.Time
	logger  *slog.Logger
}

func NewContentStore(backend Backend, key string, logger *slog.Logger) *ContentStore {
	if key == "" {
		key = DefaultKey
	}
	return &ContentStore{
		backend: backend,
		key:     key,
		now:     time.Now,
		logger:  logger.With("component", "content_store"),
	}
}

func (s *ContentStore) load(ctx context.Context) (document, int64, error) {
	data, version, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return nil, 0, err
	}

	doc := document{}
	if len(data) == 0 {
		return doc, version, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("content document is malformed, treating as empty", "key", s.key, "error", err)
		return document{}, version, nil
	}
	return doc, version, nil
}

// read never fails; backend errors yield an empty document.
func (s *ContentStore) read(ctx context.Context) document {
	doc, _, err := s.load(ctx)
	if err != nil {
		s.logger.Error("content document read failed", "key", s.key, "error", err)
		return document{}
	}
	return doc
}

func (s *ContentStore) update(ctx context.Context, mutate func(document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		doc, version, err := s.load(ctx)
		if err != nil {
			return err
		}

		if err := mutate(doc); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			return err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode content document: %w", err)
		}

		_, err = s.backend.Save(ctx, s.key, data, version)
		if errors.Is(err, ErrVersionConflict) && attempt < maxWriteAttempts {
			s.logger.Warn("content document version conflict, retrying", "key", s.key, "attempt", attempt)
			continue
		}
		return err
	}
}

func (s *ContentStore) stamp(id *string, savedAt *time.Time, name *string, label string) {
	now := s.now().UTC()
	if *id == "" {
		if v7, err := uuid.NewV7(); err == nil {
			*id = v7.String()
		} else {
			*id = uuid.NewString()
		}
	}
	*savedAt = now
	if *name == "" {
		*name = fmt.Sprintf("%s %s", label, now.Format("2006-01-02 15:04"))
	}
}

// SaveQuiz inserts the quiz or replaces the one with the same id. The quiz is
// updated in place with its assigned id, name and save time.
func (s *ContentStore) SaveQuiz(ctx context.Context, videoID string, quiz *models.Quiz) error {
	if videoID == "" {
		return ErrEmptyVideoID
	}
	s.stamp(&quiz.ID, &quiz.SavedAt, &quiz.Name, "Quiz")
	return s.update(ctx, func(doc document) error {
		b := doc.bucket(videoID)
		b.Quizzes = upsert(b.Quizzes, *quiz)
		return nil
	})
}

func (s *ContentStore) SaveDiscussion(ctx context.Context, videoID string, set *models.DiscussionSet) error {
	if videoID == "" {
		return ErrEmptyVideoID
	}
	s.stamp(&set.ID, &set.SavedAt, &set.Name, "Discussion set")
	return s.update(ctx, func(doc document) error {
		b := doc.bucket(videoID)
		b.Discussions = upsert(b.Discussions, *set)
		return nil
	})
}

func (s *ContentStore) SaveDescription(ctx context.Context, videoID string, desc *models.CourseDescription) error {
	if videoID == "" {
		return ErrEmptyVideoID
	}
	if desc.Name == "" {
		desc.Name = desc.Title
	}
	s.stamp(&desc.ID, &desc.SavedAt, &desc.Name, "Course description")
	return s.update(ctx, func(doc document) error {
		b := doc.bucket(videoID)
		b.Descriptions = upsert(b.Descriptions, *desc)
		return nil
	})
}

func (s *ContentStore) Quizzes(ctx context.Context, videoID string) []models.Quiz {
	return s.Bucket(ctx, videoID).Quizzes
}

func (s *ContentStore) Discussions(ctx context.Context, videoID string) []models.DiscussionSet {
	return s.Bucket(ctx, videoID).Discussions
}

func (s *ContentStore) Descriptions(ctx context.Context, videoID string) []models.CourseDescription {
	return s.Bucket(ctx, videoID).Descriptions
}

func (s *ContentStore) DeleteQuiz(ctx context.Context, videoID, id string) error {
	return s.update(ctx, func(doc document) error {
		b, ok := doc[videoID]
		if !ok || b == nil {
			return errNoChange
		}
		var removed bool
		if b.Quizzes, removed = remove(b.Quizzes, id); !removed {
			return errNoChange
		}
		return nil
	})
}

func (s *ContentStore) DeleteDiscussion(ctx context.Context, videoID, id string) error {
	return s.update(ctx, func(doc document) error {
		b, ok := doc[videoID]
		if !ok || b == nil {
			return errNoChange
		}
		var removed bool
		if b.Discussions, removed = remove(b.Discussions, id); !removed {
			return errNoChange
		}
		return nil
	})
}

func (s *ContentStore) DeleteDescription(ctx context.Context, videoID, id string) error {
	return s.update(ctx, func(doc document) error {
		b, ok := doc[videoID]
		if !ok || b == nil {
			return errNoChange
		}
		var removed bool
		if b.Descriptions, removed = remove(b.Descriptions, id); !removed {
			return errNoChange
		}
		return nil
	})
}

// SaveTranscript stores the transcript and marks the video loaded.
func (s *ContentStore) SaveTranscript(ctx context.Context, rec *models.TranscriptRecord) error {
	if rec.VideoID == "" {
		return ErrEmptyVideoID
	}
	return s.update(ctx, func(doc document) error {
		b := doc.bucket(rec.VideoID)
		b.Transcript = rec
		b.TranscriptStatus = models.TranscriptLoaded
		b.TranscriptError = ""
		return nil
	})
}

func (s *ContentStore) Transcript(ctx context.Context, videoID string) (*models.TranscriptRecord, bool) {
	b, ok := s.read(ctx)[videoID]
	if !ok || b == nil || b.Transcript == nil {
		return nil, false
	}
	return b.Transcript, true
}

// SetTranscriptStatus records acquisition progress. errMsg is kept only for
// the failed status.
func (s *ContentStore) SetTranscriptStatus(ctx context.Context, videoID string, status models.TranscriptStatus, errMsg string) error {
	if videoID == "" {
		return ErrEmptyVideoID
	}
	if status != models.TranscriptFailed {
		errMsg = ""
	}
	return s.update(ctx, func(doc document) error {
		b := doc.bucket(videoID)
		b.TranscriptStatus = status
		b.TranscriptError = errMsg
		return nil
	})
}

// Bucket returns everything stored for a video. Slices are never nil.
func (s *ContentStore) Bucket(ctx context.Context, videoID string) *models.VideoBucket {
	b, ok := s.read(ctx)[videoID]
	if !ok || b == nil {
		b = &models.VideoBucket{}
	}
	if b.Quizzes == nil {
		b.Quizzes = []models.Quiz{}
	}
	if b.Discussions == nil {
		b.Discussions = []models.DiscussionSet{}
	}
	if b.Descriptions == nil {
		b.Descriptions = []models.CourseDescription{}
	}
	return b
}

func (s *ContentStore) VideoIDs(ctx context.Context) []string {
	doc := s.read(ctx)
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *ContentStore) DeleteVideo(ctx context.Context, videoID string) error {
	return s.update(ctx, func(doc document) error {
		if _, ok := doc[videoID]; !ok {
			return errNoChange
		}
		delete(doc, videoID)
		return nil
	})
}

// Stats aggregates counts across every bucket for the dashboard.
func (s *ContentStore) Stats(ctx context.Context) models.StoreStats {
	var st models.StoreStats
	for _, b := range s.read(ctx) {
		if b == nil {
			continue
		}
		st.Videos++
		if b.Transcript != nil {
			st.Transcripts++
		}
		st.Quizzes += len(b.Quizzes)
		for _, q := range b.Quizzes {
			st.Questions += len(q.Questions)
		}
		st.Discussions += len(b.Discussions)
		for _, d := range b.Discussions {
			st.DiscussionSeeds += len(d.DiscussionSeeds)
		}
		st.Descriptions += len(b.Descriptions)
	}
	return st
}
