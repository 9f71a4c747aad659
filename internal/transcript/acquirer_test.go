package transcript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegen-backend/internal/models"
)

const testVideoID = "dQw4w9WgXcQ"

var errStrategyDown = errors.New("strategy down")

type stubStrategy struct {
	name     string
	segments []models.Segment
	err      error
	calls    atomic.Int32
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Fetch(_ context.Context, _ string) ([]models.Segment, error) {
	s.calls.Add(1)
	return s.segments, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAcquirer_CacheRoundTripSkipsStrategies(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	a := &stubStrategy{name: "a"}
	b := &stubStrategy{name: "b"}
	acq := NewAcquirer(cache, DefaultRetention, quietLogger(), a, b)

	stored := &models.TranscriptRecord{
		VideoID:     testVideoID,
		Text:        "cached words",
		Segments:    []models.Segment{{StartSeconds: 0, DurationSeconds: 2, Text: "cached words"}},
		ProcessedAt: time.Now(),
		Source:      "proxy_page",
	}
	require.NoError(t, cache.Set(ctx, stored, DefaultRetention))

	got, err := acq.GetTranscript(ctx, "https://youtu.be/"+testVideoID)
	require.NoError(t, err)

	assert.Equal(t, stored.Text, got.Text)
	assert.Equal(t, stored.Segments, got.Segments)
	assert.Equal(t, SourceCache, got.Source)
	assert.Zero(t, a.calls.Load())
	assert.Zero(t, b.calls.Load())
}

func TestAcquirer_ExpiredCacheIsAMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	a := &stubStrategy{name: "a", segments: []models.Segment{{Text: "fresh"}}}
	acq := NewAcquirer(cache, DefaultRetention, quietLogger(), a)

	stale := &models.TranscriptRecord{
		VideoID:     testVideoID,
		Text:        "stale",
		ProcessedAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	require.NoError(t, cache.Set(ctx, stale, DefaultRetention))

	got, err := acq.GetTranscript(ctx, testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "fresh", got.Text)
	assert.Equal(t, "a", got.Source)
	assert.EqualValues(t, 1, a.calls.Load())
}

func TestAcquirer_FallsThroughToSecondStrategyAndCaches(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	a := &stubStrategy{name: "proxy_page", err: errStrategyDown}
	b := &stubStrategy{name: "alt_service", segments: []models.Segment{
		{StartSeconds: 0, DurationSeconds: 1.5, Text: "[Music] hello"},
		{StartSeconds: 1.5, DurationSeconds: 2, Text: "um world"},
	}}
	acq := NewAcquirer(cache, DefaultRetention, quietLogger(), a, b)

	got, err := acq.GetTranscript(ctx, testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "alt_service", got.Source)
	assert.Equal(t, "hello world", got.Text)
	assert.Len(t, got.Segments, 2)

	again, err := acq.GetTranscript(ctx, testVideoID)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, again.Source)
	assert.EqualValues(t, 1, a.calls.Load())
	assert.EqualValues(t, 1, b.calls.Load())
}

func TestAcquirer_AllStrategiesFail(t *testing.T) {
	a := &stubStrategy{name: "proxy_page", err: errStrategyDown}
	b := &stubStrategy{name: "alt_service"} // no segments
	acq := NewAcquirer(NewMemoryCache(time.Minute), DefaultRetention, quietLogger(), a, b)

	_, err := acq.GetTranscript(context.Background(), testVideoID)
	require.Error(t, err)

	var noTranscript *NoTranscriptAvailableError
	require.ErrorAs(t, err, &noTranscript)
	assert.Equal(t, testVideoID, noTranscript.VideoID)
	assert.Len(t, noTranscript.Attempts, 2)
	assert.ErrorIs(t, err, errStrategyDown)
	assert.ErrorIs(t, err, errNoSegments)
	assert.True(t, IsNoTranscript(err))
	assert.Equal(t, "no transcript available for video "+testVideoID, err.Error())
	assert.Contains(t, noTranscript.Detail(), "proxy_page: strategy down")
}

func TestAcquirer_InvalidReference(t *testing.T) {
	a := &stubStrategy{name: "a"}
	acq := NewAcquirer(nil, DefaultRetention, quietLogger(), a)

	_, err := acq.GetTranscript(context.Background(), "https://example.com/nothing")
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Zero(t, a.calls.Load())
}

func TestAcquirer_RefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	a := &stubStrategy{name: "a", segments: []models.Segment{{Text: "new text"}}}
	acq := NewAcquirer(cache, DefaultRetention, quietLogger(), a)

	require.NoError(t, cache.Set(ctx, &models.TranscriptRecord{
		VideoID: testVideoID, Text: "old text", ProcessedAt: time.Now(),
	}, DefaultRetention))

	got, err := acq.Refresh(ctx, testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "new text", got.Text)

	cached, ok, err := cache.Get(ctx, testVideoID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new text", cached.Text)
}

func TestAcquirer_ForgetDropsCachedCopy(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	acq := NewAcquirer(cache, DefaultRetention, quietLogger())

	require.NoError(t, cache.Set(ctx, &models.TranscriptRecord{VideoID: testVideoID, ProcessedAt: time.Now()}, time.Hour))
	require.NoError(t, acq.Forget(ctx, testVideoID))

	_, ok, _ := cache.Get(ctx, testVideoID)
	assert.False(t, ok)
	assert.Empty(t, acq.Strategies())
}
