package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/transcript"
	"coursegen-backend/internal/websocket"
)

func newTestRouter(t *testing.T, checks map[string]func(context.Context) error) (http.Handler, *middleware.JWTAuth) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repository.NewContentStore(repository.NewMemoryBackend(), repository.DefaultKey, logger)
	acquirer := transcript.NewAcquirer(transcript.NewMemoryCache(time.Minute), 0, logger)
	gw := gateway.New(gateway.Config{}, 0, 0, logger)
	jwtAuth := middleware.NewJWTAuth("router-secret")
	hub := websocket.NewHub(nil, jwtAuth, "*", logger)
	manager := services.NewTranscriptManager(acquirer, store, hub, logger)
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	h := Handlers{
		Transcripts: handlers.NewTranscriptHandler(manager, store, nil),
		Generate:    handlers.NewGenerateHandler(manager, services.NewContentGenerator(gw, logger), hub, gw),
		Content:     handlers.NewContentHandler(store),
		Dashboard:   handlers.NewDashboardHandler(store, gw, hub, acquirer.Strategies()),
	}
	return New(jwtAuth, h, hub, limiter, checks, "http://localhost:5173"), jwtAuth
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, map[string]func(context.Context) error{"store": func(context.Context) error { return nil }})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	r, _ = newTestRouter(t, map[string]func(context.Context) error{"redis": func(context.Context) error { return errors.New("down") }})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestAPIRequiresToken(t *testing.T) {
	r, jwtAuth := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gateway/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	token, err := jwtAuth.GenerateAccessToken(uuid.New(), "t@example.com", time.Hour)
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/gateway/status",
		"/api/v1/dashboard/stats",
		"/api/v1/videos",
		"/api/v1/videos/dQw4w9WgXcQ/discussions",
		"/api/v1/videos/dQw4w9WgXcQ/descriptions",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGenerateWithoutConfigurationIsUnavailable(t *testing.T) {
	r, jwtAuth := newTestRouter(t, nil)
	token, err := jwtAuth.GenerateAccessToken(uuid.New(), "t@example.com", time.Hour)
	require.NoError(t, err)

	// No strategies are registered, so the transcript lookup fails first.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate/quiz", strings.NewReader(`{"video_id":"dQw4w9WgXcQ"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), services.CodeNoTranscript)
}
