package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/websocket"
)

type Handlers struct {
	Transcripts *handlers.TranscriptHandler
	Generate    *handlers.GenerateHandler
	Content     *handlers.ContentHandler
	Dashboard   *handlers.DashboardHandler
}

func New(
	jwtAuth *middleware.JWTAuth,
	h Handlers,
	wsHub *websocket.Hub,
	generateLimiter *middleware.RateLimiter,
	checks map[string]func(context.Context) error,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", health(checks))

	r.Route("/api/v1", func(r chi.Router) {
		// Token travels in the query string for browser websockets.
		r.Get("/ws", wsHub.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Route("/transcripts", func(r chi.Router) {
				r.Post("/", h.Transcripts.Fetch)
				r.Post("/batch", h.Transcripts.Batch)
				r.Get("/{videoId}", h.Transcripts.Get)
				r.Get("/{videoId}/search", h.Transcripts.Search)
			})

			r.Route("/generate", func(r chi.Router) {
				if generateLimiter != nil {
					r.Use(generateLimiter.Middleware)
				}
				r.Post("/quiz", h.Generate.Quiz)
				r.Post("/discussion", h.Generate.Discussion)
				r.Post("/description", h.Generate.Description)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", h.Content.ListVideos)
				r.Route("/{videoId}", func(r chi.Router) {
					r.Get("/", h.Content.GetVideo)
					r.Delete("/", h.Content.DeleteVideo)

					r.Get("/quizzes", h.Content.Quizzes.List)
					r.Put("/quizzes", h.Content.Quizzes.Save)
					r.Put("/quizzes/{id}", h.Content.Quizzes.Save)
					r.Delete("/quizzes/{id}", h.Content.Quizzes.Delete)

					r.Get("/discussions", h.Content.Discussions.List)
					r.Put("/discussions", h.Content.Discussions.Save)
					r.Put("/discussions/{id}", h.Content.Discussions.Save)
					r.Delete("/discussions/{id}", h.Content.Discussions.Delete)

					r.Get("/descriptions", h.Content.Descriptions.List)
					r.Put("/descriptions", h.Content.Descriptions.Save)
					r.Put("/descriptions/{id}", h.Content.Descriptions.Save)
					r.Delete("/descriptions/{id}", h.Content.Descriptions.Delete)
				})
			})

			r.Get("/dashboard/stats", h.Dashboard.Stats)

			r.Route("/gateway", func(r chi.Router) {
				r.Get("/status", h.Dashboard.GatewayStatus)
				r.Put("/config", h.Dashboard.UpdateGatewayConfig)
			})
		})
	})

	return r
}

func health(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body = `{"status":"degraded","failing":"` + name + `"}`
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
