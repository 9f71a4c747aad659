package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"coursegen-backend/internal/app"
	"coursegen-backend/internal/config"
	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/router"
	"coursegen-backend/internal/websocket"
	"coursegen-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg.LogLevel)
	logger.Info("starting coursegen backend", "env", cfg.Env)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pipeline, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	var pubsub *redis.Client
	if pipeline.Redis != nil {
		pubsub = pipeline.Redis.PubSub
	}
	wsHub := websocket.NewHub(pubsub, jwtAuth, cfg.FrontendURL, logger)
	manager := pipeline.TranscriptManager(wsHub)

	// Batches go through the Redis queue when one is available and run
	// inline otherwise.
	var (
		workerPool *worker.Pool
		queue      handlers.JobQueue
	)
	if pipeline.Redis != nil {
		workerPool = worker.NewPool(pipeline.Redis.Queue, manager, wsHub, cfg.WorkerCount, logger)
		workerPool.Start()
		queue = workerPool
	}

	generateLimiter := middleware.NewRateLimiter(20, time.Minute)
	defer generateLimiter.Stop()

	r := router.New(
		jwtAuth,
		router.Handlers{
			Transcripts: handlers.NewTranscriptHandler(manager, pipeline.Store, queue),
			Generate:    handlers.NewGenerateHandler(manager, pipeline.Generator, wsHub, pipeline.Gateway),
			Content:     handlers.NewContentHandler(pipeline.Store),
			Dashboard:   handlers.NewDashboardHandler(pipeline.Store, pipeline.Gateway, wsHub, pipeline.Acquirer.Strategies()),
		},
		wsHub,
		generateLimiter,
		pipeline.HealthChecks(),
		cfg.FrontendURL,
	)

	// WriteTimeout covers generation waiting behind the completion queue.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GatewayTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("coursegen backend ready",
			"api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port),
			"ws", fmt.Sprintf("ws://localhost:%s/api/v1/ws", cfg.Port),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if workerPool != nil {
		workerPool.Stop()
	}
}
