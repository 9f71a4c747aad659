package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	yt "github.com/kkdai/youtube/v2"

	"coursegen-backend/internal/config"
	"coursegen-backend/internal/database"
	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/transcript"
)

// App holds the pipeline components shared by the server and the CLI.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *repository.ContentStore
	Acquirer  *transcript.Acquirer
	Gateway   *gateway.Gateway
	Generator *services.ContentGenerator
	Redis     *database.RedisClients
	DB        *pgxpool.Pool

	gemini  *gateway.GeminiCompleter
	closers []func()
}

// NewLogger returns a JSON slog logger at the named level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// Build connects the configured backends and assembles the pipeline. Redis
// is optional: without it transcripts are cached in-process.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if cfg.RedisURL != "" {
		clients, err := database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.Redis = clients
		a.closers = append(a.closers, clients.Close)
		logger.Info("redis connected")
	}

	backend, err := a.storeBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = repository.NewContentStore(backend, cfg.StoreKey, logger)

	var cache transcript.Cache
	if a.Redis != nil {
		cache = transcript.NewRedisCache(a.Redis.PubSub)
	} else {
		cache = transcript.NewMemoryCache(time.Hour)
	}
	a.Acquirer = transcript.NewAcquirer(cache, cfg.TranscriptCacheTTL, logger, a.strategies()...)

	a.Gateway = gateway.New(gateway.Config{
		Provider: cfg.CompletionProvider,
		APIKey:   cfg.CompletionAPIKey,
		Model:    cfg.CompletionModel,
		BaseURL:  cfg.CompletionBaseURL,
	}, cfg.GatewayDelay, cfg.GatewayTimeout, logger)
	a.Gateway.Register(gateway.ProviderOpenAI, gateway.NewChatClient(&http.Client{Timeout: cfg.GatewayTimeout}))
	a.gemini = gateway.NewGeminiCompleter()
	a.Gateway.Register(gateway.ProviderGemini, a.gemini)
	a.closers = append(a.closers, a.gemini.Close)

	a.Generator = services.NewContentGenerator(a.Gateway, logger)

	logger.Info("pipeline ready",
		"store", cfg.StoreBackend,
		"strategies", a.Acquirer.Strategies(),
		"provider", cfg.CompletionProvider,
		"gateway_configured", a.Gateway.IsConfigured(),
	)
	return a, nil
}

func (a *App) storeBackend(ctx context.Context) (repository.Backend, error) {
	switch a.Config.StoreBackend {
	case "memory":
		return repository.NewMemoryBackend(), nil
	case "file", "":
		return repository.NewFileBackend(a.Config.StorePath)
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		a.closers = append(a.closers, pool.Close)

		if err := database.RunMigrations(ctx, pool, a.Config.MigrationsDir, a.Logger); err != nil {
			return nil, err
		}
		a.Logger.Info("postgres connected, migrations applied")
		return repository.NewPostgresBackend(pool), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}
}

func (a *App) strategies() []transcript.Strategy {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var out []transcript.Strategy
	if a.Config.TranscriptProxyURL != "" {
		out = append(out, transcript.NewProxyPageStrategy(httpClient, a.Config.TranscriptProxyURL))
	}
	if a.Config.TranscriptAltURL != "" {
		out = append(out, transcript.NewAltServiceStrategy(httpClient, a.Config.TranscriptAltURL))
	}
	if a.Config.PlayerCaptionsFallback {
		out = append(out, transcript.NewPlayerCaptionsStrategy(&yt.Client{HTTPClient: httpClient}))
	}
	return out
}

// TranscriptManager builds a manager reporting to notifier.
func (a *App) TranscriptManager(notifier services.Notifier) *services.TranscriptManager {
	return services.NewTranscriptManager(a.Acquirer, a.Store, notifier, a.Logger)
}

// HealthChecks lists the reachable dependencies to probe.
func (a *App) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	if a.DB != nil {
		checks["postgres"] = a.DB.Ping
	}
	return checks
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
