package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Auth
	JWTSecret string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// Completion gateway
	CompletionProvider string
	CompletionAPIKey   string
	CompletionModel    string
	CompletionBaseURL  string
	GatewayDelay       time.Duration
	GatewayTimeout     time.Duration

	// Transcripts
	TranscriptProxyURL     string
	TranscriptAltURL       string
	TranscriptCacheTTL     time.Duration
	PlayerCaptionsFallback bool

	// Content store
	StoreBackend string
	StorePath    string
	StoreKey     string

	// Worker
	WorkerCount int

	// Frontend
	FrontendURL string
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE. Its values
// replace the built-in defaults; environment variables still win.
type fileConfig struct {
	Server struct {
		Port     string `yaml:"port"`
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Gateway struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		BaseURL  string        `yaml:"base_url"`
		Delay    time.Duration `yaml:"delay"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"gateway"`
	Transcript struct {
		ProxyURL       string        `yaml:"proxy_url"`
		AltURL         string        `yaml:"alt_url"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
		PlayerCaptions bool          `yaml:"player_captions"`
	} `yaml:"transcript"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Key     string `yaml:"key"`
	} `yaml:"store"`
	Worker struct {
		Count int `yaml:"count"`
	} `yaml:"worker"`
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err.Error())
	}

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", orString(file.Server.Port, "8080")),
		Env:      getEnvOrDefault("ENV", orString(file.Server.Env, "development")),
		LogLevel: getEnvOrDefault("LOG_LEVEL", orString(file.Server.LogLevel, "info")),

		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		RedisURL:  getEnvOrDefault("REDIS_URL", ""),

		CompletionProvider: getEnvOrDefault("COMPLETION_PROVIDER", orString(file.Gateway.Provider, "openai")),
		CompletionAPIKey:   getEnvOrDefault("COMPLETION_API_KEY", ""),
		CompletionModel:    getEnvOrDefault("COMPLETION_MODEL", orString(file.Gateway.Model, "gpt-4o-mini")),
		CompletionBaseURL:  getEnvOrDefault("COMPLETION_BASE_URL", orString(file.Gateway.BaseURL, "https://api.openai.com/v1")),
		GatewayDelay:       getEnvAsDurationOrDefault("GATEWAY_REQUEST_DELAY", orDuration(file.Gateway.Delay, time.Second)),
		GatewayTimeout:     getEnvAsDurationOrDefault("GATEWAY_TIMEOUT", orDuration(file.Gateway.Timeout, 90*time.Second)),

		TranscriptProxyURL:     getEnvOrDefault("TRANSCRIPT_PROXY_URL", orString(file.Transcript.ProxyURL, "https://api.allorigins.win/raw")),
		TranscriptAltURL:       getEnvOrDefault("TRANSCRIPT_ALT_URL", file.Transcript.AltURL),
		TranscriptCacheTTL:     getEnvAsDurationOrDefault("TRANSCRIPT_CACHE_TTL", orDuration(file.Transcript.CacheTTL, 7*24*time.Hour)),
		PlayerCaptionsFallback: getEnvAsBoolOrDefault("TRANSCRIPT_PLAYER_CAPTIONS", file.Transcript.PlayerCaptions),

		StoreBackend: getEnvOrDefault("STORE_BACKEND", orString(file.Store.Backend, "file")),
		StorePath:    getEnvOrDefault("STORE_PATH", orString(file.Store.Path, "./data")),
		StoreKey:     getEnvOrDefault("STORE_KEY", orString(file.Store.Key, "coursegen:video-content")),

		WorkerCount: getEnvAsIntOrDefault("WORKER_COUNT", orInt(file.Worker.Count, 3)),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.StoreBackend == "postgres" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
		cfg.MigrationsDir = getEnvOrDefault("MIGRATIONS_DIR", "migrations")
	}

	return cfg
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orDuration(v, fallback time.Duration) time.Duration {
	if v == 0 {
		return fallback
	}
	return v
}
