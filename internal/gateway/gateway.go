package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultDelay = time.Second
)

// Config is the process-wide completion API configuration. Every dispatch
// works on a copy taken when the request leaves the queue.
type Config struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
}

type RequestOptions struct {
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	// Model overrides the configured model for this request.
	Model string
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Completion struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
	Model   string `json:"model"`
}

type Status struct {
	Configured  bool   `json:"configured"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	QueueLength int    `json:"queue_length"`
	Processing  bool   `json:"processing"`
}

// Completer performs one call against a completion provider.
type Completer interface {
	Complete(ctx context.Context, cfg Config, prompt string, opts RequestOptions) (*Completion, error)
}

type result struct {
	completion *Completion
	err        error
}

type pending struct {
	ctx        context.Context
	prompt     string
	opts       RequestOptions
	enqueuedAt time.Time
	done       chan result
}

// Gateway serializes every completion request through a single FIFO queue.
// At most one request is in flight, and consecutive dispatches are spaced by
// the configured delay whenever more work is waiting.
type Gateway struct {
	mu         sync.Mutex
	cfg        Config
	queue      []*pending
	processing bool

	delay      time.Duration
	timeout    time.Duration
	completers map[string]Completer
	logger     *slog.Logger
}

func New(cfg Config, delay, timeout time.Duration, logger *slog.Logger) *Gateway {
	if delay < 0 {
		delay = DefaultDelay
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	return &Gateway{
		cfg:        cfg,
		delay:      delay,
		timeout:    timeout,
		completers: make(map[string]Completer),
		logger:     logger.With("component", "gateway"),
	}
}

// Register installs the transport used for a provider name.
func (g *Gateway) Register(provider string, c Completer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completers[provider] = c
}

// Configure replaces the configuration used by subsequent dispatches.
func (g *Gateway) Configure(cfg Config) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	g.mu.Lock()
	g.cfg = cfg
	g.mu.Unlock()

	g.logger.Info("gateway configured", "provider", cfg.Provider, "model", cfg.Model, "has_key", cfg.APIKey != "")
}

// Config returns a copy of the current configuration.
func (g *Gateway) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

func (g *Gateway) IsConfigured() bool {
	return g.Config().APIKey != ""
}

// QueueLength counts requests waiting for dispatch.
func (g *Gateway) QueueLength() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

func (g *Gateway) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{
		Configured:  g.cfg.APIKey != "",
		Provider:    g.cfg.Provider,
		Model:       g.cfg.Model,
		QueueLength: len(g.queue),
		Processing:  g.processing,
	}
}

// Request queues a prompt and waits for its completion. If ctx ends first the
// caller stops waiting; a request that has not been dispatched yet is then
// dropped, while one already on the wire runs to completion.
func (g *Gateway) Request(ctx context.Context, prompt string, opts RequestOptions) (*Completion, error) {
	p := &pending{
		ctx:        ctx,
		prompt:     prompt,
		opts:       opts,
		enqueuedAt: time.Now(),
		done:       make(chan result, 1),
	}

	g.mu.Lock()
	g.queue = append(g.queue, p)
	if !g.processing {
		g.processing = true
		go g.drain()
	}
	g.mu.Unlock()

	select {
	case res := <-p.done:
		return res.completion, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Gateway) drain() {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.processing = false
			g.mu.Unlock()
			return
		}
		p := g.queue[0]
		g.queue[0] = nil
		g.queue = g.queue[1:]
		cfg := g.cfg
		completer := g.completers[cfg.Provider]
		g.mu.Unlock()

		if p.ctx.Err() != nil {
			g.logger.Debug("dropping abandoned completion request", "waited", time.Since(p.enqueuedAt))
			continue
		}

		res, dispatched := g.dispatch(p, cfg, completer)
		p.done <- res

		if !dispatched || g.delay == 0 {
			continue
		}

		g.mu.Lock()
		more := len(g.queue) > 0
		g.mu.Unlock()
		if more {
			time.Sleep(g.delay)
		}
	}
}

// dispatch reports whether a network call was attempted.
func (g *Gateway) dispatch(p *pending, cfg Config, completer Completer) (result, bool) {
	if cfg.APIKey == "" {
		return result{err: ErrNotConfigured}, false
	}
	if completer == nil {
		return result{err: fmt.Errorf("no completion transport registered for provider %q", cfg.Provider)}, false
	}

	model := cfg.Model
	if p.opts.Model != "" {
		model = p.opts.Model
	}
	opts := p.opts
	opts.Model = model

	ctx := context.WithoutCancel(p.ctx)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := completer.Complete(ctx, cfg, p.prompt, opts)
	if err != nil {
		g.logger.Warn("completion request failed",
			"provider", cfg.Provider,
			"model", model,
			"duration", time.Since(start),
			"error", err,
		)
		return result{err: err}, true
	}

	g.logger.Info("completion request finished",
		"provider", cfg.Provider,
		"model", completion.Model,
		"queued_for", start.Sub(p.enqueuedAt),
		"duration", time.Since(start),
		"total_tokens", completion.Usage.TotalTokens,
	)
	return result{completion: completion}, true
}
