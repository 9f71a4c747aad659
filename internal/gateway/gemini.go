package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiCompleter serves provider "gemini". Clients are created lazily and
// kept per API key so a reconfigured key takes effect on the next dispatch.
type GeminiCompleter struct {
	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGeminiCompleter() *GeminiCompleter {
	return &GeminiCompleter{clients: make(map[string]*genai.Client)}
}

func (g *GeminiCompleter) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, cfg Config, prompt string, opts RequestOptions) (*Completion, error) {
	client, err := g.client(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(opts.SystemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Status: apiErr.Code, Message: apiErr.Message}
		}
		return nil, err
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return nil, errEmptyCompletion
	}

	completion := &Completion{Content: sb.String(), Model: opts.Model}
	if u := resp.UsageMetadata; u != nil {
		completion.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return completion, nil
}

// Close releases every cached client.
func (g *GeminiCompleter) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, c := range g.clients {
		c.Close()
		delete(g.clients, key)
	}
}
