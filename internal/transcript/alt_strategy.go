package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"coursegen-backend/internal/models"
)

type altEntry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// AltServiceStrategy asks a secondary transcript-by-id service.
type AltServiceStrategy struct {
	httpClient *http.Client
	baseURL    string
}

func NewAltServiceStrategy(httpClient *http.Client, baseURL string) *AltServiceStrategy {
	return &AltServiceStrategy{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *AltServiceStrategy) Name() string { return "alt_service" }

func (s *AltServiceStrategy) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	endpoint := fmt.Sprintf("%s/transcript?video_id=%s", s.baseURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcript service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return nil, err
	}

	entries, err := decodeAltEntries(body)
	if err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	segments := make([]models.Segment, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			StartSeconds:    e.Start,
			DurationSeconds: e.Duration,
			Text:            text,
		})
	}
	if len(segments) == 0 {
		return nil, errNoSegments
	}
	return segments, nil
}

// decodeAltEntries accepts either a bare array or {"transcript": [...]}.
func decodeAltEntries(body []byte) ([]altEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []altEntry
		err := json.Unmarshal(trimmed, &entries)
		return entries, err
	}

	var wrapped struct {
		Transcript []altEntry `json:"transcript"`
	}
	err := json.Unmarshal(trimmed, &wrapped)
	return wrapped.Transcript, err
}
