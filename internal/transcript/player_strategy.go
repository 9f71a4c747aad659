package transcript

import (
	"context"
	"fmt"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"coursegen-backend/internal/models"
)

// PlayerCaptionsStrategy reads captions through the innertube player API.
type PlayerCaptionsStrategy struct {
	client    *yt.Client
	languages []string
}

func NewPlayerCaptionsStrategy(client *yt.Client, languages ...string) *PlayerCaptionsStrategy {
	if client == nil {
		client = &yt.Client{}
	}
	if len(languages) == 0 {
		languages = []string{"en", "en-US", "en-GB"}
	}
	return &PlayerCaptionsStrategy{client: client, languages: languages}
}

func (s *PlayerCaptionsStrategy) Name() string { return "player_captions" }

func (s *PlayerCaptionsStrategy) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video: %w", err)
	}

	var lastErr error
	for _, lang := range s.languages {
		tr, err := s.client.GetTranscriptCtx(ctx, video, lang)
		if err != nil {
			lastErr = err
			continue
		}

		segments := make([]models.Segment, 0, len(tr))
		for _, seg := range tr {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			segments = append(segments, models.Segment{
				StartSeconds:    float64(seg.StartMs) / 1000,
				DurationSeconds: float64(seg.Duration) / 1000,
				Text:            text,
			})
		}
		if len(segments) > 0 {
			return segments, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errNoSegments
}
