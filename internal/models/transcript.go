package models

import "time"

type Segment struct {
	StartSeconds    float64 `json:"startSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
	Text            string  `json:"text"`
}

type TranscriptRecord struct {
	VideoID     string    `json:"videoId"`
	Text        string    `json:"text"`
	Segments    []Segment `json:"segments"`
	ProcessedAt time.Time `json:"processedAt"`
	Source      string    `json:"source"` // "cache" | strategy name
}

// TranscriptStatus tracks acquisition per lesson video.
type TranscriptStatus string

const (
	TranscriptPending TranscriptStatus = "pending"
	TranscriptLoading TranscriptStatus = "loading"
	TranscriptLoaded  TranscriptStatus = "loaded"
	TranscriptFailed  TranscriptStatus = "failed"
)

type SearchMatch struct {
	Index     int     `json:"index"`
	Segment   Segment `json:"segment"`
	Timestamp string  `json:"timestamp"`
	Context   string  `json:"context"`
}

type FetchTranscriptRequest struct {
	Video   string `json:"video"`
	Refresh bool   `json:"refresh"`
}

type BatchTranscriptRequest struct {
	Videos []string `json:"videos"`
}
