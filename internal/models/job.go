package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is a queued batch transcript fetch.
type Job struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"` // "transcript-fetch"
	VideoRef  string    `json:"video_ref"`
	Refresh   bool      `json:"refresh"`
	CreatedAt time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	VideoID string           `json:"video_id"`
	Status  TranscriptStatus `json:"status"`
	Source  string           `json:"source,omitempty"`
	JobID   *uuid.UUID       `json:"job_id,omitempty"`
}

type GenerationEvent struct {
	Artifact    string `json:"artifact"` // "quiz" | "discussion" | "description"
	VideoID     string `json:"video_id"`
	Stage       string `json:"stage"` // "queued" | "completed" | "failed"
	QueueLength int    `json:"queue_length"`
}

type ErrorEvent struct {
	VideoID      string     `json:"video_id,omitempty"`
	JobID        *uuid.UUID `json:"job_id,omitempty"`
	ErrorCode    string     `json:"error_code"`
	ErrorMessage string     `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
