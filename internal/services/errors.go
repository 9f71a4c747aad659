package services

import (
	"context"
	"errors"
	"fmt"

	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/transcript"
)

var (
	ErrEmptyTranscript   = errors.New("transcript is empty; fetch the video transcript first")
	ErrMalformedResponse = errors.New("completion response is not valid JSON")
)

// SchemaMismatchError means the completion parsed as JSON but a field is
// missing or has the wrong type.
type SchemaMismatchError struct {
	Path   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("generated content does not match the expected shape at %s: %s", e.Path, e.Reason)
}

func mismatch(path, format string, args ...any) *SchemaMismatchError {
	return &SchemaMismatchError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Error codes shared by the HTTP layer, the worker and websocket events.
const (
	CodeInvalidReference = "INVALID_VIDEO_REFERENCE"
	CodeNoTranscript     = "NO_TRANSCRIPT"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeGeneration       = "GENERATION_FAILED"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
)

func ErrorCode(err error) string {
	var (
		upstream *gateway.UpstreamError
		schema   *SchemaMismatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, transcript.ErrInvalidReference):
		return CodeInvalidReference
	case transcript.IsNoTranscript(err), errors.Is(err, ErrEmptyTranscript):
		return CodeNoTranscript
	case errors.Is(err, gateway.ErrNotConfigured):
		return CodeNotConfigured
	case errors.As(err, &upstream):
		return CodeUpstream
	case errors.Is(err, ErrMalformedResponse), errors.As(err, &schema):
		return CodeGeneration
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	default:
		return CodeInternal
	}
}
