package gateway

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned for every request while no API key is set.
var ErrNotConfigured = errors.New("completion gateway is not configured: set an API key")

var errEmptyCompletion = errors.New("completion response contained no content")

// UpstreamError is a non-2xx answer from the completion API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API error (%d): %s", e.Status, e.Message)
}
