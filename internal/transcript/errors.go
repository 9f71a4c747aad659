package transcript

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidReference = errors.New("invalid video reference")

// StrategyError records why one acquisition strategy gave up.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// NoTranscriptAvailableError is returned once every strategy has failed for a
// video. Error() stays short for end users; Attempts keeps the full chain.
type NoTranscriptAvailableError struct {
	VideoID  string
	Attempts []error
}

func (e *NoTranscriptAvailableError) Error() string {
	return fmt.Sprintf("no transcript available for video %s", e.VideoID)
}

func (e *NoTranscriptAvailableError) Unwrap() []error {
	return e.Attempts
}

// Detail renders every strategy failure on one line for logs.
func (e *NoTranscriptAvailableError) Detail() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return strings.Join(parts, "; ")
}

var errNoSegments = errors.New("no usable transcript segments")
