package transcript

import (
	"fmt"
	"strings"

	"coursegen-backend/internal/models"
)

const searchContextRadius = 2

// Search returns every segment whose text contains query (case-insensitive),
// in segment order, each with up to two neighbouring segments on either side
// as context.
func Search(record *models.TranscriptRecord, query string) []models.SearchMatch {
	matches := []models.SearchMatch{}
	if record == nil {
		return matches
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return matches
	}

	segs := record.Segments
	for i, seg := range segs {
		if !strings.Contains(strings.ToLower(seg.Text), needle) {
			continue
		}

		lo := max(0, i-searchContextRadius)
		hi := min(len(segs), i+searchContextRadius+1)
		parts := make([]string, 0, hi-lo)
		for _, s := range segs[lo:hi] {
			parts = append(parts, strings.TrimSpace(s.Text))
		}

		matches = append(matches, models.SearchMatch{
			Index:     i,
			Segment:   seg,
			Timestamp: FormatTimestamp(seg.StartSeconds),
			Context:   strings.Join(parts, " "),
		})
	}
	return matches
}

// FormatTimestamp renders seconds as m:ss, or h:mm:ss past the hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
