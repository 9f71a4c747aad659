package transcript

import (
	"regexp"
	"strings"

	"coursegen-backend/internal/models"
)

var (
	bracketPattern    = regexp.MustCompile(`\[[^\]]*\]`)
	fillerPattern     = regexp.MustCompile(`(?i)\b(?:um|uh|er)\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	sentencePattern   = regexp.MustCompile(`([.!?])\s*([a-z])`)
)

// CleanForAI strips stage directions and filler words and normalizes spacing.
// Running it on already-clean text returns the text unchanged.
func CleanForAI(text string) string {
	text = bracketPattern.ReplaceAllString(text, " ")
	text = fillerPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = sentencePattern.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}

// JoinSegments concatenates segment text and cleans the result.
func JoinSegments(segments []models.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		b.WriteString(t)
		b.WriteString(" ")
	}
	return CleanForAI(b.String())
}
