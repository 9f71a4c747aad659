package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coursegen-backend/internal/models"
)

func TestCleanForAI_RemovesBracketedAnnotations(t *testing.T) {
	got := CleanForAI("[Music] hello [Applause] world")

	assert.NotContains(t, got, "[Music]")
	assert.NotContains(t, got, "[Applause]")
	assert.Equal(t, "hello world", got)
}

func TestCleanForAI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fillers", "So um this is uh the er point", "So this is the point"},
		{"filler case", "Um, UH okay", ", okay"},
		{"fillers inside words survive", "umbrella under error", "umbrella under error"},
		{"whitespace", "  a \n\t b   c ", "a b c"},
		{"sentence spacing", "first.second!third?fourth", "first. second! third? fourth"},
		{"sentence spacing uppercase untouched", "End.Next", "End.Next"},
		{"any bracket", "[Laughter] so [inaudible 00:01] yes", "so yes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanForAI(tc.in))
		})
	}
}

func TestCleanForAI_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"[Music] hello [Applause] world",
		"um uh er",
		"So um.we begin[Music]now. uh  and  then",
		"a.b.c.d",
		"[[nested] brackets] remain?",
		"Er, the  value is 3.5.ok",
		"hello um. world",
		"line one\nline two\n\n[Applause]\nline three",
	}

	for _, in := range inputs {
		once := CleanForAI(in)
		assert.Equal(t, once, CleanForAI(once), "input %q", in)
	}
}

func TestJoinSegments(t *testing.T) {
	segs := []models.Segment{
		{Text: "[Music]"},
		{Text: " Firewalls um block "},
		{Text: ""},
		{Text: "traffic."},
	}

	assert.Equal(t, "Firewalls block traffic.", JoinSegments(segs))
}
