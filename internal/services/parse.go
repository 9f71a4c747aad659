package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coursegen-backend/internal/models"
)

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeObject parses the completion into its top-level fields. Text around
// the outermost braces is tolerated.
func decodeObject(raw string) (object, error) {
	text := stripFences(raw)

	var top map[string]json.RawMessage
	err := json.Unmarshal([]byte(text), &top)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return object{}, mismatch("$", "expected a JSON object, got %s", typeErr.Value)
		}

		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return object{}, ErrMalformedResponse
		}
		top = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &top); err != nil {
			return object{}, ErrMalformedResponse
		}
	}
	if top == nil {
		return object{}, mismatch("$", "expected a JSON object, got null")
	}
	return object{path: "$", fields: top}, nil
}

// object is one JSON object under validation, with the path used in errors.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func (o object) at(name string) string {
	return o.path + "." + name
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o object) str(name string, required bool) (string, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		if required {
			return "", mismatch(o.at(name), "missing required string")
		}
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", mismatch(o.at(name), "expected string")
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", mismatch(o.at(name), "must not be empty")
	}
	return s, nil
}

func (o object) strList(name string) ([]string, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, mismatch(o.at(name), "expected array of strings")
	}
	return list, nil
}

func (o object) integer(name string) (int, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return 0, mismatch(o.at(name), "missing required integer")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, mismatch(o.at(name), "expected integer")
	}
	return n, nil
}

func (o object) boolean(name string) (bool, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return false, mismatch(o.at(name), "missing required boolean")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, mismatch(o.at(name), "expected boolean")
	}
	return b, nil
}

// list returns the elements of a required, non-empty array of objects.
func (o object) list(name string) ([]object, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return nil, mismatch(o.at(name), "missing required array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, mismatch(o.at(name), "expected array")
	}
	if len(items) == 0 {
		return nil, mismatch(o.at(name), "must not be empty")
	}

	out := make([]object, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", o.at(name), i)
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, mismatch(path, "expected object")
		}
		out[i] = object{path: path, fields: fields}
	}
	return out, nil
}

func parseQuestions(raw string) ([]models.Question, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	items, err := top.list("questions")
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(items))
	for _, item := range items {
		q, err := parseQuestion(item)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseQuestion(o object) (models.Question, error) {
	var q models.Question
	var err error

	if q.Question, err = o.str("question", true); err != nil {
		return q, err
	}
	kind, err := o.str("type", true)
	if err != nil {
		return q, err
	}
	difficulty, err := o.str("difficulty", true)
	if err != nil {
		return q, err
	}
	q.Difficulty = models.Difficulty(strings.ToLower(difficulty))
	if !q.Difficulty.Valid() {
		return q, mismatch(o.at("difficulty"), "unknown difficulty %q", difficulty)
	}
	if q.Topic, err = o.str("topic", false); err != nil {
		return q, err
	}
	if q.Explanation, err = o.str("explanation", false); err != nil {
		return q, err
	}

	switch models.QuestionKind(kind) {
	case models.KindMultipleChoice:
		options, err := o.strList("options")
		if err != nil {
			return q, err
		}
		if len(options) != 4 {
			return q, mismatch(o.at("options"), "expected exactly 4 options, got %d", len(options))
		}
		correct, err := o.integer("correct")
		if err != nil {
			return q, err
		}
		if correct < 0 || correct >= len(options) {
			return q, mismatch(o.at("correct"), "index %d out of range", correct)
		}
		q.Body = models.MultipleChoice{Options: options, CorrectIndex: correct}

	case models.KindTrueFalse:
		correct, err := o.boolean("correct")
		if err != nil {
			return q, err
		}
		q.Body = models.TrueFalse{Correct: correct}

	case models.KindShortAnswer:
		sample, err := o.str("sampleAnswer", true)
		if err != nil {
			return q, err
		}
		keyPoints, err := o.strList("keyPoints")
		if err != nil {
			return q, err
		}
		q.Body = models.ShortAnswer{SampleAnswer: sample, KeyPoints: keyPoints}

	default:
		return q, mismatch(o.at("type"), "unknown question type %q", kind)
	}
	return q, nil
}

func parseDiscussionSeeds(raw string) ([]models.DiscussionSeed, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	items, err := top.list("discussionSeeds")
	if err != nil {
		return nil, err
	}

	seeds := make([]models.DiscussionSeed, 0, len(items))
	for _, item := range items {
		var seed models.DiscussionSeed
		if seed.Question, err = item.str("question", true); err != nil {
			return nil, err
		}
		kind, err := item.str("type", true)
		if err != nil {
			return nil, err
		}
		seed.Type = models.DiscussionType(kind)
		if !seed.Type.Valid() {
			return nil, mismatch(item.at("type"), "unknown discussion type %q", kind)
		}
		if seed.Context, err = item.str("context", false); err != nil {
			return nil, err
		}
		if seed.FollowUps, err = item.strList("followUps"); err != nil {
			return nil, err
		}
		if seed.Tags, err = item.strList("tags"); err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func parseDescription(raw string) (*models.CourseDescription, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	d := &models.CourseDescription{}
	strs := []struct {
		name     string
		dst      *string
		required bool
	}{
		{"title", &d.Title, true},
		{"shortDescription", &d.ShortDescription, true},
		{"detailedDescription", &d.DetailedDescription, true},
		{"targetAudience", &d.TargetAudience, false},
		{"durationEstimate", &d.DurationEstimate, false},
		{"difficultyLevel", &d.DifficultyLevel, false},
	}
	for _, f := range strs {
		if *f.dst, err = o.str(f.name, f.required); err != nil {
			return nil, err
		}
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"learningObjectives", &d.LearningObjectives},
		{"prerequisites", &d.Prerequisites},
		{"keyTopics", &d.KeyTopics},
		{"skillsGained", &d.SkillsGained},
		{"tags", &d.Tags},
	}
	for _, f := range lists {
		if *f.dst, err = o.strList(f.name); err != nil {
			return nil, err
		}
	}
	return d, nil
}
