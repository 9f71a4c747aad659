package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTrueFalse      QuestionKind = "true_false"
	KindShortAnswer    QuestionKind = "short_answer"
)

// QuestionBody is the kind-specific half of a Question. Implementations are
// MultipleChoice, TrueFalse and ShortAnswer.
type QuestionBody interface {
	Kind() QuestionKind
	isQuestionBody()
}

type MultipleChoice struct {
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct"`
}

type TrueFalse struct {
	Correct bool `json:"correct"`
}

type ShortAnswer struct {
	SampleAnswer string   `json:"sampleAnswer"`
	KeyPoints    []string `json:"keyPoints"`
}

func (MultipleChoice) Kind() QuestionKind { return KindMultipleChoice }
func (TrueFalse) Kind() QuestionKind      { return KindTrueFalse }
func (ShortAnswer) Kind() QuestionKind    { return KindShortAnswer }

func (MultipleChoice) isQuestionBody() {}
func (TrueFalse) isQuestionBody()      {}
func (ShortAnswer) isQuestionBody()    {}

type Question struct {
	Question    string
	Difficulty  Difficulty
	Topic       string
	Explanation string
	Body        QuestionBody
}

type questionHeader struct {
	Type        QuestionKind `json:"type"`
	Question    string       `json:"question"`
	Difficulty  Difficulty   `json:"difficulty"`
	Topic       string       `json:"topic"`
	Explanation string       `json:"explanation,omitempty"`
}

// MarshalJSON flattens the body next to the common fields, keyed by "type".
func (q Question) MarshalJSON() ([]byte, error) {
	if q.Body == nil {
		return nil, fmt.Errorf("question %q has no body", q.Question)
	}
	header := questionHeader{
		Type:        q.Body.Kind(),
		Question:    q.Question,
		Difficulty:  q.Difficulty,
		Topic:       q.Topic,
		Explanation: q.Explanation,
	}

	var out struct {
		questionHeader
		Options      []string `json:"options,omitempty"`
		Correct      any      `json:"correct,omitempty"`
		SampleAnswer string   `json:"sampleAnswer,omitempty"`
		KeyPoints    []string `json:"keyPoints,omitempty"`
	}
	out.questionHeader = header

	switch b := q.Body.(type) {
	case MultipleChoice:
		out.Options = b.Options
		out.Correct = b.CorrectIndex
	case TrueFalse:
		out.Correct = b.Correct
	case ShortAnswer:
		out.SampleAnswer = b.SampleAnswer
		out.KeyPoints = b.KeyPoints
	default:
		return nil, fmt.Errorf("unknown question body %T", q.Body)
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the lenient reader used for persisted documents. Generated
// output goes through the stricter validation in the services package.
func (q *Question) UnmarshalJSON(data []byte) error {
	var header questionHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	q.Question = header.Question
	q.Difficulty = header.Difficulty
	q.Topic = header.Topic
	q.Explanation = header.Explanation

	switch header.Type {
	case KindMultipleChoice:
		var b MultipleChoice
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		q.Body = b
	case KindTrueFalse:
		var b TrueFalse
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		q.Body = b
	case KindShortAnswer:
		var b ShortAnswer
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		q.Body = b
	default:
		return fmt.Errorf("unknown question type %q", header.Type)
	}
	return nil
}

type GenerationMetadata struct {
	VideoID          string          `json:"videoId"`
	GeneratedAt      time.Time       `json:"generatedAt"`
	OptionsUsed      json.RawMessage `json:"optionsUsed"`
	TranscriptLength int             `json:"transcriptLength"`
}

type Quiz struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	SavedAt   time.Time          `json:"savedAt"`
	Metadata  GenerationMetadata `json:"metadata"`
	Questions []Question         `json:"questions"`
}

func (q Quiz) ArtifactID() string { return q.ID }

type QuizOptions struct {
	QuestionCount       int            `json:"questionCount"`
	Difficulty          string         `json:"difficulty"` // easy | medium | hard | mixed
	QuestionTypes       []QuestionKind `json:"questionTypes"`
	FocusArea           string         `json:"focusArea,omitempty"`
	IncludeExplanations bool           `json:"includeExplanations"`
}
