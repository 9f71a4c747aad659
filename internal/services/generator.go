package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/models"
)

const (
	defaultQuestionCount = 5
	maxQuizQuestions     = 50
	maxDiscussionSeeds   = 20
)

// Generation tuning per artifact. Quizzes favour consistency, discussion
// prompts favour variety.
var (
	quizTuning        = gateway.RequestOptions{SystemPrompt: quizSystemPrompt, MaxTokens: 2000, Temperature: 0.3}
	discussionTuning  = gateway.RequestOptions{SystemPrompt: discussionSystemPrompt, MaxTokens: 1500, Temperature: 0.7}
	descriptionTuning = gateway.RequestOptions{SystemPrompt: descriptionSystemPrompt, MaxTokens: 1500, Temperature: 0.5}
)

// CompletionClient is the part of the gateway the generators use.
type CompletionClient interface {
	IsConfigured() bool
	Request(ctx context.Context, prompt string, opts gateway.RequestOptions) (*gateway.Completion, error)
}

// ContentGenerator turns transcripts into quizzes, discussion sets and course
// descriptions. Results are returned for review and never persisted here.
type ContentGenerator struct {
	completions CompletionClient
	now         func() time.Time
	logger      *slog.Logger
}

func NewContentGenerator(completions CompletionClient, logger *slog.Logger) *ContentGenerator {
	return &ContentGenerator{
		completions: completions,
		now:         time.Now,
		logger:      logger.With("component", "generator"),
	}
}

func (g *ContentGenerator) precheck(transcript string) error {
	if !g.completions.IsConfigured() {
		return gateway.ErrNotConfigured
	}
	if strings.TrimSpace(transcript) == "" {
		return ErrEmptyTranscript
	}
	return nil
}

func (g *ContentGenerator) complete(ctx context.Context, artifact, prompt string, tuning gateway.RequestOptions) (*gateway.Completion, error) {
	completion, err := g.completions.Request(ctx, prompt, tuning)
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", artifact, err)
	}
	return completion, nil
}

func (g *ContentGenerator) metadata(videoID, transcript string, opts any) models.GenerationMetadata {
	optionsUsed, _ := json.Marshal(opts)
	return models.GenerationMetadata{
		VideoID:          videoID,
		GeneratedAt:      g.now().UTC(),
		OptionsUsed:      optionsUsed,
		TranscriptLength: utf8.RuneCountInString(transcript),
	}
}

func (g *ContentGenerator) GenerateQuiz(ctx context.Context, videoID, transcript string, opts models.QuizOptions) (*models.Quiz, error) {
	if err := g.precheck(transcript); err != nil {
		return nil, err
	}
	opts = normalizeQuizOptions(opts)

	completion, err := g.complete(ctx, "quiz", buildQuizPrompt(opts, transcript), quizTuning)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(completion.Content)
	if err != nil {
		g.logger.Warn("quiz response rejected", "video_id", videoID, "error", err)
		return nil, err
	}

	g.logger.Info("quiz generated",
		"video_id", videoID,
		"questions", len(questions),
		"model", completion.Model,
		"total_tokens", completion.Usage.TotalTokens,
	)
	return &models.Quiz{
		Metadata:  g.metadata(videoID, transcript, opts),
		Questions: questions,
	}, nil
}

func (g *ContentGenerator) GenerateDiscussion(ctx context.Context, videoID, transcript string, opts models.DiscussionOptions) (*models.DiscussionSet, error) {
	if err := g.precheck(transcript); err != nil {
		return nil, err
	}
	opts = normalizeDiscussionOptions(opts)

	completion, err := g.complete(ctx, "discussion", buildDiscussionPrompt(opts, transcript), discussionTuning)
	if err != nil {
		return nil, err
	}

	seeds, err := parseDiscussionSeeds(completion.Content)
	if err != nil {
		g.logger.Warn("discussion response rejected", "video_id", videoID, "error", err)
		return nil, err
	}

	g.logger.Info("discussion set generated",
		"video_id", videoID,
		"seeds", len(seeds),
		"model", completion.Model,
		"total_tokens", completion.Usage.TotalTokens,
	)
	return &models.DiscussionSet{
		Metadata:        g.metadata(videoID, transcript, opts),
		DiscussionSeeds: seeds,
	}, nil
}

func (g *ContentGenerator) GenerateDescription(ctx context.Context, videoID, transcript string, opts models.DescriptionOptions) (*models.CourseDescription, error) {
	if err := g.precheck(transcript); err != nil {
		return nil, err
	}
	opts = normalizeDescriptionOptions(opts)

	completion, err := g.complete(ctx, "description", buildDescriptionPrompt(opts, transcript), descriptionTuning)
	if err != nil {
		return nil, err
	}

	desc, err := parseDescription(completion.Content)
	if err != nil {
		g.logger.Warn("description response rejected", "video_id", videoID, "error", err)
		return nil, err
	}

	g.logger.Info("course description generated",
		"video_id", videoID,
		"model", completion.Model,
		"total_tokens", completion.Usage.TotalTokens,
	)
	desc.Metadata = g.metadata(videoID, transcript, opts)
	return desc, nil
}

func clampCount(n, limit int) int {
	if n <= 0 {
		return defaultQuestionCount
	}
	if n > limit {
		return limit
	}
	return n
}

func normalizeQuizOptions(opts models.QuizOptions) models.QuizOptions {
	opts.QuestionCount = clampCount(opts.QuestionCount, maxQuizQuestions)

	switch opts.Difficulty {
	case "easy", "medium", "hard", "mixed":
	default:
		opts.Difficulty = "mixed"
	}

	kinds := make([]models.QuestionKind, 0, len(opts.QuestionTypes))
	for _, k := range opts.QuestionTypes {
		switch k {
		case models.KindMultipleChoice, models.KindTrueFalse, models.KindShortAnswer:
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		kinds = []models.QuestionKind{models.KindMultipleChoice, models.KindTrueFalse}
	}
	opts.QuestionTypes = kinds
	opts.FocusArea = strings.TrimSpace(opts.FocusArea)
	return opts
}

func normalizeDiscussionOptions(opts models.DiscussionOptions) models.DiscussionOptions {
	opts.QuestionCount = clampCount(opts.QuestionCount, maxDiscussionSeeds)

	types := make([]models.DiscussionType, 0, len(opts.DiscussionTypes))
	for _, t := range opts.DiscussionTypes {
		if t.Valid() {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = []models.DiscussionType{
			models.DiscussionCriticalThinking,
			models.DiscussionApplication,
			models.DiscussionReflection,
		}
	}
	opts.DiscussionTypes = types

	if strings.TrimSpace(opts.Audience) == "" {
		opts.Audience = "university students"
	}
	switch opts.Depth {
	case "surface", "moderate", "deep":
	default:
		opts.Depth = "moderate"
	}
	return opts
}

func normalizeDescriptionOptions(opts models.DescriptionOptions) models.DescriptionOptions {
	opts.CourseTitle = strings.TrimSpace(opts.CourseTitle)
	if strings.TrimSpace(opts.Audience) == "" {
		opts.Audience = "adult learners new to the subject"
	}
	switch opts.Tone {
	case "professional", "casual", "academic", "inspiring":
	default:
		opts.Tone = "professional"
	}
	if _, ok := descriptionLengths[opts.Length]; !ok {
		opts.Length = "medium"
	}
	return opts
}
