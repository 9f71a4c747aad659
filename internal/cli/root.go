package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"coursegen-backend/internal/app"
	"coursegen-backend/internal/config"
	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/models"
)

// TranscriptSource acquires transcripts. Implemented by transcript.Acquirer.
type TranscriptSource interface {
	GetTranscript(ctx context.Context, videoRef string) (*models.TranscriptRecord, error)
	Refresh(ctx context.Context, videoRef string) (*models.TranscriptRecord, error)
}

// Generator is implemented by services.ContentGenerator.
type Generator interface {
	GenerateQuiz(ctx context.Context, videoID, transcript string, opts models.QuizOptions) (*models.Quiz, error)
	GenerateDiscussion(ctx context.Context, videoID, transcript string, opts models.DiscussionOptions) (*models.DiscussionSet, error)
	GenerateDescription(ctx context.Context, videoID, transcript string, opts models.DescriptionOptions) (*models.CourseDescription, error)
}

// Store is the part of repository.ContentStore the CLI touches.
type Store interface {
	SaveTranscript(ctx context.Context, rec *models.TranscriptRecord) error
	SaveQuiz(ctx context.Context, videoID string, quiz *models.Quiz) error
	SaveDiscussion(ctx context.Context, videoID string, set *models.DiscussionSet) error
	SaveDescription(ctx context.Context, videoID string, desc *models.CourseDescription) error
	VideoIDs(ctx context.Context) []string
	Bucket(ctx context.Context, videoID string) *models.VideoBucket
	Stats(ctx context.Context) models.StoreStats
	DeleteVideo(ctx context.Context, videoID string) error
}

type GatewayStatus interface {
	Status() gateway.Status
}

type Services struct {
	Transcripts TranscriptSource
	Generator   Generator
	Store       Store
	Gateway     GatewayStatus
}

// Loader builds Services on first use and returns a release func.
type Loader func(ctx context.Context) (*Services, func(), error)

// AppLoader wires Services from the environment the same way the server does.
func AppLoader(ctx context.Context) (*Services, func(), error) {
	cfg := config.Load()
	a, err := app.Build(ctx, cfg, app.NewLogger(cfg.LogLevel))
	if err != nil {
		return nil, nil, err
	}
	return &Services{
		Transcripts: a.Acquirer,
		Generator:   a.Generator,
		Store:       a.Store,
		Gateway:     a.Gateway,
	}, a.Close, nil
}

func NewRootCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contentctl",
		Short:         "Course content pipeline tools",
		Long:          `Fetch lesson transcripts, generate quizzes, discussion prompts and course descriptions, and inspect the content store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewTranscriptCommand(load))
	cmd.AddCommand(NewGenerateCommand(load))
	cmd.AddCommand(NewStoreCommand(load))
	cmd.AddCommand(NewGatewayCommand(load))
	cmd.AddCommand(NewTokenCommand(envSecret))
	return cmd
}

// withServices runs fn with loaded services and releases them afterwards.
func withServices(cmd *cobra.Command, load Loader, fn func(ctx context.Context, svc *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, release, err := load(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if release != nil {
		defer release()
	}
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
