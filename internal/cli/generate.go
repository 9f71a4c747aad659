package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"coursegen-backend/internal/models"
	"coursegen-backend/internal/transcript"
)

func NewGenerateCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate learning content from a lesson transcript",
	}
	cmd.PersistentFlags().Bool("save", false, "Save the generated artifact to the content store")
	cmd.AddCommand(newGenerateQuizCommand(load))
	cmd.AddCommand(newGenerateDiscussionCommand(load))
	cmd.AddCommand(newGenerateDescriptionCommand(load))
	return cmd
}

// generate acquires the transcript, runs gen on its cleaned text, then prints
// and optionally saves the result.
func generate[T any](cmd *cobra.Command, load Loader, ref string,
	gen func(ctx context.Context, svc *Services, videoID, text string) (*T, error),
	save func(ctx context.Context, svc *Services, videoID string, item *T) error,
) error {
	persist, _ := cmd.Flags().GetBool("save")

	return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
		rec, err := svc.Transcripts.GetTranscript(ctx, ref)
		if err != nil {
			return err
		}

		item, err := gen(ctx, svc, rec.VideoID, transcript.CleanForAI(rec.Text))
		if err != nil {
			return err
		}

		if persist {
			if err := svc.Store.SaveTranscript(ctx, rec); err != nil {
				return fmt.Errorf("failed to save transcript: %w", err)
			}
			if err := save(ctx, svc, rec.VideoID, item); err != nil {
				return fmt.Errorf("failed to save artifact: %w", err)
			}
		}
		return printJSON(cmd.OutOrStdout(), item)
	})
}

func newGenerateQuizCommand(load Loader) *cobra.Command {
	var opts models.QuizOptions
	var types []string

	cmd := &cobra.Command{
		Use:   "quiz [VIDEO]",
		Short: "Generate a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range types {
				opts.QuestionTypes = append(opts.QuestionTypes, models.QuestionKind(t))
			}
			return generate(cmd, load, args[0],
				func(ctx context.Context, svc *Services, videoID, text string) (*models.Quiz, error) {
					return svc.Generator.GenerateQuiz(ctx, videoID, text, opts)
				},
				func(ctx context.Context, svc *Services, videoID string, q *models.Quiz) error {
					return svc.Store.SaveQuiz(ctx, videoID, q)
				})
		},
	}
	cmd.Flags().IntVar(&opts.QuestionCount, "count", 5, "Number of questions")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "mixed", "easy|medium|hard|mixed")
	cmd.Flags().StringSliceVar(&types, "types", nil, "Question types (multiple_choice,true_false,short_answer)")
	cmd.Flags().StringVar(&opts.FocusArea, "focus", "", "Topic to emphasize")
	cmd.Flags().BoolVar(&opts.IncludeExplanations, "explanations", true, "Ask for answer explanations")
	return cmd
}

func newGenerateDiscussionCommand(load Loader) *cobra.Command {
	var opts models.DiscussionOptions
	var types []string

	cmd := &cobra.Command{
		Use:   "discussion [VIDEO]",
		Short: "Generate discussion prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range types {
				opts.DiscussionTypes = append(opts.DiscussionTypes, models.DiscussionType(t))
			}
			return generate(cmd, load, args[0],
				func(ctx context.Context, svc *Services, videoID, text string) (*models.DiscussionSet, error) {
					return svc.Generator.GenerateDiscussion(ctx, videoID, text, opts)
				},
				func(ctx context.Context, svc *Services, videoID string, d *models.DiscussionSet) error {
					return svc.Store.SaveDiscussion(ctx, videoID, d)
				})
		},
	}
	cmd.Flags().IntVar(&opts.QuestionCount, "count", 5, "Number of prompts")
	cmd.Flags().StringSliceVar(&types, "types", nil, "Prompt types (critical_thinking,application,debate,reflection,case_study)")
	cmd.Flags().StringVar(&opts.Audience, "audience", "", "Intended audience")
	cmd.Flags().StringVar(&opts.Depth, "depth", "moderate", "surface|moderate|deep")
	cmd.Flags().BoolVar(&opts.IncludeFollowUps, "follow-ups", true, "Ask for follow-up questions")
	return cmd
}

func newGenerateDescriptionCommand(load Loader) *cobra.Command {
	var opts models.DescriptionOptions

	cmd := &cobra.Command{
		Use:   "description [VIDEO]",
		Short: "Generate a course description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd, load, args[0],
				func(ctx context.Context, svc *Services, videoID, text string) (*models.CourseDescription, error) {
					return svc.Generator.GenerateDescription(ctx, videoID, text, opts)
				},
				func(ctx context.Context, svc *Services, videoID string, d *models.CourseDescription) error {
					return svc.Store.SaveDescription(ctx, videoID, d)
				})
		},
	}
	cmd.Flags().StringVar(&opts.CourseTitle, "title", "", "Working course title")
	cmd.Flags().StringVar(&opts.Audience, "audience", "", "Intended audience")
	cmd.Flags().StringVar(&opts.Tone, "tone", "professional", "professional|casual|academic|inspiring")
	cmd.Flags().StringVar(&opts.Length, "length", "medium", "short|medium|long")
	cmd.Flags().BoolVar(&opts.IncludeObjectives, "objectives", true, "Include learning objectives")
	cmd.Flags().BoolVar(&opts.IncludePrerequisites, "prerequisites", true, "Include prerequisites")
	cmd.Flags().StringSliceVar(&opts.FocusKeywords, "keywords", nil, "Keywords to work in")
	return cmd
}
