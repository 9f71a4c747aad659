package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"coursegen-backend/internal/models"
	"coursegen-backend/internal/transcript"
)

func NewTranscriptCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Transcript operations",
	}
	cmd.AddCommand(newTranscriptFetchCommand(load))
	cmd.AddCommand(newTranscriptSearchCommand(load))
	cmd.AddCommand(newTranscriptCleanCommand())
	return cmd
}

func acquire(ctx context.Context, svc *Services, ref string, refresh bool) (*models.TranscriptRecord, error) {
	if refresh {
		return svc.Transcripts.Refresh(ctx, ref)
	}
	return svc.Transcripts.GetTranscript(ctx, ref)
}

func newTranscriptFetchCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [VIDEO]",
		Short: "Fetch a lesson transcript",
		Long:  `Fetch a transcript by watch URL, short link or video id, trying each configured strategy in order.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")
			save, _ := cmd.Flags().GetBool("save")
			format, _ := cmd.Flags().GetString("format")

			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				rec, err := acquire(ctx, svc, args[0], refresh)
				if err != nil {
					return err
				}
				if save {
					if err := svc.Store.SaveTranscript(ctx, rec); err != nil {
						return fmt.Errorf("failed to save transcript: %w", err)
					}
				}

				if format == "json" {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Video: %s (source: %s, %d segments)\n\n", rec.VideoID, rec.Source, len(rec.Segments))
				fmt.Fprintln(out, rec.Text)
				return nil
			})
		},
	}
	cmd.Flags().Bool("refresh", false, "Bypass the transcript cache")
	cmd.Flags().Bool("save", false, "Store the transcript in the content store")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func newTranscriptSearchCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "search [VIDEO] [QUERY]",
		Short: "Find where a phrase is spoken",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				rec, err := svc.Transcripts.GetTranscript(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				matches := transcript.Search(rec, args[1])
				if len(matches) == 0 {
					fmt.Fprintln(out, "No matches")
					return nil
				}
				for _, m := range matches {
					fmt.Fprintf(out, "[%s] %s\n", m.Timestamp, m.Segment.Text)
				}
				return nil
			})
		},
	}
}

func newTranscriptCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [FILE]",
		Short: "Clean raw transcript text for prompting",
		Long:  `Strip bracketed stage directions and filler words. Reads stdin when FILE is omitted or "-".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			raw, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), transcript.CleanForAI(strings.TrimSpace(string(raw))))
			return nil
		},
	}
}
