package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coursegen-backend/internal/transcript"
)

func NewStoreCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the content store",
	}
	cmd.AddCommand(newStoreListCommand(load))
	cmd.AddCommand(newStoreStatsCommand(load))
	cmd.AddCommand(newStoreDeleteCommand(load))
	return cmd
}

func newStoreListCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored videos and their saved artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				ids := svc.Store.VideoIDs(ctx)
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No videos stored")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VIDEO\tTRANSCRIPT\tQUIZZES\tDISCUSSIONS\tDESCRIPTIONS")
				for _, id := range ids {
					b := svc.Store.Bucket(ctx, id)
					status := string(b.TranscriptStatus)
					if status == "" {
						status = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", id, status, len(b.Quizzes), len(b.Discussions), len(b.Descriptions))
				}
				return w.Flush()
			})
		},
	}
}

func newStoreStatsCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show content totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				return printJSON(cmd.OutOrStdout(), svc.Store.Stats(ctx))
			})
		},
	}
}

func newStoreDeleteCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [VIDEO]",
		Short: "Delete everything stored for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := transcript.ExtractVideoID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				if err := svc.Store.DeleteVideo(ctx, videoID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", videoID)
				return nil
			})
		},
	}
}
