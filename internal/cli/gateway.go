package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func NewGatewayCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Completion gateway operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show provider configuration and queue state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				return printJSON(cmd.OutOrStdout(), svc.Gateway.Status())
			})
		},
	})
	return cmd
}
