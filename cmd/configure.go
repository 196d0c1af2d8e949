package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// NewConfigureCmd creates the configure command.
func NewConfigureCmd() *cobra.Command {
	var req domain.ConfigureRequest

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Point the bot's triggers at a set of channels and join them",
		Long: `Runs the same reconciliation as the configure function: the app_mentioned
trigger of the quick reply workflow and the message_posted trigger of the
discuss workflow are created or updated to cover the given channels, and
the bot joins every one of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.svc.Configure(cmd.Context(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.QuickReplyWorkflowID, "quick-reply-workflow", "", "Callback id of the quick reply workflow")
	cmd.Flags().StringVar(&req.DiscussWorkflowID, "discuss-workflow", "", "Callback id of the discuss workflow")
	cmd.Flags().StringSliceVar(&req.ChannelIDs, "channels", nil, "Comma-separated channel ids")
	_ = cmd.MarkFlagRequired("quick-reply-workflow")
	_ = cmd.MarkFlagRequired("discuss-workflow")
	return cmd
}
