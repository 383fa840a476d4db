package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type replayer interface {
	HandleS3URL(ctx context.Context, url string) (int, error)
}

// newRootCommand replays exported evaluations outside Lambda, e.g.
// notifier s3://bucket/connect/instance/evaluations/
func newRootCommand(r replayer) *cobra.Command {
	return &cobra.Command{
		Use:          "notifier <s3-url>",
		Short:        "Send evaluation notifications for every evaluation under an S3 prefix",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sent, err := r.HandleS3URL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d notification(s)\n", sent)
			return nil
		},
	}
}
