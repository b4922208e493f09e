package cmd

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Preview the archive summary without saving (same as archive --dry)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			return svc.Summary(cmd.Context())
		},
	}
}
