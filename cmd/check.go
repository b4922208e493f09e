package cmd

import (
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show estimated context usage for the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			svc.Check()
			return nil
		},
	}
}
