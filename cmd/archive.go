package cmd

import (
	"github.com/spf13/cobra"
)

func newArchiveCmd() *cobra.Command {
	var dry bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Extract and save the active session's key content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			return svc.Archive(cmd.Context(), dry)
		},
	}
	cmd.Flags().BoolVar(&dry, "dry", false, "Preview what would be archived without saving")
	return cmd
}
