package cmd

import (
	"github.com/spf13/cobra"
)

func newAutoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Archive only when usage exceeds the threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			return svc.Auto(cmd.Context())
		},
	}
}
