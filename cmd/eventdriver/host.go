package main

import (
	"github.com/spf13/cobra"

	"eventdriver/internal/boundary"
	"eventdriver/internal/driver"
)

func newHostCmd(a *app) *cobra.Command {
	var unimplemented bool
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Serve the boundary protocol on stdin/stdout, logging each event to stderr",
		Long: "Runs the host side of the process boundary so this binary can stand in for a\n" +
			"foreign runtime. With --unimplemented every event is answered as the base stub would.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout is the protocol channel; logs already go to stderr.
			var h driver.Client
			if !unimplemented {
				h = driver.NewLogClient("host", a.log)
			}
			return boundary.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), h)
		},
	}
	cmd.Flags().BoolVar(&unimplemented, "unimplemented", false, "Answer every event with not_implemented")
	return cmd
}
