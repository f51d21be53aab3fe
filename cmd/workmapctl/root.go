package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/workmap/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	root := &cobra.Command{
		Use:           "workmapctl",
		Short:         "Work map toolbox",
		Long:          "workmapctl builds work maps, collaboration networks and continuity reports from weekly snapshot files, and ingests those files into a running service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Logs go to stderr so stdout stays machine readable.
			if err := logger.InitWith(cmd.ErrOrStderr(), logFormat); err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newComputeCmd(), newIngestCmd(), newValidateCmd())
	return root
}
