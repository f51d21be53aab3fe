package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/okian/workmap/internal/ingest"
	"github.com/okian/workmap/pkg/logger"
)

func newIngestCmd() *cobra.Command {
	cfg := ingest.Config{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Submit every snapshot file of a directory to a running service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Logger = logger.Get().Named("ingest")
			stats, err := ingest.Run(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"files":          stats.FilesLoaded,
				"accepted":       stats.Accepted,
				"duplicate":      stats.Duplicate,
				"failed":         stats.Failed,
				"weeks_verified": stats.WeeksVerified,
				"duration":       stats.Duration.String(),
			})
		},
	}
	cmd.Flags().StringVar(&cfg.Dir, "dir", "", "directory of weekly snapshot files")
	cmd.Flags().StringVar(&cfg.BaseURL, "url", ingest.DefaultBaseURL, "base URL of the service")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "number of concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", ingest.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.WaitTimeout, "wait", 0, "wait up to this long for the weeks to be applied (0 skips)")
	cmd.Flags().StringVar(&cfg.Source, "source", ingest.DefaultSource, "source recorded with each snapshot")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
