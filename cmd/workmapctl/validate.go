package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/workmap/internal/adapters/loader"
)

func newValidateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every snapshot file of a directory decodes and validates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := loader.LoadDir(dir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WEEK\tITEMS\tFILE")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Week, len(f.Items), f.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of weekly snapshot files")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
