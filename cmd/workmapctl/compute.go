package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/workmap/internal/adapters/http/api"
	service "github.com/okian/workmap/internal/app"
	"github.com/okian/workmap/internal/config"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/pkg/logger"
)

type computeFlags struct {
	dir  string
	week string
}

func newComputeCmd() *cobra.Command {
	var flags computeFlags

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a view from a directory of snapshot files",
	}
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "directory of weekly snapshot files")
	cmd.PersistentFlags().StringVar(&flags.week, "week", "", "week label to compute")
	_ = cmd.MarkPersistentFlagRequired("dir")
	_ = cmd.MarkPersistentFlagRequired("week")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "workmap",
			Short: "Project, module and feature tree with rolled up metrics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withService(cmd.Context(), flags.dir, func(ctx context.Context, svc *service.Service) (any, error) {
					return svc.WorkMap(ctx, flags.week)
				}, cmd.OutOrStdout())
			},
		},
		newComputeNetworkCmd(&flags),
		&cobra.Command{
			Use:   "continuity",
			Short: "Plan continuity against the neighbouring weeks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withService(cmd.Context(), flags.dir, func(ctx context.Context, svc *service.Service) (any, error) {
					return svc.Continuity(ctx, flags.week)
				}, cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

func newComputeNetworkCmd(flags *computeFlags) *cobra.Command {
	var (
		filter network.Filter
		pins   []string
	)

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Laid out collaboration network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := api.ParsePins(pins)
			if err != nil {
				return err
			}
			return withService(cmd.Context(), flags.dir, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.Network(ctx, flags.week, filter, overrides)
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&filter.Project, "project", "", "only items of this project")
	cmd.Flags().StringVar(&filter.Module, "module", "", "only items of this module")
	cmd.Flags().StringVar(&filter.Feature, "feature", "", "only items of this feature")
	cmd.Flags().StringArrayVar(&pins, "pin", nil, "pin a node, as name@x,y (repeatable)")
	return cmd
}

// withService runs view against an in-memory service seeded from dir and
// writes the result as indented JSON.
func withService(ctx context.Context, dir string, view func(context.Context, *service.Service) (any, error), out io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(1),
		service.WithCanvas(cfg.Canvas()),
		service.WithDataDir(dir),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	v, err := view(ctx, svc)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	return writeJSON(out, v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
