package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/workmap/internal/adapters/loader"
	"github.com/okian/workmap/pkg/logger"
)

// Run loads every snapshot file of cfg.Dir, submits them to the service and,
// when cfg.WaitTimeout is set, waits until all weeks are applied.
func Run(ctx context.Context, config *Config) (Stats, error) {
	cfg := config.withDefaults()
	stats := Stats{StartTime: time.Now()}

	cfg.Logger.Info(ctx, "starting ingest",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("dir", cfg.Dir),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewHTTPClient(cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, err
	}

	// Step 2: Load snapshot files
	files, err := loader.LoadDir(cfg.Dir)
	if err != nil {
		return stats, fmt.Errorf("load %s: %w", cfg.Dir, err)
	}
	stats.FilesLoaded = len(files)

	// Step 3: Submit concurrently
	submitFiles(ctx, cfg, client, files, &stats)

	// Step 4: Wait until the service has applied every week
	if cfg.WaitTimeout > 0 && stats.Failed == 0 {
		weeks := make([]string, len(files))
		for i, f := range files {
			weeks[i] = f.Week
		}
		if err := verifyWeeks(ctx, cfg, client, weeks, &stats); err != nil {
			return finish(ctx, cfg, stats), err
		}
	}

	stats = finish(ctx, cfg, stats)
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrSubmit, stats.Failed, stats.Submitted)
	}
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	_, _ = readResponseBody(resp)

	// Any 200 is healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func finish(ctx context.Context, cfg *Config, stats Stats) Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	var successRate float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Accepted+stats.Duplicate) / float64(stats.Submitted) * percentageMultiplier
	}
	cfg.Logger.Info(ctx, "final statistics",
		logger.Int("filesLoaded", stats.FilesLoaded),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("weeksVerified", stats.WeeksVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate))
	return stats
}
