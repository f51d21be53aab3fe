package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/workmap/pkg/logger"
)

type weeksResponse struct {
	Weeks []string `json:"weeks"`
}

// fetchWeeks returns the week labels the service has applied.
func fetchWeeks(ctx context.Context, client *HTTPClient, baseURL string) (map[string]struct{}, error) {
	resp, err := client.Get(ctx, baseURL+"/weeks")
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /weeks: status %d", resp.StatusCode)
	}

	var out weeksResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("GET /weeks: %w", err)
	}
	set := make(map[string]struct{}, len(out.Weeks))
	for _, w := range out.Weeks {
		set[w] = struct{}{}
	}
	return set, nil
}

// verifyWeeks polls /weeks until every expected week is listed. Batches are
// applied asynchronously, so an accepted submission is not visible at once.
func verifyWeeks(ctx context.Context, cfg *Config, client *HTTPClient, expected []string, stats *Stats) error {
	cfg.Logger.Info(ctx, "verifying weeks", logger.Int("expected", len(expected)))

	deadline := time.Now().Add(cfg.WaitTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var missing []string
	for {
		applied, err := fetchWeeks(ctx, client, cfg.BaseURL)
		if err == nil {
			missing = missing[:0]
			for _, w := range expected {
				if _, ok := applied[w]; !ok {
					missing = append(missing, w)
				}
			}
			stats.WeeksVerified = len(expected) - len(missing)
			if len(missing) == 0 {
				cfg.Logger.Info(ctx, "all weeks applied", logger.Int("weeks", len(expected)))
				return nil
			}
		}
		if time.Now().After(deadline) {
			if err != nil {
				return fmt.Errorf("%w: %w", ErrVerify, err)
			}
			return fmt.Errorf("%w: missing %v", ErrVerify, missing)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
