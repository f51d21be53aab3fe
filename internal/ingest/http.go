package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workmap/internal/adapters/loader"
	"github.com/okian/workmap/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitFiles posts every week file concurrently and fills the submission
// counters of stats.
func submitFiles(ctx context.Context, cfg *Config, client *HTTPClient, files []loader.WeekFile, stats *Stats) {
	cfg.Logger.Info(ctx, "submitting snapshots",
		logger.Int("files", len(files)),
		logger.Int("workers", cfg.Workers))

	url := cfg.BaseURL + "/snapshots"

	var submitted, accepted, duplicate, failed int64

	fileChan := make(chan loader.WeekFile, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range fileChan {
				result := submitFile(ctx, client, url, f, cfg.Source)
				atomic.AddInt64(&submitted, 1)
				switch result {
				case ResultAccepted:
					atomic.AddInt64(&accepted, 1)
				case ResultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					cfg.Logger.Warn(ctx, "snapshot rejected",
						logger.String("week", f.Week),
						logger.String("path", f.Path))
				}
			}
		}()
	}

	go func() {
		defer close(fileChan)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case fileChan <- f:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Accepted = int(atomic.LoadInt64(&accepted))
	stats.Duplicate = int(atomic.LoadInt64(&duplicate))
	stats.Failed = int(atomic.LoadInt64(&failed))

	cfg.Logger.Info(ctx, "snapshot submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
}

// submitFile submits one week file and classifies the response.
func submitFile(ctx context.Context, client *HTTPClient, url string, f loader.WeekFile, source string) Result {
	resp, err := client.Post(ctx, url, f.Batch(source))
	if err != nil {
		return ResultFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return ResultFailed
	}

	var ack AckResponse
	switch resp.StatusCode {
	case http.StatusAccepted:
		return ResultAccepted
	case http.StatusOK:
		if err := json.Unmarshal(body, &ack); err == nil && !ack.Duplicate {
			return ResultAccepted
		}
		return ResultDuplicate
	default:
		return ResultFailed
	}
}
