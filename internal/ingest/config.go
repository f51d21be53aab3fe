// Package ingest pushes weekly snapshot files to a running work map service.
package ingest

import (
	"runtime"
	"time"

	"github.com/okian/workmap/pkg/logger"
)

// Default configuration constants.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultTimeout     = 30 * time.Second
	DefaultWaitTimeout = 30 * time.Second
	DefaultSource      = "workmapctl"

	workerChannelMultiplier = 2
	pollInterval            = 100 * time.Millisecond
	percentageMultiplier    = 100
)

// Config holds configuration for an ingest run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Dir         string        // Directory of snapshot files
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // How long to wait for weeks to appear; 0 skips verification
	Source      string        // Source recorded with each batch
	Logger      logger.Logger
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Workers < 1 {
		out.Workers = runtime.NumCPU()
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Source == "" {
		out.Source = DefaultSource
	}
	if out.Logger == nil {
		out.Logger = logger.Get().Named("ingest")
	}
	return &out
}

// AckResponse is the service's answer to a submission.
type AckResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Week         string `json:"week"`
	Duplicate    bool   `json:"duplicate"`
}

// Result classifies a single submission.
type Result string

// Submission results.
const (
	ResultAccepted  Result = "accepted"
	ResultDuplicate Result = "duplicate"
	ResultFailed    Result = "failed"
)

// Stats holds run statistics.
type Stats struct {
	FilesLoaded   int
	Submitted     int
	Accepted      int
	Duplicate     int
	Failed        int
	WeeksVerified int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
