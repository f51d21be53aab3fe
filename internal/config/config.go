// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/workmap/internal/domain/network"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is a directory of weekly snapshot files loaded at startup.
	// Empty disables file loading.
	DataDir string `koanf:"data_dir"`

	// Watch reloads snapshot files from DataDir when they change.
	Watch bool `koanf:"watch"`

	// WatchDebounceMS is the quiet period, in milliseconds, before a changed
	// file is reloaded.
	WatchDebounceMS int `koanf:"watch_debounce_ms"`

	// DBPath selects the SQLite store. Empty keeps snapshots in memory.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CacheSize bounds the number of memoized views.
	CacheSize int `koanf:"cache_size"`

	// Layout canvas.
	CanvasWidth      float64 `koanf:"canvas_width"`
	CanvasHeight     float64 `koanf:"canvas_height"`
	CanvasPadding    float64 `koanf:"canvas_padding"`
	MaxRowSpacing    float64 `koanf:"max_row_spacing"`
	MaxMinDistance   float64 `koanf:"max_min_distance"`
	LayoutIterations int     `koanf:"layout_iterations"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1_024,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       10_000,
		CacheSize:        256,
		WatchDebounceMS:  100,
		CanvasWidth:      800,
		CanvasHeight:     600,
		CanvasPadding:    60,
		MaxRowSpacing:    90,
		MaxMinDistance:   110,
		LayoutIterations: 50,
	}
}

// Canvas returns the layout canvas described by c.
func (c *Config) Canvas() network.Canvas {
	return network.Canvas{
		Width:          c.CanvasWidth,
		Height:         c.CanvasHeight,
		Padding:        c.CanvasPadding,
		MaxRowSpacing:  c.MaxRowSpacing,
		MaxMinDistance: c.MaxMinDistance,
		Iterations:     c.LayoutIterations,
	}
}

// WatchDebounce returns WatchDebounceMS as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}
