package service

import (
	"time"

	"github.com/okian/workmap/internal/adapters/repository"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batches.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCacheSize sets how many computed views are memoized.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithCanvas sets the network layout canvas.
func WithCanvas(c network.Canvas) Option {
	return func(s *Service) {
		s.canvas = c
	}
}

// WithStore injects a store. It takes precedence over WithDBPath and is
// closed by Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath selects a SQLite store at path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithDataDir loads snapshot files from dir on Start.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		s.dataDir = dir
	}
}

// WithWatch keeps reloading snapshot files from the data dir.
func WithWatch(watch bool) Option {
	return func(s *Service) {
		s.watch = watch
	}
}

// WithWatchDebounce sets the quiet period before a changed file is reloaded.
func WithWatchDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.watchDebounce = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
