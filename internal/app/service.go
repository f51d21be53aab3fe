// Package service wires storage, ingestion and the work map views into the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/workmap/internal/adapters/loader"
	eventqueue "github.com/okian/workmap/internal/adapters/mq/queue"
	workerpool "github.com/okian/workmap/internal/adapters/mq/worker"
	"github.com/okian/workmap/internal/adapters/repository"
	"github.com/okian/workmap/internal/domain/dedupe"
	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/pkg/logger"
	"github.com/okian/workmap/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for the work map.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	queue      *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	watcher    *loader.Watcher
	views      *lru.Cache[viewKey, any]

	// revisions counts rewrites per week; cached views key on it.
	revMu     sync.Mutex
	revisions map[string]uint64

	workerCount   int
	queueSize     int
	dedupeSize    int
	cacheSize     int
	canvas        network.Canvas
	dbPath        string
	dataDir       string
	watch         bool
	watchDebounce time.Duration

	started   bool
	cancel    context.CancelFunc
	watchDone chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1_024,
		dedupeSize:  10_000,
		cacheSize:   256,
		canvas:      network.DefaultCanvas(),
		revisions:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, seeds it from the data dir, and starts the workers
// and the optional directory watcher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting work map service...")

	if s.store == nil {
		if s.dbPath != "" {
			store, err := repository.OpenSQLite(ctx, s.dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using memory store")
		}
	}

	views, err := lru.New[viewKey, any](s.cacheSize)
	if err != nil {
		return fmt.Errorf("view cache: %w", err)
	}
	s.views = views
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	if s.dataDir != "" {
		if err := s.seed(ctx); err != nil {
			_ = s.store.Close()
			s.store = nil
			return err
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.workerPool.Start(runCtx)

	if s.dataDir != "" && s.watch {
		w, err := loader.NewWatcher(s.dataDir, s.watchDebounce)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			cancel()
			return fmt.Errorf("watch %s: %w", s.dataDir, err)
		}
		s.watcher = w
		s.watchDone = make(chan struct{})
		go s.consumeChanges(runCtx, w, s.watchDone)
	}

	if weeks, err := s.store.Weeks(ctx); err == nil {
		metrics.UpdateWeeksTotal(len(weeks))
	}

	s.started = true
	s.logger.Info(ctx, "work map service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Bool("watch", s.watcher != nil),
	)
	return nil
}

// seed applies every snapshot file of the data dir synchronously so the
// views are complete once Start returns.
func (s *Service) seed(ctx context.Context) error {
	files, err := loader.LoadDir(s.dataDir)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.dataDir, err)
	}
	for i := range files {
		if err := s.Apply(ctx, files[i].Batch("file:"+files[i].Path)); err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "seeded snapshots", logger.String("dir", s.dataDir), logger.Int("weeks", len(files)))
	return nil
}

func (s *Service) consumeChanges(ctx context.Context, w *loader.Watcher, done chan<- struct{}) {
	defer close(done)

	for ch := range w.Changes {
		switch ch.Kind {
		case loader.ChangeModified:
			dup, err := s.Submit(ctx, ch.Week.Batch("watch:"+ch.File))
			if err != nil {
				s.logger.Error(ctx, "resubmit changed file failed", logger.String("file", ch.File), logger.Error(err))
				continue
			}
			s.logger.Info(ctx, "changed file resubmitted",
				logger.String("file", ch.File),
				logger.String("week", ch.Week.Week),
				logger.Bool("duplicate", dup),
			)
		case loader.ChangeRemoved:
			// Stored weeks outlive their files.
			s.logger.Warn(ctx, "snapshot file removed, week kept", logger.String("file", ch.File))
		case loader.ChangeInvalid:
			metrics.RecordIngestError()
			metrics.RecordErrorByComponent("loader", "decode_error")
			s.logger.Error(ctx, "snapshot file rejected", logger.String("file", ch.File), logger.Error(ch.Err))
		}
	}
}

// Stop stops the watcher, drains the queue, and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	// Submissions fail with ErrNotStarted from here on, which also lets the
	// watcher consumer finish without holding the lock.
	s.started = false
	watcher, watchDone, pool, cancelRun := s.watcher, s.watchDone, s.workerPool, s.cancel
	s.watcher = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping work map service...")

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			s.logger.Warn(ctx, "error closing watcher", logger.Error(err))
		}
		<-watchDone
	}
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	cancelRun()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "error closing store", logger.Error(err))
	}
	s.store = nil
	s.logger.Info(ctx, "work map service stopped")
}

// Submit validates b and queues it for the workers. It reports duplicate
// submissions without queueing them again and returns ErrBackpressure when
// the queue is full. An empty SubmissionID is assigned.
func (s *Service) Submit(ctx context.Context, b model.Batch) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if b.SubmissionID == "" {
		b.SubmissionID = uuid.NewString()
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now().UTC()
	}
	if err := b.Validate(); err != nil {
		metrics.RecordIngestError()
		return false, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	if s.deduper.SeenAndRecord(ctx, b.SubmissionID) {
		metrics.RecordSnapshotDuplicate()
		s.logger.Debug(ctx, "duplicate submission skipped", logger.String("submission_id", b.SubmissionID))
		return true, nil
	}
	if !s.queue.Enqueue(ctx, b) {
		s.deduper.Unrecord(ctx, b.SubmissionID)
		return false, ErrBackpressure
	}

	metrics.RecordSnapshotSubmitted()
	s.logger.Debug(ctx, "submission queued",
		logger.String("submission_id", b.SubmissionID),
		logger.String("week", b.Week),
		logger.Int("items", len(b.Items)),
	)
	return false, nil
}

// Apply stores b as the full content of its week. Workers call it for every
// queued batch.
func (s *Service) Apply(ctx context.Context, b model.Batch) error {
	if err := b.Validate(); err != nil {
		metrics.RecordIngestError()
		return fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}
	if err := s.store.PutWeek(ctx, b.Week, b.Items); err != nil {
		metrics.RecordIngestError()
		metrics.RecordErrorByComponent("repository", "put_week")
		return fmt.Errorf("store week %s: %w", b.Week, err)
	}

	// The store is written before the revision moves, so a cached view is
	// never older than the revision it is keyed under.
	s.revMu.Lock()
	s.revisions[b.Week]++
	s.revMu.Unlock()

	metrics.RecordSnapshotApplied(len(b.Items))
	if weeks, err := s.store.Weeks(ctx); err == nil {
		metrics.UpdateWeeksTotal(len(weeks))
	}
	s.logger.Info(ctx, "snapshot applied",
		logger.String("week", b.Week),
		logger.String("submission_id", b.SubmissionID),
		logger.String("source", b.Source),
		logger.Int("items", len(b.Items)),
	)
	return nil
}

// Weeks lists the stored week labels in ascending order.
func (s *Service) Weeks(ctx context.Context) ([]string, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	return store.Weeks(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"cacheSize":   s.cacheSize,
		"watch":       s.watcher != nil,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	queueLen := s.queue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["dedupeEntries"] = s.deduper.Size()
	stats["cachedViews"] = s.views.Len()
	if weeks, err := s.store.Weeks(ctx); err == nil {
		stats["weeks"] = len(weeks)
		metrics.UpdateWeeksTotal(len(weeks))
	}
	metrics.UpdateQueueSize(queueLen)
	return stats
}

func (s *Service) activeStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) revision(week string) uint64 {
	s.revMu.Lock()
	defer s.revMu.Unlock()
	return s.revisions[week]
}

func notFound(week string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrWeekNotFound, week)
	}
	return err
}
