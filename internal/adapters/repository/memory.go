package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/pkg/metrics"
)

// MemoryStore keeps weeks in a map guarded by a RWMutex, with the labels
// held sorted for neighbour lookups.
type MemoryStore struct {
	mu     sync.RWMutex
	weeks  map[string][]model.SnapshotItem
	labels []string
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{weeks: make(map[string][]model.SnapshotItem)}
}

func (s *MemoryStore) PutWeek(_ context.Context, week string, items []model.SnapshotItem) error {
	if err := model.ValidateWeek(week); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.weeks[week]; !ok {
		i, _ := slices.BinarySearch(s.labels, week)
		s.labels = slices.Insert(s.labels, i, week)
	}
	s.weeks[week] = slices.Clone(items)
	return nil
}

func (s *MemoryStore) Week(_ context.Context, week string) ([]model.SnapshotItem, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	items, ok := s.weeks[week]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(items), nil
}

func (s *MemoryStore) Weeks(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.labels), nil
}

func (s *MemoryStore) Neighbors(_ context.Context, week string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", "", ErrClosed
	}
	i, ok := slices.BinarySearch(s.labels, week)
	if !ok {
		return "", "", ErrNotFound
	}
	var prev, next string
	if i > 0 {
		prev = s.labels[i-1]
	}
	if i+1 < len(s.labels) {
		next = s.labels[i+1]
	}
	return prev, next, nil
}

// Close releases the stored weeks. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.weeks = nil
	s.labels = nil
	return nil
}
