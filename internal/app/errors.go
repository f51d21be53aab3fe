package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("ingest queue is full")
	ErrInvalidBatch = errors.New("invalid snapshot batch")
	ErrWeekNotFound = errors.New("week not found")
)
