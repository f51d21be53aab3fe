package ingest

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrSubmit is returned when at least one submission failed.
	ErrSubmit = errors.New("submission failed")
	// ErrVerify is returned when submitted weeks do not show up in time.
	ErrVerify = errors.New("weeks not applied")
)
