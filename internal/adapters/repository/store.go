// Package repository persists weekly snapshots.
package repository

import (
	"context"

	"github.com/okian/workmap/internal/domain/model"
)

// Store provides read/write access to weekly snapshots. Weeks are opaque
// labels ordered lexicographically, so ISO labels like 2025-W14 sort in time
// order.
type Store interface {
	// PutWeek replaces every item recorded for week.
	PutWeek(ctx context.Context, week string, items []model.SnapshotItem) error

	// Week returns the items of week in submission order.
	// Returns ErrNotFound if the week is unknown.
	Week(ctx context.Context, week string) ([]model.SnapshotItem, error)

	// Weeks returns every stored label in ascending order.
	Weeks(ctx context.Context) ([]string, error)

	// Neighbors returns the labels immediately before and after week, or ""
	// at either end. Returns ErrNotFound if the week is unknown.
	Neighbors(ctx context.Context, week string) (prev, next string, err error)

	Close() error
}
