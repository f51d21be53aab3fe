package repository

import (
	"errors"

	"github.com/okian/workmap/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("week not found")
	ErrInvalidWeek = model.ErrInvalidWeek
	ErrClosed      = errors.New("store closed")
)
