package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot file format")
	ErrDecode            = errors.New("decode snapshot file")
	ErrDuplicateWeek     = errors.New("week declared by more than one file")
)
