package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrInvalidItem = errors.New("invalid snapshot item")
	ErrInvalidRisk = errors.New("invalid risk level")
	ErrInvalidWeek = errors.New("invalid week label")
)
