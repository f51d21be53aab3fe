package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const maxWeekLabelLength = 64

// Batch is one submitted weekly snapshot: every item recorded for a week.
// A batch replaces whatever was stored for that week before.
type Batch struct {
	SubmissionID string         `json:"submission_id"`
	Week         string         `json:"week"`
	Items        []SnapshotItem `json:"items"`
	Source       string         `json:"source,omitempty"`
	ReceivedAt   time.Time      `json:"received_at"`
}

// Validate checks the week label and every item.
func (b *Batch) Validate() error {
	if err := ValidateWeek(b.Week); err != nil {
		return err
	}
	for i := range b.Items {
		if err := b.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// ValidateWeek accepts short printable labels without separators or spaces,
// such as 2025-W14. Labels order lexicographically.
func ValidateWeek(week string) error {
	if week == "" {
		return fmt.Errorf("%w: empty", ErrInvalidWeek)
	}
	if len(week) > maxWeekLabelLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidWeek, maxWeekLabelLength)
	}
	if strings.ContainsAny(week, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidWeek, week)
	}
	for _, r := range week {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidWeek, week)
		}
	}
	return nil
}
