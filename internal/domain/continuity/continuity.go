// Package continuity checks whether the tasks a person planned for next week show
// up as the tasks they report the following week.
package continuity

import (
	"strings"
)

// Classification thresholds on the match ratio.
const (
	connectedRatio = 0.4
	partialRatio   = 0.2
	minTokenLength = 3
)

// Status classifies the link between two consecutive weeks.
type Status string

// Known statuses.
const (
	StatusConnected Status = "connected"
	StatusPartial   Status = "partial"
	StatusBroken    Status = "broken"
	StatusUnknown   Status = "unknown"
)

// Score orders statuses from most to least worrying. Unknown sorts last.
func (s Status) Score() int {
	switch s {
	case StatusBroken:
		return 0
	case StatusPartial:
		return 1
	case StatusConnected:
		return 2
	default:
		return 3
	}
}

// Match is the outcome of comparing two task lists.
type Match struct {
	Count  int     `json:"count"`
	Ratio  float64 `json:"ratio"`
	Status Status  `json:"status"`
}

// Tokenize lowercases the tasks, splits them on whitespace and keeps the distinct
// tokens longer than two characters.
func Tokenize(tasks []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, task := range tasks {
		for _, tok := range strings.Fields(strings.ToLower(task)) {
			if len([]rune(tok)) < minTokenLength {
				continue
			}
			set[tok] = struct{}{}
		}
	}
	return set
}

// Compare measures how much of the planned tasks reappear in the reported ones.
// The ratio is relative to the planned tokens only: extra reported work does not
// lower it.
func Compare(planned, reported []string) Match {
	if len(planned) == 0 || len(reported) == 0 {
		return Match{Status: StatusUnknown}
	}
	plannedTokens := Tokenize(planned)
	reportedTokens := Tokenize(reported)
	if len(plannedTokens) == 0 {
		// Only short tokens were planned; nothing can match.
		return Match{Status: StatusBroken}
	}
	m := Match{}
	for tok := range plannedTokens {
		if _, ok := reportedTokens[tok]; ok {
			m.Count++
		}
	}
	m.Ratio = float64(m.Count) / float64(len(plannedTokens))
	switch {
	case m.Ratio >= connectedRatio:
		m.Status = StatusConnected
	case m.Ratio >= partialRatio:
		m.Status = StatusPartial
	default:
		m.Status = StatusBroken
	}
	return m
}

// Classify returns only the status of Compare.
func Classify(planned, reported []string) Status {
	return Compare(planned, reported).Status
}
