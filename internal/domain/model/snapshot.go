// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// UnspecifiedModule names the module bucket for items that declare none.
const UnspecifiedModule = "(unspecified)"

// Progress and risk bounds accepted on ingestion.
const (
	MaxPercent   = 100
	MaxRiskLevel = 3
)

// Relation classifies a declared collaboration.
type Relation string

// Known relations.
const (
	// RelationPair is concurrent joint work.
	RelationPair Relation = "pair"
	// RelationPre means the collaborator supplied input preceding the author's work.
	RelationPre Relation = "pre"
	// RelationPost means the author's output feeds the collaborator's next work.
	RelationPost Relation = "post"
)

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationPair, RelationPre, RelationPost:
		return true
	default:
		return false
	}
}

// Collaborator is a person named on an item together with the relation to the author.
type Collaborator struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Relation Relation `json:"relation" yaml:"relation" toml:"relation"`
}

// SnapshotItem is one person's weekly status record for one feature.
type SnapshotItem struct {
	Name            string         `json:"name" yaml:"name" toml:"name"`
	Domain          string         `json:"domain" yaml:"domain" toml:"domain"`
	Project         string         `json:"project" yaml:"project" toml:"project"`
	Module          string         `json:"module,omitempty" yaml:"module,omitempty" toml:"module"`
	Feature         string         `json:"feature" yaml:"feature" toml:"feature"`
	ProgressPercent int            `json:"progress_percent" yaml:"progress_percent" toml:"progress_percent"`
	PlanPercent     *int           `json:"plan_percent,omitempty" yaml:"plan_percent,omitempty" toml:"plan_percent"`
	RiskLevel       RiskLevel      `json:"risk_level" yaml:"risk_level" toml:"risk_level"`
	RiskNotes       []string       `json:"risk_notes,omitempty" yaml:"risk_notes,omitempty" toml:"risk_notes"`
	PastWeekTasks   []string       `json:"past_week_tasks,omitempty" yaml:"past_week_tasks,omitempty" toml:"past_week_tasks"`
	NextWeekTasks   []string       `json:"next_week_tasks,omitempty" yaml:"next_week_tasks,omitempty" toml:"next_week_tasks"`
	Collaborators   []Collaborator `json:"collaborators,omitempty" yaml:"collaborators,omitempty" toml:"collaborators"`
}

// ModuleName returns the declared module or UnspecifiedModule.
func (it *SnapshotItem) ModuleName() string {
	if it.Module == "" {
		return UnspecifiedModule
	}
	return it.Module
}

// Key returns the identity of the feature the item reports on.
func (it *SnapshotItem) Key() Key {
	return Key{
		Domain:  it.Domain,
		Project: it.Project,
		Module:  it.ModuleName(),
		Feature: it.Feature,
	}
}

// Validate checks the fields ingestion relies on.
func (it *SnapshotItem) Validate() error {
	switch {
	case strings.TrimSpace(it.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	case strings.TrimSpace(it.Project) == "":
		return fmt.Errorf("%w: missing project", ErrInvalidItem)
	case strings.TrimSpace(it.Feature) == "":
		return fmt.Errorf("%w: missing feature", ErrInvalidItem)
	case it.ProgressPercent < 0 || it.ProgressPercent > MaxPercent:
		return fmt.Errorf("%w: progress_percent %d out of range", ErrInvalidItem, it.ProgressPercent)
	case it.PlanPercent != nil && (*it.PlanPercent < 0 || *it.PlanPercent > MaxPercent):
		return fmt.Errorf("%w: plan_percent %d out of range", ErrInvalidItem, *it.PlanPercent)
	case it.RiskLevel.Valid && (it.RiskLevel.Level < 0 || it.RiskLevel.Level > MaxRiskLevel):
		return fmt.Errorf("%w: risk_level %d out of range", ErrInvalidItem, it.RiskLevel.Level)
	}
	for _, c := range it.Collaborators {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: collaborator without name", ErrInvalidItem)
		}
		if !c.Relation.Valid() {
			return fmt.Errorf("%w: unknown relation %q", ErrInvalidItem, c.Relation)
		}
	}
	return nil
}

// Key identifies a feature across weeks.
type Key struct {
	Domain  string `json:"domain"`
	Project string `json:"project"`
	Module  string `json:"module"`
	Feature string `json:"feature"`
}

func (k Key) String() string {
	return k.Domain + "/" + k.Project + "/" + k.Module + "/" + k.Feature
}
