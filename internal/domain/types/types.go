// Package types contains the view shapes shared by the service and the API.
package types

import (
	"github.com/okian/workmap/internal/domain/continuity"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/internal/domain/workmap"
)

// WorkMapView is the project/module/feature tree of one week with its metrics.
type WorkMapView struct {
	Week      string                   `json:"week"`
	ItemCount int                      `json:"item_count"`
	Projects  []workmap.ProjectSummary `json:"projects"`
}

// NodeView is a laid out collaborator with its drawing attributes.
type NodeView struct {
	network.Node
	Radius       float64 `json:"radius"`
	IsBottleneck bool    `json:"bottleneck"`
	Pinned       bool    `json:"pinned,omitempty"`
}

// NetworkView is the collaboration graph of one week, optionally narrowed to
// a project, module or feature.
type NetworkView struct {
	Week    string              `json:"week"`
	Project string              `json:"project,omitempty"`
	Module  string              `json:"module,omitempty"`
	Feature string              `json:"feature,omitempty"`
	Nodes   []NodeView          `json:"nodes"`
	Edges   []network.EdgePath  `json:"edges"`
	Layout  network.LayoutStats `json:"layout"`
}

// ContinuityView links a week's plans with its neighbours.
type ContinuityView struct {
	Week     string                    `json:"week"`
	PrevWeek string                    `json:"prev_week,omitempty"`
	NextWeek string                    `json:"next_week,omitempty"`
	Results  []continuity.Result       `json:"results"`
	Summary  map[continuity.Status]int `json:"summary"`
}

// Ack is the response to a snapshot submission.
type Ack struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Week         string `json:"week"`
	Duplicate    bool   `json:"duplicate"`
}
