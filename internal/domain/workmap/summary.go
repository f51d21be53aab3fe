package workmap

import "github.com/okian/workmap/internal/domain/model"

// ProjectSummary is a project node with metrics attached at every level.
type ProjectSummary struct {
	Name    string          `json:"name"`
	Metrics Metrics         `json:"metrics"`
	Modules []ModuleSummary `json:"modules"`
}

// ModuleSummary is a module node with its metrics.
type ModuleSummary struct {
	Name     string           `json:"name"`
	Metrics  Metrics          `json:"metrics"`
	Features []FeatureSummary `json:"features"`
}

// FeatureSummary is a feature node with its metrics and items.
type FeatureSummary struct {
	Name    string               `json:"name"`
	Metrics Metrics              `json:"metrics"`
	Items   []model.SnapshotItem `json:"items"`
}

// Summarize attaches metrics to every node of the forest.
func Summarize(projects []ProjectNode) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		ps := ProjectSummary{
			Name:    p.Name,
			Metrics: ProjectMetrics(p),
			Modules: make([]ModuleSummary, 0, len(p.Modules)),
		}
		for _, m := range p.Modules {
			ms := ModuleSummary{
				Name:     m.Name,
				Metrics:  ModuleMetrics(m),
				Features: make([]FeatureSummary, 0, len(m.Features)),
			}
			for _, f := range m.Features {
				ms.Features = append(ms.Features, FeatureSummary{
					Name:    f.Name,
					Metrics: FeatureMetrics(f),
					Items:   f.Items,
				})
			}
			ps.Modules = append(ps.Modules, ms)
		}
		out = append(out, ps)
	}
	return out
}
