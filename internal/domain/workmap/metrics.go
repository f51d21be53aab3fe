package workmap

import (
	"math"
	"strings"

	"github.com/okian/workmap/internal/domain/model"
)

// completedMarker is the text a task carries once it is reported done.
//
// This is a textual heuristic: "100%" anywhere in the task text counts, including
// "not yet 100%". A structured completed flag on tasks would replace it.
const completedMarker = "100%"

// Metrics is the rollup shown for a feature, module or project.
type Metrics struct {
	Progress           int             `json:"progress"`
	RiskLevel          model.RiskLevel `json:"risk_level"`
	TaskCount          int             `json:"task_count"`
	CompletedTaskCount int             `json:"completed_task_count"`
}

// IsCompletedTask reports whether a past-week task is marked complete.
func IsCompletedTask(task string) bool {
	return strings.Contains(task, completedMarker)
}

// FeatureMetrics averages item progress, takes the highest recorded risk and
// counts past-week tasks.
func FeatureMetrics(f FeatureNode) Metrics {
	if len(f.Items) == 0 {
		return Metrics{}
	}
	var (
		sum  int
		risk model.RiskLevel
		out  Metrics
	)
	for _, it := range f.Items {
		sum += it.ProgressPercent
		risk = risk.Max(it.RiskLevel)
		out.TaskCount += len(it.PastWeekTasks)
		for _, task := range it.PastWeekTasks {
			if IsCompletedTask(task) {
				out.CompletedTaskCount++
			}
		}
	}
	out.Progress = roundMean(sum, len(f.Items))
	out.RiskLevel = risk
	return out
}

// ModuleMetrics rolls feature metrics up. Progress is the unweighted mean of the
// feature percentages, regardless of how many items each feature has.
func ModuleMetrics(m ModuleNode) Metrics {
	children := make([]Metrics, len(m.Features))
	for i, f := range m.Features {
		children[i] = FeatureMetrics(f)
	}
	return rollup(children)
}

// ProjectMetrics rolls module metrics up with the same unweighted mean.
func ProjectMetrics(p ProjectNode) Metrics {
	children := make([]Metrics, len(p.Modules))
	for i, m := range p.Modules {
		children[i] = ModuleMetrics(m)
	}
	return rollup(children)
}

func rollup(children []Metrics) Metrics {
	if len(children) == 0 {
		return Metrics{}
	}
	var (
		sum int
		out Metrics
	)
	for _, c := range children {
		sum += c.Progress
		out.RiskLevel = out.RiskLevel.Max(c.RiskLevel)
		out.TaskCount += c.TaskCount
		out.CompletedTaskCount += c.CompletedTaskCount
	}
	out.Progress = roundMean(sum, len(children))
	return out
}

func roundMean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
