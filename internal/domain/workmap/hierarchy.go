// Package workmap groups weekly snapshot items into a Project -> Module -> Feature
// tree and rolls progress, risk and task counts up that tree.
//
// Everything here is a pure function of its input. Trees are built fresh on each
// call and hold no back-references.
package workmap

import (
	"cmp"
	"slices"

	"github.com/okian/workmap/internal/domain/model"
)

// ProjectNode is the root of one project's work map.
type ProjectNode struct {
	Name    string               `json:"name"`
	Modules []ModuleNode         `json:"modules"`
	Items   []model.SnapshotItem `json:"items"`
}

// ModuleNode groups the features of one module.
type ModuleNode struct {
	Name     string               `json:"name"`
	Features []FeatureNode        `json:"features"`
	Items    []model.SnapshotItem `json:"items"`
}

// FeatureNode holds every item reported on one feature.
type FeatureNode struct {
	Name  string               `json:"name"`
	Items []model.SnapshotItem `json:"items"`
}

// Build groups items by project, module and feature. Each level keeps the items of
// its subtree in encounter order; names are sorted ordinally at every level so the
// result does not depend on input order.
func Build(items []model.SnapshotItem) []ProjectNode {
	projects := []ProjectNode{}
	projectIdx := map[string]int{}
	moduleIdx := map[[2]string]int{}
	featureIdx := map[[3]string]int{}

	for _, it := range items {
		pi, ok := projectIdx[it.Project]
		if !ok {
			pi = len(projects)
			projectIdx[it.Project] = pi
			projects = append(projects, ProjectNode{Name: it.Project})
		}
		p := &projects[pi]
		p.Items = append(p.Items, it)

		modName := it.ModuleName()
		mk := [2]string{it.Project, modName}
		mi, ok := moduleIdx[mk]
		if !ok {
			mi = len(p.Modules)
			moduleIdx[mk] = mi
			p.Modules = append(p.Modules, ModuleNode{Name: modName})
		}
		m := &p.Modules[mi]
		m.Items = append(m.Items, it)

		fk := [3]string{it.Project, modName, it.Feature}
		fi, ok := featureIdx[fk]
		if !ok {
			fi = len(m.Features)
			featureIdx[fk] = fi
			m.Features = append(m.Features, FeatureNode{Name: it.Feature})
		}
		f := &m.Features[fi]
		f.Items = append(f.Items, it)
	}

	// Indices above refer to positions before sorting; sort only once they are no longer used.
	slices.SortFunc(projects, func(a, b ProjectNode) int { return cmp.Compare(a.Name, b.Name) })
	for pi := range projects {
		mods := projects[pi].Modules
		slices.SortFunc(mods, func(a, b ModuleNode) int { return cmp.Compare(a.Name, b.Name) })
		for mi := range mods {
			slices.SortFunc(mods[mi].Features, func(a, b FeatureNode) int { return cmp.Compare(a.Name, b.Name) })
		}
	}
	return projects
}

// ItemCount returns the number of items in the forest.
func ItemCount(projects []ProjectNode) int {
	n := 0
	for _, p := range projects {
		n += len(p.Items)
	}
	return n
}
