// Package network derives the collaboration graph of a set of snapshot items and
// gives it a deterministic 2-D layout.
package network

import "github.com/okian/workmap/internal/domain/model"

// bottleneckPreCount is the number of people a person must feed before they are
// flagged as a bottleneck.
const bottleneckPreCount = 2

// Node is one person in the graph.
type Node struct {
	ID        string  `json:"id"`
	Domain    string  `json:"domain"`
	PairCount int     `json:"pair_count"`
	PreCount  int     `json:"pre_count"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Bottleneck reports whether several people depend on this person's prior input.
func (n Node) Bottleneck() bool {
	return n.PreCount >= bottleneckPreCount
}

// Degree is the badge count used for node sizing.
func (n Node) Degree() int {
	return n.PairCount + n.PreCount
}

// Edge is a declared relation. From is always the author of the item and To the
// named collaborator, whatever the relation; see EdgePaths for drawing direction.
type Edge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Relation model.Relation `json:"relation"`
}

// Graph is the person graph with positions once laid out.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIndex maps node ids to their position in Nodes.
func (g Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// BuildGraph creates one node per person (authors and collaborators) and one edge
// per declared collaborator. Parallel edges are kept.
func BuildGraph(items []model.SnapshotItem) Graph {
	authored := make(map[string]string, len(items))
	for _, it := range items {
		if _, ok := authored[it.Name]; !ok {
			authored[it.Name] = it.Domain
		}
	}

	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	idx := map[string]int{}
	ensure := func(name, domain string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		idx[name] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{ID: name, Domain: domain})
		return idx[name]
	}

	for _, it := range items {
		author := ensure(it.Name, it.Domain)
		for _, c := range it.Collaborators {
			domain, ok := authored[c.Name]
			if !ok {
				domain = it.Domain
			}
			collab := ensure(c.Name, domain)
			g.Edges = append(g.Edges, Edge{From: it.Name, To: c.Name, Relation: c.Relation})
			switch c.Relation {
			case model.RelationPair:
				g.Nodes[author].PairCount++
			case model.RelationPre:
				g.Nodes[collab].PreCount++
			}
		}
	}
	return g
}

// Filter selects the items of one project, module or feature. Empty fields match
// everything; Module matches the unspecified bucket by its sentinel name.
type Filter struct {
	Project string
	Module  string
	Feature string
}

// Apply returns the items that match f.
func (f Filter) Apply(items []model.SnapshotItem) []model.SnapshotItem {
	out := make([]model.SnapshotItem, 0, len(items))
	for _, it := range items {
		if f.Project != "" && it.Project != f.Project {
			continue
		}
		if f.Module != "" && it.ModuleName() != f.Module {
			continue
		}
		if f.Feature != "" && it.Feature != f.Feature {
			continue
		}
		out = append(out, it)
	}
	return out
}
