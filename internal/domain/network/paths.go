package network

import (
	"math"

	"github.com/okian/workmap/internal/domain/model"
)

// Node and edge drawing geometry.
const (
	baseRadius     = 16.0
	radiusStep     = 2.0
	maxRadiusSteps = 6
	edgeGap        = 4.0
	curveOffset    = 28.0
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgePath is a quadratic curve ready to draw. From and To give the drawing
// direction, which differs from the stored edge for pre relations.
type EdgePath struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Relation model.Relation `json:"relation"`
	Directed bool           `json:"directed"`
	Start    Point          `json:"start"`
	Control  Point          `json:"control"`
	End      Point          `json:"end"`
}

// NodeRadius grows with the node's badge counts, up to a cap.
func NodeRadius(n Node) float64 {
	return baseRadius + radiusStep*float64(min(n.Degree(), maxRadiusSteps))
}

// bendSign keeps relation types between the same two people on separate curves.
func bendSign(r model.Relation) float64 {
	switch r {
	case model.RelationPre:
		return 1
	case model.RelationPost:
		return -1
	default:
		return 0
	}
}

// EdgePaths computes one curve per edge, between node boundaries rather than
// centers. A pre edge is drawn from the collaborator to the author, because the
// collaborator's work came first; post is drawn author to collaborator and pair
// has no direction.
func EdgePaths(g Graph) []EdgePath {
	idx := g.NodeIndex()
	paths := make([]EdgePath, 0, len(g.Edges))
	for _, e := range g.Edges {
		ai, ok := idx[e.From]
		if !ok {
			continue
		}
		bi, ok := idx[e.To]
		if !ok {
			continue
		}
		a, b := g.Nodes[ai], g.Nodes[bi]

		dx, dy := b.X-a.X, b.Y-a.Y
		d := math.Hypot(dx, dy)
		ux, uy := 1.0, 0.0
		if d > 0 {
			ux, uy = dx/d, dy/d
		}
		ra, rb := NodeRadius(a)+edgeGap, NodeRadius(b)+edgeGap
		start := Point{X: a.X + ux*ra, Y: a.Y + uy*ra}
		end := Point{X: b.X - ux*rb, Y: b.Y - uy*rb}

		// The bend is taken on the stored author->collaborator orientation, before any
		// reversal, so pre and post between the same pair land on opposite sides.
		bend := bendSign(e.Relation) * curveOffset
		control := Point{
			X: (start.X+end.X)/2 - uy*bend,
			Y: (start.Y+end.Y)/2 + ux*bend,
		}

		p := EdgePath{
			From:     e.From,
			To:       e.To,
			Relation: e.Relation,
			Directed: e.Relation != model.RelationPair,
			Start:    start,
			Control:  control,
			End:      end,
		}
		if e.Relation == model.RelationPre {
			p.From, p.To = p.To, p.From
			p.Start, p.End = p.End, p.Start
		}
		paths = append(paths, p)
	}
	return paths
}

// ApplyOverrides returns a copy of g with pinned nodes moved to the given points.
// Later pins win over the computed layout; unknown ids are ignored.
func ApplyOverrides(g Graph, pins map[string]Point) Graph {
	out := Graph{Nodes: make([]Node, len(g.Nodes)), Edges: g.Edges}
	copy(out.Nodes, g.Nodes)
	for i, n := range out.Nodes {
		if p, ok := pins[n.ID]; ok {
			out.Nodes[i].X = p.X
			out.Nodes[i].Y = p.Y
		}
	}
	return out
}
