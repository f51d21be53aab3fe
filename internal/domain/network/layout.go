package network

import (
	"cmp"
	"math"
	"slices"
)

// Default canvas geometry.
const (
	DefaultWidth          = 800
	DefaultHeight         = 600
	DefaultPadding        = 60
	DefaultMaxRowSpacing  = 90
	DefaultMaxMinDistance = 110
	DefaultIterations     = 50
)

// Canvas describes the drawing area and the relaxation limits.
type Canvas struct {
	Width          float64
	Height         float64
	Padding        float64
	MaxRowSpacing  float64
	MaxMinDistance float64
	Iterations     int
}

// DefaultCanvas returns the canvas used when none is configured.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Padding:        DefaultPadding,
		MaxRowSpacing:  DefaultMaxRowSpacing,
		MaxMinDistance: DefaultMaxMinDistance,
		Iterations:     DefaultIterations,
	}
}

func (c Canvas) usableWidth() float64  { return math.Max(c.Width-2*c.Padding, 0) }
func (c Canvas) usableHeight() float64 { return math.Max(c.Height-2*c.Padding, 0) }

// MinDistance is the separation the relaxation phase tries to reach for n nodes.
func (c Canvas) MinDistance(n int) float64 {
	return math.Min(c.usableWidth()/float64(max(n, 2)), c.MaxMinDistance)
}

// LayoutStats reports how the relaxation phase ended. When Converged is false the
// iteration cap was hit and some pairs may still be closer than MinDistance.
type LayoutStats struct {
	Iterations  int     `json:"iterations"`
	Converged   bool    `json:"converged"`
	MinDistance float64 `json:"min_distance"`
}

// Layout assigns coordinates to every node and returns a new graph. It places one
// column per domain, then pushes apart pairs that sit closer than the minimum
// distance. There are no attraction forces; the result depends only on the graph
// and the canvas.
func Layout(g Graph, c Canvas) (Graph, LayoutStats) {
	out := Graph{
		Nodes: slices.Clone(g.Nodes),
		Edges: slices.Clone(g.Edges),
	}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	stats := LayoutStats{MinDistance: c.MinDistance(len(out.Nodes)), Converged: true}
	if len(out.Nodes) == 0 {
		return out, stats
	}
	place(out.Nodes, c)
	stats.Iterations, stats.Converged = relax(out.Nodes, c, stats.MinDistance)
	return out, stats
}

// place puts each domain in its own column, columns ordered by domain name.
func place(nodes []Node, c Canvas) {
	groups := map[string][]int{}
	for i, n := range nodes {
		groups[n.Domain] = append(groups[n.Domain], i)
	}
	domains := make([]string, 0, len(groups))
	tallest := 0
	for d, members := range groups {
		domains = append(domains, d)
		tallest = max(tallest, len(members))
	}
	slices.SortFunc(domains, cmp.Compare[string])

	uw, uh := c.usableWidth(), c.usableHeight()
	rowSpacing := c.MaxRowSpacing
	if tallest > 1 && float64(tallest-1)*rowSpacing > uh {
		rowSpacing = uh / float64(tallest-1)
	}
	centerY := c.Padding + uh/2

	for col, d := range domains {
		x := c.Padding + uw/2
		if len(domains) > 1 {
			x = c.Padding + float64(col)*uw/float64(len(domains)-1)
		}
		members := groups[d]
		mid := float64(len(members)-1) / 2
		for row, i := range members {
			nodes[i].X = x
			nodes[i].Y = centerY + (float64(row)-mid)*rowSpacing
		}
	}
}

// relax separates close pairs by moving each node half the overlap along the line
// joining them, then clamps every node to the padded canvas.
func relax(nodes []Node, c Canvas, minDist float64) (int, bool) {
	for iter := 1; iter <= c.Iterations; iter++ {
		moved := false
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := &nodes[i], &nodes[j]
				dx, dy := b.X-a.X, b.Y-a.Y
				d := math.Hypot(dx, dy)
				if d >= minDist {
					continue
				}
				ux, uy := 1.0, 0.0
				if d > 0 {
					ux, uy = dx/d, dy/d
				}
				half := (minDist - d) / 2
				a.X -= ux * half
				a.Y -= uy * half
				b.X += ux * half
				b.Y += uy * half
				moved = true
			}
		}
		for i := range nodes {
			clamp(&nodes[i], c)
		}
		if !moved {
			return iter, true
		}
	}
	return c.Iterations, false
}

func clamp(n *Node, c Canvas) {
	n.X = math.Min(math.Max(n.X, c.Padding), c.Width-c.Padding)
	n.Y = math.Min(math.Max(n.Y, c.Padding), c.Height-c.Padding)
}
