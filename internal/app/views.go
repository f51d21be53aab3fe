package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/workmap/internal/domain/continuity"
	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/internal/domain/types"
	"github.com/okian/workmap/internal/domain/workmap"
	"github.com/okian/workmap/pkg/metrics"
)

// View names used for cache keys and metrics labels.
const (
	viewWorkMap    = "workmap"
	viewNetwork    = "network"
	viewContinuity = "continuity"
)

// WorkMap builds the hierarchy and metrics of week.
func (s *Service) WorkMap(ctx context.Context, week string) (types.WorkMapView, error) {
	store, err := s.activeStore()
	if err != nil {
		return types.WorkMapView{}, err
	}

	key := viewKey{view: viewWorkMap, week: weekRev{week, s.revision(week)}}
	v, err := s.cached(key, func() (any, error) {
		items, err := store.Week(ctx, week)
		if err != nil {
			return nil, notFound(week, err)
		}
		tree := workmap.Build(items)
		return types.WorkMapView{
			Week:      week,
			ItemCount: workmap.ItemCount(tree),
			Projects:  workmap.Summarize(tree),
		}, nil
	})
	if err != nil {
		return types.WorkMapView{}, err
	}
	return v.(types.WorkMapView), nil
}

// Network builds and lays out the collaboration graph of week. Pinned nodes
// are moved after the cached layout, so pins never invalidate it.
func (s *Service) Network(ctx context.Context, week string, filter network.Filter, pins map[string]network.Point) (types.NetworkView, error) {
	store, err := s.activeStore()
	if err != nil {
		return types.NetworkView{}, err
	}

	key := viewKey{view: viewNetwork, week: weekRev{week, s.revision(week)}, filter: filter}
	v, err := s.cached(key, func() (any, error) {
		items, err := store.Week(ctx, week)
		if err != nil {
			return nil, notFound(week, err)
		}
		g, stats := network.Layout(network.BuildGraph(filter.Apply(items)), s.canvas)
		metrics.RecordLayout(stats.Iterations, stats.Converged)
		return laidOut{graph: g, stats: stats}, nil
	})
	if err != nil {
		return types.NetworkView{}, err
	}

	lo := v.(laidOut)
	g := lo.graph
	if len(pins) > 0 {
		g = network.ApplyOverrides(g, pins)
	}

	nodes := make([]types.NodeView, len(g.Nodes))
	for i, n := range g.Nodes {
		_, pinned := pins[n.ID]
		nodes[i] = types.NodeView{
			Node:         n,
			Radius:       network.NodeRadius(n),
			IsBottleneck: n.Bottleneck(),
			Pinned:       pinned,
		}
	}
	return types.NetworkView{
		Week:    week,
		Project: filter.Project,
		Module:  filter.Module,
		Feature: filter.Feature,
		Nodes:   nodes,
		Edges:   network.EdgePaths(g),
		Layout:  lo.stats,
	}, nil
}

type laidOut struct {
	graph network.Graph
	stats network.LayoutStats
}

// Continuity compares week with its stored neighbours. The three weeks are
// read concurrently.
func (s *Service) Continuity(ctx context.Context, week string) (types.ContinuityView, error) {
	store, err := s.activeStore()
	if err != nil {
		return types.ContinuityView{}, err
	}

	prevWeek, nextWeek, err := store.Neighbors(ctx, week)
	if err != nil {
		return types.ContinuityView{}, notFound(week, err)
	}

	key := viewKey{
		view: viewContinuity,
		week: weekRev{week, s.revision(week)},
		prev: weekRev{prevWeek, s.revision(prevWeek)},
		next: weekRev{nextWeek, s.revision(nextWeek)},
	}
	v, err := s.cached(key, func() (any, error) {
		var prev, cur, next []model.SnapshotItem

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			cur, err = store.Week(gctx, week)
			return notFound(week, err)
		})
		if prevWeek != "" {
			g.Go(func() (err error) {
				prev, err = store.Week(gctx, prevWeek)
				return notFound(prevWeek, err)
			})
		}
		if nextWeek != "" {
			g.Go(func() (err error) {
				next, err = store.Week(gctx, nextWeek)
				return notFound(nextWeek, err)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		results := continuity.Analyze(prev, cur, next)
		summary := continuity.Summary(results)
		for st, n := range summary {
			metrics.RecordContinuityStatus(string(st), n)
		}
		return types.ContinuityView{
			Week:     week,
			PrevWeek: prevWeek,
			NextWeek: nextWeek,
			Results:  results,
			Summary:  summary,
		}, nil
	})
	if err != nil {
		return types.ContinuityView{}, err
	}
	return v.(types.ContinuityView), nil
}

// weekRev pins a week label to the revision a view was computed from.
type weekRev struct {
	label string
	rev   uint64
}

// viewKey identifies a memoized view. Fields are compared as values, so free
// text in week labels or filters can never make two inputs share a key.
type viewKey struct {
	view   string
	week   weekRev
	prev   weekRev
	next   weekRev
	filter network.Filter
}

// cached returns the memoized value for key or computes and stores it.
// Errors are not cached.
func (s *Service) cached(key viewKey, compute func() (any, error)) (any, error) {
	view := key.view
	if v, ok := s.views.Get(key); ok {
		metrics.RecordCacheHit(view)
		return v, nil
	}
	metrics.RecordCacheMiss(view)

	start := time.Now()
	v, err := compute()
	if err != nil {
		return nil, err
	}
	metrics.RecordViewCompute(view, float64(time.Since(start).Microseconds())/1000)
	s.views.Add(key, v)
	return v, nil
}
