package contractor

import (
	"time"

	"github.com/LdDl/ch"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/geo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Hierarchy is a contraction hierarchy over a road graph, weighted by travel
// time in seconds.
type Hierarchy struct {
	graph *ch.Graph
	// Arcs counts the directed arcs handed to the contraction.
	Arcs int
	// SkippedEdges counts edges that cannot be traversed: zero speed or
	// self-loops.
	SkippedEdges int
}

// Contract builds a contraction hierarchy from g. Every node becomes a vertex
// labelled with its node id. A bidirectional edge gives an arc in each
// direction.
func Contract(g *datastructure.Graph, opts ...Option) (*Hierarchy, error) {
	o := buildOptions(opts)
	st := time.Now()

	h := &Hierarchy{graph: &ch.Graph{}}
	for _, v := range g.NodeIDs() {
		if err := h.graph.CreateVertex(int64(v)); err != nil {
			return nil, errors.Wrapf(err, "can not create vertex %d", v)
		}
	}

	for _, e := range g.Edges() {
		if e.Source == e.Target {
			h.SkippedEdges++
			continue
		}
		cost, ok := geo.TravelTime(geo.EdgeLength(g, e), e.Speed)
		if !ok {
			h.SkippedEdges++
			continue
		}
		if err := h.graph.AddEdge(int64(e.Source), int64(e.Target), cost); err != nil {
			return nil, errors.Wrapf(err, "can not add edge %d", e.ID)
		}
		h.Arcs++
		if e.Bidirectional {
			if err := h.graph.AddEdge(int64(e.Target), int64(e.Source), cost); err != nil {
				return nil, errors.Wrapf(err, "can not add reverse of edge %d", e.ID)
			}
			h.Arcs++
		}
	}

	o.logger.Info("starting contraction process", zap.Int("vertices", g.NumNodes()), zap.Int("arcs", h.Arcs))
	h.graph.PrepareContractionHierarchies()
	o.logger.Info("done contraction process",
		zap.Int64("shortcuts", h.NumShortcuts()),
		zap.Int("skipped_edges", h.SkippedEdges),
		zap.Duration("elapsed", time.Since(st)),
	)
	return h, nil
}

// NumShortcuts returns how many shortcut arcs the contraction added.
func (h *Hierarchy) NumShortcuts() int64 {
	return h.graph.GetShortcutsNum()
}

// ShortestPath returns the travel time in seconds and the node sequence of the
// fastest route from source to target. ok is false when target is unreachable.
func (h *Hierarchy) ShortestPath(source, target datastructure.NodeID) (seconds float64,
	path []datastructure.NodeID, ok bool) {
	cost, vertices := h.graph.ShortestPath(int64(source), int64(target))
	if cost < 0 || len(vertices) == 0 {
		return 0, nil, false
	}
	path = make([]datastructure.NodeID, len(vertices))
	for i, v := range vertices {
		path[i] = datastructure.NodeID(v)
	}
	return cost, path, true
}

// ExportShortcuts writes every shortcut as a CSV row of source, target,
// weight and via vertex.
func (h *Hierarchy) ExportShortcuts(filename string) error {
	if err := h.graph.ExportShortcutsToFile(filename); err != nil {
		return errors.Wrapf(err, "can not export shortcuts to '%s'", filename)
	}
	return nil
}
