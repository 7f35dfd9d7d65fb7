package osmparser

import (
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"go.uber.org/zap"
)

type BuildStats struct {
	Nodes           int
	Edges           int
	OnewayEdges     int
	SkippedWays     int
	SpeedSources    map[SpeedSource]int
	UnknownHighways int
}

// Build maps filtered points and ways into a graph: one node per point in
// point order and one edge per way, from its first to its last point.
//
// Ways referencing a point missing from points are skipped with a warning;
// Filter never produces such ways.
func Build(points []RawPoint, ways []RawWay, policy *config.AccessPolicy,
	opts ...Option) (*datastructure.Graph, BuildStats) {
	o := buildOptions(opts)
	st := time.Now()

	g := datastructure.NewGraphWithCapacity(len(points), len(ways))
	nodeMap := make(map[int64]datastructure.NodeID, len(points))
	coords := make(map[int64]datastructure.Coordinate)
	for _, p := range points {
		if _, ok := nodeMap[p.ID]; ok {
			continue
		}
		nodeMap[p.ID] = g.AddNode(p.Coordinate())
		if o.geometry {
			coords[p.ID] = p.Coordinate()
		}
	}

	stats := BuildStats{
		SpeedSources: make(map[SpeedSource]int),
	}
	warned := make(map[string]struct{})
	warnOnce := func(key, msg string, fields ...zap.Field) {
		if _, ok := warned[key]; ok {
			return
		}
		warned[key] = struct{}{}
		o.logger.Warn(msg, fields...)
	}

	bar := newProgressBar(o.progress, len(ways), "[cyan][build][reset] creating graph edges...")
	for i := range ways {
		way := &ways[i]
		step(bar)

		s, okS := nodeMap[way.FirstNode()]
		t, okT := nodeMap[way.LastNode()]
		if !okS || !okT {
			stats.SkippedWays++
			o.logger.Warn("way references a point that is not in the graph, skipped", zap.Int64("way_id", way.ID))
			continue
		}

		name, _ := way.Tag("name")
		highway, _ := way.Tag("highway")
		oneway, _ := way.Tag("oneway")
		maxspeed, hasMaxspeed := way.Tag("maxspeed")

		speed := ParseMaxSpeed(maxspeed, hasMaxspeed, highway, policy)
		stats.SpeedSources[speed.Source]++
		if speed.UnknownHighway {
			stats.UnknownHighways++
			warnOnce("highway:"+highway, "unknown street type, using the 'unknown' default speed",
				zap.String("highway", highway))
		}
		if speed.Source == SpeedUnparsed {
			warnOnce("maxspeed:"+maxspeed, "error while parsing max speed, fallback used",
				zap.String("maxspeed", maxspeed), zap.Int64("way_id", way.ID))
		}

		data := datastructure.EdgeData{
			Name:          name,
			HighwayType:   highway,
			Speed:         speed.Speed,
			Bidirectional: oneway != "yes",
		}
		if o.geometry {
			data.Geometry = make([]datastructure.Coordinate, 0, len(way.Nodes))
			for _, id := range way.Nodes {
				data.Geometry = append(data.Geometry, coords[id])
			}
		}
		g.AddEdge(s, t, data)
		if !data.Bidirectional {
			stats.OnewayEdges++
		}
	}
	finish(bar)

	stats.Nodes = g.NumNodes()
	stats.Edges = g.NumEdges()

	o.logger.Info("graph built",
		zap.Int("nodes", stats.Nodes),
		zap.Int("edges", stats.Edges),
		zap.Int("oneway_edges", stats.OnewayEdges),
		zap.Int("unknown_highway_speeds", stats.UnknownHighways),
		zap.Int("unparsed_speeds", stats.SpeedSources[SpeedUnparsed]),
		zap.Duration("elapsed", time.Since(st)),
	)
	return g, stats
}
