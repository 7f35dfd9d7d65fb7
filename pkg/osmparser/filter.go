package osmparser

import (
	"sync"
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/util"
	"go.uber.org/zap"
)

type wayVerdict uint8

const (
	wayAdmissible wayVerdict = iota
	wayMissingPoint
	wayArea
	wayNoHighway
	wayNotAllowed
)

// FilterStats counts retained elements and, for rejected ways, the first
// failed admissibility check.
type FilterStats struct {
	PointsTotal    int
	PointsRetained int
	WaysTotal      int
	WaysRetained   int

	WaysMissingPoint int
	WaysArea         int
	WaysNoHighway    int
	WaysNotAllowed   int
}

type FilterResult struct {
	// Points referenced by at least one retained way, in input order.
	Points []RawPoint
	// Ways admissible for the travel mode, in input order.
	Ways  []RawWay
	Stats FilterStats
}

// Filter keeps the ways admissible for mode and the points they reference.
//
// A way is admissible when every point it references exists in points, it is
// not tagged area=yes, and its highway tag is permitted for mode by policy.
// Points referenced by no admissible way are dropped.
func Filter(points []RawPoint, ways []RawWay, policy *config.AccessPolicy, mode config.TravelMode,
	opts ...Option) FilterResult {
	o := buildOptions(opts)
	st := time.Now()

	if !policy.HasMode(mode) {
		o.logger.Warn("no permitted highways configured for travel mode, every way is rejected",
			zap.Stringer("mode", mode))
	}

	known := make(map[int64]struct{}, len(points))
	for _, p := range points {
		known[p.ID] = struct{}{}
	}

	verdicts := make([]wayVerdict, len(ways))
	bar := newProgressBar(o.progress, len(ways), "[cyan][filter][reset] checking openstreetmap ways...")
	judge := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			verdicts[i] = admissible(&ways[i], known, policy, mode)
			step(bar)
		}
	}

	if o.workers <= 1 || len(ways) < o.workers {
		judge(0, len(ways))
	} else {
		var wg sync.WaitGroup
		chunk := (len(ways) + o.workers - 1) / o.workers
		for lo := 0; lo < len(ways); lo += chunk {
			hi := lo + chunk
			if hi > len(ways) {
				hi = len(ways)
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				judge(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	}
	finish(bar)

	stats := FilterStats{
		PointsTotal: len(points),
		WaysTotal:   len(ways),
	}
	retainedWays := make([]RawWay, 0)
	referenced := make(map[int64]struct{})
	for i, v := range verdicts {
		switch v {
		case wayAdmissible:
			retainedWays = append(retainedWays, ways[i])
			for _, id := range ways[i].Nodes {
				referenced[id] = struct{}{}
			}
		case wayMissingPoint:
			stats.WaysMissingPoint++
		case wayArea:
			stats.WaysArea++
		case wayNoHighway:
			stats.WaysNoHighway++
		case wayNotAllowed:
			stats.WaysNotAllowed++
		}
	}

	retainedPoints := make([]RawPoint, 0, len(referenced))
	for _, p := range points {
		if _, ok := referenced[p.ID]; !ok {
			continue
		}
		// a duplicated point id is emitted once, at its first occurrence
		delete(referenced, p.ID)
		retainedPoints = append(retainedPoints, p)
	}

	stats.PointsRetained = len(retainedPoints)
	stats.WaysRetained = len(retainedWays)

	o.logger.Info("filtered unnecessary nodes and ways",
		zap.Stringer("mode", mode),
		zap.Duration("elapsed", time.Since(st)),
	)
	o.logger.Sugar().Infof("#nodes now: %d/%d (%.2f%%)", stats.PointsRetained, stats.PointsTotal,
		util.Percent(stats.PointsRetained, stats.PointsTotal))
	o.logger.Sugar().Infof("#ways now: %d/%d (%.2f%%)", stats.WaysRetained, stats.WaysTotal,
		util.Percent(stats.WaysRetained, stats.WaysTotal))
	o.logger.Debug("rejected ways",
		zap.Int("missing_point", stats.WaysMissingPoint),
		zap.Int("area", stats.WaysArea),
		zap.Int("no_highway", stats.WaysNoHighway),
		zap.Int("not_allowed", stats.WaysNotAllowed),
	)

	return FilterResult{
		Points: retainedPoints,
		Ways:   retainedWays,
		Stats:  stats,
	}
}

// admissible only reads its arguments, so ways may be judged concurrently.
func admissible(way *RawWay, known map[int64]struct{}, policy *config.AccessPolicy,
	mode config.TravelMode) wayVerdict {
	if len(way.Nodes) == 0 {
		return wayMissingPoint
	}
	for _, id := range way.Nodes {
		if _, ok := known[id]; !ok {
			return wayMissingPoint
		}
	}
	if area, ok := way.Tag("area"); ok && area == "yes" {
		return wayArea
	}
	highway, ok := way.Tag("highway")
	if !ok {
		return wayNoHighway
	}
	if !policy.IsAllowed(mode, highway) {
		return wayNotAllowed
	}
	return wayAdmissible
}
