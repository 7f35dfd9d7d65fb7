package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
)

// BoundingBox returns the smallest lat/lon rectangle holding every node of g.
// The rectangle is empty for an empty graph.
func BoundingBox(g *datastructure.Graph) s2.Rect {
	rect := s2.EmptyRect()
	for _, n := range g.Nodes() {
		rect = rect.AddPoint(s2.LatLngFromDegrees(n.Lat, n.Lon))
	}
	return rect
}

// BBox returns rect as [minLon, minLat, maxLon, maxLat], or nil when rect is
// empty.
func BBox(rect s2.Rect) []float64 {
	if rect.IsEmpty() {
		return nil
	}
	lo, hi := rect.Lo(), rect.Hi()
	return []float64{lo.Lng.Degrees(), lo.Lat.Degrees(), hi.Lng.Degrees(), hi.Lat.Degrees()}
}
