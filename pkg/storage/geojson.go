package storage

import (
	"io"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/geo"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// WriteGeoJSON writes g as a FeatureCollection with one LineString per edge.
// The line follows the way shape when the edge carries one.
func WriteGeoJSON(w io.Writer, g *datastructure.Graph) error {
	fc := geojson.NewFeatureCollection()
	fc.BoundingBox = geo.BBox(geo.BoundingBox(g))

	for _, e := range g.Edges() {
		f := geojson.NewLineStringFeature(lineString(g, e))
		f.SetProperty("id", int(e.ID))
		f.SetProperty("source", int(e.Source))
		f.SetProperty("target", int(e.Target))
		f.SetProperty("name", e.Name)
		f.SetProperty("highway", e.HighwayType)
		f.SetProperty("speed", int(e.Speed))
		f.SetProperty("bidirectional", e.Bidirectional)
		fc.AddFeature(f)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal geojson")
	}
	_, err = w.Write(b)
	return errors.Wrap(err, "write geojson")
}

func lineString(g *datastructure.Graph, e datastructure.Edge) [][]float64 {
	coords := edgeShape(g, e)
	pts := make([][]float64, len(coords))
	for i, c := range coords {
		pts[i] = []float64{c.Lon, c.Lat}
	}
	return pts
}

// edgeShape returns the way shape of e, or its two endpoints.
func edgeShape(g *datastructure.Graph, e datastructure.Edge) []datastructure.Coordinate {
	if len(e.Geometry) >= 2 {
		return e.Geometry
	}
	return []datastructure.Coordinate{
		g.GetNode(e.Source).Coordinate,
		g.GetNode(e.Target).Coordinate,
	}
}
