package storage

import (
	"bufio"
	"io"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/geo"
	"github.com/pkg/errors"
)

// WriteGeometry writes one encoded polyline per edge, in edge order. With a
// positive simplify threshold, in meters, shapes are thinned with
// Ramer-Douglas-Peucker first.
func WriteGeometry(w io.Writer, g *datastructure.Graph, simplify float64) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		shape := edgeShape(g, e)
		if simplify > 0 {
			shape = geo.RamerDouglasPeucker(shape, simplify)
		}
		bw.WriteString(datastructure.EncodePolyline(shape))
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "write geometry")
}
