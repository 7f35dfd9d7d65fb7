package storage

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/pkg/errors"
)

const textHeader = `# Road Graph File v.0.4
# number of nodes
# number of edges
# node_properties
# ...
# edge_properties
# ...
`

// WriteText writes g in the road graph text format: the header, node and edge
// counts, one "<lat> <lon>" line per node, then one
// "<source> <target> <highway> <speed> <bidirectional>" line per edge.
func WriteText(w io.Writer, g *datastructure.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(textHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	fmt.Fprintf(bw, "%d\n%d\n", g.NumNodes(), g.NumEdges())

	for _, n := range g.Nodes() {
		fmt.Fprintf(bw, "%.6f %.6f\n", n.Lat, n.Lon)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%d %d %s %d %d\n", e.Source, e.Target, e.HighwayType, e.Speed, boolToInt(e.Bidirectional))
	}
	return errors.Wrap(bw.Flush(), "write graph")
}

// WriteNames writes one line per edge holding only its name, in edge order.
func WriteNames(w io.Writer, g *datastructure.Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		bw.WriteString(e.Name)
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "write names")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
