package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/metrics"
	"github.com/lintang-b-s/roadgraph/pkg/osmparser"
	"github.com/lintang-b-s/roadgraph/pkg/storage"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	points []osmparser.RawPoint
	ways   []osmparser.RawWay
	err    error
	paths  []string
}

func (f *fakeSource) Read(_ context.Context, path string) ([]osmparser.RawPoint, []osmparser.RawWay, error) {
	f.paths = append(f.paths, path)
	return f.points, f.ways, f.err
}

type memWriter struct {
	graphs []*datastructure.Graph
}

func (w *memWriter) Write(g *datastructure.Graph) error {
	w.graphs = append(w.graphs, g)
	return nil
}

func residential(id int64, nodes ...int64) osmparser.RawWay {
	return osmparser.RawWay{ID: id, Nodes: nodes, Tags: map[string]string{
		"highway": "residential",
		"oneway":  "yes",
	}}
}

// cycleSource is a oneway square 1-2-3-4 plus a separate two way street 5-6
// and a footway the car may not use.
func cycleSource() *fakeSource {
	return &fakeSource{
		points: []osmparser.RawPoint{
			{ID: 1, Lat: 0, Lon: 0},
			{ID: 2, Lat: 0, Lon: 0.01},
			{ID: 3, Lat: 0.01, Lon: 0.01},
			{ID: 4, Lat: 0.01, Lon: 0},
			{ID: 5, Lat: 1, Lon: 1},
			{ID: 6, Lat: 1, Lon: 1.01},
			{ID: 7, Lat: 2, Lon: 2},
		},
		ways: []osmparser.RawWay{
			residential(10, 1, 2),
			residential(11, 2, 3),
			residential(12, 3, 4),
			residential(13, 4, 1),
			{ID: 14, Nodes: []int64{5, 6}, Tags: map[string]string{"highway": "primary", "name": "Jalan Solo"}},
			{ID: 15, Nodes: []int64{1, 7}, Tags: map[string]string{"highway": "footway"}},
		},
	}
}

func loadPolicy(t *testing.T) *config.AccessPolicy {
	t.Helper()
	policy, err := config.LoadDefault()
	require.NoError(t, err)
	return policy
}

func TestConverterKeepsLargestComponent(t *testing.T) {
	src := cycleSource()
	reg := prometheus.NewRegistry()
	m := metrics.NewPipeline(reg)
	w := &memWriter{}

	c := New(src, loadPolicy(t), WithMetrics(m), WithWorkers(2))
	res, err := c.Run(context.Background(), "square.osm", config.Car, w)
	require.NoError(t, err)

	assert.Equal(t, []string{"square.osm"}, src.paths)
	require.Len(t, w.graphs, 1)
	g := w.graphs[0]
	assert.Same(t, res.Graph, g)
	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumEdges())
	for _, e := range g.Edges() {
		assert.False(t, e.Bidirectional)
		assert.Equal(t, uint8(30), e.Speed)
	}

	assert.Equal(t, 6, res.Filter.PointsRetained)
	assert.Equal(t, 1, res.Filter.WaysNotAllowed)
	assert.Equal(t, 5, res.Build.Edges)
	// the square, the two way street 5-6
	assert.Equal(t, 2, res.Components)
	assert.Nil(t, res.Hierarchy)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.PointsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Components))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.GraphNodes.WithLabelValues("build")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.GraphNodes.WithLabelValues("reduce")))
}

func TestConverterWithoutLCC(t *testing.T) {
	w := &memWriter{}
	c := New(cycleSource(), loadPolicy(t), WithoutLCC(true))
	res, err := c.Run(context.Background(), "square.osm", config.Car, w)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Graph.NumNodes())
	assert.Equal(t, 5, res.Graph.NumEdges())
	assert.Equal(t, 0, res.Components)
	e := res.Graph.GetEdge(4)
	assert.Equal(t, "Jalan Solo", e.Name)
	assert.True(t, e.Bidirectional)
}

func TestConverterPedestrian(t *testing.T) {
	c := New(cycleSource(), loadPolicy(t), WithoutLCC(true))
	res, err := c.Convert(context.Background(), "square.osm", config.Pedestrian)
	require.NoError(t, err)

	// primary, residential and footway are all walkable
	assert.Equal(t, 6, res.Graph.NumEdges())
	assert.Equal(t, 7, res.Graph.NumNodes())
}

func TestConverterSourceError(t *testing.T) {
	readErr := &osmparser.FileError{Path: "broken.pbf", Err: errors.New("boom")}
	c := New(&fakeSource{err: readErr}, loadPolicy(t))

	_, err := c.Run(context.Background(), "broken.pbf", config.Car, &memWriter{})
	var fileErr *osmparser.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "broken.pbf", fileErr.Path)
}

func TestConverterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &memWriter{}
	_, err := New(cycleSource(), loadPolicy(t)).Run(ctx, "square.osm", config.Car, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.graphs)
}

func TestConverterEmptyResult(t *testing.T) {
	src := &fakeSource{
		points: []osmparser.RawPoint{{ID: 1}, {ID: 2}},
		ways: []osmparser.RawWay{
			{ID: 1, Nodes: []int64{1, 2}, Tags: map[string]string{"highway": "footway"}},
		},
	}
	res, err := New(src, loadPolicy(t)).Run(context.Background(), "x.osm", config.Car, &memWriter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Graph.NumNodes())
	assert.Equal(t, 0, res.Graph.NumEdges())
}

const squareOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="roadgraph-test">
  <node id="1" lat="0.0" lon="0.0"/>
  <node id="2" lat="0.0" lon="0.01"/>
  <node id="3" lat="0.01" lon="0.01"/>
  <node id="4" lat="0.01" lon="0.0"/>
  <node id="9" lat="5.0" lon="5.0"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Kebangkitan Nasional"/>
    <tag k="maxspeed" v="30 mph"/>
  </way>
  <way id="11">
    <nd ref="3"/>
    <nd ref="4"/>
    <nd ref="1"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="12">
    <nd ref="4"/>
    <nd ref="9"/>
    <tag k="highway" v="motorway"/>
    <tag k="oneway" v="yes"/>
  </way>
</osm>
`

func TestConverterEndToEndFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "square.osm")
	require.NoError(t, os.WriteFile(input, []byte(squareOSM), 0o644))

	prefix := storage.OutputPrefix(input, config.Car)
	shortcuts := prefix + "_shortcuts.csv"
	w := storage.NewFileWriter(prefix, storage.WithGeoJSON(true), storage.WithBinary(true),
		storage.WithGeometry(true, 0))

	c := New(osmparser.NewReader(), loadPolicy(t), WithGeometry(true), WithContraction(shortcuts))
	res, err := c.Run(context.Background(), input, config.Car, w)
	require.NoError(t, err)
	require.NotNil(t, res.Hierarchy)

	graphText, err := os.ReadFile(prefix)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(graphText), "\n"), "\n")
	// points 2 and 4 are only way interiors and the motorway is a dead end,
	// so the two residential ways between points 1 and 3 remain
	require.Len(t, lines, 7+2+2+2)
	assert.Equal(t, "# Road Graph File v.0.4", lines[0])
	assert.Equal(t, "2", lines[7])
	assert.Equal(t, "2", lines[8])
	assert.Equal(t, "0.000000 0.000000", lines[9])
	assert.Equal(t, "0.010000 0.010000", lines[10])
	assert.Equal(t, "0 1 residential 48 1", lines[11])
	assert.Equal(t, "1 0 residential 30 1", lines[12])

	names, err := os.ReadFile(prefix + "_names")
	require.NoError(t, err)
	assert.Equal(t, "Jalan Kebangkitan Nasional\n\n", string(names))

	for _, f := range w.Files() {
		assert.FileExists(t, f)
	}
	assert.FileExists(t, shortcuts)

	f, err := os.Open(prefix + ".bin")
	require.NoError(t, err)
	defer f.Close()
	restored, err := storage.ReadBinary(f)
	require.NoError(t, err)
	assert.Equal(t, res.Graph.Edges(), restored.Edges())

	secs, path, ok := res.Hierarchy.ShortestPath(0, 1)
	require.True(t, ok)
	assert.Equal(t, []datastructure.NodeID{0, 1}, path)
	assert.Greater(t, secs, 0.0)
}
