package storage

import (
	"bytes"
	"io"

	"github.com/kelindar/binary"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/pkg/errors"
)

const binaryVersion = 1

var ErrBinaryVersion = errors.New("unsupported binary graph version")

// binaryGraph is the flat, column oriented record stored by WriteBinary.
// The shape of edge i is GeometryLats/Lons[GeometryOffsets[i]:GeometryOffsets[i+1]].
type binaryGraph struct {
	Version       uint8
	Lats          []float64
	Lons          []float64
	Sources       []int32
	Targets       []int32
	Names         []string
	Highways      []string
	Speeds        []uint8
	Bidirectional []uint8

	GeometryOffsets []int32
	GeometryLats    []float64
	GeometryLons    []float64
}

func newBinaryGraph(g *datastructure.Graph) binaryGraph {
	bg := binaryGraph{
		Version:       binaryVersion,
		Lats:          make([]float64, 0, g.NumNodes()),
		Lons:          make([]float64, 0, g.NumNodes()),
		Sources:       make([]int32, 0, g.NumEdges()),
		Targets:       make([]int32, 0, g.NumEdges()),
		Names:         make([]string, 0, g.NumEdges()),
		Highways:      make([]string, 0, g.NumEdges()),
		Speeds:        make([]uint8, 0, g.NumEdges()),
		Bidirectional: make([]uint8, 0, g.NumEdges()),

		GeometryOffsets: make([]int32, 0, g.NumEdges()+1),
		GeometryLats:    make([]float64, 0),
		GeometryLons:    make([]float64, 0),
	}
	bg.GeometryOffsets = append(bg.GeometryOffsets, 0)
	for _, n := range g.Nodes() {
		bg.Lats = append(bg.Lats, n.Lat)
		bg.Lons = append(bg.Lons, n.Lon)
	}
	for _, e := range g.Edges() {
		bg.Sources = append(bg.Sources, int32(e.Source))
		bg.Targets = append(bg.Targets, int32(e.Target))
		bg.Names = append(bg.Names, e.Name)
		bg.Highways = append(bg.Highways, e.HighwayType)
		bg.Speeds = append(bg.Speeds, e.Speed)
		bg.Bidirectional = append(bg.Bidirectional, uint8(boolToInt(e.Bidirectional)))
		for _, c := range e.Geometry {
			bg.GeometryLats = append(bg.GeometryLats, c.Lat)
			bg.GeometryLons = append(bg.GeometryLons, c.Lon)
		}
		bg.GeometryOffsets = append(bg.GeometryOffsets, int32(len(bg.GeometryLats)))
	}
	return bg
}

func (bg *binaryGraph) toGraph() (*datastructure.Graph, error) {
	if bg.Version != binaryVersion {
		return nil, errors.Wrapf(ErrBinaryVersion, "got %d", bg.Version)
	}
	numEdges := len(bg.Sources)
	if len(bg.Lons) != len(bg.Lats) || len(bg.Targets) != numEdges || len(bg.Names) != numEdges ||
		len(bg.Highways) != numEdges || len(bg.Speeds) != numEdges ||
		len(bg.Bidirectional) != numEdges || len(bg.GeometryOffsets) != numEdges+1 ||
		len(bg.GeometryLons) != len(bg.GeometryLats) {
		return nil, errors.New("corrupt binary graph: column lengths differ")
	}

	g := datastructure.NewGraphWithCapacity(len(bg.Lats), numEdges)
	for i := range bg.Lats {
		g.AddNode(datastructure.NewCoordinate(bg.Lats[i], bg.Lons[i]))
	}
	for i := 0; i < numEdges; i++ {
		s, t := bg.Sources[i], bg.Targets[i]
		if s < 0 || int(s) >= g.NumNodes() || t < 0 || int(t) >= g.NumNodes() {
			return nil, errors.Errorf("corrupt binary graph: edge %d references a missing node", i)
		}
		data := datastructure.EdgeData{
			Name:          bg.Names[i],
			HighwayType:   bg.Highways[i],
			Speed:         bg.Speeds[i],
			Bidirectional: bg.Bidirectional[i] == 1,
		}
		lo, hi := bg.GeometryOffsets[i], bg.GeometryOffsets[i+1]
		if lo < 0 || hi < lo || int(hi) > len(bg.GeometryLats) {
			return nil, errors.Errorf("corrupt binary graph: edge %d geometry out of range", i)
		}
		if hi > lo {
			data.Geometry = datastructure.NewCoordinates(bg.GeometryLats[lo:hi], bg.GeometryLons[lo:hi])
		}
		g.AddEdge(datastructure.NodeID(s), datastructure.NodeID(t), data)
	}
	return g, nil
}

// WriteBinary writes g as a zstd compressed kelindar/binary record.
func WriteBinary(w io.Writer, g *datastructure.Graph) error {
	encoded, err := binary.Marshal(newBinaryGraph(g))
	if err != nil {
		return errors.Wrap(err, "encode graph")
	}
	var compressed bytes.Buffer
	if err := datastructure.CompressData(encoded, &compressed); err != nil {
		return errors.Wrap(err, "compress graph")
	}
	_, err = compressed.WriteTo(w)
	return errors.Wrap(err, "write binary graph")
}

// ReadBinary restores a graph written by WriteBinary. Adjacency lists are
// rebuilt by inserting the edges in their stored order.
func ReadBinary(r io.Reader) (*datastructure.Graph, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read binary graph")
	}
	var encoded bytes.Buffer
	if err := datastructure.DecompressData(compressed, &encoded); err != nil {
		return nil, errors.Wrap(err, "decompress graph")
	}
	var bg binaryGraph
	if err := binary.Unmarshal(encoded.Bytes(), &bg); err != nil {
		return nil, errors.Wrap(err, "decode graph")
	}
	return bg.toGraph()
}
