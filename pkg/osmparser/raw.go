package osmparser

import "github.com/lintang-b-s/roadgraph/pkg/datastructure"

// RawPoint is a map point as read from the source file.
type RawPoint struct {
	ID  int64
	Lat float64
	Lon float64
}

func (p RawPoint) Coordinate() datastructure.Coordinate {
	return datastructure.NewCoordinate(p.Lat, p.Lon)
}

// RawWay is an ordered sequence of point ids with its tags. Nodes has at
// least one element.
type RawWay struct {
	ID    int64
	Nodes []int64
	Tags  map[string]string
}

// Tag returns the value of key and whether the way carries it.
func (w *RawWay) Tag(key string) (string, bool) {
	if w.Tags == nil {
		return "", false
	}
	v, ok := w.Tags[key]
	return v, ok
}

func (w *RawWay) FirstNode() int64 {
	return w.Nodes[0]
}

func (w *RawWay) LastNode() int64 {
	return w.Nodes[len(w.Nodes)-1]
}
