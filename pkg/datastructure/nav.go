package datastructure

import (
	"github.com/pkg/errors"
	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func NewCoordinates(lat, lon []float64) []Coordinate {
	coords := make([]Coordinate, len(lat))
	for i := range lat {
		coords[i] = NewCoordinate(lat[i], lon[i])
	}
	return coords
}

// EncodePolyline renders coords in the encoded polyline format (precision 5).
func EncodePolyline(coords []Coordinate) string {
	points := make([][]float64, 0, len(coords))
	for _, c := range coords {
		points = append(points, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(points))
}

func DecodePolyline(encoded string) ([]Coordinate, error) {
	points, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "can't decode polyline")
	}
	coords := make([]Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, NewCoordinate(p[0], p[1]))
	}
	return coords, nil
}
