package geo

import (
	"math"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great circle distance in kilometers.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// EdgeLength returns the length of e in meters, following its geometry when
// the edge carries one and the straight line between its endpoints otherwise.
func EdgeLength(g *datastructure.Graph, e datastructure.Edge) float64 {
	if len(e.Geometry) >= 2 {
		return PolylineLength(e.Geometry)
	}
	s, t := g.GetNode(e.Source), g.GetNode(e.Target)
	return CalculateHaversineDistance(s.Lat, s.Lon, t.Lat, t.Lon) * 1000
}

// PolylineLength returns the length of coords in meters.
func PolylineLength(coords []datastructure.Coordinate) float64 {
	dist := 0.0
	for i := 1; i < len(coords); i++ {
		dist += CalculateHaversineDistance(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}
	return dist * 1000
}

// TravelTime returns the seconds needed to cover meters at speed km/h, and
// false when speed is zero.
func TravelTime(meters float64, speed uint8) (float64, bool) {
	if speed == 0 {
		return 0, false
	}
	return meters / (float64(speed) / 3.6), true
}
