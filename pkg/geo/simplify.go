package geo

import (
	"container/list"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
)

const (
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0 // 7 meter
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// PointLinePerpendicularDistance returns the distance in meters between p and
// the segment (a, b).
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	return s2.DistanceFromSegment(toS2Point(p), toS2Point(a), toS2Point(b)).Radians() * earthRadiusM
}

// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/

// RamerDouglasPeucker drops points closer than threshold meters to the line
// through their kept neighbours. Endpoints are always kept.
func RamerDouglasPeucker(coords []datastructure.Coordinate, threshold float64) []datastructure.Coordinate {
	size := len(coords)
	if size < 3 {
		return coords
	}

	kepts := make([]bool, size)
	kepts[0] = true
	kepts[size-1] = true

	stack := list.New()
	stack.PushBack([2]int{0, size - 1})

	for stack.Len() > 0 {
		pair := stack.Remove(stack.Back()).([2]int)
		left, right := pair[0], pair[1]
		var maxDist float64
		farthestIndex := left

		// sweep over the range to find the farthest point from the segment (left,right)
		for i := left + 1; i < right; i++ {
			dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i])
			if dist > maxDist {
				maxDist = dist
				farthestIndex = i
			}
		}

		if maxDist > threshold {
			kepts[farthestIndex] = true
			if left < farthestIndex {
				stack.PushBack([2]int{left, farthestIndex})
			}
			if farthestIndex < right {
				stack.PushBack([2]int{farthestIndex, right})
			}
		}
	}

	simplifiedGeometry := make([]datastructure.Coordinate, 0)
	for i, necessary := range kepts {
		if necessary {
			simplifiedGeometry = append(simplifiedGeometry, coords[i])
		}
	}
	return simplifiedGeometry
}
