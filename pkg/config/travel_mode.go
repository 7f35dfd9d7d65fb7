package config

import (
	"strings"

	"github.com/pkg/errors"
)

// TravelMode is the kind of traffic the output graph is specialised for.
type TravelMode uint8

const (
	Pedestrian TravelMode = iota
	Bicycle
	Car
)

var ErrUnknownTravelMode = errors.New("unknown travel mode")

func (m TravelMode) String() string {
	return [...]string{"pedestrian", "bicycle", "car"}[m]
}

// Short is the one-letter name used in output file suffixes.
func (m TravelMode) Short() string {
	return [...]string{"p", "b", "c"}[m]
}

// TravelModes lists every travel mode.
func TravelModes() []TravelMode {
	return []TravelMode{Pedestrian, Bicycle, Car}
}

// ParseTravelMode accepts long and one-letter names, case-insensitive.
func ParseTravelMode(s string) (TravelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pedestrian", "p":
		return Pedestrian, nil
	case "bicycle", "b":
		return Bicycle, nil
	case "car", "c":
		return Car, nil
	}
	return 0, errors.Wrapf(ErrUnknownTravelMode, "'%s'", s)
}
