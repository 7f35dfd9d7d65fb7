package osmparser

import (
	"math"
	"strconv"
	"strings"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/util"
)

const mphToKmh = 1.609344

// SpeedSource tells how an edge speed was derived from the maxspeed tag.
type SpeedSource uint8

const (
	// SpeedDefault: no maxspeed tag, highway default used.
	SpeedDefault SpeedSource = iota
	// SpeedNumeric: the tag is a plain 0..255 integer.
	SpeedNumeric
	SpeedWalk
	// SpeedNone: maxspeed=none, highway default used.
	SpeedNone
	SpeedMph
	SpeedKmh
	// SpeedUnparsed: unrecognised format, highway default used.
	SpeedUnparsed
)

func (s SpeedSource) String() string {
	return [...]string{"default", "numeric", "walk", "none", "mph", "kmh", "unparsed"}[s]
}

type SpeedResult struct {
	Speed  uint8 // km/h
	Source SpeedSource
	// UnknownHighway is set when the policy had no default speed for the
	// highway type and its "unknown" entry was used.
	UnknownHighway bool
}

// ParseMaxSpeed converts a maxspeed tag value into km/h. present is false
// when the way has no maxspeed tag.
func ParseMaxSpeed(maxspeed string, present bool, highway string, policy *config.AccessPolicy) SpeedResult {
	fallback := func(source SpeedSource) SpeedResult {
		speed, known := policy.DefaultSpeed(highway)
		return SpeedResult{Speed: speed, Source: source, UnknownHighway: !known}
	}

	if !present {
		return fallback(SpeedDefault)
	}

	if v, err := strconv.ParseUint(maxspeed, 10, 8); err == nil {
		return SpeedResult{Speed: uint8(v), Source: SpeedNumeric}
	}

	switch {
	case strings.Contains(maxspeed, "walk"):
		return SpeedResult{Speed: policy.DefaultWalkingSpeed(), Source: SpeedWalk}
	case strings.Contains(maxspeed, "none"):
		return fallback(SpeedNone)
	case strings.Contains(maxspeed, "mph") || strings.Contains(maxspeed, "mp/h"):
		v, err := strconv.ParseFloat(util.KeepDigits(maxspeed), 64)
		if err != nil {
			return fallback(SpeedUnparsed)
		}
		kmh := math.Trunc(v * mphToKmh)
		return SpeedResult{Speed: uint8(util.Clamp(kmh, 0, math.MaxUint8)), Source: SpeedMph}
	case strings.Contains(maxspeed, "kph") || strings.Contains(maxspeed, "kp/h") ||
		strings.Contains(maxspeed, "km/h") || strings.Contains(maxspeed, "kmh"):
		v, err := strconv.ParseUint(util.KeepDigits(maxspeed), 10, 64)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return SpeedResult{Speed: math.MaxUint8, Source: SpeedKmh}
			}
			return fallback(SpeedUnparsed)
		}
		return SpeedResult{Speed: uint8(util.Clamp(v, 0, math.MaxUint8)), Source: SpeedKmh}
	}
	return fallback(SpeedUnparsed)
}
