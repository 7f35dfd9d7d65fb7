package config

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// UnknownHighway is the max_speed entry used for highway types without their
// own default speed.
const UnknownHighway = "unknown"

// AccessPolicy says which highway types each travel mode may use and how fast
// traffic moves on them when a way carries no usable maxspeed. It is built
// once and read-only afterwards.
type AccessPolicy struct {
	allowedHighways     map[TravelMode]map[string]struct{}
	maxSpeed            map[string]uint8
	defaultWalkingSpeed uint8
}

// NewAccessPolicy copies its inputs. maxSpeed must contain UnknownHighway.
func NewAccessPolicy(allowedHighways map[TravelMode][]string, maxSpeed map[string]uint8,
	defaultWalkingSpeed uint8) (*AccessPolicy, error) {
	if _, ok := maxSpeed[UnknownHighway]; !ok {
		return nil, newConfigError(SectionMaxSpeed, ErrMissingFallback)
	}

	p := &AccessPolicy{
		allowedHighways:     make(map[TravelMode]map[string]struct{}, len(allowedHighways)),
		maxSpeed:            make(map[string]uint8, len(maxSpeed)),
		defaultWalkingSpeed: defaultWalkingSpeed,
	}
	for mode, highways := range allowedHighways {
		set := make(map[string]struct{}, len(highways))
		for _, hw := range highways {
			set[hw] = struct{}{}
		}
		p.allowedHighways[mode] = set
	}
	for hw, speed := range maxSpeed {
		p.maxSpeed[hw] = speed
	}
	return p, nil
}

// IsAllowed reports whether highway is permitted for mode. A mode without a
// configured set permits nothing.
func (p *AccessPolicy) IsAllowed(mode TravelMode, highway string) bool {
	set, ok := p.allowedHighways[mode]
	if !ok {
		return false
	}
	_, ok = set[highway]
	return ok
}

// HasMode reports whether mode has a configured set of permitted highways.
func (p *AccessPolicy) HasMode(mode TravelMode) bool {
	_, ok := p.allowedHighways[mode]
	return ok
}

func (p *AccessPolicy) DefaultWalkingSpeed() uint8 {
	return p.defaultWalkingSpeed
}

// DefaultSpeed returns the default speed of highway. known is false when the
// UnknownHighway entry was used instead.
func (p *AccessPolicy) DefaultSpeed(highway string) (speed uint8, known bool) {
	if speed, ok := p.maxSpeed[highway]; ok {
		return speed, true
	}
	return p.maxSpeed[UnknownHighway], false
}

// AllowedHighways returns the sorted highway types permitted for mode.
func (p *AccessPolicy) AllowedHighways(mode TravelMode) []string {
	set := p.allowedHighways[mode]
	highways := make([]string, 0, len(set))
	for hw := range set {
		highways = append(highways, hw)
	}
	slices.Sort(highways)
	return highways
}

func (p *AccessPolicy) String() string {
	var sb strings.Builder
	sb.WriteString("access policy:\n")
	for _, mode := range TravelModes() {
		if !p.HasMode(mode) {
			continue
		}
		fmt.Fprintf(&sb, "\t%s: %s\n", mode, strings.Join(p.AllowedHighways(mode), ","))
	}
	highways := make([]string, 0, len(p.maxSpeed))
	for hw := range p.maxSpeed {
		highways = append(highways, hw)
	}
	slices.Sort(highways)
	for _, hw := range highways {
		fmt.Fprintf(&sb, "\tmax_speed %s: %d\n", hw, p.maxSpeed[hw])
	}
	fmt.Fprintf(&sb, "\tdefault_walking_speed: %d", p.defaultWalkingSpeed)
	return sb.String()
}
