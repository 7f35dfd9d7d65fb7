package config

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	SectionAllowedHighways     = "allowed_highways"
	SectionMaxSpeed            = "max_speed"
	SectionDefaultWalkingSpeed = "default_walking_speed"
)

var (
	ErrMissingSection  = errors.New("missing section")
	ErrMalformed       = errors.New("malformed section")
	ErrMissingFallback = errors.New("missing 'unknown' fallback speed")
)

// ConfigError is returned when an access policy cannot be built. It is fatal
// for a run.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(section string, err error) *ConfigError {
	return &ConfigError{Section: section, Err: err}
}
