package config

import (
	_ "embed"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfig []byte

// rawDocument keeps each section as an undecoded node so decoding errors can
// be attributed to the section they come from.
type rawDocument struct {
	AllowedHighways     *yaml.Node `yaml:"allowed_highways" validate:"required"`
	MaxSpeed            *yaml.Node `yaml:"max_speed" validate:"required"`
	DefaultWalkingSpeed *yaml.Node `yaml:"default_walking_speed" validate:"required"`
}

type entry struct {
	key   string
	value *yaml.Node
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadDefault builds the access policy from the embedded default configuration.
func LoadDefault() (*AccessPolicy, error) {
	return Parse(defaultConfig)
}

// DefaultConfig returns a copy of the embedded default configuration.
func DefaultConfig() []byte {
	out := make([]byte, len(defaultConfig))
	copy(out, defaultConfig)
	return out
}

func LoadFile(filename string) (*AccessPolicy, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, newConfigError("", errors.Wrapf(err, "can't open config file '%s'", filename))
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*AccessPolicy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newConfigError("", errors.Wrap(err, "can't read config"))
	}
	return Parse(data)
}

// Parse builds an access policy from a YAML document with the sections
// allowed_highways, max_speed and default_walking_speed.
func Parse(data []byte) (*AccessPolicy, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newConfigError("", errors.Wrapf(ErrMalformed, "%v", err))
	}

	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, newConfigError(verrs[0].Field(), ErrMissingSection)
		}
		return nil, newConfigError("", err)
	}

	allowed, err := parseAllowedHighways(doc.AllowedHighways)
	if err != nil {
		return nil, err
	}
	maxSpeed, err := parseMaxSpeeds(doc.MaxSpeed)
	if err != nil {
		return nil, err
	}
	walking, err := parseSpeedValue(doc.DefaultWalkingSpeed)
	if err != nil {
		return nil, newConfigError(SectionDefaultWalkingSpeed, err)
	}

	return NewAccessPolicy(allowed, maxSpeed, walking)
}

func parseAllowedHighways(node *yaml.Node) (map[TravelMode][]string, error) {
	entries, err := sectionEntries(node)
	if err != nil {
		return nil, newConfigError(SectionAllowedHighways, err)
	}

	allowed := make(map[TravelMode][]string, len(entries))
	for _, e := range entries {
		mode, err := ParseTravelMode(e.key)
		if err != nil {
			return nil, newConfigError(SectionAllowedHighways, err)
		}
		highways, err := parseHighwayList(e.value)
		if err != nil {
			return nil, newConfigError(SectionAllowedHighways, errors.Wrapf(err, "mode '%s'", e.key))
		}
		allowed[mode] = append(allowed[mode], highways...)
	}
	return allowed, nil
}

// parseHighwayList accepts "a, b, c" or a YAML sequence of strings.
func parseHighwayList(node *yaml.Node) ([]string, error) {
	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "%v", err)
		}
		raw = strings.Split(s, ",")
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "%v", err)
		}
	default:
		return nil, errors.Wrapf(ErrMalformed, "line %d: expected a string or a list of strings", node.Line)
	}

	highways := make([]string, 0, len(raw))
	for _, hw := range raw {
		hw = strings.TrimSpace(hw)
		if hw != "" {
			highways = append(highways, hw)
		}
	}
	return highways, nil
}

func parseMaxSpeeds(node *yaml.Node) (map[string]uint8, error) {
	entries, err := sectionEntries(node)
	if err != nil {
		return nil, newConfigError(SectionMaxSpeed, err)
	}

	maxSpeed := make(map[string]uint8, len(entries))
	for _, e := range entries {
		speed, err := parseSpeedValue(e.value)
		if err != nil {
			return nil, newConfigError(SectionMaxSpeed, errors.Wrapf(err, "highway '%s'", e.key))
		}
		maxSpeed[e.key] = speed
	}
	return maxSpeed, nil
}

func parseSpeedValue(node *yaml.Node) (uint8, error) {
	var speed int
	if err := node.Decode(&speed); err != nil {
		return 0, errors.Wrapf(ErrMalformed, "%v", err)
	}
	if speed < 0 || speed > math.MaxUint8 {
		return 0, errors.Wrapf(ErrMalformed, "line %d: speed %d out of range [0, 255]", node.Line, speed)
	}
	return uint8(speed), nil
}

// sectionEntries flattens either a mapping or a list of single-key mappings
// into key/value pairs, keeping document order.
func sectionEntries(node *yaml.Node) ([]entry, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return mappingEntries(node)
	case yaml.SequenceNode:
		entries := make([]entry, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return nil, errors.Wrapf(ErrMalformed, "line %d: expected a mapping", item.Line)
			}
			itemEntries, err := mappingEntries(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, itemEntries...)
		}
		return entries, nil
	}
	return nil, errors.Wrapf(ErrMalformed, "line %d: expected a mapping or a list of mappings", node.Line)
}

func mappingEntries(node *yaml.Node) ([]entry, error) {
	entries := make([]entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return nil, errors.Wrapf(ErrMalformed, "line %d: expected a scalar key", key.Line)
		}
		entries = append(entries, entry{key: key.Value, value: node.Content[i+1]})
	}
	return entries, nil
}
