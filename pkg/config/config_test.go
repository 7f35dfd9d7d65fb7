package config

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
allowed_highways:
  - pedestrian: "footway, path, residential"
  - c: "motorway, residential"
max_speed:
  - motorway: 130
  - residential: 30
  - unknown: 50
default_walking_speed: 5
`

func TestParseSampleConfig(t *testing.T) {
	policy, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.True(t, policy.IsAllowed(Pedestrian, "footway"))
	assert.True(t, policy.IsAllowed(Pedestrian, "residential"))
	assert.False(t, policy.IsAllowed(Pedestrian, "motorway"))
	assert.True(t, policy.IsAllowed(Car, "motorway"))
	assert.False(t, policy.IsAllowed(Bicycle, "residential"), "mode without a configured set permits nothing")
	assert.False(t, policy.HasMode(Bicycle))

	assert.Equal(t, []string{"footway", "path", "residential"}, policy.AllowedHighways(Pedestrian))
	assert.Equal(t, uint8(5), policy.DefaultWalkingSpeed())

	speed, known := policy.DefaultSpeed("motorway")
	assert.Equal(t, uint8(130), speed)
	assert.True(t, known)

	speed, known = policy.DefaultSpeed("busway")
	assert.Equal(t, uint8(50), speed)
	assert.False(t, known)
}

func TestParseAcceptsMappingsAndLists(t *testing.T) {
	doc := `
allowed_highways:
  bicycle: [cycleway, " path "]
max_speed:
  cycleway: 18
  unknown: 20
default_walking_speed: 4
`
	policy, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"cycleway", "path"}, policy.AllowedHighways(Bicycle))
	speed, _ := policy.DefaultSpeed("cycleway")
	assert.Equal(t, uint8(18), speed)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		section string
		cause   error
	}{
		{
			name:    "empty document",
			doc:     "",
			section: SectionAllowedHighways,
			cause:   ErrMissingSection,
		},
		{
			name: "missing max_speed",
			doc: `
allowed_highways:
  - car: "motorway"
default_walking_speed: 5
`,
			section: SectionMaxSpeed,
			cause:   ErrMissingSection,
		},
		{
			name: "missing default_walking_speed",
			doc: `
allowed_highways:
  - car: "motorway"
max_speed:
  - unknown: 50
`,
			section: SectionDefaultWalkingSpeed,
			cause:   ErrMissingSection,
		},
		{
			name: "missing unknown fallback",
			doc: `
allowed_highways:
  - car: "motorway"
max_speed:
  - motorway: 130
default_walking_speed: 5
`,
			section: SectionMaxSpeed,
			cause:   ErrMissingFallback,
		},
		{
			name: "speed is not a number",
			doc: `
allowed_highways:
  - car: "motorway"
max_speed:
  - motorway: fast
  - unknown: 50
default_walking_speed: 5
`,
			section: SectionMaxSpeed,
			cause:   ErrMalformed,
		},
		{
			name: "speed out of range",
			doc: `
allowed_highways:
  - car: "motorway"
max_speed:
  - unknown: 50
default_walking_speed: 300
`,
			section: SectionDefaultWalkingSpeed,
			cause:   ErrMalformed,
		},
		{
			name: "unknown travel mode",
			doc: `
allowed_highways:
  - tram: "rail"
max_speed:
  - unknown: 50
default_walking_speed: 5
`,
			section: SectionAllowedHighways,
			cause:   ErrUnknownTravelMode,
		},
		{
			name: "allowed_highways is a scalar",
			doc: `
allowed_highways: motorway
max_speed:
  - unknown: 50
default_walking_speed: 5
`,
			section: SectionAllowedHighways,
			cause:   ErrMalformed,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			policy, err := Parse([]byte(c.doc))
			require.Error(t, err)
			assert.Nil(t, policy)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, c.section, cfgErr.Section)
			assert.ErrorIs(t, err, c.cause)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	policy, err := LoadDefault()
	require.NoError(t, err)

	for _, mode := range TravelModes() {
		assert.True(t, policy.HasMode(mode), mode.String())
	}
	assert.True(t, policy.IsAllowed(Car, "motorway"))
	assert.False(t, policy.IsAllowed(Pedestrian, "motorway"))
	assert.True(t, strings.Contains(policy.String(), "default_walking_speed"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestParseTravelMode(t *testing.T) {
	cases := []struct {
		in    string
		want  TravelMode
		short string
	}{
		{"pedestrian", Pedestrian, "p"},
		{"p", Pedestrian, "p"},
		{"Bicycle", Bicycle, "b"},
		{"b", Bicycle, "b"},
		{"car", Car, "c"},
		{" c ", Car, "c"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			mode, err := ParseTravelMode(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, mode)
			assert.Equal(t, c.short, mode.Short())
		})
	}

	_, err := ParseTravelMode("tram")
	assert.ErrorIs(t, err, ErrUnknownTravelMode)
}

func TestNewAccessPolicyCopiesInputs(t *testing.T) {
	allowed := map[TravelMode][]string{Car: {"motorway"}}
	speeds := map[string]uint8{"motorway": 130, UnknownHighway: 50}
	policy, err := NewAccessPolicy(allowed, speeds, 5)
	require.NoError(t, err)

	allowed[Car] = append(allowed[Car], "residential")
	speeds["motorway"] = 10

	assert.False(t, policy.IsAllowed(Car, "residential"))
	speed, _ := policy.DefaultSpeed("motorway")
	assert.Equal(t, uint8(130), speed)
}
