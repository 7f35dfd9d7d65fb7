package osmparser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="roadgraph-test">
  <node id="1" lat="-7.5658370" lon="110.8315860"/>
  <node id="2" lat="-7.5660630" lon="110.8323790"/>
  <node id="3" lat="-7.5664060" lon="110.8332320"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Kebangkitan Nasional"/>
    <tag k="maxspeed" v="40"/>
  </way>
  <way id="101">
    <tag k="highway" v="service"/>
  </way>
  <way id="102">
    <nd ref="3"/>
    <nd ref="1"/>
  </way>
</osm>
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReaderReadsOSMXML(t *testing.T) {
	path := writeFixture(t, "solo.osm", sampleOSM)

	points, ways, err := NewReader().Read(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, RawPoint{ID: 1, Lat: -7.565837, Lon: 110.831586}, points[0])
	assert.Equal(t, int64(3), points[2].ID)

	require.Len(t, ways, 2, "way without nodes is dropped")
	assert.Equal(t, int64(100), ways[0].ID)
	assert.Equal(t, []int64{1, 2, 3}, ways[0].Nodes)
	assert.Equal(t, map[string]string{
		"highway":  "residential",
		"name":     "Jalan Kebangkitan Nasional",
		"maxspeed": "40",
	}, ways[0].Tags)

	_, ok := ways[1].Tag("highway")
	assert.False(t, ok)
}

func TestReaderErrors(t *testing.T) {
	cases := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "unsupported extension",
			path:    func(t *testing.T) string { return writeFixture(t, "map.json", "{}") },
			wantErr: ErrUnsupportedExtension,
		},
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.osm") },
			wantErr: os.ErrNotExist,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := c.path(t)
			_, _, err := NewReader().Read(context.Background(), path)
			require.Error(t, err)

			var fileErr *FileError
			require.ErrorAs(t, err, &fileErr)
			assert.Equal(t, path, fileErr.Path)
			assert.ErrorIs(t, err, c.wantErr)
		})
	}
}

func TestReaderMalformedXML(t *testing.T) {
	path := writeFixture(t, "broken.osm", `<osm><node id="1" lat="x"`)

	_, _, err := NewReader().Read(context.Background(), path)
	var fileErr *FileError
	assert.ErrorAs(t, err, &fileErr)
}
