package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrUnsupportedExtension = errors.New("unsupported file extension")

// FileError is returned when a map file cannot be opened or decoded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("map file '%s': %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// MapDataSource yields every raw point and way of a map file.
type MapDataSource interface {
	Read(ctx context.Context, path string) ([]RawPoint, []RawWay, error)
}

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// Reader is a MapDataSource for OpenStreetMap XML (.osm, .xml) and PBF (.pbf)
// files.
type Reader struct {
	logger *zap.Logger
	procs  int
}

func NewReader(opts ...Option) *Reader {
	o := buildOptions(opts)
	return &Reader{
		logger: o.logger,
		procs:  o.workers,
	}
}

func newScanner(ctx context.Context, path string, r io.Reader, procs int) (OSMScanner, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return osmxml.New(ctx, r), nil
	case ".pbf":
		return osmpbf.New(ctx, r, procs), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedExtension, "'%s'", filepath.Ext(path))
}

// Read returns points and ways in file order. Ways without nodes are dropped.
func (rd *Reader) Read(ctx context.Context, path string) ([]RawPoint, []RawWay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	scanner, err := newScanner(ctx, path, f, rd.procs)
	if err != nil {
		return nil, nil, &FileError{Path: path, Err: err}
	}
	defer scanner.Close()

	rd.logger.Info("reading map file", zap.String("path", path))
	st := time.Now()

	points := make([]RawPoint, 0)
	ways := make([]RawWay, 0)
	emptyWays := 0
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			points = append(points, RawPoint{
				ID:  int64(obj.ID),
				Lat: obj.Lat,
				Lon: obj.Lon,
			})
			if len(points)%1_000_000 == 0 {
				rd.logger.Sugar().Infof("reading openstreetmap nodes: %d...", len(points))
			}
		case *osm.Way:
			if len(obj.Nodes) == 0 {
				emptyWays++
				continue
			}
			ways = append(ways, newRawWay(obj))
			if len(ways)%100_000 == 0 {
				rd.logger.Sugar().Infof("reading openstreetmap ways: %d...", len(ways))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, &FileError{Path: path, Err: errors.Wrap(err, "scanner error")}
	}

	rd.logger.Info("finished reading map data",
		zap.Int("points", len(points)),
		zap.Int("ways", len(ways)),
		zap.Int("empty_ways", emptyWays),
		zap.Duration("elapsed", time.Since(st)),
	)
	return points, ways, nil
}

func newRawWay(way *osm.Way) RawWay {
	nodes := make([]int64, len(way.Nodes))
	for i, n := range way.Nodes {
		nodes[i] = int64(n.ID)
	}
	var tags map[string]string
	if len(way.Tags) > 0 {
		tags = way.TagMap()
	}
	return RawWay{
		ID:    int64(way.ID),
		Nodes: nodes,
		Tags:  tags,
	}
}
