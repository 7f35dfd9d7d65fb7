package storage

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GraphWriter persists a finished graph.
type GraphWriter interface {
	Write(g *datastructure.Graph) error
}

// OutputPrefix returns the default output file name for a map file and travel
// mode, e.g. "berlin.osm.pycgr" for cars.
func OutputPrefix(input string, mode config.TravelMode) string {
	return input + ".py" + mode.Short() + "gr"
}

type writerOptions struct {
	logger   *zap.Logger
	geojson  bool
	binary   bool
	geometry bool
	simplify float64
}

type WriterOption func(*writerOptions)

func WithLogger(logger *zap.Logger) WriterOption {
	return func(o *writerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGeoJSON also writes <prefix>.geojson.
func WithGeoJSON(enabled bool) WriterOption {
	return func(o *writerOptions) {
		o.geojson = enabled
	}
}

// WithBinary also writes <prefix>.bin, readable with ReadBinary.
func WithBinary(enabled bool) WriterOption {
	return func(o *writerOptions) {
		o.binary = enabled
	}
}

// WithGeometry also writes <prefix>_geometry, one polyline per edge,
// simplified with the given threshold in meters when it is positive.
func WithGeometry(enabled bool, simplify float64) WriterOption {
	return func(o *writerOptions) {
		o.geometry = enabled
		o.simplify = simplify
	}
}

// FileWriter writes the text graph to <prefix> and the edge names to
// <prefix>_names, plus whichever extra formats are enabled.
type FileWriter struct {
	prefix string
	opts   writerOptions
}

func NewFileWriter(prefix string, opts ...WriterOption) *FileWriter {
	o := writerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &FileWriter{prefix: prefix, opts: o}
}

// Files returns the paths Write creates, in the order it creates them.
func (fw *FileWriter) Files() []string {
	files := make([]string, 0)
	for _, out := range fw.outputs() {
		files = append(files, out.path)
	}
	return files
}

type writeFunc func(io.Writer, *datastructure.Graph) error

type output struct {
	path  string
	write writeFunc
}

func (fw *FileWriter) outputs() []output {
	outputs := []output{
		{fw.prefix, WriteText},
		{fw.prefix + "_names", WriteNames},
	}
	if fw.opts.geojson {
		outputs = append(outputs, output{fw.prefix + ".geojson", WriteGeoJSON})
	}
	if fw.opts.binary {
		outputs = append(outputs, output{fw.prefix + ".bin", WriteBinary})
	}
	if fw.opts.geometry {
		simplify := fw.opts.simplify
		outputs = append(outputs, output{fw.prefix + "_geometry", func(w io.Writer, g *datastructure.Graph) error {
			return WriteGeometry(w, g, simplify)
		}})
	}
	return outputs
}

func (fw *FileWriter) Write(g *datastructure.Graph) error {
	st := time.Now()

	outputs := fw.outputs()
	for _, out := range outputs {
		if err := writeFile(out.path, g, out.write); err != nil {
			return err
		}
		fw.opts.logger.Debug("wrote output file", zap.String("path", out.path))
	}

	fw.opts.logger.Info("graph written",
		zap.String("prefix", fw.prefix),
		zap.Int("files", len(outputs)),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Duration("elapsed", time.Since(st)),
	)
	return nil
}

func writeFile(path string, g *datastructure.Graph, write writeFunc) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create '%s'", path)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw, g); err != nil {
		f.Close()
		return errors.Wrapf(err, "write '%s'", path)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush '%s'", path)
	}
	return errors.Wrapf(f.Close(), "close '%s'", path)
}
