package converter

import (
	"context"
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/contractor"
	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/metrics"
	"github.com/lintang-b-s/roadgraph/pkg/osmparser"
	"github.com/lintang-b-s/roadgraph/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	stageRead     = "read"
	stageFilter   = "filter"
	stageBuild    = "build"
	stageReduce   = "reduce"
	stageWrite    = "write"
	stageContract = "contract"
)

// Converter turns a map file into a road graph: read, filter, build, reduce
// to the largest strongly connected component, write.
type Converter struct {
	source osmparser.MapDataSource
	policy *config.AccessPolicy

	logger    *zap.Logger
	metrics   *metrics.Pipeline
	workers   int
	progress  bool
	geometry  bool
	skipLCC   bool
	shortcuts string
}

type Option func(*Converter)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Pipeline) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

func WithWorkers(workers int) Option {
	return func(c *Converter) {
		c.workers = workers
	}
}

func WithProgress(progress bool) Option {
	return func(c *Converter) {
		c.progress = progress
	}
}

// WithGeometry keeps way shapes on edges for the geometry and GeoJSON outputs.
func WithGeometry(geometry bool) Option {
	return func(c *Converter) {
		c.geometry = geometry
	}
}

// WithoutLCC delivers the built graph without reducing it to its largest
// strongly connected component.
func WithoutLCC(skip bool) Option {
	return func(c *Converter) {
		c.skipLCC = skip
	}
}

// WithContraction prepares contraction hierarchies over the delivered graph
// and exports the shortcuts to filename.
func WithContraction(filename string) Option {
	return func(c *Converter) {
		c.shortcuts = filename
	}
}

func New(source osmparser.MapDataSource, policy *config.AccessPolicy, opts ...Option) *Converter {
	c := &Converter{
		source:  source,
		policy:  policy,
		logger:  zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Result struct {
	Graph      *datastructure.Graph
	Filter     osmparser.FilterStats
	Build      osmparser.BuildStats
	Components int
	// Hierarchy is set when contraction was requested.
	Hierarchy *contractor.Hierarchy
}

// Convert runs every stage up to, but not including, writing.
func (c *Converter) Convert(ctx context.Context, path string, mode config.TravelMode) (*Result, error) {
	parserOpts := []osmparser.Option{
		osmparser.WithLogger(c.logger),
		osmparser.WithWorkers(c.workers),
		osmparser.WithProgress(c.progress),
		osmparser.WithGeometry(c.geometry),
	}

	st := time.Now()
	points, ways, err := c.source.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	c.observeStage(stageRead, st)
	if c.metrics != nil {
		c.metrics.ObserveRead(len(points), len(ways))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st = time.Now()
	filtered := osmparser.Filter(points, ways, c.policy, mode, parserOpts...)
	c.observeStage(stageFilter, st)
	if c.metrics != nil {
		c.metrics.ObserveFilter(filtered.Stats)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st = time.Now()
	g, buildStats := osmparser.Build(filtered.Points, filtered.Ways, c.policy, parserOpts...)
	c.observeStage(stageBuild, st)
	if c.metrics != nil {
		c.metrics.ObserveBuild(buildStats)
		c.metrics.ObserveGraph(stageBuild, g)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Graph:  g,
		Filter: filtered.Stats,
		Build:  buildStats,
	}
	if c.skipLCC {
		c.logger.Info("skipping largest connected component reduction")
	} else {
		st = time.Now()
		scc := contractor.StronglyConnectedComponents(g)
		res.Components = scc.Len()
		res.Graph = contractor.Induce(g, scc, contractor.WithLogger(c.logger))
		c.observeStage(stageReduce, st)
		if c.metrics != nil {
			c.metrics.ObserveComponents(res.Components)
			c.metrics.ObserveGraph(stageReduce, res.Graph)
		}
	}

	if c.shortcuts != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st = time.Now()
		h, err := contractor.Contract(res.Graph, contractor.WithLogger(c.logger))
		if err != nil {
			return nil, errors.Wrap(err, "contraction")
		}
		c.observeStage(stageContract, st)
		res.Hierarchy = h
	}
	return res, nil
}

// Run converts path and hands the delivered graph to w.
func (c *Converter) Run(ctx context.Context, path string, mode config.TravelMode,
	w storage.GraphWriter) (*Result, error) {
	c.logger.Info("converting map file",
		zap.String("path", path),
		zap.Stringer("mode", mode),
	)

	res, err := c.Convert(ctx, path, mode)
	if err != nil {
		return nil, err
	}

	st := time.Now()
	if err := w.Write(res.Graph); err != nil {
		return nil, errors.Wrap(err, "write graph")
	}
	c.observeStage(stageWrite, st)

	if res.Hierarchy != nil {
		if err := res.Hierarchy.ExportShortcuts(c.shortcuts); err != nil {
			return nil, err
		}
		c.logger.Info("exported shortcuts", zap.String("path", c.shortcuts))
	}
	return res, nil
}

func (c *Converter) observeStage(stage string, st time.Time) {
	elapsed := time.Since(st)
	c.logger.Debug("stage finished", zap.String("stage", stage), zap.Duration("elapsed", elapsed))
	if c.metrics != nil {
		c.metrics.ObserveStage(stage, elapsed)
	}
}
