package osmparser

import (
	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	workers  int
	progress bool
	geometry bool
}

func defaultOptions() options {
	return options{
		logger:  zap.NewNop(),
		workers: 1,
	}
}

type Option func(*options)

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers sets how many goroutines evaluate way admissibility. Values
// below 1 are treated as 1.
func WithWorkers(workers int) Option {
	return func(o *options) {
		if workers < 1 {
			workers = 1
		}
		o.workers = workers
	}
}

// WithProgress shows a progress bar on stdout for passes over ways.
func WithProgress(progress bool) Option {
	return func(o *options) {
		o.progress = progress
	}
}

// WithGeometry keeps the full shape of every way on its edge.
func WithGeometry(geometry bool) Option {
	return func(o *options) {
		o.geometry = geometry
	}
}
