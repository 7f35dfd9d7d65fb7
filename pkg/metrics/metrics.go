package metrics

import (
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/osmparser"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roadgraph"

// Pipeline holds the metrics of one conversion run.
type Pipeline struct {
	PointsRead      prometheus.Counter
	WaysRead        prometheus.Counter
	PointsRetained  prometheus.Gauge
	WaysRetained    prometheus.Gauge
	WaysRejected    *prometheus.CounterVec
	SpeedSources    *prometheus.CounterVec
	UnknownHighways prometheus.Counter
	Components      prometheus.Gauge
	GraphNodes      *prometheus.GaugeVec
	GraphEdges      *prometheus.GaugeVec
	StageDuration   *prometheus.GaugeVec
}

func NewPipeline(reg prometheus.Registerer) *Pipeline {
	m := &Pipeline{
		PointsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_read_total",
			Help:      "Map points read from the input file.",
		}),
		WaysRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ways_read_total",
			Help:      "Map ways read from the input file.",
		}),
		PointsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "points_retained",
			Help:      "Points referenced by an admissible way.",
		}),
		WaysRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ways_retained",
			Help:      "Ways admissible for the travel mode.",
		}),
		WaysRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ways_rejected_total",
			Help:      "Ways rejected by the filter, by first failed check.",
		}, []string{"reason"}),
		SpeedSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edge_speed_source_total",
			Help:      "Edges by the way their speed was derived.",
		}, []string{"source"}),
		UnknownHighways: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edge_unknown_highway_total",
			Help:      "Edges whose highway type had no default speed.",
		}),
		Components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "strongly_connected_components",
			Help:      "Strongly connected components of the built graph.",
		}),
		GraphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Graph nodes after a stage.",
		}, []string{"stage"}),
		GraphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Graph edges after a stage.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of a pipeline stage.",
		}, []string{"stage"}),
	}
	reg.MustRegister(
		m.PointsRead, m.WaysRead,
		m.PointsRetained, m.WaysRetained, m.WaysRejected,
		m.SpeedSources, m.UnknownHighways,
		m.Components, m.GraphNodes, m.GraphEdges,
		m.StageDuration,
	)
	return m
}

func (m *Pipeline) ObserveRead(points, ways int) {
	m.PointsRead.Add(float64(points))
	m.WaysRead.Add(float64(ways))
}

func (m *Pipeline) ObserveFilter(stats osmparser.FilterStats) {
	m.PointsRetained.Set(float64(stats.PointsRetained))
	m.WaysRetained.Set(float64(stats.WaysRetained))
	m.WaysRejected.WithLabelValues("missing_point").Add(float64(stats.WaysMissingPoint))
	m.WaysRejected.WithLabelValues("area").Add(float64(stats.WaysArea))
	m.WaysRejected.WithLabelValues("no_highway").Add(float64(stats.WaysNoHighway))
	m.WaysRejected.WithLabelValues("not_allowed").Add(float64(stats.WaysNotAllowed))
}

func (m *Pipeline) ObserveBuild(stats osmparser.BuildStats) {
	for source, n := range stats.SpeedSources {
		m.SpeedSources.WithLabelValues(source.String()).Add(float64(n))
	}
	m.UnknownHighways.Add(float64(stats.UnknownHighways))
}

func (m *Pipeline) ObserveComponents(n int) {
	m.Components.Set(float64(n))
}

// ObserveGraph records the size of g after stage.
func (m *Pipeline) ObserveGraph(stage string, g *datastructure.Graph) {
	m.GraphNodes.WithLabelValues(stage).Set(float64(g.NumNodes()))
	m.GraphEdges.WithLabelValues(stage).Set(float64(g.NumEdges()))
}

func (m *Pipeline) ObserveStage(stage string, elapsed time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(elapsed.Seconds())
}

// WriteToTextfile dumps every metric of g in the text exposition format, for
// the node exporter textfile collector.
func WriteToTextfile(filename string, g prometheus.Gatherer) error {
	return errors.Wrapf(prometheus.WriteToTextfile(filename, g), "write metrics to '%s'", filename)
}
