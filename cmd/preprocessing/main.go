package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/lintang-b-s/roadgraph/pkg/config"
	"github.com/lintang-b-s/roadgraph/pkg/converter"
	"github.com/lintang-b-s/roadgraph/pkg/metrics"
	"github.com/lintang-b-s/roadgraph/pkg/osmparser"
	"github.com/lintang-b-s/roadgraph/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	mapFile     = flag.String("f", "", "openstreetmap file (.osm, .xml or .pbf) to convert")
	networkType = flag.String("network", "car", "travel mode: pedestrian|p, bicycle|b, car|c")
	configFile  = flag.String("config", "", "yaml file with allowed highways and speeds, built-in defaults when empty")
	noLCC       = flag.Bool("nolcc", false, "keep every component instead of only the largest strongly connected one")
	outPrefix   = flag.String("out", "", "output file prefix, <f>.py<mode>gr when empty")
	contract    = flag.Bool("contract", false, "prepare contraction hierarchies and export shortcuts to <out>_shortcuts.csv")
	geoJSON     = flag.Bool("geojson", false, "also write <out>.geojson")
	binaryOut   = flag.Bool("binary", false, "also write zstd compressed binary graph <out>.bin")
	geometry    = flag.Bool("geometry", false, "keep way shapes and write one polyline per edge to <out>_geometry")
	simplify    = flag.Float64("simplify", 0, "simplify way shapes written with -geometry, threshold in meters")
	metricsFile = flag.String("metrics", "", "write prometheus metrics of the run to this file")
	workers     = flag.Int("workers", runtime.NumCPU(), "goroutines checking way admissibility")
	verbose     = flag.Bool("verbose", false, "development logging at debug level")
	progress    = flag.Bool("progress", false, "show progress bars")
	printConfig = flag.Bool("printconfig", false, "print the built-in configuration and exit")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile  = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *printConfig {
		os.Stdout.Write(config.DefaultConfig())
		return
	}
	if *mapFile == "" {
		fmt.Fprintln(os.Stderr, "missing -f <map file>")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("conversion failed", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(logger *zap.Logger) error {
	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		// ./bin/roadgraph-preprocessing -f solo.osm.pbf -cpuprofile=roadgraphcpu.prof -memprofile=roadgraphmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	mode, err := config.ParseTravelMode(*networkType)
	if err != nil {
		return err
	}

	policy, err := loadPolicy(*configFile)
	if err != nil {
		return err
	}
	logger.Debug(policy.String())

	prefix := *outPrefix
	if prefix == "" {
		prefix = storage.OutputPrefix(*mapFile, mode)
	}

	reg := prometheus.NewRegistry()
	opts := []converter.Option{
		converter.WithLogger(logger),
		converter.WithMetrics(metrics.NewPipeline(reg)),
		converter.WithWorkers(*workers),
		converter.WithProgress(*progress),
		converter.WithGeometry(*geometry || *geoJSON),
		converter.WithoutLCC(*noLCC),
	}
	if *contract {
		opts = append(opts, converter.WithContraction(prefix+"_shortcuts.csv"))
	}

	writer := storage.NewFileWriter(prefix,
		storage.WithLogger(logger),
		storage.WithGeoJSON(*geoJSON),
		storage.WithBinary(*binaryOut),
		storage.WithGeometry(*geometry, *simplify),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := osmparser.NewReader(osmparser.WithLogger(logger), osmparser.WithWorkers(*workers))
	res, err := converter.New(source, policy, opts...).Run(ctx, *mapFile, mode, writer)
	if err != nil {
		return err
	}
	recordMemProfile(memprofile, "finish_conversion")

	if *metricsFile != "" {
		if err := metrics.WriteToTextfile(*metricsFile, reg); err != nil {
			return err
		}
	}

	logger.Info("done",
		zap.Strings("files", writer.Files()),
		zap.Int("nodes", res.Graph.NumNodes()),
		zap.Int("edges", res.Graph.NumEdges()),
	)
	return nil
}

func loadPolicy(path string) (*config.AccessPolicy, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.LoadFile(path)
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
