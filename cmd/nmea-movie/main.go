package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/skypies/geo"

	"nmea-movie/internal/config"
	"nmea-movie/internal/grid"
	"nmea-movie/internal/logging"
	"nmea-movie/internal/movie"
	"nmea-movie/internal/pipeline"
	"nmea-movie/internal/sim"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("nmea-movie: %v", err)
	}
}

type options struct {
	configPath string
	simulate   int

	latBinSize, lngBinSize float64
	frameLength            int
	lat0, lng0, lat1, lng1 float64
	numSV                  int
	in, out, logLevel      string
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("nmea-movie", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Path to YAML config")
	fs.Float64Var(&o.latBinSize, "latbinsize", config.DefaultBinSize, "Latitude bin size in degrees")
	fs.Float64Var(&o.lngBinSize, "lngbinsize", config.DefaultBinSize, "Longitude bin size in degrees")
	fs.IntVar(&o.frameLength, "framelength", int(config.DefaultFrameLength/time.Second), "Frame length in seconds")
	fs.Float64Var(&o.lat0, "lat0", 0, "Bounding box bottom-left latitude")
	fs.Float64Var(&o.lng0, "lng0", 0, "Bounding box bottom-left longitude")
	fs.Float64Var(&o.lat1, "lat1", 0, "Bounding box top-right latitude")
	fs.Float64Var(&o.lng1, "lng1", 0, "Bounding box top-right longitude")
	fs.IntVar(&o.numSV, "numsv", 0, "Drop fixes that used fewer satellites")
	fs.StringVar(&o.in, "in", "", "Read NMEA from this file instead of stdin")
	fs.StringVar(&o.out, "out", "", "Output directory for frame files")
	fs.StringVar(&o.logLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&o.simulate, "simulate", 0, "Write N seconds of synthetic NMEA to stdout and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if fs.NArg() > 0 {
		return options{}, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, fs, nil
}

// buildConfig layers the YAML file (if any) under the flags that were set on
// the command line.
func buildConfig(o options, fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Read(o.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config load failed: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "latbinsize":
			cfg.Bins.LatSize = o.latBinSize
		case "lngbinsize":
			cfg.Bins.LngSize = o.lngBinSize
		case "framelength":
			cfg.Frame.Length = time.Duration(o.frameLength) * time.Second
		case "lat0":
			cfg.BBox.Lat0 = &o.lat0
		case "lng0":
			cfg.BBox.Lng0 = &o.lng0
		case "lat1":
			cfg.BBox.Lat1 = &o.lat1
		case "lng1":
			cfg.BBox.Lng1 = &o.lng1
		case "numsv":
			cfg.Filter.MinSatellites = &o.numSV
		case "in":
			cfg.Input.Path = o.in
		case "out":
			cfg.Output.Dir = o.out
		case "loglevel":
			cfg.Log.Level = o.logLevel
		}
	})
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := buildConfig(o, fs)
	if err != nil {
		return err
	}

	if o.simulate > 0 {
		return simulate(cfg, o.simulate, stdout)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Configure(cfg.Log, stderr); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	in := stdin
	if cfg.Input.Path != "" {
		f, err := os.Open(cfg.Input.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	emitter, err := movie.NewEmitter(cfg.Output.Dir)
	if err != nil {
		return err
	}
	agg, err := pipeline.New(pipeline.Options{
		Grid: grid.Config{
			LatBinSize: cfg.Bins.LatSize,
			LngBinSize: cfg.Bins.LngSize,
			Box: geo.LatlongBox{
				SW: geo.Latlong{Lat: *cfg.BBox.Lat0, Long: *cfg.BBox.Lng0},
				NE: geo.Latlong{Lat: *cfg.BBox.Lat1, Long: *cfg.BBox.Lng1},
			},
			MaxCells: cfg.Grid.MaxCells,
		},
		FrameLength:      cfg.Frame.Length,
		MinSatellites:    cfg.Filter.MinSatellites,
		StrictTimestamps: cfg.Timestamps.Strict,
	}, emitter)
	if err != nil {
		return err
	}

	log.Infof("nmea-movie starting")
	log.Infof("grid %dx%d bins=%g,%g frame=%s out=%s",
		agg.Grid().Rows(), agg.Grid().Cols(), cfg.Bins.LatSize, cfg.Bins.LngSize, cfg.Frame.Length, cfg.Output.Dir)

	start := time.Now()
	runErr := pipeline.Run(ctx, in, agg, cfg.Input.QueueSize)
	printRunSummary(stderr, agg.Stats(), time.Since(start))
	return runErr
}

// simulate centers the synthetic track on the bounding box when one is
// configured.
func simulate(cfg config.Config, seconds int, stdout io.Writer) error {
	track := sim.Track{
		Center:     geo.Latlong{Lat: 53.3498, Long: -6.2603},
		RadiusNm:   0.5,
		Period:     2 * time.Minute,
		Satellites: 10,
	}
	b := cfg.BBox
	if b.Lat0 != nil && b.Lng0 != nil && b.Lat1 != nil && b.Lng1 != nil {
		track.Center = geo.Latlong{Lat: (*b.Lat0 + *b.Lat1) / 2, Long: (*b.Lng0 + *b.Lng1) / 2}
	}
	return track.WriteTo(stdout, seconds)
}
