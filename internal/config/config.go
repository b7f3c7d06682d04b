package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bins       BinsConfig       `yaml:"bins"`
	BBox       BBoxConfig       `yaml:"bbox"`
	Frame      FrameConfig      `yaml:"frame"`
	Filter     FilterConfig     `yaml:"filter"`
	Grid       GridConfig       `yaml:"grid"`
	Timestamps TimestampsConfig `yaml:"timestamps"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

type BinsConfig struct {
	LatSize float64 `yaml:"lat_size"`
	LngSize float64 `yaml:"lng_size"`
}

// BBoxConfig is the area of interest: (lat0,lng0) is the bottom-left corner,
// (lat1,lng1) the top-right. All four are required.
type BBoxConfig struct {
	Lat0 *float64 `yaml:"lat0"`
	Lng0 *float64 `yaml:"lng0"`
	Lat1 *float64 `yaml:"lat1"`
	Lng1 *float64 `yaml:"lng1"`
}

type FrameConfig struct {
	Length time.Duration `yaml:"length"`
}

type FilterConfig struct {
	// MinSatellites drops fixes that used fewer satellites. Unset disables it.
	MinSatellites *int `yaml:"min_satellites"`
}

type GridConfig struct {
	MaxCells int `yaml:"max_cells"`
}

type TimestampsConfig struct {
	// Strict turns a fix that cannot be timestamped into a fatal error.
	Strict bool `yaml:"strict"`
}

type InputConfig struct {
	// Path is read instead of stdin when set.
	Path      string `yaml:"path"`
	QueueSize int    `yaml:"queue_size"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

const (
	DefaultBinSize     = 0.0001
	DefaultFrameLength = 60 * time.Second
	DefaultMaxCells    = 50_000_000
	DefaultQueueSize   = 1024
)

// Default returns a config with every optional field defaulted. The bounding
// box is left unset.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads, defaults and validates the config at path.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply overrides first.
func Read(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) && len(te.Errors) > 0 {
			return Config{}, fmt.Errorf("config contains unknown or invalid fields: %s", stripLine(te.Errors[0]))
		}
		return Config{}, err
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// stripLine drops yaml's "line N: " prefix.
func stripLine(msg string) string {
	if strings.HasPrefix(msg, "line ") {
		if i := strings.Index(msg, ": "); i != -1 {
			return msg[i+2:]
		}
	}
	return msg
}

func applyDefaults(cfg *Config) {
	if cfg.Bins.LatSize == 0 {
		cfg.Bins.LatSize = DefaultBinSize
	}
	if cfg.Bins.LngSize == 0 {
		cfg.Bins.LngSize = DefaultBinSize
	}
	if cfg.Frame.Length == 0 {
		cfg.Frame.Length = DefaultFrameLength
	}
	if cfg.Grid.MaxCells == 0 {
		cfg.Grid.MaxCells = DefaultMaxCells
	}
	if cfg.Input.QueueSize == 0 {
		cfg.Input.QueueSize = DefaultQueueSize
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}
}

// Validate checks a config after defaults and any overrides are applied.
func (c Config) Validate() error {
	if !(c.Bins.LatSize > 0) || math.IsInf(c.Bins.LatSize, 0) {
		return fmt.Errorf("bins.lat_size must be > 0")
	}
	if !(c.Bins.LngSize > 0) || math.IsInf(c.Bins.LngSize, 0) {
		return fmt.Errorf("bins.lng_size must be > 0")
	}

	b := c.BBox
	if b.Lat0 == nil || b.Lng0 == nil || b.Lat1 == nil || b.Lng1 == nil {
		return fmt.Errorf("bbox.lat0, bbox.lng0, bbox.lat1 and bbox.lng1 are required")
	}
	for _, v := range []struct {
		name string
		val  float64
		lim  float64
	}{
		{"bbox.lat0", *b.Lat0, 90},
		{"bbox.lat1", *b.Lat1, 90},
		{"bbox.lng0", *b.Lng0, 180},
		{"bbox.lng1", *b.Lng1, 180},
	} {
		if math.IsNaN(v.val) || v.val < -v.lim || v.val > v.lim {
			return fmt.Errorf("%s must be within [-%g, %g]", v.name, v.lim, v.lim)
		}
	}
	if *b.Lat0 > *b.Lat1 {
		return fmt.Errorf("bbox.lat0 must be <= bbox.lat1")
	}
	if *b.Lng0 > *b.Lng1 {
		return fmt.Errorf("bbox.lng0 must be <= bbox.lng1")
	}

	if c.Frame.Length <= 0 {
		return fmt.Errorf("frame.length must be > 0")
	}
	if c.Frame.Length%time.Second != 0 {
		return fmt.Errorf("frame.length must be a whole number of seconds")
	}
	if c.Filter.MinSatellites != nil && *c.Filter.MinSatellites < 0 {
		return fmt.Errorf("filter.min_satellites must be >= 0")
	}
	if c.Grid.MaxCells < 0 {
		return fmt.Errorf("grid.max_cells must be >= 0")
	}
	if c.Input.QueueSize < 0 {
		return fmt.Errorf("input.queue_size must be >= 0")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
