package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seedops/flighttrack/internal/radar"
)

// DefaultBounds is the operational coverage window frames are clipped to
// when the configuration does not override it.
var DefaultBounds = radar.Bounds{
	LatMin: 36.35, LonMin: -123.78,
	LatMax: 41.0, LonMax: -118.84,
}

// Config drives one frame-rendering run. Values load from an optional YAML
// file first; flags set on the command line override it. Bounds follow the
// frontend convention: [[latMin, lonMin], [latMax, lonMax]].
type Config struct {
	OutDir      string         `yaml:"outDir"`
	ArchiveDir  string         `yaml:"archiveDir"`
	Bounds      *[2][2]float64 `yaml:"bounds"`
	FontPath    string         `yaml:"fontPath"`
	Workers     int            `yaml:"workers"`
	CatalogPath string         `yaml:"catalog"`
	MetricsAddr string         `yaml:"metricsAddr"`
	Verbose     bool           `yaml:"verbose"`
}

// ClipBounds resolves the configured bounds, falling back to the default
// coverage window.
func (c *Config) ClipBounds() (radar.Bounds, error) {
	if c.Bounds == nil {
		return DefaultBounds, nil
	}
	b := radar.Bounds{
		LatMin: c.Bounds[0][0], LonMin: c.Bounds[0][1],
		LatMax: c.Bounds[1][0], LonMax: c.Bounds[1][1],
	}
	if !b.Valid() {
		return radar.Bounds{}, fmt.Errorf("inverted bounds: %v", *c.Bounds)
	}
	return b, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}
	return c, nil
}

func NewConfigFromCLI() (*Config, error) {
	var configPath string
	var flags Config
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.StringVar(&flags.OutDir, "out", "", "Output directory holding processed flight directories")
	flag.StringVar(&flags.ArchiveDir, "archive", "", "Directory holding the shared radar volume archive")
	flag.StringVar(&flags.FontPath, "font", "", "TrueType font for frame annotations (optional)")
	flag.IntVar(&flags.Workers, "workers", 0, "Render pool size (default 3)")
	flag.StringVar(&flags.CatalogPath, "catalog", "", "Path to the run catalog database (optional)")
	flag.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics (optional)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	c := &Config{}
	if configPath != "" {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			c.OutDir = flags.OutDir
		case "archive":
			c.ArchiveDir = flags.ArchiveDir
		case "font":
			c.FontPath = flags.FontPath
		case "workers":
			c.Workers = flags.Workers
		case "catalog":
			c.CatalogPath = flags.CatalogPath
		case "metrics-addr":
			c.MetricsAddr = flags.MetricsAddr
		case "verbose":
			c.Verbose = flags.Verbose
		}
	})

	var err error
	if c.OutDir == "" {
		err = errors.New("output directory is required")
	} else if c.ArchiveDir == "" {
		err = errors.New("archive directory is required")
	}
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}
