package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives one track-building run. Values load from an optional YAML
// file first; flags set on the command line override it.
type Config struct {
	LogDir      string `yaml:"logDir"`
	OutDir      string `yaml:"outDir"`
	CatalogPath string `yaml:"catalog"`
	MetricsAddr string `yaml:"metricsAddr"`
	Verbose     bool   `yaml:"verbose"`
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
	flag.StringVar(&flags.LogDir, "in", "", "Directory holding raw flight logs")
	flag.StringVar(&flags.OutDir, "out", "", "Output directory for track artifacts and the master index")
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
		case "in":
			c.LogDir = flags.LogDir
		case "out":
			c.OutDir = flags.OutDir
		case "catalog":
			c.CatalogPath = flags.CatalogPath
		case "metrics-addr":
			c.MetricsAddr = flags.MetricsAddr
		case "verbose":
			c.Verbose = flags.Verbose
		}
	})

	var err error
	if c.LogDir == "" {
		err = errors.New("input directory is required")
	} else if c.OutDir == "" {
		err = errors.New("output directory is required")
	}
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}
