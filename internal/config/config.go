// Package config loads and validates the YAML configuration that
// drives the albedo analysis pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// Config is the base configuration object
type Config struct {
	Datasets []DatasetConfig `yaml:"datasets"`
	Quality  QualityConfig   `yaml:"quality,omitempty"`
	Trend    TrendConfig     `yaml:"trend,omitempty"`
	Storage  StorageConfig   `yaml:"storage,omitempty"`
	Outputs  OutputConfig    `yaml:"outputs,omitempty"`
}

// DatasetConfig describes one satellite product export to analyze.
type DatasetConfig struct {
	Name    string `yaml:"name"`
	Product string `yaml:"product"`
	CSVPath string `yaml:"csv-path"`

	// ZoneCSVPaths maps elevation zone names to the per-zone export
	// files, when the dataset was cross-joined by elevation.
	ZoneCSVPaths map[string]string `yaml:"zone-csv-paths,omitempty"`
}

// QualityConfig holds the data-quality gates applied before aggregation.
type QualityConfig struct {
	QAThreshold    int     `yaml:"qa-threshold,omitempty"`
	MinPixelCount  int     `yaml:"min-pixel-count,omitempty"`
	MinDataQuality float64 `yaml:"min-data-quality,omitempty"`
}

// TrendConfig holds the parameters of the trend statistics.
type TrendConfig struct {
	Alpha           float64 `yaml:"alpha,omitempty"`
	MinSeriesLength int     `yaml:"min-series-length,omitempty"`
	Prewhiten       bool    `yaml:"prewhiten,omitempty"`
	Metric          string  `yaml:"metric,omitempty"`
}

// StorageConfig holds the configuration for optional storage backends.
// More than one storage backend can be used simultaneously.
type StorageConfig struct {
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
	SQLite   *SQLiteConfig   `yaml:"sqlite,omitempty"`
}

type PostgresConfig struct {
	ConnectionString string `yaml:"connection-string,omitempty"`
}

type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// OutputConfig selects which artifacts the pipeline writes.
type OutputConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	CSV    bool   `yaml:"csv,omitempty"`
	XLSX   bool   `yaml:"xlsx,omitempty"`
	Charts bool   `yaml:"charts,omitempty"`
}

// Defaults applied by Load when the file leaves a field unset.
const (
	DefaultMinPixelCount   = 5
	DefaultAlpha           = 0.05
	DefaultMinSeriesLength = 10
	DefaultMetric          = "mean"
)

// Load creates a new config object from the given filename, applying
// defaults and validating the result.
func Load(filename string) (*Config, error) {
	cfgFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := yaml.Unmarshal(cfgFile, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Quality.MinPixelCount == 0 {
		c.Quality.MinPixelCount = DefaultMinPixelCount
	}
	if c.Trend.Alpha == 0 {
		c.Trend.Alpha = DefaultAlpha
	}
	if c.Trend.MinSeriesLength == 0 {
		c.Trend.MinSeriesLength = DefaultMinSeriesLength
	}
	if c.Trend.Metric == "" {
		c.Trend.Metric = DefaultMetric
	}
	if c.Outputs.Dir == "" {
		c.Outputs.Dir = "output"
	}
}

// Validate checks the configuration for errors that would otherwise
// surface deep inside the pipeline.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("config: no datasets defined")
	}
	for i, d := range c.Datasets {
		if d.Name == "" {
			return fmt.Errorf("config: dataset %d has no name", i)
		}
		switch types.Product(d.Product) {
		case types.ProductMCD43A3, types.ProductMOD10A1:
		default:
			return fmt.Errorf("config: dataset %q: unknown product %q", d.Name, d.Product)
		}
		if d.CSVPath == "" {
			return fmt.Errorf("config: dataset %q: csv-path is required", d.Name)
		}
		for zone := range d.ZoneCSVPaths {
			switch types.ElevationZone(zone) {
			case types.ZoneAbove, types.ZoneAt, types.ZoneBelow:
			default:
				return fmt.Errorf("config: dataset %q: unknown elevation zone %q", d.Name, zone)
			}
		}
	}
	if c.Trend.Alpha <= 0 || c.Trend.Alpha >= 1 {
		return fmt.Errorf("config: trend alpha must be in (0,1), got %v", c.Trend.Alpha)
	}
	if c.Trend.Metric != "mean" && c.Trend.Metric != "median" {
		return fmt.Errorf("config: trend metric must be \"mean\" or \"median\", got %q", c.Trend.Metric)
	}
	return nil
}
