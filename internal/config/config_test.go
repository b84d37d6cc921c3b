package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
datasets:
  - name: mcd43a3
    product: MCD43A3
    csv-path: /data/mcd43a3.csv
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Quality.MinPixelCount != DefaultMinPixelCount {
		t.Errorf("min-pixel-count = %d, want %d", c.Quality.MinPixelCount, DefaultMinPixelCount)
	}
	if c.Trend.Alpha != DefaultAlpha {
		t.Errorf("alpha = %v, want %v", c.Trend.Alpha, DefaultAlpha)
	}
	if c.Trend.MinSeriesLength != DefaultMinSeriesLength {
		t.Errorf("min-series-length = %d, want %d", c.Trend.MinSeriesLength, DefaultMinSeriesLength)
	}
	if c.Trend.Metric != DefaultMetric {
		t.Errorf("metric = %q, want %q", c.Trend.Metric, DefaultMetric)
	}
	if c.Outputs.Dir != "output" {
		t.Errorf("output dir = %q, want %q", c.Outputs.Dir, "output")
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
datasets:
  - name: mod10a1
    product: MOD10A1
    csv-path: /data/mod10a1.csv
    zone-csv-paths:
      above_median: /data/mod10a1_above.csv
      below_median: /data/mod10a1_below.csv
quality:
  qa-threshold: 1
  min-pixel-count: 8
  min-data-quality: 50
trend:
  alpha: 0.01
  metric: median
  prewhiten: true
storage:
  sqlite:
    path: /data/albedo.db
outputs:
  dir: results
  csv: true
  charts: true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := c.Datasets[0]
	if d.ZoneCSVPaths["above_median"] != "/data/mod10a1_above.csv" {
		t.Errorf("zone path = %q", d.ZoneCSVPaths["above_median"])
	}
	if c.Quality.MinPixelCount != 8 || c.Quality.MinDataQuality != 50 {
		t.Errorf("quality = %+v", c.Quality)
	}
	if c.Trend.Alpha != 0.01 || c.Trend.Metric != "median" || !c.Trend.Prewhiten {
		t.Errorf("trend = %+v", c.Trend)
	}
	if c.Storage.SQLite == nil || c.Storage.SQLite.Path != "/data/albedo.db" {
		t.Errorf("storage = %+v", c.Storage)
	}
	if c.Storage.Postgres != nil {
		t.Error("postgres should be unset")
	}
	if c.Outputs.Dir != "results" || !c.Outputs.Charts {
		t.Errorf("outputs = %+v", c.Outputs)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no datasets", `outputs: {dir: out}`},
		{"missing name", `
datasets:
  - product: MCD43A3
    csv-path: /data/a.csv
`},
		{"unknown product", `
datasets:
  - name: bad
    product: MYD09GA
    csv-path: /data/a.csv
`},
		{"missing csv path", `
datasets:
  - name: bad
    product: MCD43A3
`},
		{"unknown zone", `
datasets:
  - name: bad
    product: MCD43A3
    csv-path: /data/a.csv
    zone-csv-paths:
      summit: /data/b.csv
`},
		{"alpha out of range", `
datasets:
  - name: ok
    product: MCD43A3
    csv-path: /data/a.csv
trend:
  alpha: 1.5
`},
		{"bad metric", `
datasets:
  - name: ok
    product: MCD43A3
    csv-path: /data/a.csv
trend:
  metric: mode
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
