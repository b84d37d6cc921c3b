// Package pipeline wires the analysis stages together: ingest,
// quality filtering, aggregation, trend statistics, exports, storage
// mirrors and charts, as configured for each dataset.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/aggregate"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/charts"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/config"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/database"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/export"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/gee"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/log"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/quality"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/trend"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// Pipeline runs the configured analysis end to end.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	stores []database.Store
}

// New creates a pipeline from a validated configuration.
func New(cfg *config.Config, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes every configured dataset and writes the combined
// outputs. Storage backends are optional: a missing backend is
// logged and skipped, not fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.Outputs.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	p.openStores()

	var allRecords []export.TrendRecord
	byProduct := make(map[types.Product][]types.Observation)

	for _, d := range p.cfg.Datasets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		log.Infof("analyzing dataset %s (%s)", d.Name, d.Product)

		records, obs, err := p.runDataset(d)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		allRecords = append(allRecords, records...)
		byProduct[types.Product(d.Product)] = append(byProduct[types.Product(d.Product)], obs...)

		log.Infof("dataset %s: %d observations, %d trend rows in %s",
			d.Name, len(obs), len(records), time.Since(start).Round(time.Millisecond))
	}

	if err := p.writeOutputs(allRecords, byProduct); err != nil {
		return err
	}

	for _, s := range p.stores {
		if err := s.StoreTrendResults(allRecords); err != nil {
			log.Warn("storing trend results:", err)
		}
	}
	return nil
}

func (p *Pipeline) openStores() {
	if pg := p.cfg.Storage.Postgres; pg != nil && pg.ConnectionString != "" {
		client := database.NewClient(pg.ConnectionString, p.logger)
		if err := client.Connect(); err != nil {
			log.Warn("PostgreSQL mirror unavailable, continuing without it:", err)
		} else {
			p.stores = append(p.stores, client)
		}
	}
	if sq := p.cfg.Storage.SQLite; sq != nil && sq.Path != "" {
		store, err := database.OpenSQLite(sq.Path)
		if err != nil {
			log.Warn("SQLite results store unavailable, continuing without it:", err)
		} else {
			p.stores = append(p.stores, store)
		}
	}
}

// runDataset loads, filters and tests one dataset, covering the
// all-pixels series plus any per-elevation-zone exports.
func (p *Pipeline) runDataset(d config.DatasetConfig) ([]export.TrendRecord, []types.Observation, error) {
	product := types.Product(d.Product)

	sources := []struct {
		zone types.ElevationZone
		path string
	}{{types.ZoneAll, d.CSVPath}}
	zones := make([]string, 0, len(d.ZoneCSVPaths))
	for zone := range d.ZoneCSVPaths {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	for _, zone := range zones {
		sources = append(sources, struct {
			zone types.ElevationZone
			path string
		}{types.ElevationZone(zone), d.ZoneCSVPaths[zone]})
	}

	var records []export.TrendRecord
	var all []types.Observation

	for _, src := range sources {
		obs, err := gee.ReadFile(src.path, gee.ReaderOptions{
			Product:       product,
			Zone:          src.zone,
			MinPixelCount: p.cfg.Quality.MinPixelCount,
		})
		if err != nil {
			return nil, nil, err
		}
		obs = quality.FilterRecords(obs, p.cfg.Quality.MinDataQuality)

		records = append(records, p.datasetRecords(d.Name, product, src.zone, obs)...)
		all = append(all, obs...)

		for _, s := range p.stores {
			if err := s.StoreObservations(obs); err != nil {
				log.Warn("storing observations:", err)
			}
		}

		if src.zone == types.ZoneAll && p.cfg.Outputs.Charts {
			if err := p.datasetCharts(d.Name, obs, records); err != nil {
				log.Warn("rendering charts:", err)
			}
		}
		if src.zone == types.ZoneAll && p.cfg.Outputs.CSV {
			cleaned := filepath.Join(p.cfg.Outputs.Dir, d.Name+"_cleaned.csv")
			if err := export.WriteObservationsCSV(cleaned, obs); err != nil {
				log.Warn("writing cleaned series:", err)
			}
		}
	}
	return records, all, nil
}

// datasetRecords computes the trend table of one observation set:
// per class, the melt-season test, the seasonal test and one test per
// melt-season month.
func (p *Pipeline) datasetRecords(dataset string, product types.Product, zone types.ElevationZone, obs []types.Observation) []export.TrendRecord {
	opts := trend.Options{
		Alpha:     p.cfg.Trend.Alpha,
		MinLength: p.cfg.Trend.MinSeriesLength,
		Prewhiten: p.cfg.Trend.Prewhiten,
	}
	metric := aggregate.Metric(p.cfg.Trend.Metric)

	var records []export.TrendRecord
	add := func(class types.FractionClass, period string, r trend.Result) {
		records = append(records, export.TrendRecord{
			Dataset: dataset,
			Product: product,
			Zone:    zone,
			Class:   class,
			Period:  period,
			Result:  r,
		})
	}

	for _, class := range types.FractionClasses() {
		add(class, "melt_season", trend.MannKendall(aggregate.MeltSeasonDaily(obs, class, metric), opts))
		add(class, "seasonal", trend.SeasonalMannKendall(aggregate.MonthlyByMonth(obs, class, metric), opts))

		byMonth := aggregate.MonthlyByMonth(obs, class, metric)
		for _, month := range types.MeltSeasonMonths() {
			s, ok := byMonth.Seasons[int(month)]
			if !ok {
				continue
			}
			add(class, export.MonthName(int(month)), trend.MannKendall(s, opts))
		}
	}
	return records
}

// datasetCharts renders the per-dataset figures: a trend-annotated
// time series for the purest class, monthly boxplots and the slope
// heatmap.
func (p *Pipeline) datasetCharts(dataset string, obs []types.Observation, records []export.TrendRecord) error {
	metric := aggregate.Metric(p.cfg.Trend.Metric)
	dir := p.cfg.Outputs.Dir

	series := aggregate.MeltSeasonDaily(obs, types.ClassPureIce, metric)
	var meltResult trend.Result
	for _, r := range records {
		if r.Dataset == dataset && r.Class == types.ClassPureIce && r.Period == "melt_season" {
			meltResult = r.Result
		}
	}
	if series.Len() > 0 {
		path := filepath.Join(dir, dataset+"_pure_ice_timeseries.png")
		if err := charts.TimeSeries(path, dataset+" pure ice albedo", series, meltResult); err != nil {
			return err
		}
	}

	if err := charts.MonthlyBoxplots(
		filepath.Join(dir, dataset+"_monthly_boxplots.png"),
		dataset+" monthly albedo", obs, types.ClassPureIce, metric,
	); err != nil {
		log.Debugf("boxplots skipped: %v", err)
	}

	slopes := make(map[types.FractionClass]map[time.Month]float64)
	for _, r := range records {
		if r.Dataset != dataset || !r.Result.Significant() {
			continue
		}
		for _, month := range types.MeltSeasonMonths() {
			if r.Period == export.MonthName(int(month)) {
				if slopes[r.Class] == nil {
					slopes[r.Class] = make(map[time.Month]float64)
				}
				slopes[r.Class][month] = r.Result.Slope
			}
		}
	}
	if len(slopes) > 0 {
		path := filepath.Join(dir, dataset+"_slope_heatmap.png")
		if err := charts.SlopeHeatmap(path, dataset+" Sen's slope by month", slopes); err != nil {
			return err
		}
	}
	return nil
}

// writeOutputs writes the combined trend tables and the
// cross-product comparison chart.
func (p *Pipeline) writeOutputs(records []export.TrendRecord, byProduct map[types.Product][]types.Observation) error {
	dir := p.cfg.Outputs.Dir

	if p.cfg.Outputs.CSV {
		if err := export.WriteTrendCSV(filepath.Join(dir, "trends.csv"), records); err != nil {
			return fmt.Errorf("writing trend CSV: %w", err)
		}
	}
	if p.cfg.Outputs.XLSX {
		if err := export.WriteTrendXLSX(filepath.Join(dir, "trends.xlsx"), records); err != nil {
			return fmt.Errorf("writing trend XLSX: %w", err)
		}
	}

	if p.cfg.Outputs.Charts {
		mcd, okA := byProduct[types.ProductMCD43A3]
		mod, okB := byProduct[types.ProductMOD10A1]
		if okA && okB {
			metric := aggregate.Metric(p.cfg.Trend.Metric)
			r, xs, ys := aggregate.Correlate(mcd, mod, types.ClassPureIce, metric)
			if len(xs) > 1 {
				path := filepath.Join(dir, "product_comparison.png")
				if err := charts.ComparisonScatter(path, xs, ys, r); err != nil {
					log.Warn("comparison chart:", err)
				}
			}
		}
	}
	return nil
}
