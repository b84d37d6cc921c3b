// Command albedo-trends computes Mann-Kendall and Sen's-slope
// statistics for a single data source, either a GEE export CSV or an
// albedo_daily table in PostgreSQL, and prints a per-period
// comparison table.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/aggregate"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/export"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/gee"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/trend"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

func main() {
	var (
		csvPath   = flag.String("csv", "", "GEE export CSV to analyze (mutually exclusive with -db-*)")
		product   = flag.String("product", "MCD43A3", "Satellite product: MCD43A3 or MOD10A1")
		zone      = flag.String("zone", "all", "Elevation zone: all, above_median, at_median, below_median")
		metric    = flag.String("metric", "mean", "Statistic to test: mean or median")
		alpha     = flag.Float64("alpha", 0.05, "Two-sided significance level")
		minPixels = flag.Int("min-pixels", 5, "Minimum pixel count per daily class observation")
		prewhiten = flag.Bool("prewhiten", false, "Apply trend-free prewhitening before testing")
		csvOutput = flag.String("out", "", "Optional trend table CSV output path")

		dbHost = flag.String("db-host", "", "Database host (enables database input)")
		dbPort = flag.Int("db-port", 5432, "Database port")
		dbUser = flag.String("db-user", "postgres", "Database user")
		dbPass = flag.String("db-pass", "", "Database password")
		dbName = flag.String("db-name", "albedo", "Database name")
	)
	flag.Parse()

	if (*csvPath == "") == (*dbHost == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -csv or -db-host is required")
		os.Exit(1)
	}

	var obs []types.Observation
	var err error
	if *csvPath != "" {
		obs, err = gee.ReadFile(*csvPath, gee.ReaderOptions{
			Product:       types.Product(*product),
			Zone:          types.ElevationZone(*zone),
			MinPixelCount: *minPixels,
		})
	} else {
		obs, err = fetchObservations(*dbHost, *dbPort, *dbUser, *dbPass, *dbName, *product, *zone)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading observations: %v\n", err)
		os.Exit(1)
	}
	if len(obs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no observations to analyze")
		os.Exit(1)
	}

	opts := trend.Options{Alpha: *alpha, Prewhiten: *prewhiten}
	m := aggregate.Metric(*metric)

	fmt.Printf("Albedo Trend Analysis\n")
	fmt.Printf("=====================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Product: %s\n", *product)
	fmt.Printf("  Zone: %s\n", *zone)
	fmt.Printf("  Metric: %s\n", *metric)
	fmt.Printf("  Alpha: %g\n", *alpha)
	fmt.Printf("  Observations: %d (%s to %s)\n\n", len(obs),
		obs[0].Date.Format("2006-01-02"), obs[len(obs)-1].Date.Format("2006-01-02"))

	var records []export.TrendRecord
	for _, class := range types.FractionClasses() {
		records = append(records, export.TrendRecord{
			Dataset: "adhoc", Product: types.Product(*product),
			Zone: types.ElevationZone(*zone), Class: class, Period: "melt_season",
			Result: trend.MannKendall(aggregate.MeltSeasonDaily(obs, class, m), opts),
		})
		records = append(records, export.TrendRecord{
			Dataset: "adhoc", Product: types.Product(*product),
			Zone: types.ElevationZone(*zone), Class: class, Period: "seasonal",
			Result: trend.SeasonalMannKendall(aggregate.MonthlyByMonth(obs, class, m), opts),
		})
	}

	displayTable(records)

	if *csvOutput != "" {
		if err := export.WriteTrendCSV(*csvOutput, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nTrend table exported to: %s\n", *csvOutput)
	}
}

func displayTable(records []export.TrendRecord) {
	fmt.Printf("%-12s | %-12s | %5s | %-17s | %9s | %13s | %s\n",
		"Class", "Period", "N", "Trend", "p-value", "Slope (/yr)", "95% CI")
	fmt.Printf("-------------+--------------+-------+-------------------+-----------+---------------+---------------------\n")

	for _, r := range records {
		marker := ""
		if r.Result.Significant() {
			marker = " *"
		}
		ci := "-"
		if !math.IsNaN(r.Result.SlopeLow) {
			ci = fmt.Sprintf("[%.5f, %.5f]", r.Result.SlopeLow, r.Result.SlopeHigh)
		}
		slope := "-"
		if !math.IsNaN(r.Result.Slope) {
			slope = fmt.Sprintf("%.6f", r.Result.Slope)
		}
		p := "-"
		if !math.IsNaN(r.Result.P) {
			p = fmt.Sprintf("%.4f", r.Result.P)
		}
		fmt.Printf("%-12s | %-12s | %5d | %-17s | %9s | %13s | %s%s\n",
			r.Class, r.Period, r.Result.N, r.Result.Trend, p, slope, ci, marker)
	}
	fmt.Printf("\n* significant at the configured alpha\n")
}

// fetchObservations rebuilds daily observations from the albedo_daily
// mirror table.
func fetchObservations(host string, port int, user, pass, name, product, zone string) ([]types.Observation, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT date, fraction_class, mean, median, pixel_count, data_quality
		FROM albedo_daily
		WHERE product = $1 AND elevation_zone = $2
		ORDER BY date`, product, zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDate := make(map[time.Time]*types.Observation)
	var order []time.Time
	for rows.Next() {
		var date time.Time
		var class string
		var mean, median, quality sql.NullFloat64
		var pixels int
		if err := rows.Scan(&date, &class, &mean, &median, &pixels, &quality); err != nil {
			return nil, err
		}
		date = date.UTC()
		o, ok := byDate[date]
		if !ok {
			obs := types.NewObservation(date, types.Product(product), types.ElevationZone(zone))
			o = &obs
			byDate[date] = o
			order = append(order, date)
		}
		s := types.NoStats()
		if mean.Valid {
			s.Mean = mean.Float64
		}
		if median.Valid {
			s.Median = median.Float64
		}
		if quality.Valid {
			s.DataQuality = quality.Float64
		}
		s.PixelCount = pixels
		o.Classes[types.FractionClass(class)] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	obs := make([]types.Observation, 0, len(order))
	for _, d := range order {
		obs = append(obs, *byDate[d])
	}
	return obs, nil
}
