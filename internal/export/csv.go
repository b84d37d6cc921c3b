// Package export writes analysis artifacts: cleaned observation
// series and trend tables, as CSV and XLSX. Column order is
// deterministic and, for observations, matches the Earth Engine
// export schema so files round-trip through the reader.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/gee"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/trend"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// TrendRecord is one row of a trend table: the test result for one
// dataset, coverage class, elevation zone and period.
type TrendRecord struct {
	Dataset string
	Product types.Product
	Zone    types.ElevationZone
	Class   types.FractionClass

	// Period names the series the test ran on: "melt_season",
	// "seasonal", or a calendar month like "july".
	Period string

	Result trend.Result
}

// TrendColumns returns the trend table header, in output order.
func TrendColumns() []string {
	return []string{
		"dataset", "product", "zone", "fraction_class", "period",
		"n", "trend", "p_value", "z_score", "tau", "s_statistic",
		"sen_slope_per_year", "slope_ci_low", "slope_ci_high", "intercept",
	}
}

func trendRow(r TrendRecord) []string {
	return []string{
		r.Dataset,
		string(r.Product),
		string(r.Zone),
		string(r.Class),
		r.Period,
		strconv.Itoa(r.Result.N),
		string(r.Result.Trend),
		formatFloat(r.Result.P, 6),
		formatFloat(r.Result.Z, 4),
		formatFloat(r.Result.Tau, 4),
		formatFloat(r.Result.S, 0),
		formatFloat(r.Result.Slope, 6),
		formatFloat(r.Result.SlopeLow, 6),
		formatFloat(r.Result.SlopeHigh, 6),
		formatFloat(r.Result.Intercept, 4),
	}
}

// WriteTrendCSV writes a trend table.
func WriteTrendCSV(path string, records []TrendRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(TrendColumns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(trendRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteObservationsCSV writes daily observations in the canonical
// Earth Engine column order, so the output reads back through the
// gee package unchanged.
func WriteObservationsCSV(path string, obs []types.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(gee.Columns()); err != nil {
		return err
	}
	for _, o := range obs {
		row := []string{
			o.Date.Format("2006-01-02"),
			strconv.Itoa(o.Year),
			strconv.Itoa(o.DOY),
			formatFloat(o.DecimalYear, 6),
			string(o.Season),
		}
		for _, c := range types.FractionClasses() {
			s := o.Stats(c)
			row = append(row,
				formatFloat(s.Mean, 6),
				formatFloat(s.Median, 6),
				strconv.Itoa(s.PixelCount),
				formatFloat(s.DataQuality, 2),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatFloat renders a value with fixed precision, mapping NaN to
// the empty cell the readers expect.
func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if prec == 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// MonthName maps a month number to the lowercase period name used in
// trend tables.
func MonthName(m int) string {
	names := []string{"", "january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"}
	if m < 1 || m > 12 {
		return fmt.Sprintf("month_%d", m)
	}
	return names[m]
}
