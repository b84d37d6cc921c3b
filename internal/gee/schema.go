// Package gee reads the CSV exports produced by the Earth Engine side
// of the analysis: one row per day, four statistic columns per
// glacier-coverage class, plus shared date columns.
package gee

import (
	"fmt"
	"strings"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// Per-class column suffixes, in canonical order.
const (
	suffixMean        = "mean"
	suffixMedian      = "median"
	suffixPixelCount  = "pixel_count"
	suffixDataQuality = "data_quality"
)

// Shared columns. Only "date" is mandatory; the derived date fields
// are recomputed from it when an export omits them.
const (
	colDate        = "date"
	colYear        = "year"
	colDOY         = "doy"
	colDecimalYear = "decimal_year"
	colSeason      = "season"
)

// ColumnsForClass returns the four statistic columns of one coverage
// class, in canonical order.
func ColumnsForClass(c types.FractionClass) []string {
	return []string{
		string(c) + "_" + suffixMean,
		string(c) + "_" + suffixMedian,
		string(c) + "_" + suffixPixelCount,
		string(c) + "_" + suffixDataQuality,
	}
}

// Columns returns the full canonical column list: shared date columns
// followed by the per-class statistics in class order. Exports write
// this exact order; imports accept any order.
func Columns() []string {
	cols := []string{colDate, colYear, colDOY, colDecimalYear, colSeason}
	for _, c := range types.FractionClasses() {
		cols = append(cols, ColumnsForClass(c)...)
	}
	return cols
}

// SchemaError reports a header that cannot carry the observation
// schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("csv header missing required columns: %s", strings.Join(e.Missing, ", "))
}

// header maps column names to their position in a CSV file.
type header map[string]int

func parseHeader(record []string) (header, error) {
	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	if _, ok := h[colDate]; !ok {
		missing = append(missing, colDate)
	}
	for _, c := range types.FractionClasses() {
		for _, col := range ColumnsForClass(c) {
			if _, ok := h[col]; !ok {
				missing = append(missing, col)
			}
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return h, nil
}

// field returns the trimmed cell under a column, or "" when the row
// is ragged or the column absent.
func (h header) field(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
