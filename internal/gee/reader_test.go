package gee

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// classCols expands the per-class header for test fixtures.
func fixtureHeader() string {
	return strings.Join(Columns(), ",")
}

// onePerClass fills all five classes with the same four values.
func onePerClass(mean, median string, count, quality string) string {
	parts := make([]string, 0, 20)
	for range types.FractionClasses() {
		parts = append(parts, mean, median, count, quality)
	}
	return strings.Join(parts, ",")
}

func TestReadParsesRows(t *testing.T) {
	data := fixtureHeader() + "\n" +
		"2020-07-15,2020,197,2020.5355,mid_summer," + onePerClass("0.62", "0.61", "14", "92.5") + "\n" +
		"2020-07-16,2020,198,2020.5383,mid_summer," + onePerClass("0.60", "0.59", "13", "88.0") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{Product: types.ProductMCD43A3})
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2", len(obs))
	}

	o := obs[0]
	if !o.Date.Equal(time.Date(2020, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", o.Date)
	}
	if o.Year != 2020 || o.DOY != 197 {
		t.Errorf("year/doy = %d/%d", o.Year, o.DOY)
	}
	if o.Season != types.SeasonMidSummer {
		t.Errorf("season = %q", o.Season)
	}
	if o.Zone != types.ZoneAll {
		t.Errorf("zone = %q, want %q", o.Zone, types.ZoneAll)
	}
	s := o.Stats(types.ClassPureIce)
	if s.Mean != 0.62 || s.Median != 0.61 || s.PixelCount != 14 || s.DataQuality != 92.5 {
		t.Errorf("pure_ice stats = %+v", s)
	}
}

func TestReadDerivesDateFields(t *testing.T) {
	// Minimal export: only date plus the class columns.
	cols := []string{"date"}
	for _, c := range types.FractionClasses() {
		cols = append(cols, ColumnsForClass(c)...)
	}
	data := strings.Join(cols, ",") + "\n" +
		"2019_06_10," + onePerClass("0.7", "0.7", "10", "100") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{Product: types.ProductMOD10A1})
	if err != nil {
		t.Fatal(err)
	}
	o := obs[0]
	if o.Year != 2019 || o.DOY != 161 {
		t.Errorf("derived year/doy = %d/%d, want 2019/161", o.Year, o.DOY)
	}
	if o.Season != types.SeasonEarlySummer {
		t.Errorf("derived season = %q, want %q", o.Season, types.SeasonEarlySummer)
	}
	if math.Abs(o.DecimalYear-(2019+160.0/365.0)) > 1e-9 {
		t.Errorf("derived decimal_year = %v", o.DecimalYear)
	}
}

func TestReadRejectsMissingColumns(t *testing.T) {
	data := "date,border_mean\n2020-07-15,0.5\n"
	_, err := Read(strings.NewReader(data), ReaderOptions{})
	if err == nil {
		t.Fatal("expected schema error")
	}
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("error type = %T, want *SchemaError", err)
	}
	for _, col := range []string{"border_median", "pure_ice_mean"} {
		found := false
		for _, m := range se.Missing {
			if m == col {
				found = true
			}
		}
		if !found {
			t.Errorf("missing list lacks %q: %v", col, se.Missing)
		}
	}
}

func TestReadAcceptsReorderedAndExtraColumns(t *testing.T) {
	cols := []string{"extra_col", "pure_ice_data_quality", "pure_ice_pixel_count", "pure_ice_median", "pure_ice_mean", "date"}
	for _, c := range types.FractionClasses() {
		if c == types.ClassPureIce {
			continue
		}
		cols = append(cols, ColumnsForClass(c)...)
	}
	row := []string{"x", "95", "20", "0.81", "0.82", "2021-08-01"}
	for i := 6; i < len(cols); i++ {
		row = append(row, "0.5")
	}
	data := strings.Join(cols, ",") + "\n" + strings.Join(row, ",") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s := obs[0].Stats(types.ClassPureIce)
	if s.Mean != 0.82 || s.PixelCount != 20 {
		t.Errorf("pure_ice stats = %+v", s)
	}
}

func TestReadNaNCellsStayNaN(t *testing.T) {
	data := fixtureHeader() + "\n" +
		"2020-07-15,,,,," + onePerClass("", "NaN", "0", "") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s := obs[0].Stats(types.ClassBorder)
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) || !math.IsNaN(s.DataQuality) {
		t.Errorf("empty cells must parse as NaN, got %+v", s)
	}
	if s.Valid() {
		t.Error("NaN observation reported valid")
	}
}

func TestReadMinPixelGating(t *testing.T) {
	data := fixtureHeader() + "\n" +
		"2020-07-15,2020,197,2020.5355,mid_summer," + onePerClass("0.62", "0.61", "3", "92.5") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{MinPixelCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	s := obs[0].Stats(types.ClassMixedHigh)
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) {
		t.Errorf("below-threshold stats must be NaN, got %+v", s)
	}
	if s.PixelCount != 3 {
		t.Errorf("pixel count should survive gating, got %d", s.PixelCount)
	}
}

func TestReadSortsByDate(t *testing.T) {
	data := fixtureHeader() + "\n" +
		"2020-07-16,2020,198,2020.5383,mid_summer," + onePerClass("0.6", "0.6", "10", "90") + "\n" +
		"2020-07-14,2020,196,2020.5328,mid_summer," + onePerClass("0.7", "0.7", "10", "90") + "\n"

	obs, err := Read(strings.NewReader(data), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !obs[0].Date.Before(obs[1].Date) {
		t.Errorf("observations not sorted: %v then %v", obs[0].Date, obs[1].Date)
	}
}
