package fraction

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// maskGrid builds a fine mask grid from row-major values.
func maskGrid(cols, rows int, cellSize float64, values []float64) *Grid {
	g := NewGrid(cols, rows, 0, 0, cellSize, -9999)
	copy(g.Data, values)
	return g
}

func TestAggregateCheckerboard(t *testing.T) {
	// 4x4 checkerboard at 2x refinement: every coarse cell averages
	// two ones and two zeros.
	values := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			values[r*4+c] = float64((r + c) % 2)
		}
	}
	mask := maskGrid(4, 4, 250, values)

	cov, err := CoverageMap(mask, 500)
	if err != nil {
		t.Fatal(err)
	}
	if cov.Cols != 2 || cov.Rows != 2 {
		t.Fatalf("coarse dims = %dx%d, want 2x2", cov.Cols, cov.Rows)
	}
	for i, v := range cov.Data {
		if math.Abs(v-0.5) > 1e-12 {
			t.Errorf("cell %d = %v, want 0.5", i, v)
		}
	}
}

func TestAggregateBlockMeans(t *testing.T) {
	// Left half all glacier, right half none: coarse fractions 1 and 0.
	values := []float64{
		1, 1, 0, 0,
		1, 1, 0, 0,
	}
	mask := maskGrid(4, 2, 100, values)

	cov, err := Aggregate(mask, 200)
	if err != nil {
		t.Fatal(err)
	}
	if cov.Cols != 2 || cov.Rows != 1 {
		t.Fatalf("coarse dims = %dx%d, want 2x1", cov.Cols, cov.Rows)
	}
	if cov.At(0, 0) != 1 || cov.At(0, 1) != 0 {
		t.Errorf("fractions = %v, %v, want 1, 0", cov.At(0, 0), cov.At(0, 1))
	}
}

func TestAggregateSkipsNoData(t *testing.T) {
	values := []float64{1, -9999, -9999, -9999}
	mask := maskGrid(2, 2, 100, values)

	cov, err := Aggregate(mask, 200)
	if err != nil {
		t.Fatal(err)
	}
	// only one valid fine cell: fraction is its value, not a mean
	// diluted by missing cells
	if cov.At(0, 0) != 1 {
		t.Errorf("fraction = %v, want 1", cov.At(0, 0))
	}
}

func TestCoverageMapRejectsNonBinary(t *testing.T) {
	mask := maskGrid(2, 2, 100, []float64{0, 1, 0.5, 1})
	if _, err := CoverageMap(mask, 200); err == nil {
		t.Fatal("expected error for non-binary mask")
	}
}

func TestClassifyBinEdges(t *testing.T) {
	tests := []struct {
		fraction float64
		want     types.FractionClass
		none     bool
	}{
		{0.05, "", true},
		{0.10, types.ClassBorder, false},
		{0.24999, types.ClassBorder, false},
		{0.25, types.ClassMixedLow, false},
		{0.50, types.ClassMixedHigh, false},
		{0.75, types.ClassMostlyIce, false},
		{0.90, types.ClassPureIce, false},
		{1.00, types.ClassPureIce, false},
	}
	for _, tt := range tests {
		class, ok := types.ClassifyFraction(tt.fraction)
		if tt.none {
			if ok {
				t.Errorf("ClassifyFraction(%v) = %v, want none", tt.fraction, class)
			}
			continue
		}
		if !ok || class != tt.want {
			t.Errorf("ClassifyFraction(%v) = %v/%v, want %v", tt.fraction, class, ok, tt.want)
		}
	}
}

func TestClassifyGridCountsAndCodes(t *testing.T) {
	cov := maskGrid(3, 1, 500, []float64{0.95, 0.3, 0.05})
	classes, counts := Classify(cov)

	if got := classes.At(0, 0); got != ClassCode(types.ClassPureIce) {
		t.Errorf("code(0,0) = %v", got)
	}
	if got := classes.At(0, 1); got != ClassCode(types.ClassMixedLow) {
		t.Errorf("code(0,1) = %v", got)
	}
	if !classes.IsNoData(classes.At(0, 2)) {
		t.Errorf("sub-minimum coverage should stay NoData, got %v", classes.At(0, 2))
	}
	if counts[types.ClassPureIce] != 1 || counts[types.ClassMixedLow] != 1 || len(counts) != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestGlacierMedianElevationAndZones(t *testing.T) {
	dem := maskGrid(5, 1, 500, []float64{2000, 2100, 2200, 2300, 2400})
	mask := maskGrid(5, 1, 500, []float64{1, 1, 1, 1, 1})

	median, err := GlacierMedianElevation(dem, mask)
	if err != nil {
		t.Fatal(err)
	}
	if median != 2200 {
		t.Fatalf("median = %v, want 2200", median)
	}

	zones := ZoneMap(dem, median)
	want := []float64{codeBelowMedian, codeAtMedian, codeAtMedian, codeAtMedian, codeAboveMedian}
	for i, w := range want {
		if zones.Data[i] != w {
			t.Errorf("zone[%d] = %v, want %v", i, zones.Data[i], w)
		}
	}
}

func TestGlacierMedianElevationMaskedOnly(t *testing.T) {
	dem := maskGrid(4, 1, 500, []float64{1000, 2000, 3000, 9000})
	mask := maskGrid(4, 1, 500, []float64{0, 1, 1, 0})

	median, err := GlacierMedianElevation(dem, mask)
	if err != nil {
		t.Fatal(err)
	}
	if median != 2500 {
		t.Errorf("median = %v, want 2500", median)
	}
}

func TestASCIIGridRoundTrip(t *testing.T) {
	g := NewGrid(3, 2, 400000, 5700000, 500, -9999)
	copy(g.Data, []float64{0.1, 0.5, -9999, 1, 0, 0.25})

	path := filepath.Join(t.TempDir(), "cov.asc")
	if err := WriteASCIIGrid(path, g); err != nil {
		t.Fatal(err)
	}
	got, err := ReadASCIIGrid(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Cols != g.Cols || got.Rows != g.Rows || got.CellSize != g.CellSize {
		t.Fatalf("geometry mismatch: %+v", got)
	}
	if got.XLL != g.XLL || got.YLL != g.YLL || got.NoData != g.NoData {
		t.Fatalf("georeference mismatch: %+v", got)
	}
	for i := range g.Data {
		if got.Data[i] != g.Data[i] {
			t.Errorf("data[%d] = %v, want %v", i, got.Data[i], g.Data[i])
		}
	}
}
