package fraction

import (
	"fmt"
	"math"
	"sort"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// MODISCellSize is the nominal MODIS sinusoidal grid resolution in
// meters, the default target for coverage aggregation.
const MODISCellSize = 500.0

// Numeric class codes used in classified grids, ordered like
// types.FractionClasses. Cells below the minimum coverage stay NoData.
const (
	codeBorder    = 1
	codeMixedLow  = 2
	codeMixedHigh = 3
	codeMostlyIce = 4
	codePureIce   = 5
)

// ClassCode returns the grid code of a coverage class.
func ClassCode(c types.FractionClass) float64 {
	switch c {
	case types.ClassBorder:
		return codeBorder
	case types.ClassMixedLow:
		return codeMixedLow
	case types.ClassMixedHigh:
		return codeMixedHigh
	case types.ClassMostlyIce:
		return codeMostlyIce
	case types.ClassPureIce:
		return codePureIce
	}
	return 0
}

// Aggregate resamples a fine grid onto a coarser cell size by
// neighborhood mean: every fine cell center is binned into the coarse
// cell containing it, and each coarse cell takes the mean of its
// members. NoData fine cells contribute nothing; coarse cells with no
// members stay NoData.
func Aggregate(fine *Grid, coarseCellSize float64) (*Grid, error) {
	if coarseCellSize <= fine.CellSize {
		return nil, fmt.Errorf("coarse cell size %g must exceed fine cell size %g", coarseCellSize, fine.CellSize)
	}

	width := float64(fine.Cols) * fine.CellSize
	height := float64(fine.Rows) * fine.CellSize
	cols := int(math.Ceil(width / coarseCellSize))
	rows := int(math.Ceil(height / coarseCellSize))

	coarse := NewGrid(cols, rows, fine.XLL, fine.YLL, coarseCellSize, fine.NoData)
	sums := make([]float64, cols*rows)
	counts := make([]int, cols*rows)

	for r := 0; r < fine.Rows; r++ {
		for c := 0; c < fine.Cols; c++ {
			v := fine.At(r, c)
			if fine.IsNoData(v) {
				continue
			}
			x, y := fine.CellCenter(r, c)
			cc := int((x - coarse.XLL) / coarse.CellSize)
			cr := coarse.Rows - 1 - int((y-coarse.YLL)/coarse.CellSize)
			if cc < 0 || cc >= coarse.Cols || cr < 0 || cr >= coarse.Rows {
				continue
			}
			sums[cr*cols+cc] += v
			counts[cr*cols+cc]++
		}
	}

	for i := range sums {
		if counts[i] > 0 {
			coarse.Data[i] = sums[i] / float64(counts[i])
		}
	}
	return coarse, nil
}

// CoverageMap aggregates a binary glacier mask (1 = glacier,
// 0 = not glacier) to the target resolution. The result holds the
// per-pixel glacier coverage fraction in [0,1].
func CoverageMap(mask *Grid, coarseCellSize float64) (*Grid, error) {
	for _, v := range mask.Data {
		if mask.IsNoData(v) {
			continue
		}
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("mask is not binary: found %g", v)
		}
	}
	return Aggregate(mask, coarseCellSize)
}

// Classify maps a coverage-fraction grid to class codes. Cells under
// the minimum coverage, and NoData cells, stay NoData. The returned
// counts give the number of pixels per class.
func Classify(cov *Grid) (*Grid, map[types.FractionClass]int) {
	out := NewGrid(cov.Cols, cov.Rows, cov.XLL, cov.YLL, cov.CellSize, cov.NoData)
	counts := make(map[types.FractionClass]int)
	for i, v := range cov.Data {
		if cov.IsNoData(v) {
			continue
		}
		class, ok := types.ClassifyFraction(v)
		if !ok {
			continue
		}
		out.Data[i] = ClassCode(class)
		counts[class]++
	}
	return out, counts
}

// GlacierMedianElevation computes the median DEM elevation over
// glacier cells (mask == 1). DEM and mask must share geometry.
func GlacierMedianElevation(dem, mask *Grid) (float64, error) {
	if dem.Cols != mask.Cols || dem.Rows != mask.Rows {
		return 0, fmt.Errorf("DEM %dx%d and mask %dx%d geometries differ",
			dem.Cols, dem.Rows, mask.Cols, mask.Rows)
	}
	var elevs []float64
	for i, m := range mask.Data {
		if mask.IsNoData(m) || m != 1 {
			continue
		}
		if v := dem.Data[i]; !dem.IsNoData(v) {
			elevs = append(elevs, v)
		}
	}
	if len(elevs) == 0 {
		return 0, fmt.Errorf("no glacier cells with elevation data")
	}
	sort.Float64s(elevs)
	mid := len(elevs) / 2
	if len(elevs)%2 == 0 {
		return (elevs[mid-1] + elevs[mid]) / 2, nil
	}
	return elevs[mid], nil
}

// Elevation zone codes in classified grids.
const (
	codeBelowMedian = 1
	codeAtMedian    = 2
	codeAboveMedian = 3
)

// ZoneCode returns the grid code of an elevation zone.
func ZoneCode(z types.ElevationZone) float64 {
	switch z {
	case types.ZoneBelow:
		return codeBelowMedian
	case types.ZoneAt:
		return codeAtMedian
	case types.ZoneAbove:
		return codeAboveMedian
	}
	return 0
}

// ZoneMap classifies an elevation grid against the glacier median
// elevation into below/at/above median-relative zones.
func ZoneMap(elev *Grid, median float64) *Grid {
	out := NewGrid(elev.Cols, elev.Rows, elev.XLL, elev.YLL, elev.CellSize, elev.NoData)
	for i, v := range elev.Data {
		if elev.IsNoData(v) {
			continue
		}
		out.Data[i] = ZoneCode(types.ClassifyElevation(v, median))
	}
	return out
}
