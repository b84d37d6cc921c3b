// Package quality applies the per-product QA gates: sensor flag
// thresholds, valid-range clipping and data-quality filtering of
// daily records.
package quality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// PixelSample is one raw pixel value with its QA flag, prior to
// scaling and validation.
type PixelSample struct {
	Raw float64
	QA  int
}

// Filter holds the quality gates of one satellite product.
type Filter struct {
	Product     types.Product
	QAThreshold int
}

// Default QA thresholds. MCD43A3's BRDF mandatory QA is 0 for full
// inversions and 1 for magnitude inversions; both are commonly
// accepted. MOD10A1's basic QA runs best(0)/good(1)/ok(2).
const (
	DefaultQAThresholdMCD43A3 = 1
	DefaultQAThresholdMOD10A1 = 2
)

// NewFilter builds a filter with the product's default QA threshold.
// A negative threshold selects the default; zero is a valid (strict)
// setting.
func NewFilter(p types.Product, qaThreshold int) Filter {
	if qaThreshold < 0 {
		switch p {
		case types.ProductMOD10A1:
			qaThreshold = DefaultQAThresholdMOD10A1
		default:
			qaThreshold = DefaultQAThresholdMCD43A3
		}
	}
	return Filter{Product: p, QAThreshold: qaThreshold}
}

// Albedo converts a raw sample to unitless albedo in [0,1]. The
// second return is false when the sample fails the QA flag threshold
// or falls outside the product's valid raw range.
//
// MCD43A3 stores albedo scaled by 0.001 over a valid raw range of
// 0-1000. MOD10A1 stores percent albedo over 1-100; higher values are
// coded flags (cloud, night, ocean) and never valid albedo.
func (f Filter) Albedo(s PixelSample) (float64, bool) {
	if s.QA > f.QAThreshold {
		return math.NaN(), false
	}
	switch f.Product {
	case types.ProductMOD10A1:
		if s.Raw < 1 || s.Raw > 100 {
			return math.NaN(), false
		}
		return s.Raw / 100, true
	default: // MCD43A3
		if s.Raw < 0 || s.Raw > 1000 {
			return math.NaN(), false
		}
		return s.Raw / 1000, true
	}
}

// ComputeClassStats aggregates raw pixel samples of one coverage
// class into a daily statistic. DataQuality is the percentage of
// samples that passed the gates. When fewer than minPixels survive,
// the albedo statistics are NaN but the surviving count is kept.
func (f Filter) ComputeClassStats(samples []PixelSample, minPixels int) types.ClassStats {
	valid := make([]float64, 0, len(samples))
	for _, s := range samples {
		if a, ok := f.Albedo(s); ok {
			valid = append(valid, a)
		}
	}

	s := types.NoStats()
	s.PixelCount = len(valid)
	if len(samples) > 0 {
		s.DataQuality = 100 * float64(len(valid)) / float64(len(samples))
	}
	if len(valid) == 0 || len(valid) < minPixels {
		return s
	}

	sort.Float64s(valid)
	s.Mean = stat.Mean(valid, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, valid, nil)
	return s
}

// FilterRecords drops class statistics that fail the record-level
// gates: data quality below minQuality percent, or albedo outside
// [0,1]. Records are modified in place and returned for chaining.
func FilterRecords(obs []types.Observation, minQuality float64) []types.Observation {
	for i := range obs {
		for c, s := range obs[i].Classes {
			if !s.Valid() {
				continue
			}
			if minQuality > 0 && s.DataQuality < minQuality {
				s.Mean = math.NaN()
				s.Median = math.NaN()
				obs[i].Classes[c] = s
				continue
			}
			if s.Mean < 0 || s.Mean > 1 {
				s.Mean = math.NaN()
				s.Median = math.NaN()
				obs[i].Classes[c] = s
			}
		}
	}
	return obs
}
