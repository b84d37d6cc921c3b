// Package trend implements non-parametric trend statistics for albedo
// time series: the Mann-Kendall monotonic-trend test (with its
// seasonal variant and optional trend-free prewhitening) and the
// Sen's-slope estimator.
package trend

import (
	"math"
)

// Direction classifies a test outcome.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	NoTrend    Direction = "no_trend"

	// Insufficient marks series too short to test. It is a result
	// state, not an error: short series are expected when QA gating
	// removes most of a month's observations.
	Insufficient Direction = "insufficient_data"
)

// MinSeriesLength is the default minimum number of non-NaN points
// required before a test is attempted.
const MinSeriesLength = 10

// Series is a time series sampled at decimal-year times. Times and
// Values are parallel slices; Values may contain NaN.
type Series struct {
	Times  []float64
	Values []float64
}

// Clean returns a copy of the series with NaN values (and their
// times) removed.
func (s Series) Clean() Series {
	out := Series{
		Times:  make([]float64, 0, len(s.Values)),
		Values: make([]float64, 0, len(s.Values)),
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsNaN(s.Times[i]) {
			continue
		}
		out.Times = append(out.Times, s.Times[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Values) }

// Result carries the combined Mann-Kendall and Sen's-slope output for
// one series.
type Result struct {
	N     int     // points used, after NaN removal
	S     float64 // Mann-Kendall S statistic
	VarS  float64 // tie-corrected variance of S
	Z     float64 // standardized test statistic
	P     float64 // two-sided p-value
	Tau   float64 // Kendall's tau
	Alpha float64 // significance level the direction was judged at

	Trend Direction

	// Sen's slope in albedo units per year, with the rank-based
	// confidence interval at level 1-Alpha and the median-based
	// intercept.
	Slope     float64
	SlopeLow  float64
	SlopeHigh float64
	Intercept float64
}

// Significant reports whether the test rejected the no-trend
// hypothesis.
func (r Result) Significant() bool {
	return r.Trend == Increasing || r.Trend == Decreasing
}

// insufficient builds the result returned for series too short to test.
func insufficient(n int, alpha float64) Result {
	return Result{
		N:         n,
		Alpha:     alpha,
		Trend:     Insufficient,
		P:         math.NaN(),
		Z:         math.NaN(),
		Tau:       math.NaN(),
		Slope:     math.NaN(),
		SlopeLow:  math.NaN(),
		SlopeHigh: math.NaN(),
		Intercept: math.NaN(),
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
