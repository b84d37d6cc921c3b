package trend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Options control how a trend test is run.
type Options struct {
	// Alpha is the two-sided significance level. Zero means 0.05.
	Alpha float64

	// MinLength is the minimum usable series length. Zero means
	// MinSeriesLength.
	MinLength int

	// Prewhiten applies trend-free prewhitening before the test when
	// the series shows significant lag-1 autocorrelation.
	Prewhiten bool
}

func (o Options) withDefaults() Options {
	if o.Alpha == 0 {
		o.Alpha = 0.05
	}
	if o.MinLength == 0 {
		o.MinLength = MinSeriesLength
	}
	return o
}

// MannKendall runs the Mann-Kendall test and Sen's-slope estimator on
// a series. NaN values are removed first. The returned result carries
// the S statistic, tie-corrected variance, Z score, two-sided p-value
// and the slope estimate with its confidence interval.
func MannKendall(s Series, opts Options) Result {
	opts = opts.withDefaults()
	s = s.Clean()
	n := s.Len()
	if n < opts.MinLength {
		return insufficient(n, opts.Alpha)
	}

	if opts.Prewhiten {
		if pw, ok := prewhiten(s, opts.Alpha); ok {
			s = pw
			n = s.Len()
		}
	}

	S := kendallS(s.Values)
	varS := kendallVariance(s.Values)
	z := zScore(S, varS)
	p := pValue(z)
	tau := S / (0.5 * float64(n) * float64(n-1))

	slope, low, high := senSlope(s, varS, opts.Alpha)
	intercept := senIntercept(s, slope)

	return Result{
		N:         n,
		S:         S,
		VarS:      varS,
		Z:         z,
		P:         p,
		Tau:       tau,
		Alpha:     opts.Alpha,
		Trend:     classify(z, p, opts.Alpha),
		Slope:     slope,
		SlopeLow:  low,
		SlopeHigh: high,
		Intercept: intercept,
	}
}

// kendallS computes S = sum over i<j of sign(x_j - x_i).
func kendallS(x []float64) float64 {
	var s float64
	for i := 0; i < len(x)-1; i++ {
		for j := i + 1; j < len(x); j++ {
			s += sign(x[j] - x[i])
		}
	}
	return s
}

// kendallVariance computes Var(S) with the correction for tied groups:
//
//	Var(S) = [n(n-1)(2n+5) - Σ t(t-1)(2t+5)] / 18
//
// where t ranges over the sizes of groups of equal values.
func kendallVariance(x []float64) float64 {
	n := float64(len(x))
	v := n * (n - 1) * (2*n + 5)

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		t := float64(j - i)
		if t > 1 {
			v -= t * (t - 1) * (2*t + 5)
		}
		i = j
	}
	return v / 18
}

// zScore applies the continuity correction when standardizing S.
func zScore(s, varS float64) float64 {
	if varS <= 0 {
		return 0
	}
	sd := math.Sqrt(varS)
	switch {
	case s > 0:
		return (s - 1) / sd
	case s < 0:
		return (s + 1) / sd
	default:
		return 0
	}
}

func pValue(z float64) float64 {
	return 2 * (1 - stdNormal.CDF(math.Abs(z)))
}

func classify(z, p, alpha float64) Direction {
	if p >= alpha {
		return NoTrend
	}
	if z > 0 {
		return Increasing
	}
	return Decreasing
}
