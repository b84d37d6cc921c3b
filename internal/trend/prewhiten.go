package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// prewhiten applies trend-free prewhitening (Yue et al. 2002): the
// Sen's-slope trend is removed, the lag-1 autoregressive component of
// the residual is filtered out, and the trend is added back. The
// second return is false when the series shows no significant lag-1
// autocorrelation, in which case the original series should be tested
// unchanged.
func prewhiten(s Series, alpha float64) (Series, bool) {
	n := s.Len()
	if n < 3 {
		return s, false
	}

	varS := kendallVariance(s.Values)
	slope, _, _ := senSlope(s, varS, alpha)
	if math.IsNaN(slope) {
		return s, false
	}

	// Detrend against the series start so the AR(1) estimate is not
	// dominated by the monotonic component.
	t0 := s.Times[0]
	detrended := make([]float64, n)
	for i := range s.Values {
		detrended[i] = s.Values[i] - slope*(s.Times[i]-t0)
	}

	r1 := lag1Autocorrelation(detrended)
	if !autocorrSignificant(r1, n, alpha) {
		return s, false
	}

	out := Series{
		Times:  make([]float64, 0, n-1),
		Values: make([]float64, 0, n-1),
	}
	for i := 1; i < n; i++ {
		filtered := detrended[i] - r1*detrended[i-1]
		out.Times = append(out.Times, s.Times[i])
		out.Values = append(out.Values, filtered+slope*(s.Times[i]-t0))
	}
	return out, true
}

// lag1Autocorrelation computes the sample autocorrelation at lag 1.
func lag1Autocorrelation(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var num, den float64
	for i := 0; i < n; i++ {
		d := x[i] - mean
		den += d * d
		if i < n-1 {
			num += d * (x[i+1] - mean)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// autocorrSignificant tests r1 against the two-sided normal bound
// (-1 ± z_{1-alpha/2}*sqrt(n-2)) / (n-1).
func autocorrSignificant(r1 float64, n int, alpha float64) bool {
	if n <= 2 {
		return false
	}
	z := stdNormal.Quantile(1 - alpha/2)
	spread := z * math.Sqrt(float64(n-2))
	upper := (-1 + spread) / float64(n-1)
	lower := (-1 - spread) / float64(n-1)
	return r1 > upper || r1 < lower
}
