package trend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// senSlope computes the Sen's-slope estimate: the median of all
// pairwise slopes (x_j - x_i)/(t_j - t_i), together with its
// rank-based confidence interval at level 1-alpha. Pairs with equal
// times contribute no slope.
func senSlope(s Series, varS, alpha float64) (slope, low, high float64) {
	slopes := pairwiseSlopes(s)
	if len(slopes) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	sort.Float64s(slopes)
	slope = stat.Quantile(0.5, stat.Empirical, slopes, nil)

	// Gilbert's rank method: the interval endpoints are the slopes
	// ranked (N-C)/2 and (N+C)/2 + 1 with C = z_{1-alpha/2}*sqrt(Var(S)).
	nPairs := float64(len(slopes))
	c := stdNormal.Quantile(1-alpha/2) * math.Sqrt(varS)
	loRank := int(math.Floor((nPairs - c) / 2))
	hiRank := int(math.Ceil((nPairs+c)/2)) + 1

	if loRank < 0 {
		loRank = 0
	}
	if hiRank > len(slopes) {
		hiRank = len(slopes)
	}
	low = slopes[loRank]
	high = slopes[hiRank-1]
	return slope, low, high
}

// senIntercept estimates the intercept as median(x) - slope*median(t),
// so the fitted line passes through the series medians.
func senIntercept(s Series, slope float64) float64 {
	if math.IsNaN(slope) {
		return math.NaN()
	}
	xs := append([]float64(nil), s.Values...)
	ts := append([]float64(nil), s.Times...)
	sort.Float64s(xs)
	sort.Float64s(ts)
	return stat.Quantile(0.5, stat.Empirical, xs, nil) - slope*stat.Quantile(0.5, stat.Empirical, ts, nil)
}

func pairwiseSlopes(s Series) []float64 {
	n := s.Len()
	slopes := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dt := s.Times[j] - s.Times[i]
			if dt == 0 {
				continue
			}
			slopes = append(slopes, (s.Values[j]-s.Values[i])/dt)
		}
	}
	return slopes
}
