package trend

import (
	"math"
	"sort"
)

// SeasonalSeries groups a series by season (here: calendar month), so
// that only within-season pairs are compared. This handles the
// melt-season-only sampling of glacier albedo records, where
// comparisons across months would confound the annual cycle with the
// long-term trend.
type SeasonalSeries struct {
	// Seasons maps a season key (e.g. month number) to its series.
	Seasons map[int]Series
}

// SeasonalMannKendall runs the seasonal Mann-Kendall test: the S
// statistic and its variance are computed per season and summed, and
// the combined Z is tested as usual. The returned slope is the median
// of all within-season pairwise slopes.
func SeasonalMannKendall(ss SeasonalSeries, opts Options) Result {
	opts = opts.withDefaults()

	var total, varTotal float64
	var n int
	var slopes []float64

	keys := make([]int, 0, len(ss.Seasons))
	for k := range ss.Seasons {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		s := ss.Seasons[k].Clean()
		if s.Len() < 2 {
			continue
		}
		total += kendallS(s.Values)
		varTotal += kendallVariance(s.Values)
		n += s.Len()
		slopes = append(slopes, pairwiseSlopes(s)...)
	}

	if n < opts.MinLength || varTotal == 0 {
		return insufficient(n, opts.Alpha)
	}

	z := zScore(total, varTotal)
	p := pValue(z)

	var slope, low, high float64
	if len(slopes) == 0 {
		slope, low, high = math.NaN(), math.NaN(), math.NaN()
	} else {
		sort.Float64s(slopes)
		slope = slopes[len(slopes)/2]
		// Reuse the rank interval with the combined variance.
		c := stdNormal.Quantile(1-opts.Alpha/2) * math.Sqrt(varTotal)
		loRank := int(math.Floor((float64(len(slopes)) - c) / 2))
		hiRank := int(math.Ceil((float64(len(slopes))+c)/2)) + 1
		if loRank < 0 {
			loRank = 0
		}
		if hiRank > len(slopes) {
			hiRank = len(slopes)
		}
		low, high = slopes[loRank], slopes[hiRank-1]
	}

	return Result{
		N:         n,
		S:         total,
		VarS:      varTotal,
		Z:         z,
		P:         p,
		Tau:       math.NaN(), // no single tau across seasons
		Alpha:     opts.Alpha,
		Trend:     classify(z, p, opts.Alpha),
		Slope:     slope,
		SlopeLow:  low,
		SlopeHigh: high,
		Intercept: math.NaN(),
	}
}
