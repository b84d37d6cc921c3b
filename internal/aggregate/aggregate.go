// Package aggregate turns daily observation records into the monthly,
// seasonal and combined series consumed by the trend engine. All
// aggregation is NaN-aware: invalid observations never contribute to
// sums or counts.
package aggregate

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/trend"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// Metric selects which per-class statistic an aggregation reads.
type Metric string

const (
	MetricMean   Metric = "mean"
	MetricMedian Metric = "median"
)

func value(s types.ClassStats, m Metric) float64 {
	if !s.Valid() {
		return math.NaN()
	}
	if m == MetricMedian {
		return s.Median
	}
	return s.Mean
}

// DailySeries extracts the daily albedo series of one coverage class,
// sampled at decimal years. NaN observations are skipped.
func DailySeries(obs []types.Observation, c types.FractionClass, m Metric) trend.Series {
	var s trend.Series
	for _, o := range obs {
		v := value(o.Stats(c), m)
		if math.IsNaN(v) {
			continue
		}
		s.Times = append(s.Times, o.DecimalYear)
		s.Values = append(s.Values, v)
	}
	return s
}

// MeltSeasonDaily is DailySeries restricted to June-September.
func MeltSeasonDaily(obs []types.Observation, c types.FractionClass, m Metric) trend.Series {
	var filtered []types.Observation
	for _, o := range obs {
		if o.InMeltSeason() {
			filtered = append(filtered, o)
		}
	}
	return DailySeries(filtered, c, m)
}

// MonthlyStat is the aggregate of one class over one calendar month
// of one year.
type MonthlyStat struct {
	Year  int
	Month time.Month
	Mean  float64
	Days  int // daily observations contributing

	// MeanPixels is the average per-day pixel count, a proxy for the
	// spatial support of the month's statistic.
	MeanPixels float64
}

// MonthlyStats computes per-month means of a class's daily values,
// sorted by year then month.
func MonthlyStats(obs []types.Observation, c types.FractionClass, m Metric) []MonthlyStat {
	type key struct {
		year  int
		month time.Month
	}
	sums := make(map[key]*MonthlyStat)

	for _, o := range obs {
		v := value(o.Stats(c), m)
		if math.IsNaN(v) {
			continue
		}
		k := key{o.Date.Year(), o.Date.Month()}
		ms, ok := sums[k]
		if !ok {
			ms = &MonthlyStat{Year: k.year, Month: k.month}
			sums[k] = ms
		}
		ms.Mean += v
		ms.MeanPixels += float64(o.Stats(c).PixelCount)
		ms.Days++
	}

	out := make([]MonthlyStat, 0, len(sums))
	for _, ms := range sums {
		ms.Mean /= float64(ms.Days)
		ms.MeanPixels /= float64(ms.Days)
		out = append(out, *ms)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// MonthlyByMonth groups monthly means by calendar month across years,
// for the seasonal Mann-Kendall test. Each month's series has one
// point per year, timed at that month's midpoint. Months outside
// June-September never enter seasonal statistics, so they are dropped
// here even when an export carries them.
func MonthlyByMonth(obs []types.Observation, c types.FractionClass, m Metric) trend.SeasonalSeries {
	ss := trend.SeasonalSeries{Seasons: make(map[int]trend.Series)}
	for _, ms := range MonthlyStats(obs, c, m) {
		if types.SeasonForMonth(ms.Month) == types.SeasonNone {
			continue
		}
		s := ss.Seasons[int(ms.Month)]
		s.Times = append(s.Times, float64(ms.Year)+(float64(ms.Month)-0.5)/12)
		s.Values = append(s.Values, ms.Mean)
		ss.Seasons[int(ms.Month)] = s
	}
	return ss
}

// SeasonalStat is the aggregate of one class over a melt-season
// period of one year.
type SeasonalStat struct {
	Year   int
	Season types.Season
	Mean   float64
	Days   int
}

// SeasonalStats computes per-season means over the melt season,
// sorted by year then season order.
func SeasonalStats(obs []types.Observation, c types.FractionClass, m Metric) []SeasonalStat {
	order := map[types.Season]int{
		types.SeasonEarlySummer: 0,
		types.SeasonMidSummer:   1,
		types.SeasonLateSummer:  2,
	}
	type key struct {
		year   int
		season types.Season
	}
	sums := make(map[key]*SeasonalStat)

	for _, o := range obs {
		if !o.InMeltSeason() {
			continue
		}
		v := value(o.Stats(c), m)
		if math.IsNaN(v) {
			continue
		}
		k := key{o.Date.Year(), o.Season}
		ss, ok := sums[k]
		if !ok {
			ss = &SeasonalStat{Year: k.year, Season: k.season}
			sums[k] = ss
		}
		ss.Mean += v
		ss.Days++
	}

	out := make([]SeasonalStat, 0, len(sums))
	for _, ss := range sums {
		ss.Mean /= float64(ss.Days)
		out = append(out, *ss)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return order[out[i].Season] < order[out[j].Season]
	})
	return out
}

// CombinedDaily merges several coverage classes into one daily
// series. With weighted set, each class contributes proportionally to
// its pixel count; otherwise classes average equally.
func CombinedDaily(obs []types.Observation, classes []types.FractionClass, m Metric, weighted bool) trend.Series {
	var s trend.Series
	for _, o := range obs {
		var sum, wsum float64
		for _, c := range classes {
			st := o.Stats(c)
			v := value(st, m)
			if math.IsNaN(v) {
				continue
			}
			w := 1.0
			if weighted {
				w = float64(st.PixelCount)
			}
			sum += v * w
			wsum += w
		}
		if wsum == 0 {
			continue
		}
		s.Times = append(s.Times, o.DecimalYear)
		s.Values = append(s.Values, sum/wsum)
	}
	return s
}

// Correlate aligns two observation sets by date and returns the
// Pearson correlation of one class's albedo between them, with the
// matched pairs. It is used to compare the MCD43A3 and MOD10A1
// products.
func Correlate(a, b []types.Observation, c types.FractionClass, m Metric) (r float64, xs, ys []float64) {
	byDate := make(map[time.Time]float64, len(b))
	for _, o := range b {
		v := value(o.Stats(c), m)
		if !math.IsNaN(v) {
			byDate[o.Date] = v
		}
	}
	for _, o := range a {
		v := value(o.Stats(c), m)
		if math.IsNaN(v) {
			continue
		}
		if w, ok := byDate[o.Date]; ok {
			xs = append(xs, v)
			ys = append(ys, w)
		}
	}
	if len(xs) < 2 {
		return math.NaN(), xs, ys
	}
	return stat.Correlation(xs, ys, nil), xs, ys
}
