// Package charts renders PNG figures from the aggregated series:
// trend-annotated time series, monthly boxplots, slope heatmaps and
// product comparison scatters.
package charts

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/aggregate"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/trend"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

const (
	plotWidth  = 24 * vg.Centimeter
	plotHeight = 14 * vg.Centimeter
)

// TimeSeries renders a daily albedo series with its Sen's-slope trend
// line when the test found one.
func TimeSeries(path, title string, s trend.Series, r trend.Result) error {
	if s.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Albedo"

	pts := make(plotter.XYs, s.Len())
	for i := range pts {
		pts[i].X = s.Times[i]
		pts[i].Y = s.Values[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("daily", scatter)

	if !math.IsNaN(r.Slope) && !math.IsNaN(r.Intercept) {
		t0, t1 := s.Times[0], s.Times[s.Len()-1]
		line, err := plotter.NewLine(plotter.XYs{
			{X: t0, Y: r.Intercept + r.Slope*t0},
			{X: t1, Y: r.Intercept + r.Slope*t1},
		})
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Sen's slope %.4f/yr (p=%.3f)", r.Slope, r.P), line)
	}

	return p.Save(plotWidth, plotHeight, path)
}

// MonthlyBoxplots renders one box per melt-season month from the
// daily values of a coverage class.
func MonthlyBoxplots(path, title string, obs []types.Observation, class types.FractionClass, m aggregate.Metric) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Albedo"

	byMonth := make(map[time.Month]plotter.Values)
	for _, o := range obs {
		s := aggregate.DailySeries([]types.Observation{o}, class, m)
		if s.Len() == 0 {
			continue
		}
		byMonth[o.Date.Month()] = append(byMonth[o.Date.Month()], s.Values[0])
	}

	var labels []string
	var loc float64
	for _, month := range types.MeltSeasonMonths() {
		values, ok := byMonth[month]
		if !ok || len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), loc, values)
		if err != nil {
			return err
		}
		p.Add(box)
		labels = append(labels, month.String())
		loc++
	}
	if len(labels) == 0 {
		return fmt.Errorf("no melt-season data to plot")
	}
	p.NominalX(labels...)

	return p.Save(plotWidth, plotHeight, path)
}

// slopeGrid adapts a month-by-class slope matrix to the heatmap
// interface. NaN cells render as the palette's under color.
type slopeGrid struct {
	classes []types.FractionClass
	months  []time.Month
	slopes  map[types.FractionClass]map[time.Month]float64
}

func (g slopeGrid) Dims() (int, int) { return len(g.months), len(g.classes) }
func (g slopeGrid) X(c int) float64  { return float64(c) }
func (g slopeGrid) Y(r int) float64  { return float64(r) }
func (g slopeGrid) Z(c, r int) float64 {
	v, ok := g.slopes[g.classes[r]][g.months[c]]
	if !ok {
		return math.NaN()
	}
	return v
}

// SlopeHeatmap renders the Sen's-slope magnitude per month and
// coverage class. The diverging palette is centered so declines and
// increases read as opposite hues.
func SlopeHeatmap(path, title string, slopes map[types.FractionClass]map[time.Month]float64) error {
	grid := slopeGrid{
		classes: types.FractionClasses(),
		months:  types.MeltSeasonMonths(),
		slopes:  slopes,
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Coverage class"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(grid, pal)

	// symmetric scale around zero so the neutral color means no trend
	limit := math.Max(math.Abs(hm.Min), math.Abs(hm.Max))
	if limit == 0 || math.IsNaN(limit) || math.IsInf(limit, 0) {
		limit = 1e-6
	}
	hm.Min, hm.Max = -limit, limit
	p.Add(hm)

	monthNames := make([]string, len(grid.months))
	for i, m := range grid.months {
		monthNames[i] = m.String()
	}
	p.NominalX(monthNames...)
	classNames := make([]string, len(grid.classes))
	for i, c := range grid.classes {
		classNames[i] = string(c)
	}
	p.NominalY(classNames...)

	return p.Save(plotWidth, plotHeight, path)
}

// ComparisonScatter renders matched MCD43A3 vs MOD10A1 albedo pairs
// with the 1:1 line and the Pearson correlation in the title.
func ComparisonScatter(path string, xs, ys []float64, r float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("no matched pairs to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("MCD43A3 vs MOD10A1 (r = %.3f, n = %d)", r, len(xs))
	p.X.Label.Text = "MCD43A3 albedo"
	p.Y.Label.Text = "MOD10A1 albedo"

	pts := make(plotter.XYs, len(xs))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
		lo = math.Min(lo, math.Min(xs[i], ys[i]))
		hi = math.Max(hi, math.Max(xs[i], ys[i]))
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return err
	}
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(identity)
	p.Legend.Add("1:1", identity)

	return p.Save(plotWidth, plotHeight, path)
}
