// Package types defines the core data types shared across the albedo
// analysis pipeline.
package types

import "time"

// Product identifies a MODIS satellite product.
type Product string

const (
	// ProductMCD43A3 is the combined Terra+Aqua BRDF/albedo product
	// (shortwave White Sky Albedo).
	ProductMCD43A3 Product = "MCD43A3"

	// ProductMOD10A1 is the Terra daily snow cover product (snow albedo).
	ProductMOD10A1 Product = "MOD10A1"
)

// FractionClass identifies a glacier-coverage bin. A MODIS pixel is
// assigned to a class from the estimated fraction of its footprint
// covered by glacier ice.
type FractionClass string

const (
	ClassBorder    FractionClass = "border"
	ClassMixedLow  FractionClass = "mixed_low"
	ClassMixedHigh FractionClass = "mixed_high"
	ClassMostlyIce FractionClass = "mostly_ice"
	ClassPureIce   FractionClass = "pure_ice"
)

// FractionClasses returns all coverage classes in canonical order,
// from least to most glacier coverage. Export column ordering and
// report row ordering follow this order.
func FractionClasses() []FractionClass {
	return []FractionClass{ClassBorder, ClassMixedLow, ClassMixedHigh, ClassMostlyIce, ClassPureIce}
}

// Coverage bin edges. Pixels below MinCoverage belong to no class.
const (
	MinCoverage       = 0.10
	mixedLowEdge      = 0.25
	mixedHighEdge     = 0.50
	mostlyIceEdge     = 0.75
	pureIceEdge       = 0.90
)

// ClassifyFraction maps a coverage fraction to its class. The second
// return is false for fractions below MinCoverage or outside [0,1].
func ClassifyFraction(f float64) (FractionClass, bool) {
	switch {
	case f < MinCoverage || f > 1.0:
		return "", false
	case f < mixedLowEdge:
		return ClassBorder, true
	case f < mixedHighEdge:
		return ClassMixedLow, true
	case f < mostlyIceEdge:
		return ClassMixedHigh, true
	case f < pureIceEdge:
		return ClassMostlyIce, true
	default:
		return ClassPureIce, true
	}
}

// ElevationZone classifies a pixel's elevation relative to the glacier
// median elevation. The band half-width is 100 m.
type ElevationZone string

const (
	ZoneAbove ElevationZone = "above_median"
	ZoneAt    ElevationZone = "at_median"
	ZoneBelow ElevationZone = "below_median"

	// ZoneAll marks records that are not split by elevation.
	ZoneAll ElevationZone = "all"
)

// ElevationBandHalfWidth is the half-width, in meters, of the
// at-median elevation band.
const ElevationBandHalfWidth = 100.0

// ElevationZones returns the three median-relative zones in
// top-down order.
func ElevationZones() []ElevationZone {
	return []ElevationZone{ZoneAbove, ZoneAt, ZoneBelow}
}

// ClassifyElevation assigns a zone given a pixel elevation and the
// glacier median elevation, both in meters.
func ClassifyElevation(elev, median float64) ElevationZone {
	switch {
	case elev > median+ElevationBandHalfWidth:
		return ZoneAbove
	case elev < median-ElevationBandHalfWidth:
		return ZoneBelow
	default:
		return ZoneAt
	}
}

// Season identifies a melt-season period. Months outside June-September
// fall outside the melt season and carry no season label.
type Season string

const (
	SeasonEarlySummer Season = "early_summer"
	SeasonMidSummer   Season = "mid_summer"
	SeasonLateSummer  Season = "late_summer"

	// SeasonNone marks observations outside the melt season.
	SeasonNone Season = ""
)

// SeasonForMonth maps a calendar month to its melt-season period.
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.June:
		return SeasonEarlySummer
	case time.July, time.August:
		return SeasonMidSummer
	case time.September:
		return SeasonLateSummer
	default:
		return SeasonNone
	}
}

// MeltSeasonMonths returns the months covered by the melt season.
func MeltSeasonMonths() []time.Month {
	return []time.Month{time.June, time.July, time.August, time.September}
}

// DecimalYear converts a date to a fractional year, with the day of
// year placed at its fraction of the calendar year length.
func DecimalYear(t time.Time) float64 {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	nextYear := time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearLen := nextYear.Sub(yearStart)
	return float64(t.Year()) + float64(t.Sub(yearStart))/float64(yearLen)
}
