package types

import (
	"math"
	"time"
)

// ClassStats holds the albedo statistics of one coverage class on one
// day. Albedo values are unitless reflectance in [0,1]. Mean and
// Median are NaN when the class had no usable pixels, never zero.
type ClassStats struct {
	Mean        float64
	Median      float64
	PixelCount  int
	DataQuality float64 // percent of the class's pixels that passed QA
}

// Valid reports whether the class carries a usable albedo statistic.
func (s ClassStats) Valid() bool {
	return !math.IsNaN(s.Mean) && s.PixelCount > 0
}

// NoStats returns a ClassStats carrying no observation.
func NoStats() ClassStats {
	return ClassStats{Mean: math.NaN(), Median: math.NaN()}
}

// Observation is one daily record from a satellite product export:
// the per-class albedo statistics for a single date, optionally
// restricted to one elevation zone.
type Observation struct {
	Date        time.Time
	Year        int
	DOY         int
	DecimalYear float64
	Season      Season
	Product     Product
	Zone        ElevationZone
	Classes     map[FractionClass]ClassStats
}

// NewObservation builds an observation for the given date with the
// derived date fields filled in and all classes empty.
func NewObservation(date time.Time, product Product, zone ElevationZone) Observation {
	return Observation{
		Date:        date,
		Year:        date.Year(),
		DOY:         date.YearDay(),
		DecimalYear: DecimalYear(date),
		Season:      SeasonForMonth(date.Month()),
		Product:     product,
		Zone:        zone,
		Classes:     make(map[FractionClass]ClassStats),
	}
}

// Stats returns the statistics for a class, or an empty ClassStats
// when the class is absent from the record.
func (o Observation) Stats(c FractionClass) ClassStats {
	if s, ok := o.Classes[c]; ok {
		return s
	}
	return NoStats()
}

// InMeltSeason reports whether the observation falls within the
// June-September melt season.
func (o Observation) InMeltSeason() bool {
	return o.Season != SeasonNone
}
