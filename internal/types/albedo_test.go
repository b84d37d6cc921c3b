package types

import (
	"math"
	"testing"
	"time"
)

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonNone},
		{time.May, SeasonNone},
		{time.June, SeasonEarlySummer},
		{time.July, SeasonMidSummer},
		{time.August, SeasonMidSummer},
		{time.September, SeasonLateSummer},
		{time.October, SeasonNone},
	}
	for _, tt := range tests {
		if got := SeasonForMonth(tt.month); got != tt.want {
			t.Errorf("SeasonForMonth(%v) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestDecimalYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want float64
	}{
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 2020.0},
		{time.Date(2019, 7, 2, 0, 0, 0, 0, time.UTC), 2019 + 182.0/365.0},
		// 2020 is a leap year
		{time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), 2020 + 365.0/366.0},
	}
	for _, tt := range tests {
		if got := DecimalYear(tt.date); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DecimalYear(%v) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestClassifyElevation(t *testing.T) {
	const median = 2200.0
	tests := []struct {
		elev float64
		want ElevationZone
	}{
		{2301, ZoneAbove},
		{2300, ZoneAt},
		{2200, ZoneAt},
		{2100, ZoneAt},
		{2099, ZoneBelow},
	}
	for _, tt := range tests {
		if got := ClassifyElevation(tt.elev, median); got != tt.want {
			t.Errorf("ClassifyElevation(%v, %v) = %q, want %q", tt.elev, median, got, tt.want)
		}
	}
}

func TestNewObservationDerivedFields(t *testing.T) {
	o := NewObservation(time.Date(2021, 8, 15, 0, 0, 0, 0, time.UTC), ProductMOD10A1, ZoneAbove)
	if o.Year != 2021 || o.DOY != 227 {
		t.Errorf("year/doy = %d/%d", o.Year, o.DOY)
	}
	if o.Season != SeasonMidSummer {
		t.Errorf("season = %q", o.Season)
	}
	if !o.InMeltSeason() {
		t.Error("August should be in the melt season")
	}
	if o.Stats(ClassPureIce).Valid() {
		t.Error("fresh observation should have no valid stats")
	}
}

func TestClassStatsValid(t *testing.T) {
	if (ClassStats{Mean: math.NaN(), PixelCount: 10}).Valid() {
		t.Error("NaN mean must not be valid")
	}
	if (ClassStats{Mean: 0.5, PixelCount: 0}).Valid() {
		t.Error("zero pixels must not be valid")
	}
	if !(ClassStats{Mean: 0.5, Median: 0.5, PixelCount: 3}).Valid() {
		t.Error("normal stats should be valid")
	}
}
