package quality

import (
	"math"
	"testing"
	"time"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

func TestAlbedoMCD43A3(t *testing.T) {
	f := NewFilter(types.ProductMCD43A3, -1)

	tests := []struct {
		name   string
		sample PixelSample
		want   float64
		ok     bool
	}{
		{"full inversion mid-range", PixelSample{Raw: 620, QA: 0}, 0.62, true},
		{"magnitude inversion accepted by default", PixelSample{Raw: 500, QA: 1}, 0.5, true},
		{"qa flag above threshold", PixelSample{Raw: 500, QA: 2}, 0, false},
		{"fill value above valid range", PixelSample{Raw: 32767, QA: 0}, 0, false},
		{"negative raw", PixelSample{Raw: -1, QA: 0}, 0, false},
		{"range edges", PixelSample{Raw: 1000, QA: 0}, 1.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Albedo(tt.sample)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("albedo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlbedoMOD10A1(t *testing.T) {
	f := NewFilter(types.ProductMOD10A1, -1)

	tests := []struct {
		name   string
		sample PixelSample
		want   float64
		ok     bool
	}{
		{"valid percent", PixelSample{Raw: 70, QA: 0}, 0.70, true},
		{"coded flag cloud", PixelSample{Raw: 150, QA: 0}, 0, false},
		{"coded flag night", PixelSample{Raw: 211, QA: 0}, 0, false},
		{"zero is invalid", PixelSample{Raw: 0, QA: 0}, 0, false},
		{"qa ok level accepted", PixelSample{Raw: 55, QA: 2}, 0.55, true},
		{"qa above threshold", PixelSample{Raw: 55, QA: 3}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Albedo(tt.sample)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("albedo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrictQAThresholdZero(t *testing.T) {
	f := NewFilter(types.ProductMCD43A3, 0)
	if _, ok := f.Albedo(PixelSample{Raw: 500, QA: 1}); ok {
		t.Error("magnitude inversion must fail a strict threshold of 0")
	}
}

func TestComputeClassStats(t *testing.T) {
	f := NewFilter(types.ProductMCD43A3, -1)
	samples := []PixelSample{
		{Raw: 600, QA: 0},
		{Raw: 700, QA: 0},
		{Raw: 800, QA: 0},
		{Raw: 500, QA: 3},     // rejected by QA
		{Raw: 32767, QA: 0},   // rejected by range
	}

	s := f.ComputeClassStats(samples, 3)
	if s.PixelCount != 3 {
		t.Errorf("PixelCount = %d, want 3", s.PixelCount)
	}
	if math.Abs(s.DataQuality-60) > 1e-9 {
		t.Errorf("DataQuality = %v, want 60", s.DataQuality)
	}
	if math.Abs(s.Mean-0.7) > 1e-12 {
		t.Errorf("Mean = %v, want 0.7", s.Mean)
	}
	if math.Abs(s.Median-0.7) > 1e-12 {
		t.Errorf("Median = %v, want 0.7", s.Median)
	}
}

func TestComputeClassStatsMinPixels(t *testing.T) {
	f := NewFilter(types.ProductMCD43A3, -1)
	samples := []PixelSample{{Raw: 600, QA: 0}, {Raw: 700, QA: 0}}

	s := f.ComputeClassStats(samples, 5)
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) {
		t.Errorf("below-threshold stats must be NaN, got %+v", s)
	}
	if s.PixelCount != 2 {
		t.Errorf("PixelCount = %d, want 2", s.PixelCount)
	}
}

func TestFilterRecords(t *testing.T) {
	o := types.NewObservation(time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), types.ProductMCD43A3, types.ZoneAll)
	o.Classes[types.ClassPureIce] = types.ClassStats{Mean: 0.8, Median: 0.8, PixelCount: 20, DataQuality: 95}
	o.Classes[types.ClassBorder] = types.ClassStats{Mean: 0.4, Median: 0.4, PixelCount: 8, DataQuality: 40}
	o.Classes[types.ClassMixedLow] = types.ClassStats{Mean: 1.7, Median: 1.7, PixelCount: 9, DataQuality: 90}

	got := FilterRecords([]types.Observation{o}, 50)[0]

	if !got.Stats(types.ClassPureIce).Valid() {
		t.Error("high-quality class should survive")
	}
	if got.Stats(types.ClassBorder).Valid() {
		t.Error("low data-quality class should be nulled")
	}
	if got.Stats(types.ClassMixedLow).Valid() {
		t.Error("out-of-range mean should be nulled")
	}
	if got.Stats(types.ClassBorder).PixelCount != 8 {
		t.Error("pixel count should survive filtering")
	}
}
