// Package database mirrors the analysis outputs into relational
// storage: daily observations per coverage class and trend results,
// in PostgreSQL via GORM or a local SQLite results store.
package database

import (
	"time"
)

// AlbedoDaily is one coverage class's statistics on one day, the
// relational form of a CSV observation row.
type AlbedoDaily struct {
	ID            uint       `gorm:"primaryKey;autoIncrement;column:id"`
	Date          time.Time  `gorm:"column:date;index:idx_albedo_daily_key,unique,priority:1;not null"`
	Product       string     `gorm:"column:product;index:idx_albedo_daily_key,unique,priority:2;not null"`
	Zone          string     `gorm:"column:elevation_zone;index:idx_albedo_daily_key,unique,priority:3;not null"`
	FractionClass string     `gorm:"column:fraction_class;index:idx_albedo_daily_key,unique,priority:4;not null"`
	Year          int        `gorm:"column:year"`
	DOY           int        `gorm:"column:doy"`
	DecimalYear   float64    `gorm:"column:decimal_year"`
	Season        string     `gorm:"column:season"`
	Mean          *float64   `gorm:"column:mean"`
	Median        *float64   `gorm:"column:median"`
	PixelCount    int        `gorm:"column:pixel_count"`
	DataQuality   *float64   `gorm:"column:data_quality"`
	ImportedAt    time.Time  `gorm:"column:imported_at;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for AlbedoDaily
func (AlbedoDaily) TableName() string {
	return "albedo_daily"
}

// TrendResult is one row of the trend-results table.
type TrendResult struct {
	ID            uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Dataset       string    `gorm:"column:dataset;not null"`
	Product       string    `gorm:"column:product;not null"`
	Zone          string    `gorm:"column:elevation_zone;not null"`
	FractionClass string    `gorm:"column:fraction_class;not null"`
	Period        string    `gorm:"column:period;not null"`
	N             int       `gorm:"column:n"`
	Trend         string    `gorm:"column:trend"`
	PValue        *float64  `gorm:"column:p_value"`
	ZScore        *float64  `gorm:"column:z_score"`
	Tau           *float64  `gorm:"column:tau"`
	SStatistic    *float64  `gorm:"column:s_statistic"`
	SenSlope      *float64  `gorm:"column:sen_slope_per_year"`
	SlopeCILow    *float64  `gorm:"column:slope_ci_low"`
	SlopeCIHigh   *float64  `gorm:"column:slope_ci_high"`
	Intercept     *float64  `gorm:"column:intercept"`
	Alpha         float64   `gorm:"column:alpha"`
	ComputedAt    time.Time `gorm:"column:computed_at;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for TrendResult
func (TrendResult) TableName() string {
	return "trend_results"
}
