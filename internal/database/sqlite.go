package database

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/export"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// SQLiteStore is the local, file-backed form of the results mirror.
// It carries the same two tables as the PostgreSQL mirror and needs
// no server, which suits offline analysis runs.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and initializes) a SQLite results store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS albedo_daily (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			product TEXT NOT NULL,
			elevation_zone TEXT NOT NULL,
			fraction_class TEXT NOT NULL,
			year INTEGER,
			doy INTEGER,
			decimal_year REAL,
			season TEXT,
			mean REAL,
			median REAL,
			pixel_count INTEGER,
			data_quality REAL,
			UNIQUE(date, product, elevation_zone, fraction_class)
		)`,
		`CREATE TABLE IF NOT EXISTS trend_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset TEXT NOT NULL,
			product TEXT NOT NULL,
			elevation_zone TEXT NOT NULL,
			fraction_class TEXT NOT NULL,
			period TEXT NOT NULL,
			n INTEGER,
			trend TEXT,
			p_value REAL,
			z_score REAL,
			tau REAL,
			s_statistic REAL,
			sen_slope_per_year REAL,
			slope_ci_low REAL,
			slope_ci_high REAL,
			intercept REAL,
			alpha REAL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating results tables: %w", err)
		}
	}
	return nil
}

// StoreObservations upserts daily observations, one row per class.
func (s *SQLiteStore) StoreObservations(obs []types.Observation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO albedo_daily
		(date, product, elevation_zone, fraction_class, year, doy, decimal_year, season, mean, median, pixel_count, data_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, product, elevation_zone, fraction_class) DO UPDATE SET
			year=excluded.year, doy=excluded.doy, decimal_year=excluded.decimal_year,
			season=excluded.season, mean=excluded.mean, median=excluded.median,
			pixel_count=excluded.pixel_count, data_quality=excluded.data_quality`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		for _, class := range types.FractionClasses() {
			cs := o.Stats(class)
			_, err := stmt.Exec(
				o.Date.Format("2006-01-02"),
				string(o.Product),
				string(o.Zone),
				string(class),
				o.Year, o.DOY, o.DecimalYear, string(o.Season),
				sqlNull(cs.Mean), sqlNull(cs.Median), cs.PixelCount, sqlNull(cs.DataQuality),
			)
			if err != nil {
				return fmt.Errorf("storing observation %s/%s: %w", o.Date.Format("2006-01-02"), class, err)
			}
		}
	}
	return tx.Commit()
}

// StoreTrendResults appends trend table rows.
func (s *SQLiteStore) StoreTrendResults(records []export.TrendRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO trend_results
		(dataset, product, elevation_zone, fraction_class, period, n, trend, p_value, z_score, tau, s_statistic, sen_slope_per_year, slope_ci_low, slope_ci_high, intercept, alpha)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Dataset, string(r.Product), string(r.Zone), string(r.Class), r.Period,
			r.Result.N, string(r.Result.Trend),
			sqlNull(r.Result.P), sqlNull(r.Result.Z), sqlNull(r.Result.Tau), sqlNull(r.Result.S),
			sqlNull(r.Result.Slope), sqlNull(r.Result.SlopeLow), sqlNull(r.Result.SlopeHigh),
			sqlNull(r.Result.Intercept), r.Result.Alpha,
		)
		if err != nil {
			return fmt.Errorf("storing trend result %s/%s/%s: %w", r.Dataset, r.Class, r.Period, err)
		}
	}
	return tx.Commit()
}

// CountObservations returns the stored row count, used by import
// tooling to report progress.
func (s *SQLiteStore) CountObservations() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM albedo_daily`).Scan(&n)
	return n, err
}

func sqlNull(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
