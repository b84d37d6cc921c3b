package database

import (
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/export"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/log"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
	"go.uber.org/zap"
)

// Client holds the connection to a PostgreSQL mirror database
type Client struct {
	DB *gorm.DB // Exported so it can be accessed from other packages

	connectionString string
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to PostgreSQL, retrying with exponential backoff,
// and migrates the mirror tables.
func (c *Client) Connect() error {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to PostgreSQL...")
	op := func() error {
		db, err := gorm.Open(postgres.Open(c.connectionString), &gorm.Config{Logger: dbLogger})
		if err != nil {
			log.Warn("PostgreSQL connection attempt failed:", err)
			return err
		}
		c.DB = db
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("unable to connect to PostgreSQL: %w", err)
	}
	log.Info("PostgreSQL connection successful")

	if err := c.DB.AutoMigrate(&AlbedoDaily{}, &TrendResult{}); err != nil {
		return fmt.Errorf("migrating mirror tables: %w", err)
	}
	return nil
}

// StoreObservations upserts daily observations, one row per coverage
// class, keyed on (date, product, zone, class).
func (c *Client) StoreObservations(obs []types.Observation) error {
	rows := ObservationRows(obs)
	if len(rows) == 0 {
		return nil
	}
	err := c.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "date"}, {Name: "product"}, {Name: "elevation_zone"}, {Name: "fraction_class"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"year", "doy", "decimal_year", "season",
			"mean", "median", "pixel_count", "data_quality", "imported_at",
		}),
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("storing observations: %w", err)
	}
	return nil
}

// StoreTrendResults appends trend table rows.
func (c *Client) StoreTrendResults(records []export.TrendRecord) error {
	rows := make([]TrendResult, 0, len(records))
	for _, r := range records {
		rows = append(rows, TrendRow(r))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := c.DB.CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("storing trend results: %w", err)
	}
	return nil
}

// ObservationRows flattens observations into per-class table rows.
func ObservationRows(obs []types.Observation) []AlbedoDaily {
	now := time.Now().UTC()
	rows := make([]AlbedoDaily, 0, len(obs)*len(types.FractionClasses()))
	for _, o := range obs {
		for _, class := range types.FractionClasses() {
			s := o.Stats(class)
			rows = append(rows, AlbedoDaily{
				Date:          o.Date,
				Product:       string(o.Product),
				Zone:          string(o.Zone),
				FractionClass: string(class),
				Year:          o.Year,
				DOY:           o.DOY,
				DecimalYear:   o.DecimalYear,
				Season:        string(o.Season),
				Mean:          nullable(s.Mean),
				Median:        nullable(s.Median),
				PixelCount:    s.PixelCount,
				DataQuality:   nullable(s.DataQuality),
				ImportedAt:    now,
			})
		}
	}
	return rows
}

// TrendRow converts a trend record to its table row.
func TrendRow(r export.TrendRecord) TrendResult {
	return TrendResult{
		Dataset:       r.Dataset,
		Product:       string(r.Product),
		Zone:          string(r.Zone),
		FractionClass: string(r.Class),
		Period:        r.Period,
		N:             r.Result.N,
		Trend:         string(r.Result.Trend),
		PValue:        nullable(r.Result.P),
		ZScore:        nullable(r.Result.Z),
		Tau:           nullable(r.Result.Tau),
		SStatistic:    nullable(r.Result.S),
		SenSlope:      nullable(r.Result.Slope),
		SlopeCILow:    nullable(r.Result.SlopeLow),
		SlopeCIHigh:   nullable(r.Result.SlopeHigh),
		Intercept:     nullable(r.Result.Intercept),
		Alpha:         r.Result.Alpha,
		ComputedAt:    time.Now().UTC(),
	}
}

// nullable maps NaN to a SQL NULL. A NULL albedo is distinguishable
// from zero; a NaN column value is not portable across drivers.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
