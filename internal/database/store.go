package database

import (
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/export"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// Store is the storage surface the pipeline writes to. Both the
// PostgreSQL mirror and the SQLite results store implement it.
type Store interface {
	StoreObservations(obs []types.Observation) error
	StoreTrendResults(records []export.TrendRecord) error
}

var (
	_ Store = (*Client)(nil)
	_ Store = (*SQLiteStore)(nil)
)
