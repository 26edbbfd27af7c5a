package store

import (
	"context"
	"fmt"
)

// All Glassnode metrics share one point shape, instantiated per metric table
// (market price, market cap, address balances, funding rate and so on).
const metricPointSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    symbol TEXT NOT NULL,
    value DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (symbol, timestamp)
);`

// MetricPointRow is one timestamped metric value.
type MetricPointRow struct {
	Provider  string
	Symbol    string
	Value     float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureMetricPointTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, metricPointSchema)
}

func (s *Store) InsertMetricPoints(ctx context.Context, table string, rows []MetricPointRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, value, symbol, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Value, row.Symbol,
			row.DateTime, row.Timestamp, row.CreatedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("store: insert %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
		if row.Timestamp > maxTS {
			maxTS = row.Timestamp
		}
	}
	s.cacheWatermark(ctx, table, maxTS)
	return inserted, nil
}
