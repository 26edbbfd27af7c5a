package store

import (
	"context"
	"fmt"
)

// Market-cycle indicator tables. All of these are single daily series
// keyed by timestamp alone.

const puellMultipleSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    puell_multiple DOUBLE PRECISION,
    buy_qty DOUBLE PRECISION,
    sell_qty DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// PuellMultipleRow is one daily Puell Multiple sample.
type PuellMultipleRow struct {
	Provider      string
	Price         float64
	PuellMultiple float64
	BuyQty        float64
	SellQty       float64
	DateTime      string
	Timestamp     int64
	CreatedAt     int64
}

func (s *Store) EnsurePuellMultipleTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, puellMultipleSchema)
}

func (s *Store) InsertPuellMultiples(ctx context.Context, table string, rows []PuellMultipleRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, puell_multiple, buy_qty, sell_qty, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.PuellMultiple, row.BuyQty, row.SellQty,
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

const piCycleSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    ma110 DOUBLE PRECISION,
    ma350_mu2 DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// PiCycleRow is one daily Pi Cycle top indicator sample.
type PiCycleRow struct {
	Provider  string
	Price     float64
	MA110     float64
	MA350Mu2  float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsurePiCycleTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, piCycleSchema)
}

func (s *Store) InsertPiCycles(ctx context.Context, table string, rows []PiCycleRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, ma110, ma350_mu2, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.MA110, row.MA350Mu2,
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

const rainbowChartSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    btc_price DOUBLE PRECISION,
    model_price DOUBLE PRECISION,
    fire_sale DOUBLE PRECISION,
    buy DOUBLE PRECISION,
    accumulate DOUBLE PRECISION,
    still_cheap DOUBLE PRECISION,
    hold DOUBLE PRECISION,
    is_this_a_bubble DOUBLE PRECISION,
    fomo_intensifies DOUBLE PRECISION,
    sell_seriously DOUBLE PRECISION,
    maximum_bubble DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// RainbowChartRow is one daily rainbow chart sample. Band columns are
// nullable because early history predates some bands.
type RainbowChartRow struct {
	Provider        string
	BTCPrice        *float64
	ModelPrice      *float64
	FireSale        *float64
	Buy             *float64
	Accumulate      *float64
	StillCheap      *float64
	Hold            *float64
	IsThisABubble   *float64
	FOMOIntensifies *float64
	SellSeriously   *float64
	MaximumBubble   *float64
	DateTime        string
	Timestamp       int64
	CreatedAt       int64
}

func (s *Store) EnsureRainbowChartTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, rainbowChartSchema)
}

func (s *Store) InsertRainbowCharts(ctx context.Context, table string, rows []RainbowChartRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, btc_price, model_price, fire_sale, buy, accumulate, still_cheap, hold, is_this_a_bubble, fomo_intensifies, sell_seriously, maximum_bubble, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.BTCPrice, row.ModelPrice,
			row.FireSale, row.Buy, row.Accumulate, row.StillCheap, row.Hold,
			row.IsThisABubble, row.FOMOIntensifies, row.SellSeriously, row.MaximumBubble,
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

const goldenRatioSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    ma350 DOUBLE PRECISION,
    two_low_bull_high DOUBLE PRECISION,
    three_low_bull_high DOUBLE PRECISION,
    accumulation_high DOUBLE PRECISION,
    x3 DOUBLE PRECISION,
    x5 DOUBLE PRECISION,
    x8 DOUBLE PRECISION,
    x13 DOUBLE PRECISION,
    x21 DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// GoldenRatioRow is one daily golden ratio multiplier sample. The
// fibonacci bands are nullable, the feed only emits the active ones.
type GoldenRatioRow struct {
	Provider         string
	Price            float64
	MA350            float64
	TwoLowBullHigh   float64
	ThreeLowBullHigh *float64
	AccumulationHigh float64
	X3               *float64
	X5               *float64
	X8               *float64
	X13              *float64
	X21              *float64
	DateTime         string
	Timestamp        int64
	CreatedAt        int64
}

func (s *Store) EnsureGoldenRatioTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, goldenRatioSchema)
}

func (s *Store) InsertGoldenRatios(ctx context.Context, table string, rows []GoldenRatioRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, ma350, two_low_bull_high, three_low_bull_high, accumulation_high, x3, x5, x8, x13, x21, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.MA350,
			row.TwoLowBullHigh, row.ThreeLowBullHigh, row.AccumulationHigh,
			row.X3, row.X5, row.X8, row.X13, row.X21,
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

const stockToFlowSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    next_halving DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// StockToFlowRow is one daily stock-to-flow model sample.
type StockToFlowRow struct {
	Provider    string
	Price       float64
	NextHalving float64
	DateTime    string
	Timestamp   int64
	CreatedAt   int64
}

func (s *Store) EnsureStockToFlowTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, stockToFlowSchema)
}

func (s *Store) InsertStockToFlows(ctx context.Context, table string, rows []StockToFlowRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, next_halving, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.NextHalving,
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

const twoHundredWeekMASchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    ma1440 DOUBLE PRECISION,
    ma1440ip DOUBLE PRECISION,
    buy_qty DOUBLE PRECISION,
    sell_qty DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// TwoHundredWeekMARow is one daily 200-week moving average heatmap sample.
type TwoHundredWeekMARow struct {
	Provider  string
	Price     float64
	MA1440    float64
	MA1440IP  float64
	BuyQty    float64
	SellQty   float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureTwoHundredWeekMATable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, twoHundredWeekMASchema)
}

func (s *Store) InsertTwoHundredWeekMAs(ctx context.Context, table string, rows []TwoHundredWeekMARow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, ma1440, ma1440ip, buy_qty, sell_qty, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.MA1440, row.MA1440IP,
			row.BuyQty, row.SellQty,
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

const stablecoinMarketCapSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    market_cap DOUBLE PRECISION,
    btc_price DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// StablecoinMarketCapRow is one daily stablecoin market cap sample.
type StablecoinMarketCapRow struct {
	Provider  string
	MarketCap float64
	BTCPrice  float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureStablecoinMarketCapTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, stablecoinMarketCapSchema)
}

func (s *Store) InsertStablecoinMarketCaps(ctx context.Context, table string, rows []StablecoinMarketCapRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, market_cap, btc_price, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.MarketCap, row.BTCPrice,
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
