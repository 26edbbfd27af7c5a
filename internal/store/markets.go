package store

import (
	"context"
	"fmt"
)

const coinsMarketsSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    market_cap DOUBLE PRECISION,
    oi_market_cap_ratio DOUBLE PRECISION,
    avg_funding_rate_by_oi DOUBLE PRECISION,
    avg_funding_rate_by_vol DOUBLE PRECISION,
    open_interest DOUBLE PRECISION,
    open_interest_amount DOUBLE PRECISION,
    oi_vol_ratio DOUBLE PRECISION,
    vol_usd DOUBLE PRECISION,
    price_change_percent_24h DOUBLE PRECISION,
    oi_change_percent_24h DOUBLE PRECISION,
    vol_change_percent_24h DOUBLE PRECISION,
    long_vol_usd_24h DOUBLE PRECISION,
    short_vol_usd_24h DOUBLE PRECISION,
    liquidation_usd_24h DOUBLE PRECISION,
    long_liquidation_usd_24h DOUBLE PRECISION,
    short_liquidation_usd_24h DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp)
);`

// CoinsMarketsRow is one coin out of a futures market screener snapshot.
// The 24h delta columns are nullable, thin markets omit them.
type CoinsMarketsRow struct {
	Symbol                 string
	Exchange               string
	Provider               string
	Price                  float64
	MarketCap              float64
	OIMarketCapRatio       float64
	AvgFundingRateByOI     float64
	AvgFundingRateByVol    float64
	OpenInterest           float64
	OpenInterestAmount     float64
	OIVolRatio             float64
	VolUsd                 float64
	PriceChangePercent24h  *float64
	OIChangePercent24h     *float64
	VolChangePercent24h    *float64
	LongVolUsd24h          *float64
	ShortVolUsd24h         *float64
	LiquidationUsd24h      *float64
	LongLiquidationUsd24h  *float64
	ShortLiquidationUsd24h *float64
	DateTime               string
	Timestamp              int64
	CreatedAt              int64
}

func (s *Store) EnsureCoinsMarketsTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, coinsMarketsSchema)
}

func (s *Store) InsertCoinsMarkets(ctx context.Context, table string, rows []CoinsMarketsRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, price, market_cap, oi_market_cap_ratio, avg_funding_rate_by_oi, avg_funding_rate_by_vol, open_interest, open_interest_amount, oi_vol_ratio, vol_usd, price_change_percent_24h, oi_change_percent_24h, vol_change_percent_24h, long_vol_usd_24h, short_vol_usd_24h, liquidation_usd_24h, long_liquidation_usd_24h, short_liquidation_usd_24h, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider,
			row.Price, row.MarketCap, row.OIMarketCapRatio,
			row.AvgFundingRateByOI, row.AvgFundingRateByVol,
			row.OpenInterest, row.OpenInterestAmount, row.OIVolRatio, row.VolUsd,
			row.PriceChangePercent24h, row.OIChangePercent24h, row.VolChangePercent24h,
			row.LongVolUsd24h, row.ShortVolUsd24h,
			row.LiquidationUsd24h, row.LongLiquidationUsd24h, row.ShortLiquidationUsd24h,
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

const optionExchangeVolSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    deribit DOUBLE PRECISION,
    cme DOUBLE PRECISION,
    okx DOUBLE PRECISION,
    binance DOUBLE PRECISION,
    bybit DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// OptionExchangeVolRow is one daily option volume bucket split by venue.
// Venue columns are nullable, an exchange absent from the day's map
// stays NULL.
type OptionExchangeVolRow struct {
	Symbol    string
	Provider  string
	Price     float64
	Deribit   *float64
	CME       *float64
	OKX       *float64
	Binance   *float64
	Bybit     *float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureOptionExchangeVolTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, optionExchangeVolSchema)
}

func (s *Store) InsertOptionExchangeVols(ctx context.Context, table string, rows []OptionExchangeVolRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, provider, price, deribit, cme, okx, binance, bybit, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Provider, row.Price,
			row.Deribit, row.CME, row.OKX, row.Binance, row.Bybit,
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

const liquidationExchangeListSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    long_vol_usd DOUBLE PRECISION,
    short_vol_usd DOUBLE PRECISION,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp)
);`

// LiquidationExchangeListRow is one exchange's liquidation totals at
// snapshot time.
type LiquidationExchangeListRow struct {
	Symbol      string
	Exchange    string
	Provider    string
	LongVolUsd  float64
	ShortVolUsd float64
	Timeframe   string
	DateTime    string
	Timestamp   int64
	CreatedAt   int64
}

func (s *Store) EnsureLiquidationExchangeListTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, liquidationExchangeListSchema)
}

func (s *Store) InsertLiquidationExchangeLists(ctx context.Context, table string, rows []LiquidationExchangeListRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, long_vol_usd, short_vol_usd, timeframe, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider,
			row.LongVolUsd, row.ShortVolUsd, row.Timeframe,
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

const liquidationHeatmapSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION NOT NULL,
    long_vol_usd DOUBLE PRECISION,
    short_vol_usd DOUBLE PRECISION,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp, price)
);`

// LiquidationHeatmapRow is one price level of a liquidation heatmap
// snapshot. Price joins the unique key, a snapshot spans many levels.
type LiquidationHeatmapRow struct {
	Symbol      string
	Exchange    string
	Provider    string
	Price       float64
	LongVolUsd  float64
	ShortVolUsd float64
	Timeframe   string
	DateTime    string
	Timestamp   int64
	CreatedAt   int64
}

func (s *Store) EnsureLiquidationHeatmapTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, liquidationHeatmapSchema)
}

func (s *Store) InsertLiquidationHeatmaps(ctx context.Context, table string, rows []LiquidationHeatmapRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, price, long_vol_usd, short_vol_usd, timeframe, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (exchange, symbol, timestamp, price) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Price,
			row.LongVolUsd, row.ShortVolUsd, row.Timeframe,
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
