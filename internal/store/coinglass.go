package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schemas mirror the collector's per-symbol metric tables. Timestamps are
// unix seconds unless a family notes otherwise, date_time is the UTC
// YYYY-MM-DD of the record, created_at is the unix second of insertion.

const fundingRatesSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    open DOUBLE PRECISION,
    high DOUBLE PRECISION,
    low DOUBLE PRECISION,
    close DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp)
);`

// FundingRateRow is one funding-rate OHLC bucket ready for persistence.
type FundingRateRow struct {
	Symbol    string
	Exchange  string
	Provider  string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureFundingRateTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, fundingRatesSchema)
}

func (s *Store) InsertFundingRates(ctx context.Context, table string, rows []FundingRateRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, open, high, low, close, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider,
			row.Open, row.High, row.Low, row.Close,
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

const liquidationSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    long_liquidation_usd DOUBLE PRECISION,
    short_liquidation_usd DOUBLE PRECISION,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp)
);`

// LiquidationRow is one aggregated liquidation bucket.
type LiquidationRow struct {
	Symbol              string
	Exchange            string
	Provider            string
	Timestamp           int64
	LongLiquidationUsd  float64
	ShortLiquidationUsd float64
	Timeframe           string
	DateTime            string
	CreatedAt           int64
}

func (s *Store) EnsureLiquidationTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, liquidationSchema)
}

func (s *Store) InsertLiquidations(ctx context.Context, table string, rows []LiquidationRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, long_liquidation_usd, short_liquidation_usd, timeframe, date_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.LongLiquidationUsd, row.ShortLiquidationUsd,
			row.Timeframe, row.DateTime, row.CreatedAt,
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

// The global account ratio table only records that a bucket was observed.
// The upstream feed stopped exposing the ratio columns and the collector
// keeps the historical shape.
const globalAccountRatioSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange, symbol, timestamp)
);`

// GlobalAccountRatioRow is one observed global account-ratio bucket.
type GlobalAccountRatioRow struct {
	Symbol    string
	Exchange  string
	Provider  string
	Timestamp int64
	Timeframe string
	DateTime  string
	CreatedAt int64
}

func (s *Store) EnsureGlobalAccountRatioTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, globalAccountRatioSchema)
}

func (s *Store) InsertGlobalAccountRatios(ctx context.Context, table string, rows []GlobalAccountRatioRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt,
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

const topRatioSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    long_account DOUBLE PRECISION,
    short_account DOUBLE PRECISION,
    long_short_ratio DOUBLE PRECISION,
    UNIQUE (exchange, symbol, timestamp)
);`

// TopRatioRow is one top-trader ratio bucket, shared by the account and
// position variants.
type TopRatioRow struct {
	Symbol         string
	Exchange       string
	Provider       string
	Timestamp      int64
	Timeframe      string
	DateTime       string
	CreatedAt      int64
	LongAccount    float64
	ShortAccount   float64
	LongShortRatio float64
}

func (s *Store) EnsureTopRatioTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, topRatioSchema)
}

func (s *Store) InsertTopRatios(ctx context.Context, table string, rows []TopRatioRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at, long_account, short_account, long_short_ratio)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt,
			row.LongAccount, row.ShortAccount, row.LongShortRatio,
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

const takerRatioSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    long_short_ratio DOUBLE PRECISION,
    UNIQUE (exchange, symbol, timestamp)
);`

// TakerRatioRow is one aggregated taker buy/sell ratio bucket.
type TakerRatioRow struct {
	Symbol         string
	Exchange       string
	Provider       string
	Timestamp      int64
	Timeframe      string
	DateTime       string
	CreatedAt      int64
	LongShortRatio float64
}

func (s *Store) EnsureTakerRatioTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, takerRatioSchema)
}

func (s *Store) InsertTakerRatios(ctx context.Context, table string, rows []TakerRatioRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at, long_short_ratio)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt, row.LongShortRatio,
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

const takerVolumeSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    buy DOUBLE PRECISION,
    sell DOUBLE PRECISION,
    UNIQUE (exchange, symbol, timestamp)
);`

// TakerVolumeRow is one aggregated taker buy/sell volume bucket.
type TakerVolumeRow struct {
	Symbol    string
	Exchange  string
	Provider  string
	Timestamp int64
	Timeframe string
	DateTime  string
	CreatedAt int64
	Buy       float64
	Sell      float64
}

func (s *Store) EnsureTakerVolumeTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, takerVolumeSchema)
}

func (s *Store) InsertTakerVolumes(ctx context.Context, table string, rows []TakerVolumeRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at, buy, sell)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt, row.Buy, row.Sell,
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

const orderbookSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    bids_usd DOUBLE PRECISION,
    bids_amount DOUBLE PRECISION,
    asks_usd DOUBLE PRECISION,
    asks_amount DOUBLE PRECISION,
    UNIQUE (exchange, symbol, timestamp)
);`

// OrderbookRow is one aggregated orderbook depth bucket.
type OrderbookRow struct {
	Symbol     string
	Exchange   string
	Provider   string
	Timestamp  int64
	Timeframe  string
	DateTime   string
	CreatedAt  int64
	BidsUsd    float64
	BidsAmount float64
	AsksUsd    float64
	AsksAmount float64
}

func (s *Store) EnsureOrderbookTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, orderbookSchema)
}

func (s *Store) InsertOrderbooks(ctx context.Context, table string, rows []OrderbookRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at, bids_usd, bids_amount, asks_usd, asks_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt,
			row.BidsUsd, row.BidsAmount, row.AsksUsd, row.AsksAmount,
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

const bitfinexMarginSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    symbol TEXT NOT NULL,
    exchange TEXT NOT NULL,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    timeframe TEXT NOT NULL,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    long_qty DOUBLE PRECISION,
    short_qty DOUBLE PRECISION,
    UNIQUE (exchange, symbol, timestamp)
);`

// BitfinexMarginRow is one Bitfinex margin long/short bucket.
type BitfinexMarginRow struct {
	Symbol    string
	Exchange  string
	Provider  string
	Timestamp int64
	Timeframe string
	DateTime  string
	CreatedAt int64
	LongQty   float64
	ShortQty  float64
}

func (s *Store) EnsureBitfinexMarginTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, bitfinexMarginSchema)
}

func (s *Store) InsertBitfinexMargins(ctx context.Context, table string, rows []BitfinexMarginRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, exchange, provider, timestamp, timeframe, date_time, created_at, long_qty, short_qty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (exchange, symbol, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Symbol, row.Exchange, row.Provider, row.Timestamp,
			row.Timeframe, row.DateTime, row.CreatedAt,
			row.LongQty, row.ShortQty,
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

const etfNetAssetsSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    net_assets DOUBLE PRECISION,
    price DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// ETFNetAssetsRow is one daily ETF net-assets bucket.
type ETFNetAssetsRow struct {
	Provider  string
	NetAssets float64
	Price     float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureETFNetAssetsTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, etfNetAssetsSchema)
}

func (s *Store) InsertETFNetAssets(ctx context.Context, table string, rows []ETFNetAssetsRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, net_assets, price, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.NetAssets, row.Price,
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

const etfFlowSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    change_usd DOUBLE PRECISION,
    close_price DOUBLE PRECISION,
    price DOUBLE PRECISION,
    list_ticker TEXT NOT NULL,
    list_change_usd DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp, list_ticker)
);`

// ETFFlowRow is one per-fund slice of a daily ETF flow bucket.
// ListChangeUsd is nil when the fund reported no flow.
type ETFFlowRow struct {
	Provider      string
	ChangeUsd     float64
	ClosePrice    float64
	Price         float64
	ListTicker    string
	ListChangeUsd *float64
	DateTime      string
	Timestamp     int64
	CreatedAt     int64
}

func (s *Store) EnsureETFFlowTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, etfFlowSchema)
}

func (s *Store) InsertETFFlows(ctx context.Context, table string, rows []ETFFlowRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, change_usd, close_price, price, list_ticker, list_change_usd, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (timestamp, list_ticker) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		listChange := sql.NullFloat64{}
		if row.ListChangeUsd != nil {
			listChange = sql.NullFloat64{Float64: *row.ListChangeUsd, Valid: true}
		}
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.ChangeUsd, row.ClosePrice, row.Price,
			row.ListTicker, listChange,
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

const etfPremiumDiscountSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    nav DOUBLE PRECISION,
    market_price DOUBLE PRECISION,
    premium_discount_percent DOUBLE PRECISION,
    ticker TEXT NOT NULL,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp, ticker)
);`

// ETFPremiumDiscountRow is one per-fund slice of a daily premium/discount
// bucket.
type ETFPremiumDiscountRow struct {
	Provider               string
	Nav                    float64
	MarketPrice            float64
	PremiumDiscountPercent float64
	Ticker                 string
	DateTime               string
	Timestamp              int64
	CreatedAt              int64
}

func (s *Store) EnsureETFPremiumDiscountTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, etfPremiumDiscountSchema)
}

func (s *Store) InsertETFPremiumDiscounts(ctx context.Context, table string, rows []ETFPremiumDiscountRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, nav, market_price, premium_discount_percent, ticker, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (timestamp, ticker) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Nav, row.MarketPrice, row.PremiumDiscountPercent,
			row.Ticker, row.DateTime, row.Timestamp, row.CreatedAt,
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

const optionInfoSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    exchange_name TEXT NOT NULL,
    open_interest DOUBLE PRECISION,
    rate DOUBLE PRECISION,
    h24_change DOUBLE PRECISION,
    exchange_logo TEXT,
    open_interest_usd DOUBLE PRECISION,
    vol_usd DOUBLE PRECISION,
    h24_vol_change_percent DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (exchange_name, timestamp)
);`

// OptionInfoRow is one per-exchange option open-interest snapshot.
type OptionInfoRow struct {
	ExchangeName        string
	OpenInterest        float64
	Rate                float64
	H24Change           float64
	ExchangeLogo        string
	OpenInterestUsd     float64
	VolUsd              float64
	H24VolChangePercent float64
	DateTime            string
	Timestamp           int64
	CreatedAt           int64
}

func (s *Store) EnsureOptionInfoTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, optionInfoSchema)
}

func (s *Store) InsertOptionInfos(ctx context.Context, table string, rows []OptionInfoRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (exchange_name, open_interest, rate, h24_change, exchange_logo, open_interest_usd, vol_usd, h24_vol_change_percent, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (exchange_name, timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.ExchangeName, row.OpenInterest, row.Rate, row.H24Change,
			row.ExchangeLogo, row.OpenInterestUsd, row.VolUsd, row.H24VolChangePercent,
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

const fearGreedSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    value DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// FearGreedRow is one fear & greed index sample with its reference price.
type FearGreedRow struct {
	Provider  string
	Price     float64
	Value     float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureFearGreedTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, fearGreedSchema)
}

func (s *Store) InsertFearGreeds(ctx context.Context, table string, rows []FearGreedRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, value, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.Value,
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

const coinbasePremiumSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    premium DOUBLE PRECISION,
    premium_rate DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// CoinbasePremiumRow is one Coinbase premium index bucket.
type CoinbasePremiumRow struct {
	Provider    string
	Timestamp   int64
	Premium     float64
	PremiumRate float64
	DateTime    string
	CreatedAt   int64
}

func (s *Store) EnsureCoinbasePremiumTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, coinbasePremiumSchema)
}

func (s *Store) InsertCoinbasePremiums(ctx context.Context, table string, rows []CoinbasePremiumRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, timestamp, premium, premium_rate, date_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Timestamp, row.Premium, row.PremiumRate,
			row.DateTime, row.CreatedAt,
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

const ahr999Schema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    avg DOUBLE PRECISION,
    value DOUBLE PRECISION,
    ahr999 DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// AHR999Row is one daily AHR999 index sample.
type AHR999Row struct {
	Provider  string
	Avg       float64
	Value     float64
	AHR999    float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureAHR999Table(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, ahr999Schema)
}

func (s *Store) InsertAHR999s(ctx context.Context, table string, rows []AHR999Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, avg, value, ahr999, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Avg, row.Value, row.AHR999,
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

const bubbleIndexSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    index DOUBLE PRECISION,
    google_trend DOUBLE PRECISION,
    difficulty DOUBLE PRECISION,
    transactions DOUBLE PRECISION,
    sent_by_address DOUBLE PRECISION,
    tweets DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// BubbleIndexRow is one daily bitcoin bubble index sample.
type BubbleIndexRow struct {
	Provider      string
	Price         float64
	Index         float64
	GoogleTrend   float64
	Difficulty    float64
	Transactions  float64
	SentByAddress float64
	Tweets        float64
	DateTime      string
	Timestamp     int64
	CreatedAt     int64
}

func (s *Store) EnsureBubbleIndexTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, bubbleIndexSchema)
}

func (s *Store) InsertBubbleIndexes(ctx context.Context, table string, rows []BubbleIndexRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, index, google_trend, difficulty, transactions, sent_by_address, tweets, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.Index, row.GoogleTrend, row.Difficulty,
			row.Transactions, row.SentByAddress, row.Tweets,
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

const profitableDaysSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    provider TEXT NOT NULL,
    price DOUBLE PRECISION,
    side DOUBLE PRECISION,
    date_time TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (timestamp)
);`

// ProfitableDaysRow is one daily bitcoin-profitable-days sample.
type ProfitableDaysRow struct {
	Provider  string
	Price     float64
	Side      float64
	DateTime  string
	Timestamp int64
	CreatedAt int64
}

func (s *Store) EnsureProfitableDaysTable(ctx context.Context, table string) error {
	return s.ensureTable(ctx, table, profitableDaysSchema)
}

func (s *Store) InsertProfitableDays(ctx context.Context, table string, rows []ProfitableDaysRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, price, side, date_time, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (timestamp) DO NOTHING;`, table)
	var inserted, maxTS int64
	for _, row := range rows {
		res, err := s.conn.ExecCtx(ctx, stmt,
			row.Provider, row.Price, row.Side,
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
