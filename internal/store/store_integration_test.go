package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// Integration coverage against a real Postgres/Timescale instance. Skipped
// unless QUANTSLAB_TEST_DSN points at a throwaway database.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("QUANTSLAB_TEST_DSN")
	if dsn == "" {
		t.Skip("QUANTSLAB_TEST_DSN not set; skipping store integration test")
	}
	conn := sqlx.NewSqlConn("pgx", dsn)
	return New(Config{SQLConn: conn})
}

func TestStoreFundingRateRoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	table := fmt.Sprintf("quantslab_test_funding_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.conn.ExecCtx(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	})

	require.NoError(t, s.EnsureFundingRateTable(ctx, table))

	_, ok, err := s.LastTimestamp(ctx, table)
	require.NoError(t, err)
	require.False(t, ok, "fresh table has no watermark")

	rows := []FundingRateRow{
		{Symbol: "BTC", Exchange: "Binance", Provider: "coinglass", Open: 0.01, High: 0.012, Low: 0.009, Close: 0.011, DateTime: "2024-05-01", Timestamp: 1714521600, CreatedAt: time.Now().Unix()},
		{Symbol: "BTC", Exchange: "Binance", Provider: "coinglass", Open: 0.011, High: 0.013, Low: 0.01, Close: 0.012, DateTime: "2024-05-01", Timestamp: 1714525200, CreatedAt: time.Now().Unix()},
	}
	inserted, err := s.InsertFundingRates(ctx, table, rows)
	require.NoError(t, err)
	require.EqualValues(t, 2, inserted)

	// Replaying the same batch must be a no-op.
	inserted, err = s.InsertFundingRates(ctx, table, rows)
	require.NoError(t, err)
	require.Zero(t, inserted)

	ts, ok, err := s.LastTimestamp(ctx, table)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1714525200, ts)

	removed, err := s.PruneBefore(ctx, table, 1714525200)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestStoreMissingTableWatermark(t *testing.T) {
	s := newIntegrationStore(t)
	ts, ok, err := s.LastTimestamp(context.Background(), fmt.Sprintf("quantslab_test_missing_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, ts)
}

func TestStoreMetricPointRoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	table := fmt.Sprintf("quantslab_test_points_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.conn.ExecCtx(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	})

	require.NoError(t, s.EnsureMetricPointTable(ctx, table))

	rows := []MetricPointRow{
		{Provider: "glassnode", Symbol: "BTC", Value: 62000.1, DateTime: "2024-05-01", Timestamp: 1714521600, CreatedAt: time.Now().Unix()},
		{Provider: "glassnode", Symbol: "BTC", Value: 61850.4, DateTime: "2024-05-01", Timestamp: 1714525200, CreatedAt: time.Now().Unix()},
	}
	inserted, err := s.InsertMetricPoints(ctx, table, rows)
	require.NoError(t, err)
	require.EqualValues(t, 2, inserted)

	inserted, err = s.InsertMetricPoints(ctx, table, rows)
	require.NoError(t, err)
	require.Zero(t, inserted)

	ts, ok, err := s.LastTimestamp(ctx, table)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1714525200, ts)
}
