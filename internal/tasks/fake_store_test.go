package tasks

import (
	"context"
	"sync"

	"github.com/socialsmoker223/quants-lab/internal/store"
)

// fakeStore records ensure/insert/prune traffic so sync tests can assert on
// it without Postgres.
type fakeStore struct {
	mu         sync.Mutex
	watermarks map[string]int64
	ensured    map[string]int
	inserts    map[string][]any
	pruned     map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		watermarks: make(map[string]int64),
		ensured:    make(map[string]int),
		inserts:    make(map[string][]any),
		pruned:     make(map[string]int64),
	}
}

func (f *fakeStore) rows(table string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.inserts[table]...)
}

func (f *fakeStore) setWatermark(table string, ts int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watermarks[table] = ts
}

func (f *fakeStore) LastTimestamp(_ context.Context, table string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.watermarks[table]
	return ts, ok, nil
}

func (f *fakeStore) PruneBefore(_ context.Context, table string, cutoff int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned[table] = cutoff
	return 0, nil
}

func (f *fakeStore) ensure(table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured[table]++
	return nil
}

func (f *fakeStore) insert(table string, maxTS int64, rows []any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts[table] = append(f.inserts[table], rows...)
	if maxTS > f.watermarks[table] {
		f.watermarks[table] = maxTS
	}
	return int64(len(rows)), nil
}

func anyRows[T any](rows []T, ts func(T) int64) (int64, []any) {
	var maxTS int64
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		if t := ts(r); t > maxTS {
			maxTS = t
		}
		out = append(out, r)
	}
	return maxTS, out
}

func (f *fakeStore) EnsureFundingRateTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertFundingRates(_ context.Context, table string, rows []store.FundingRateRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.FundingRateRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureLiquidationTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertLiquidations(_ context.Context, table string, rows []store.LiquidationRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.LiquidationRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureGlobalAccountRatioTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertGlobalAccountRatios(_ context.Context, table string, rows []store.GlobalAccountRatioRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.GlobalAccountRatioRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureTopRatioTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertTopRatios(_ context.Context, table string, rows []store.TopRatioRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.TopRatioRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureTakerRatioTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertTakerRatios(_ context.Context, table string, rows []store.TakerRatioRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.TakerRatioRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureTakerVolumeTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertTakerVolumes(_ context.Context, table string, rows []store.TakerVolumeRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.TakerVolumeRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureOrderbookTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertOrderbooks(_ context.Context, table string, rows []store.OrderbookRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.OrderbookRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureBitfinexMarginTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertBitfinexMargins(_ context.Context, table string, rows []store.BitfinexMarginRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.BitfinexMarginRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureETFNetAssetsTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertETFNetAssets(_ context.Context, table string, rows []store.ETFNetAssetsRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.ETFNetAssetsRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureETFFlowTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertETFFlows(_ context.Context, table string, rows []store.ETFFlowRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.ETFFlowRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureETFPremiumDiscountTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertETFPremiumDiscounts(_ context.Context, table string, rows []store.ETFPremiumDiscountRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.ETFPremiumDiscountRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureOptionInfoTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertOptionInfos(_ context.Context, table string, rows []store.OptionInfoRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.OptionInfoRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureFearGreedTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertFearGreeds(_ context.Context, table string, rows []store.FearGreedRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.FearGreedRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureCoinbasePremiumTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertCoinbasePremiums(_ context.Context, table string, rows []store.CoinbasePremiumRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.CoinbasePremiumRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureAHR999Table(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertAHR999s(_ context.Context, table string, rows []store.AHR999Row) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.AHR999Row) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureBubbleIndexTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertBubbleIndexes(_ context.Context, table string, rows []store.BubbleIndexRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.BubbleIndexRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureProfitableDaysTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertProfitableDays(_ context.Context, table string, rows []store.ProfitableDaysRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.ProfitableDaysRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsurePuellMultipleTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertPuellMultiples(_ context.Context, table string, rows []store.PuellMultipleRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.PuellMultipleRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsurePiCycleTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertPiCycles(_ context.Context, table string, rows []store.PiCycleRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.PiCycleRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureRainbowChartTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertRainbowCharts(_ context.Context, table string, rows []store.RainbowChartRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.RainbowChartRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureGoldenRatioTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertGoldenRatios(_ context.Context, table string, rows []store.GoldenRatioRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.GoldenRatioRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureStockToFlowTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertStockToFlows(_ context.Context, table string, rows []store.StockToFlowRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.StockToFlowRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureTwoHundredWeekMATable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertTwoHundredWeekMAs(_ context.Context, table string, rows []store.TwoHundredWeekMARow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.TwoHundredWeekMARow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureStablecoinMarketCapTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertStablecoinMarketCaps(_ context.Context, table string, rows []store.StablecoinMarketCapRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.StablecoinMarketCapRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureCoinsMarketsTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertCoinsMarkets(_ context.Context, table string, rows []store.CoinsMarketsRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.CoinsMarketsRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureOptionExchangeVolTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertOptionExchangeVols(_ context.Context, table string, rows []store.OptionExchangeVolRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.OptionExchangeVolRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureLiquidationExchangeListTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertLiquidationExchangeLists(_ context.Context, table string, rows []store.LiquidationExchangeListRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.LiquidationExchangeListRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureLiquidationHeatmapTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertLiquidationHeatmaps(_ context.Context, table string, rows []store.LiquidationHeatmapRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.LiquidationHeatmapRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

func (f *fakeStore) EnsureMetricPointTable(_ context.Context, table string) error {
	return f.ensure(table)
}

func (f *fakeStore) InsertMetricPoints(_ context.Context, table string, rows []store.MetricPointRow) (int64, error) {
	maxTS, out := anyRows(rows, func(r store.MetricPointRow) int64 { return r.Timestamp })
	return f.insert(table, maxTS, out)
}

var _ MetricStore = (*fakeStore)(nil)
