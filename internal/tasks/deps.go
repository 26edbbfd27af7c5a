package tasks

import (
	"context"
	"time"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
	"github.com/socialsmoker223/quants-lab/pkg/glassnode"
)

// MetricStore is the slice of the store the downloaders depend on. Tests
// substitute a fake; production passes *store.Store.
type MetricStore interface {
	LastTimestamp(ctx context.Context, table string) (int64, bool, error)
	PruneBefore(ctx context.Context, table string, cutoff int64) (int64, error)

	EnsureFundingRateTable(ctx context.Context, table string) error
	InsertFundingRates(ctx context.Context, table string, rows []store.FundingRateRow) (int64, error)
	EnsureLiquidationTable(ctx context.Context, table string) error
	InsertLiquidations(ctx context.Context, table string, rows []store.LiquidationRow) (int64, error)
	EnsureGlobalAccountRatioTable(ctx context.Context, table string) error
	InsertGlobalAccountRatios(ctx context.Context, table string, rows []store.GlobalAccountRatioRow) (int64, error)
	EnsureTopRatioTable(ctx context.Context, table string) error
	InsertTopRatios(ctx context.Context, table string, rows []store.TopRatioRow) (int64, error)
	EnsureTakerRatioTable(ctx context.Context, table string) error
	InsertTakerRatios(ctx context.Context, table string, rows []store.TakerRatioRow) (int64, error)
	EnsureTakerVolumeTable(ctx context.Context, table string) error
	InsertTakerVolumes(ctx context.Context, table string, rows []store.TakerVolumeRow) (int64, error)
	EnsureOrderbookTable(ctx context.Context, table string) error
	InsertOrderbooks(ctx context.Context, table string, rows []store.OrderbookRow) (int64, error)
	EnsureBitfinexMarginTable(ctx context.Context, table string) error
	InsertBitfinexMargins(ctx context.Context, table string, rows []store.BitfinexMarginRow) (int64, error)
	EnsureETFNetAssetsTable(ctx context.Context, table string) error
	InsertETFNetAssets(ctx context.Context, table string, rows []store.ETFNetAssetsRow) (int64, error)
	EnsureETFFlowTable(ctx context.Context, table string) error
	InsertETFFlows(ctx context.Context, table string, rows []store.ETFFlowRow) (int64, error)
	EnsureETFPremiumDiscountTable(ctx context.Context, table string) error
	InsertETFPremiumDiscounts(ctx context.Context, table string, rows []store.ETFPremiumDiscountRow) (int64, error)
	EnsureOptionInfoTable(ctx context.Context, table string) error
	InsertOptionInfos(ctx context.Context, table string, rows []store.OptionInfoRow) (int64, error)
	EnsureFearGreedTable(ctx context.Context, table string) error
	InsertFearGreeds(ctx context.Context, table string, rows []store.FearGreedRow) (int64, error)
	EnsureCoinbasePremiumTable(ctx context.Context, table string) error
	InsertCoinbasePremiums(ctx context.Context, table string, rows []store.CoinbasePremiumRow) (int64, error)
	EnsureAHR999Table(ctx context.Context, table string) error
	InsertAHR999s(ctx context.Context, table string, rows []store.AHR999Row) (int64, error)
	EnsureBubbleIndexTable(ctx context.Context, table string) error
	InsertBubbleIndexes(ctx context.Context, table string, rows []store.BubbleIndexRow) (int64, error)
	EnsureProfitableDaysTable(ctx context.Context, table string) error
	InsertProfitableDays(ctx context.Context, table string, rows []store.ProfitableDaysRow) (int64, error)
	EnsurePuellMultipleTable(ctx context.Context, table string) error
	InsertPuellMultiples(ctx context.Context, table string, rows []store.PuellMultipleRow) (int64, error)
	EnsurePiCycleTable(ctx context.Context, table string) error
	InsertPiCycles(ctx context.Context, table string, rows []store.PiCycleRow) (int64, error)
	EnsureRainbowChartTable(ctx context.Context, table string) error
	InsertRainbowCharts(ctx context.Context, table string, rows []store.RainbowChartRow) (int64, error)
	EnsureGoldenRatioTable(ctx context.Context, table string) error
	InsertGoldenRatios(ctx context.Context, table string, rows []store.GoldenRatioRow) (int64, error)
	EnsureStockToFlowTable(ctx context.Context, table string) error
	InsertStockToFlows(ctx context.Context, table string, rows []store.StockToFlowRow) (int64, error)
	EnsureTwoHundredWeekMATable(ctx context.Context, table string) error
	InsertTwoHundredWeekMAs(ctx context.Context, table string, rows []store.TwoHundredWeekMARow) (int64, error)
	EnsureStablecoinMarketCapTable(ctx context.Context, table string) error
	InsertStablecoinMarketCaps(ctx context.Context, table string, rows []store.StablecoinMarketCapRow) (int64, error)
	EnsureCoinsMarketsTable(ctx context.Context, table string) error
	InsertCoinsMarkets(ctx context.Context, table string, rows []store.CoinsMarketsRow) (int64, error)
	EnsureOptionExchangeVolTable(ctx context.Context, table string) error
	InsertOptionExchangeVols(ctx context.Context, table string, rows []store.OptionExchangeVolRow) (int64, error)
	EnsureLiquidationExchangeListTable(ctx context.Context, table string) error
	InsertLiquidationExchangeLists(ctx context.Context, table string, rows []store.LiquidationExchangeListRow) (int64, error)
	EnsureLiquidationHeatmapTable(ctx context.Context, table string) error
	InsertLiquidationHeatmaps(ctx context.Context, table string, rows []store.LiquidationHeatmapRow) (int64, error)
	EnsureMetricPointTable(ctx context.Context, table string) error
	InsertMetricPoints(ctx context.Context, table string, rows []store.MetricPointRow) (int64, error)
}

var _ MetricStore = (*store.Store)(nil)

// Deps carries the shared dependencies of the downloader fleet.
type Deps struct {
	Store     MetricStore
	CoinGlass *coinglass.Client
	Glassnode *glassnode.Client

	// PairDelay is the pause between per-pair fetches, a courtesy to the
	// upstream rate limiter. Defaults to one second.
	PairDelay time.Duration
}

const defaultPairDelay = time.Second

func (d Deps) pairDelay() time.Duration {
	if d.PairDelay > 0 {
		return d.PairDelay
	}
	return defaultPairDelay
}

// sleepBetween pauses between pairs, returning early on cancellation.
func sleepBetween(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
