package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
)

func init() {
	RegisterBuilder("coinglass_coins_markets", newCoinsMarketsTask)
}

// coinsMarketsTask snapshots the futures market screener for one exchange.
// The upstream endpoint has no history, so each run stamps the fetch time
// and appends one row per listed coin.
type coinsMarketsTask struct {
	name      string
	deps      Deps
	exchange  string
	table     string
	retention int
}

func newCoinsMarketsTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requireExchange(c); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_coins_markets"
	}
	return &coinsMarketsTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *coinsMarketsTask) Name() string { return t.name }

func (t *coinsMarketsTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureCoinsMarketsTable(ctx, t.table); err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.CoinsMarkets(ctx, t.exchange)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.CoinsMarketsRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.CoinsMarketsRow{
			Symbol:                 rec.Symbol,
			Exchange:               t.exchange,
			Provider:               providerCoinGlass,
			Price:                  rec.Price.Float64(),
			MarketCap:              rec.MarketCap.Float64(),
			OIMarketCapRatio:       rec.OIMarketCapRatio.Float64(),
			AvgFundingRateByOI:     rec.AvgFundingRateByOI.Float64(),
			AvgFundingRateByVol:    rec.AvgFundingRateByVol.Float64(),
			OpenInterest:           rec.OpenInterest.Float64(),
			OpenInterestAmount:     rec.OpenInterestAmount.Float64(),
			OIVolRatio:             rec.OIVolRatio.Float64(),
			VolUsd:                 rec.VolUsd.Float64(),
			PriceChangePercent24h:  numPtr(rec.PriceChangePercent24h),
			OIChangePercent24h:     numPtr(rec.OIChangePercent24h),
			VolChangePercent24h:    numPtr(rec.VolChangePercent24h),
			LongVolUsd24h:          numPtr(rec.LongVolUsd24h),
			ShortVolUsd24h:         numPtr(rec.ShortVolUsd24h),
			LiquidationUsd24h:      numPtr(rec.LiquidationUsd24h),
			LongLiquidationUsd24h:  numPtr(rec.LongLiquidationUsd24h),
			ShortLiquidationUsd24h: numPtr(rec.ShortLiquidationUsd24h),
			DateTime:               dateOf(now),
			Timestamp:              now,
			CreatedAt:              now,
		})
	}

	inserted, err := t.deps.Store.InsertCoinsMarkets(ctx, t.table, rows)
	if err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("%s: %s: %d new rows", t.name, t.table, inserted)

	if t.retention > 0 && len(rows) > 0 {
		cutoff := retentionCutoff(t.retention, rows[0].Timestamp, time.Now())
		if _, err := t.deps.Store.PruneBefore(ctx, t.table, cutoff); err != nil {
			return err
		}
	}
	return nil
}
