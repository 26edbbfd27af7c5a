package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
)

// defaultBackfillStart is 2023-01-01 UTC, the first bucket fetched when a
// table has no watermark yet.
const defaultBackfillStart = 1672531200

const defaultFundingLimit = 4500

func init() {
	RegisterBuilder("coinglass_funding_rate_ohlc", newFundingRateTask)
	RegisterBuilder("coinglass_oi_weight_ohlc", newOIWeightTask)
}

// fundingOHLCTask syncs funding-rate OHLC history, one table per pair. The
// per-exchange and OI-weighted variants differ only in endpoint and table
// family.
type fundingOHLCTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	backfill  int64
	retention int
	family    string
	fetch     func(ctx context.Context, p coinglass.HistoryParams) ([]coinglass.OHLCRecord, error)
}

func newFundingRateTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requirePairs(c); err != nil {
		return nil, err
	}
	if err := requireExchange(c); err != nil {
		return nil, err
	}
	t := newFundingOHLC(c, deps)
	t.family = "funding_rates_ohlc"
	t.fetch = deps.CoinGlass.FundingRateOHLC
	return t, nil
}

func newOIWeightTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requirePairs(c); err != nil {
		return nil, err
	}
	t := newFundingOHLC(c, deps)
	t.family = "futures_oi_weight_ohlc_high_freq"
	t.fetch = deps.CoinGlass.OIWeightOHLC
	return t, nil
}

func newFundingOHLC(c Conf, deps Deps) *fundingOHLCTask {
	limit := c.Limit
	if limit <= 0 {
		limit = defaultFundingLimit
	}
	backfill := c.BackfillStart
	if backfill <= 0 {
		backfill = defaultBackfillStart
	}
	return &fundingOHLCTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		backfill:  backfill,
		retention: c.RetentionDays,
	}
}

func (t *fundingOHLCTask) Name() string { return t.name }

func (t *fundingOHLCTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *fundingOHLCTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, t.family, t.interval)
	if err := t.deps.Store.EnsureFundingRateTable(ctx, table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, table)
	if err != nil {
		return err
	}
	start := watermark
	if !ok {
		start = t.backfill
	}

	records, err := t.fetch(ctx, coinglass.HistoryParams{
		Exchange:  t.exchange,
		Symbol:    pairSymbol(pair),
		Interval:  t.interval,
		Limit:     t.limit,
		StartTime: start,
	})
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.FundingRateRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.FundingRateRow{
			Symbol:    pairSymbol(pair),
			Exchange:  t.exchange,
			Provider:  providerCoinGlass,
			Open:      rec.Open.Float64(),
			High:      rec.High.Float64(),
			Low:       rec.Low.Float64(),
			Close:     rec.Close.Float64(),
			DateTime:  dateOf(rec.Time),
			Timestamp: rec.Time,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertFundingRates(ctx, table, rows)
	if err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("%s: %s: %d new rows", t.name, table, inserted)

	if t.retention > 0 && len(rows) > 0 {
		cutoff := retentionCutoff(t.retention, rows[0].Timestamp, time.Now())
		if _, err := t.deps.Store.PruneBefore(ctx, table, cutoff); err != nil {
			return err
		}
	}
	return nil
}
