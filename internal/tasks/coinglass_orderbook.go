package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
)

func init() {
	RegisterBuilder("coinglass_orderbook_depth", newOrderbookTask)
	RegisterBuilder("coinglass_bitfinex_margin", newBitfinexMarginTask)
}

// orderbookTask syncs aggregated orderbook bid/ask depth, one table per pair.
type orderbookTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
}

func newOrderbookTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requirePairs(c); err != nil {
		return nil, err
	}
	if err := requireExchange(c); err != nil {
		return nil, err
	}
	limit := c.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &orderbookTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
	}, nil
}

func (t *orderbookTask) Name() string { return t.name }

func (t *orderbookTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *orderbookTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, "spot_aggregated_orderbook_bid_ask", t.interval)
	if err := t.deps.Store.EnsureOrderbookTable(ctx, table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, table)
	if err != nil {
		return err
	}
	params := coinglass.HistoryParams{
		Exchange: t.exchange,
		Symbol:   pairSymbol(pair),
		Interval: t.interval,
		Limit:    t.limit,
	}
	if ok {
		params.StartTime = watermark
	}
	records, err := t.deps.CoinGlass.AggregatedOrderbookHistory(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.OrderbookRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.OrderbookRow{
			Symbol:     pairSymbol(pair),
			Exchange:   t.exchange,
			Provider:   providerCoinGlass,
			Timestamp:  rec.Time,
			Timeframe:  t.interval,
			DateTime:   dateOf(rec.Time),
			CreatedAt:  now,
			BidsUsd:    rec.BidsUsd.Float64(),
			BidsAmount: rec.BidsAmount.Float64(),
			AsksUsd:    rec.AsksUsd.Float64(),
			AsksAmount: rec.AsksAmount.Float64(),
		})
	}

	inserted, err := t.deps.Store.InsertOrderbooks(ctx, table, rows)
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

// bitfinexMarginTask syncs Bitfinex margin long/short history, one table per
// pair. The upstream endpoint is exchange-fixed so no exchange is required.
type bitfinexMarginTask struct {
	name      string
	deps      Deps
	pairs     []string
	interval  string
	limit     int
	retention int
}

func newBitfinexMarginTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requirePairs(c); err != nil {
		return nil, err
	}
	limit := c.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &bitfinexMarginTask{
		name:      c.Name,
		deps:      deps,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
	}, nil
}

func (t *bitfinexMarginTask) Name() string { return t.name }

func (t *bitfinexMarginTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *bitfinexMarginTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, "bitfinex_margin_long_short", t.interval)
	if err := t.deps.Store.EnsureBitfinexMarginTable(ctx, table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, table)
	if err != nil {
		return err
	}
	params := coinglass.HistoryParams{
		Symbol:   pairSymbol(pair),
		Interval: t.interval,
		Limit:    t.limit,
	}
	if ok {
		params.StartTime = watermark
	}
	records, err := t.deps.CoinGlass.BitfinexMarginLongShort(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.BitfinexMarginRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.BitfinexMarginRow{
			Symbol:    pairSymbol(pair),
			Exchange:  "bitfinex",
			Provider:  providerCoinGlass,
			Timestamp: rec.Time,
			Timeframe: t.interval,
			DateTime:  dateOf(rec.Time),
			CreatedAt: now,
			LongQty:   rec.LongQty.Float64(),
			ShortQty:  rec.ShortQty.Float64(),
		})
	}

	inserted, err := t.deps.Store.InsertBitfinexMargins(ctx, table, rows)
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
