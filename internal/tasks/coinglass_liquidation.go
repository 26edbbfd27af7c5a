package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
)

const defaultHistoryLimit = 1000

func init() {
	RegisterBuilder("coinglass_liquidation_aggregated", newLiquidationTask)
	RegisterBuilder("coinglass_liquidation_exchange_list", newLiquidationExchangeListTask)
	RegisterBuilder("coinglass_liquidation_heatmap", newLiquidationHeatmapTask)
}

// liquidationTask syncs aggregated liquidation history for a set of pairs
// into one shared table.
type liquidationTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
	table     string
}

func newLiquidationTask(c Conf, deps Deps) (task.Task, error) {
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
	table := c.Table
	if table == "" {
		table = "coinglass_futures_liquidation_aggregated_history_" + c.Interval
	}
	return &liquidationTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
		table:     table,
	}, nil
}

func (t *liquidationTask) Name() string { return t.name }

func (t *liquidationTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureLiquidationTable(ctx, t.table); err != nil {
		return err
	}
	err := runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
	if err != nil {
		return err
	}
	if t.retention > 0 {
		cutoff := retentionCutoff(t.retention, time.Now().Unix(), time.Now())
		if _, err := t.deps.Store.PruneBefore(ctx, t.table, cutoff); err != nil {
			return err
		}
	}
	return nil
}

func (t *liquidationTask) syncPair(ctx context.Context, pair string) error {
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	params := coinglass.HistoryParams{
		Symbol:   pairBase(pair),
		Interval: t.interval,
		Limit:    t.limit,
	}
	if ok {
		params.StartTime = watermark
	}
	records, err := t.deps.CoinGlass.LiquidationAggregatedHistory(ctx, params)
	if err != nil {
		return err
	}

	// All pairs share one table, so the watermark only bounds the fetch.
	// Filtering rows against it here would drop every pair that syncs after
	// the first; the table's unique key absorbs the overlap instead.
	now := time.Now().Unix()
	rows := make([]store.LiquidationRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.LiquidationRow{
			Symbol:              pair,
			Exchange:            t.exchange,
			Provider:            providerCoinGlass,
			Timestamp:           rec.Timestamp,
			LongLiquidationUsd:  rec.LongLiquidationUsd.Float64(),
			ShortLiquidationUsd: rec.ShortLiquidationUsd.Float64(),
			Timeframe:           t.interval,
			DateTime:            dateOf(rec.Timestamp),
			CreatedAt:           now,
		})
	}

	inserted, err := t.deps.Store.InsertLiquidations(ctx, t.table, rows)
	if err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("%s: %s: %d new rows for %s", t.name, t.table, inserted, pair)
	return nil
}

// liquidationExchangeListTask snapshots per-exchange liquidation totals for
// a base symbol. The window rides the interval setting, "1h" by default.
type liquidationExchangeListTask struct {
	name      string
	deps      Deps
	symbol    string
	window    string
	table     string
	retention int
}

func newLiquidationExchangeListTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	symbol := c.Symbol
	if symbol == "" {
		symbol = "BTC"
	}
	table := c.Table
	if table == "" {
		table = "coinglass_futures_liquidation_exchange_list_" + c.Interval
	}
	return &liquidationExchangeListTask{
		name:      c.Name,
		deps:      deps,
		symbol:    symbol,
		window:    c.Interval,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *liquidationExchangeListTask) Name() string { return t.name }

func (t *liquidationExchangeListTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureLiquidationExchangeListTable(ctx, t.table); err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.LiquidationExchangeList(ctx, t.symbol, t.window)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.LiquidationExchangeListRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.LiquidationExchangeListRow{
			Symbol:      t.symbol,
			Exchange:    rec.ExchangeName,
			Provider:    providerCoinGlass,
			LongVolUsd:  rec.LongVolUsd.Float64(),
			ShortVolUsd: rec.ShortVolUsd.Float64(),
			Timeframe:   t.window,
			DateTime:    dateOf(now),
			Timestamp:   now,
			CreatedAt:   now,
		})
	}

	inserted, err := t.deps.Store.InsertLiquidationExchangeLists(ctx, t.table, rows)
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

// liquidationHeatmapTask snapshots the model2 liquidation heatmap for one
// exchange and base symbol. Each run stamps the fetch time; price levels
// join the unique key so a snapshot lands whole.
type liquidationHeatmapTask struct {
	name      string
	deps      Deps
	exchange  string
	symbol    string
	window    string
	table     string
	retention int
}

func newLiquidationHeatmapTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	if err := requireExchange(c); err != nil {
		return nil, err
	}
	symbol := c.Symbol
	if symbol == "" {
		symbol = "BTC"
	}
	table := c.Table
	if table == "" {
		table = "coinglass_futures_liquidation_heatmap_" + c.Interval
	}
	return &liquidationHeatmapTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		symbol:    symbol,
		window:    c.Interval,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *liquidationHeatmapTask) Name() string { return t.name }

func (t *liquidationHeatmapTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureLiquidationHeatmapTable(ctx, t.table); err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.LiquidationHeatmapModel2(ctx, t.exchange, t.symbol, t.window)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.LiquidationHeatmapRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.LiquidationHeatmapRow{
			Symbol:      t.symbol,
			Exchange:    t.exchange,
			Provider:    providerCoinGlass,
			Price:       rec.Price.Float64(),
			LongVolUsd:  rec.LongVolUsd.Float64(),
			ShortVolUsd: rec.ShortVolUsd.Float64(),
			Timeframe:   t.window,
			DateTime:    dateOf(now),
			Timestamp:   now,
			CreatedAt:   now,
		})
	}

	inserted, err := t.deps.Store.InsertLiquidationHeatmaps(ctx, t.table, rows)
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
