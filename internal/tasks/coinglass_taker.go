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
	RegisterBuilder("coinglass_taker_ratio", newTakerRatioTask)
	RegisterBuilder("coinglass_taker_volume", newTakerVolumeTask)
}

// takerRatioTask syncs the aggregated taker buy/sell ratio, one table per pair.
type takerRatioTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
}

func newTakerRatioTask(c Conf, deps Deps) (task.Task, error) {
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
	return &takerRatioTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
	}, nil
}

func (t *takerRatioTask) Name() string { return t.name }

func (t *takerRatioTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *takerRatioTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, "futures_aggregated_taker_history", t.interval)
	if err := t.deps.Store.EnsureTakerRatioTable(ctx, table); err != nil {
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
	records, err := t.deps.CoinGlass.AggregatedTakerBuySellRatio(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.TakerRatioRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.TakerRatioRow{
			Symbol:         pairSymbol(pair),
			Exchange:       t.exchange,
			Provider:       providerCoinGlass,
			Timestamp:      rec.Time,
			Timeframe:      t.interval,
			DateTime:       dateOf(rec.Time),
			CreatedAt:      now,
			LongShortRatio: rec.LongShortRatio.Float64(),
		})
	}

	inserted, err := t.deps.Store.InsertTakerRatios(ctx, table, rows)
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

// takerVolumeTask syncs aggregated taker buy/sell volume, one table per pair.
type takerVolumeTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
}

func newTakerVolumeTask(c Conf, deps Deps) (task.Task, error) {
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
	return &takerVolumeTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
	}, nil
}

func (t *takerVolumeTask) Name() string { return t.name }

func (t *takerVolumeTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *takerVolumeTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, "futures_aggregated_taker_volume_history", t.interval)
	if err := t.deps.Store.EnsureTakerVolumeTable(ctx, table); err != nil {
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
	records, err := t.deps.CoinGlass.AggregatedTakerBuySellVolume(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.TakerVolumeRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.TakerVolumeRow{
			Symbol:    pairSymbol(pair),
			Exchange:  t.exchange,
			Provider:  providerCoinGlass,
			Timestamp: rec.Time,
			Timeframe: t.interval,
			DateTime:  dateOf(rec.Time),
			CreatedAt: now,
			Buy:       rec.Buy.Float64(),
			Sell:      rec.Sell.Float64(),
		})
	}

	inserted, err := t.deps.Store.InsertTakerVolumes(ctx, table, rows)
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
