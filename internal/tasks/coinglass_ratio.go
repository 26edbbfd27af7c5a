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
	RegisterBuilder("coinglass_global_account_ratio", newGlobalAccountRatioTask)
	RegisterBuilder("coinglass_top_account_ratio", newTopAccountRatioTask)
	RegisterBuilder("coinglass_top_position_ratio", newTopPositionRatioTask)
}

// globalAccountRatioTask records observed global long/short account-ratio
// buckets, one table per pair.
type globalAccountRatioTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
}

func newGlobalAccountRatioTask(c Conf, deps Deps) (task.Task, error) {
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
	return &globalAccountRatioTask{
		name:      c.Name,
		deps:      deps,
		exchange:  c.Exchange,
		pairs:     c.Pairs,
		interval:  c.Interval,
		limit:     limit,
		retention: c.RetentionDays,
	}, nil
}

func (t *globalAccountRatioTask) Name() string { return t.name }

func (t *globalAccountRatioTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *globalAccountRatioTask) syncPair(ctx context.Context, pair string) error {
	table := coinglassPairTable(pair, "futures_global_long_short_account_ratio", t.interval)
	if err := t.deps.Store.EnsureGlobalAccountRatioTable(ctx, table); err != nil {
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
	records, err := t.deps.CoinGlass.GlobalLongShortAccountRatio(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.GlobalAccountRatioRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.GlobalAccountRatioRow{
			Symbol:    pairSymbol(pair),
			Exchange:  t.exchange,
			Provider:  providerCoinGlass,
			Timestamp: rec.Time,
			Timeframe: t.interval,
			DateTime:  dateOf(rec.Time),
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertGlobalAccountRatios(ctx, table, rows)
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

// topRatioTask syncs top-trader ratio history into one shared table. The
// account and position variants differ only in endpoint and default table.
type topRatioTask struct {
	name      string
	deps      Deps
	exchange  string
	pairs     []string
	interval  string
	limit     int
	retention int
	table     string
	fetch     func(ctx context.Context, p coinglass.HistoryParams) ([]coinglass.TopRatioRecord, error)
}

func newTopAccountRatioTask(c Conf, deps Deps) (task.Task, error) {
	t, err := newTopRatio(c, deps, "coinglass_futures_top_long_short_account_ratio_history_"+c.Interval)
	if err != nil {
		return nil, err
	}
	t.fetch = deps.CoinGlass.TopLongShortAccountRatio
	return t, nil
}

func newTopPositionRatioTask(c Conf, deps Deps) (task.Task, error) {
	t, err := newTopRatio(c, deps, "coinglass_futures_top_long_short_position_ratio_history_"+c.Interval)
	if err != nil {
		return nil, err
	}
	t.fetch = deps.CoinGlass.TopLongShortPositionRatio
	return t, nil
}

func newTopRatio(c Conf, deps Deps, defaultTable string) (*topRatioTask, error) {
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
		table = defaultTable
	}
	return &topRatioTask{
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

func (t *topRatioTask) Name() string { return t.name }

func (t *topRatioTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureTopRatioTable(ctx, t.table); err != nil {
		return err
	}
	if err := runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair); err != nil {
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

func (t *topRatioTask) syncPair(ctx context.Context, pair string) error {
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
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
	records, err := t.fetch(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.TopRatioRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.TopRatioRow{
			Symbol:         pairSymbol(pair),
			Exchange:       t.exchange,
			Provider:       providerCoinGlass,
			Timestamp:      rec.Timestamp,
			Timeframe:      t.interval,
			DateTime:       dateOf(rec.Timestamp),
			CreatedAt:      now,
			LongAccount:    rec.LongAccount.Float64(),
			ShortAccount:   rec.ShortAccount.Float64(),
			LongShortRatio: rec.LongShortRatio.Float64(),
		})
	}

	inserted, err := t.deps.Store.InsertTopRatios(ctx, t.table, rows)
	if err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("%s: %s: %d new rows for %s", t.name, t.table, inserted, pair)
	return nil
}
