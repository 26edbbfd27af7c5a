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
	RegisterBuilder("coinglass_option_info", newOptionInfoTask)
	RegisterBuilder("coinglass_fear_greed", newFearGreedTask)
	RegisterBuilder("coinglass_coinbase_premium", newCoinbasePremiumTask)
	RegisterBuilder("coinglass_ahr999", newAHR999Task)
	RegisterBuilder("coinglass_bubble_index", newBubbleIndexTask)
	RegisterBuilder("coinglass_profitable_days", newProfitableDaysTask)
}

// optionInfoTask snapshots per-exchange option open interest. The upstream
// endpoint returns the current state only, so every run appends at most one
// bucket per exchange.
type optionInfoTask struct {
	name      string
	deps      Deps
	symbol    string
	table     string
	retention int
}

func newOptionInfoTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	symbol := c.Symbol
	if symbol == "" {
		symbol = "BTC"
	}
	table := c.Table
	if table == "" {
		table = "coinglass_option_info_1h"
	}
	return &optionInfoTask{
		name:      c.Name,
		deps:      deps,
		symbol:    symbol,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *optionInfoTask) Name() string { return t.name }

func (t *optionInfoTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureOptionInfoTable(ctx, t.table); err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.OptionInfo(ctx, t.symbol)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.OptionInfoRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, store.OptionInfoRow{
			ExchangeName:        rec.ExchangeName,
			OpenInterest:        rec.OpenInterest.Float64(),
			Rate:                rec.Rate.Float64(),
			H24Change:           rec.H24Change.Float64(),
			ExchangeLogo:        rec.ExchangeLogo,
			OpenInterestUsd:     rec.OpenInterestUsd.Float64(),
			VolUsd:              rec.VolUsd.Float64(),
			H24VolChangePercent: rec.H24VolChangePercent.Float64(),
			DateTime:            dateOf(rec.Date),
			Timestamp:           rec.Date,
			CreatedAt:           now,
		})
	}

	inserted, err := t.deps.Store.InsertOptionInfos(ctx, t.table, rows)
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

// fearGreedTask syncs the fear & greed index. The upstream payload is
// column-oriented so the three arrays are zipped positionally.
type fearGreedTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newFearGreedTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_crypto_fear_greed_history"
	}
	return &fearGreedTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *fearGreedTask) Name() string { return t.name }

func (t *fearGreedTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureFearGreedTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	history, err := t.deps.CoinGlass.FearGreedIndex(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.FearGreedRow, 0, len(history.Dates))
	for i, ts := range history.Dates {
		if i >= len(history.Values) || i >= len(history.Prices) {
			break
		}
		if ok && ts <= watermark {
			continue
		}
		rows = append(rows, store.FearGreedRow{
			Provider:  providerCoinGlass,
			Price:     history.Prices[i].Float64(),
			Value:     history.Values[i].Float64(),
			DateTime:  dateOf(ts),
			Timestamp: ts,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertFearGreeds(ctx, t.table, rows)
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

// coinbasePremiumTask syncs the Coinbase premium index.
type coinbasePremiumTask struct {
	name      string
	deps      Deps
	interval  string
	limit     int
	table     string
	retention int
}

func newCoinbasePremiumTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	limit := c.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	table := c.Table
	if table == "" {
		table = "coinglass_coinbase_premium_index_" + c.Interval
	}
	return &coinbasePremiumTask{
		name:      c.Name,
		deps:      deps,
		interval:  c.Interval,
		limit:     limit,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *coinbasePremiumTask) Name() string { return t.name }

func (t *coinbasePremiumTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureCoinbasePremiumTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	params := coinglass.HistoryParams{
		Interval: t.interval,
		Limit:    t.limit,
	}
	if ok {
		params.StartTime = watermark
	}
	records, err := t.deps.CoinGlass.CoinbasePremiumIndex(ctx, params)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.CoinbasePremiumRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Time <= watermark {
			continue
		}
		rows = append(rows, store.CoinbasePremiumRow{
			Provider:    providerCoinGlass,
			Timestamp:   rec.Time,
			Premium:     rec.Premium.Float64(),
			PremiumRate: rec.PremiumRate.Float64(),
			DateTime:    dateOf(rec.Time),
			CreatedAt:   now,
		})
	}

	inserted, err := t.deps.Store.InsertCoinbasePremiums(ctx, t.table, rows)
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

// ahr999Task syncs the daily AHR999 accumulation index.
type ahr999Task struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newAHR999Task(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_ahr999_1d"
	}
	return &ahr999Task{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *ahr999Task) Name() string { return t.name }

func (t *ahr999Task) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureAHR999Table(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.AHR999(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.AHR999Row, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.AHR999Row{
			Provider:  providerCoinGlass,
			Avg:       rec.Avg.Float64(),
			Value:     rec.Value.Float64(),
			AHR999:    rec.AHR999.Float64(),
			DateTime:  dateOf(rec.Date),
			Timestamp: rec.Date,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertAHR999s(ctx, t.table, rows)
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

// bubbleIndexTask syncs the daily bitcoin bubble index.
type bubbleIndexTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newBubbleIndexTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_bitcoin_bubble_index_1d"
	}
	return &bubbleIndexTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *bubbleIndexTask) Name() string { return t.name }

func (t *bubbleIndexTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureBubbleIndexTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.BitcoinBubbleIndex(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.BubbleIndexRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.BubbleIndexRow{
			Provider:      providerCoinGlass,
			Price:         rec.Price.Float64(),
			Index:         rec.Index.Float64(),
			GoogleTrend:   rec.GoogleTrend.Float64(),
			Difficulty:    rec.Difficulty.Float64(),
			Transactions:  rec.Transactions.Float64(),
			SentByAddress: rec.SentByAddress.Float64(),
			Tweets:        rec.Tweets.Float64(),
			DateTime:      dateOf(rec.Date),
			Timestamp:     rec.Date,
			CreatedAt:     now,
		})
	}

	inserted, err := t.deps.Store.InsertBubbleIndexes(ctx, t.table, rows)
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

// profitableDaysTask syncs the daily bitcoin-profitable-days index.
type profitableDaysTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newProfitableDaysTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_bitcoin_profitable_days_1d"
	}
	return &profitableDaysTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *profitableDaysTask) Name() string { return t.name }

func (t *profitableDaysTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureProfitableDaysTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.BitcoinProfitableDays(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.ProfitableDaysRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.CreateTime <= watermark {
			continue
		}
		rows = append(rows, store.ProfitableDaysRow{
			Provider:  providerCoinGlass,
			Price:     rec.Price.Float64(),
			Side:      rec.Side.Float64(),
			DateTime:  dateOf(rec.CreateTime),
			Timestamp: rec.CreateTime,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertProfitableDays(ctx, t.table, rows)
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
