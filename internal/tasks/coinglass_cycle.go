package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
)

func init() {
	RegisterBuilder("coinglass_puell_multiple", newPuellMultipleTask)
	RegisterBuilder("coinglass_pi_cycle_top", newPiCycleTask)
	RegisterBuilder("coinglass_rainbow_chart", newRainbowChartTask)
	RegisterBuilder("coinglass_golden_ratio", newGoldenRatioTask)
	RegisterBuilder("coinglass_stock_to_flow", newStockToFlowTask)
	RegisterBuilder("coinglass_two_hundred_week_ma", newTwoHundredWeekMATask)
	RegisterBuilder("coinglass_stablecoin_market_cap", newStablecoinMarketCapTask)
}

// puellMultipleTask syncs the daily Puell Multiple.
type puellMultipleTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newPuellMultipleTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_puell_multiple_1d"
	}
	return &puellMultipleTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *puellMultipleTask) Name() string { return t.name }

func (t *puellMultipleTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsurePuellMultipleTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.PuellMultiple(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.PuellMultipleRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.PuellMultipleRow{
			Provider:      providerCoinGlass,
			Price:         rec.Price.Float64(),
			PuellMultiple: rec.PuellMultiple.Float64(),
			BuyQty:        rec.BuyQty.Float64(),
			SellQty:       rec.SellQty.Float64(),
			DateTime:      dateOf(rec.Date),
			Timestamp:     rec.Date,
			CreatedAt:     now,
		})
	}

	inserted, err := t.deps.Store.InsertPuellMultiples(ctx, t.table, rows)
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

// piCycleTask syncs the Pi Cycle top indicator. The row's date field is
// unix seconds but create time is milliseconds; create time keys the table.
type piCycleTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newPiCycleTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_pi_cycle_top_indicator_1d"
	}
	return &piCycleTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *piCycleTask) Name() string { return t.name }

func (t *piCycleTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsurePiCycleTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.PiCycleTopIndicator(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.PiCycleRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.CreateTime <= watermark {
			continue
		}
		rows = append(rows, store.PiCycleRow{
			Provider:  providerCoinGlass,
			Price:     rec.Price.Float64(),
			MA110:     rec.MA110.Float64(),
			MA350Mu2:  rec.MA350Mu2.Float64(),
			DateTime:  dateOf(rec.Date),
			Timestamp: rec.CreateTime,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertPiCycles(ctx, t.table, rows)
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

// rainbowChartTask syncs the bitcoin rainbow chart bands.
type rainbowChartTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newRainbowChartTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_bitcoin_rainbow_chart_1d"
	}
	return &rainbowChartTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *rainbowChartTask) Name() string { return t.name }

func (t *rainbowChartTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureRainbowChartTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.BitcoinRainbowChart(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.RainbowChartRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Timestamp <= watermark {
			continue
		}
		rows = append(rows, store.RainbowChartRow{
			Provider:        providerCoinGlass,
			BTCPrice:        numPtr(rec.BTCPrice),
			ModelPrice:      numPtr(rec.ModelPrice),
			FireSale:        numPtr(rec.FireSale),
			Buy:             numPtr(rec.Buy),
			Accumulate:      numPtr(rec.Accumulate),
			StillCheap:      numPtr(rec.StillCheap),
			Hold:            numPtr(rec.Hold),
			IsThisABubble:   numPtr(rec.IsThisABubble),
			FOMOIntensifies: numPtr(rec.FOMOIntensifies),
			SellSeriously:   numPtr(rec.SellSeriouslySell),
			MaximumBubble:   numPtr(rec.MaximumBubbleTerritory),
			DateTime:        dateOf(rec.Timestamp),
			Timestamp:       rec.Timestamp,
			CreatedAt:       now,
		})
	}

	inserted, err := t.deps.Store.InsertRainbowCharts(ctx, t.table, rows)
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

// goldenRatioTask syncs the golden ratio multiplier bands.
type goldenRatioTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newGoldenRatioTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_golden_ratio_multiplier_1d"
	}
	return &goldenRatioTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *goldenRatioTask) Name() string { return t.name }

func (t *goldenRatioTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureGoldenRatioTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.GoldenRatioMultiplier(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.GoldenRatioRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.CreateTime <= watermark {
			continue
		}
		rows = append(rows, store.GoldenRatioRow{
			Provider:         providerCoinGlass,
			Price:            rec.Price.Float64(),
			MA350:            rec.MA350.Float64(),
			TwoLowBullHigh:   rec.TwoLowBullHigh.Float64(),
			ThreeLowBullHigh: numPtr(rec.ThreeLowBullHigh),
			AccumulationHigh: rec.AccumulationHigh.Float64(),
			X3:               numPtr(rec.X3),
			X5:               numPtr(rec.X5),
			X8:               numPtr(rec.X8),
			X13:              numPtr(rec.X13),
			X21:              numPtr(rec.X21),
			DateTime:         dateOf(rec.CreateTime),
			Timestamp:        rec.CreateTime,
			CreatedAt:        now,
		})
	}

	inserted, err := t.deps.Store.InsertGoldenRatios(ctx, t.table, rows)
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

// stockToFlowTask syncs the daily stock-to-flow model.
type stockToFlowTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newStockToFlowTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_stock_to_flow_1d"
	}
	return &stockToFlowTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *stockToFlowTask) Name() string { return t.name }

func (t *stockToFlowTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureStockToFlowTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.StockToFlow(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.StockToFlowRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.StockToFlowRow{
			Provider:    providerCoinGlass,
			Price:       rec.Price.Float64(),
			NextHalving: rec.NextHalving.Float64(),
			DateTime:    dateOf(rec.Date),
			Timestamp:   rec.Date,
			CreatedAt:   now,
		})
	}

	inserted, err := t.deps.Store.InsertStockToFlows(ctx, t.table, rows)
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

// twoHundredWeekMATask syncs the 200-week moving average heatmap. The
// default table name keeps the upstream path's misspelling so existing
// dashboards keep resolving.
type twoHundredWeekMATask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newTwoHundredWeekMATask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_tow_hundred_week_moving_avg_heatmap_1d"
	}
	return &twoHundredWeekMATask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *twoHundredWeekMATask) Name() string { return t.name }

func (t *twoHundredWeekMATask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureTwoHundredWeekMATable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.TwoHundredWeekMAHeatmap(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.TwoHundredWeekMARow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.TwoHundredWeekMARow{
			Provider:  providerCoinGlass,
			Price:     rec.Price.Float64(),
			MA1440:    rec.MA1440.Float64(),
			MA1440IP:  rec.MA1440IP.Float64(),
			BuyQty:    rec.BuyQty.Float64(),
			SellQty:   rec.SellQty.Float64(),
			DateTime:  dateOf(rec.Date),
			Timestamp: rec.Date,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertTwoHundredWeekMAs(ctx, t.table, rows)
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

// stablecoinMarketCapTask syncs the stablecoin market cap history.
type stablecoinMarketCapTask struct {
	name      string
	deps      Deps
	table     string
	retention int
}

func newStablecoinMarketCapTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_stablecoin_market_cap_1d"
	}
	return &stablecoinMarketCapTask{
		name:      c.Name,
		deps:      deps,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *stablecoinMarketCapTask) Name() string { return t.name }

func (t *stablecoinMarketCapTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureStablecoinMarketCapTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.StablecoinMarketCapHistory(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.StablecoinMarketCapRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.StablecoinMarketCapRow{
			Provider:  providerCoinGlass,
			MarketCap: rec.MarketCap.Float64(),
			BTCPrice:  rec.BTCPrice.Float64(),
			DateTime:  dateOf(rec.Date),
			Timestamp: rec.Date,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertStablecoinMarketCaps(ctx, t.table, rows)
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
