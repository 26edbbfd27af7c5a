package tasks

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
)

const defaultETFAsset = "bitcoin"

func init() {
	RegisterBuilder("coinglass_etf_flow", newETFFlowTask)
	RegisterBuilder("coinglass_etf_net_assets", newETFNetAssetsTask)
	RegisterBuilder("coinglass_etf_premium_discount", newETFPremiumDiscountTask)
}

func etfAsset(c Conf) string {
	if c.Asset != "" {
		return c.Asset
	}
	return defaultETFAsset
}

// etfFlowTask syncs daily ETF flow history, one row per fund per day.
type etfFlowTask struct {
	name      string
	deps      Deps
	asset     string
	table     string
	retention int
}

func newETFFlowTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_etf_flow_history"
	}
	return &etfFlowTask{
		name:      c.Name,
		deps:      deps,
		asset:     etfAsset(c),
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *etfFlowTask) Name() string { return t.name }

func (t *etfFlowTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureETFFlowTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.ETFFlowHistory(ctx, t.asset)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	var rows []store.ETFFlowRow
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		for _, fund := range rec.List {
			row := store.ETFFlowRow{
				Provider:   providerCoinGlass,
				ChangeUsd:  rec.ChangeUsd.Float64(),
				ClosePrice: rec.ClosePrice.Float64(),
				Price:      rec.Price.Float64(),
				ListTicker: fund.Ticker,
				DateTime:   dateOf(rec.Date),
				Timestamp:  rec.Date,
				CreatedAt:  now,
			}
			if fund.ChangeUsd != nil {
				v := fund.ChangeUsd.Float64()
				row.ListChangeUsd = &v
			}
			rows = append(rows, row)
		}
	}

	inserted, err := t.deps.Store.InsertETFFlows(ctx, t.table, rows)
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

// etfNetAssetsTask syncs daily ETF net-assets history.
type etfNetAssetsTask struct {
	name      string
	deps      Deps
	asset     string
	table     string
	retention int
}

func newETFNetAssetsTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_etf_netassets_history"
	}
	return &etfNetAssetsTask{
		name:      c.Name,
		deps:      deps,
		asset:     etfAsset(c),
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *etfNetAssetsTask) Name() string { return t.name }

func (t *etfNetAssetsTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureETFNetAssetsTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.ETFNetAssetsHistory(ctx, t.asset)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.ETFNetAssetsRow, 0, len(records))
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		rows = append(rows, store.ETFNetAssetsRow{
			Provider:  providerCoinGlass,
			NetAssets: rec.NetAssets.Float64(),
			Price:     rec.Price.Float64(),
			DateTime:  dateOf(rec.Date),
			Timestamp: rec.Date,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertETFNetAssets(ctx, t.table, rows)
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

// etfPremiumDiscountTask syncs daily ETF premium/discount history, one row
// per fund per day.
type etfPremiumDiscountTask struct {
	name      string
	deps      Deps
	asset     string
	table     string
	retention int
}

func newETFPremiumDiscountTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	table := c.Table
	if table == "" {
		table = "coinglass_etf_premium_discount_history"
	}
	return &etfPremiumDiscountTask{
		name:      c.Name,
		deps:      deps,
		asset:     etfAsset(c),
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *etfPremiumDiscountTask) Name() string { return t.name }

func (t *etfPremiumDiscountTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureETFPremiumDiscountTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	records, err := t.deps.CoinGlass.ETFPremiumDiscountHistory(ctx, t.asset)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	var rows []store.ETFPremiumDiscountRow
	for _, rec := range records {
		if ok && rec.Date <= watermark {
			continue
		}
		for _, fund := range rec.List {
			rows = append(rows, store.ETFPremiumDiscountRow{
				Provider:               providerCoinGlass,
				Nav:                    fund.Nav.Float64(),
				MarketPrice:            fund.MarketPrice.Float64(),
				PremiumDiscountPercent: fund.PremiumDiscountPercent.Float64(),
				Ticker:                 fund.Ticker,
				DateTime:               dateOf(rec.Date),
				Timestamp:              rec.Date,
				CreatedAt:              now,
			})
		}
	}

	inserted, err := t.deps.Store.InsertETFPremiumDiscounts(ctx, t.table, rows)
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
