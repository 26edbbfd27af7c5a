package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
)

func init() {
	RegisterBuilder("coinglass_option_exchange_volume", newOptionExchangeVolumeTask)
}

// optionExchangeVolumeTask syncs the per-exchange option volume history.
// The payload is column-oriented: a date list, a price list and a map of
// per-venue series, zipped positionally into one row per day.
type optionExchangeVolumeTask struct {
	name      string
	deps      Deps
	symbol    string
	table     string
	retention int
}

func newOptionExchangeVolumeTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireCoinGlass(c, deps); err != nil {
		return nil, err
	}
	symbol := c.Symbol
	if symbol == "" {
		symbol = "BTC"
	}
	table := c.Table
	if table == "" {
		table = "coinglass_option_exchange_vol_history_1d"
	}
	return &optionExchangeVolumeTask{
		name:      c.Name,
		deps:      deps,
		symbol:    symbol,
		table:     table,
		retention: c.RetentionDays,
	}, nil
}

func (t *optionExchangeVolumeTask) Name() string { return t.name }

func (t *optionExchangeVolumeTask) Run(ctx context.Context) error {
	if err := t.deps.Store.EnsureOptionExchangeVolTable(ctx, t.table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, t.table)
	if err != nil {
		return err
	}
	history, err := t.deps.CoinGlass.OptionExchangeVolHistory(ctx, t.symbol, "USD")
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.OptionExchangeVolRow, 0, len(history.DateList))
	for i, ts := range history.DateList {
		if i >= len(history.PriceList) {
			break
		}
		if ok && ts <= watermark {
			continue
		}
		rows = append(rows, store.OptionExchangeVolRow{
			Symbol:    t.symbol,
			Provider:  providerCoinGlass,
			Price:     history.PriceList[i].Float64(),
			Deribit:   venueAt(history.DataMap, i, "Deribit"),
			CME:       venueAt(history.DataMap, i, "CME"),
			OKX:       venueAt(history.DataMap, i, "OKX", "Okex"),
			Binance:   venueAt(history.DataMap, i, "Binance"),
			Bybit:     venueAt(history.DataMap, i, "Bybit"),
			DateTime:  dateOf(ts),
			Timestamp: ts,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertOptionExchangeVols(ctx, t.table, rows)
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

// venueAt looks up one exchange's value at a series offset. Venue keys in
// the payload vary in casing, and OKX still appears under its old name.
func venueAt(data map[string][]*coinglass.Number, i int, names ...string) *float64 {
	for key, series := range data {
		for _, name := range names {
			if strings.EqualFold(key, name) {
				if i < len(series) {
					return numPtr(series[i])
				}
				return nil
			}
		}
	}
	return nil
}
