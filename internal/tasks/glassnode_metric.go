package tasks

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/glassnode"
)

func init() {
	RegisterBuilder("glassnode_metric", newGlassnodeMetricTask)
}

// glassnodeMetricTask syncs one Glassnode metric per configured pair. The
// asset queried is the pair's base ("BTC" for "BTC-USDT") while the full pair
// names the table and the symbol column.
type glassnodeMetricTask struct {
	name      string
	deps      Deps
	pairs     []string
	interval  string
	metric    string
	family    string
	backfill  int64
	retention int
}

func newGlassnodeMetricTask(c Conf, deps Deps) (task.Task, error) {
	if err := requireGlassnode(c, deps); err != nil {
		return nil, err
	}
	if err := requirePairs(c); err != nil {
		return nil, err
	}
	if c.Metric == "" {
		return nil, errors.New("tasks: " + c.Name + ": metric is required")
	}
	family := c.Family
	if family == "" {
		family = metricFamily(c.Metric)
	}
	backfill := c.BackfillStart
	if backfill <= 0 {
		backfill = defaultBackfillStart
	}
	return &glassnodeMetricTask{
		name:      c.Name,
		deps:      deps,
		pairs:     c.Pairs,
		interval:  c.Interval,
		metric:    strings.Trim(c.Metric, "/"),
		family:    family,
		backfill:  backfill,
		retention: c.RetentionDays,
	}, nil
}

// metricFamily derives a table segment from a metric path:
// "market/price_usd_close" becomes "market_price_usd_close".
func metricFamily(metric string) string {
	metric = strings.Trim(metric, "/")
	return strings.ReplaceAll(path.Clean(metric), "/", "_")
}

func (t *glassnodeMetricTask) Name() string { return t.name }

func (t *glassnodeMetricTask) Run(ctx context.Context) error {
	return runPairs(ctx, t.deps, t.name, t.pairs, t.syncPair)
}

func (t *glassnodeMetricTask) syncPair(ctx context.Context, pair string) error {
	table := glassnodePairTable(pair, t.family, t.interval)
	if err := t.deps.Store.EnsureMetricPointTable(ctx, table); err != nil {
		return err
	}
	watermark, ok, err := t.deps.Store.LastTimestamp(ctx, table)
	if err != nil {
		return err
	}
	since := t.backfill
	if ok {
		since = watermark
	}
	points, err := t.deps.Glassnode.MetricPoints(ctx, t.metric, glassnode.PointParams{
		Asset:    pairBase(pair),
		Interval: t.interval,
		Since:    since,
	})
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([]store.MetricPointRow, 0, len(points))
	for _, pt := range points {
		if ok && pt.T <= watermark {
			continue
		}
		if pt.V == nil {
			continue
		}
		rows = append(rows, store.MetricPointRow{
			Provider:  providerGlassnode,
			Symbol:    pairSymbol(pair),
			Value:     *pt.V,
			DateTime:  dateOf(pt.T),
			Timestamp: pt.T,
			CreatedAt: now,
		})
	}

	inserted, err := t.deps.Store.InsertMetricPoints(ctx, table, rows)
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
