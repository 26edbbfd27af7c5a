package tasks

import (
	"strings"
	"time"

	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
)

const (
	providerCoinGlass = "coinglass"
	providerGlassnode = "glassnode"
)

// pairSymbol flattens a trading pair into the symbol the API expects:
// "BTC-USDT" becomes "BTCUSDT".
func pairSymbol(pair string) string {
	return strings.ReplaceAll(pair, "-", "")
}

// pairBase extracts the base asset: "BTC-USDT" becomes "BTC".
func pairBase(pair string) string {
	if i := strings.Index(pair, "-"); i >= 0 {
		return pair[:i]
	}
	return pair
}

// coinglassPairTable names a per-pair metric table, for example
// coinglass_btcusdt_funding_rates_ohlc_1h.
func coinglassPairTable(pair, family, interval string) string {
	return "coinglass_" + strings.ToLower(pairSymbol(pair)) + "_" + family + "_" + interval
}

// glassnodePairTable names a per-pair Glassnode metric table, for example
// glassnode_btc_usdt_market_price_1h.
func glassnodePairTable(pair, metric, interval string) string {
	return "glassnode_" + strings.ToLower(strings.ReplaceAll(pair, "-", "_")) + "_" + metric + "_" + interval
}

// dateOf renders the UTC YYYY-MM-DD of a record timestamp. Upstream mixes
// second and millisecond precision, so anything beyond the year 33658 in
// seconds is read as milliseconds.
func dateOf(ts int64) string {
	if ts > 1_000_000_000_000 {
		ts /= 1000
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// numPtr converts an optional API number into a nullable column value.
func numPtr(n *coinglass.Number) *float64 {
	if n == nil {
		return nil
	}
	v := n.Float64()
	return &v
}

// retentionCutoff converts a retention window into the oldest timestamp to
// keep, matching the unit of the reference timestamp.
func retentionCutoff(days int, reference int64, now time.Time) int64 {
	if days <= 0 {
		return 0
	}
	cutoff := now.UTC().AddDate(0, 0, -days).Unix()
	if reference > 1_000_000_000_000 {
		cutoff *= 1000
	}
	return cutoff
}
