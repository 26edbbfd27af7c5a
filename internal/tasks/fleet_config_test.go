package tasks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFleetFromReader(t *testing.T) {
	t.Setenv("FLEET_EXCHANGE", "Binance")

	fc, err := LoadFleetFromReader(strings.NewReader(`
tasks:
  - name: funding
    kind: coinglass_funding_rate_ohlc
    every: 1h
    exchange: ${FLEET_EXCHANGE}
    pairs: [BTC-USDT, ETH-USDT]
  - name: gn-price
    kind: glassnode_metric
    cron: "0 * * * *"
    pairs: [BTC-USDT]
    interval: 24h
    metric: market/price_usd_close
    retention_days: 90
`))
	require.NoError(t, err)
	require.Len(t, fc.Tasks, 2)

	funding := fc.Tasks[0]
	assert.Equal(t, "funding", funding.Name)
	assert.Equal(t, "Binance", funding.Exchange, "env placeholder should expand")
	assert.Equal(t, "1h", funding.Interval, "missing interval defaults to 1h")
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, funding.Pairs)

	gn := fc.Tasks[1]
	assert.Equal(t, "24h", gn.Interval)
	assert.Equal(t, "market/price_usd_close", gn.Metric)
	assert.Equal(t, 90, gn.RetentionDays)
	assert.Equal(t, "0 * * * *", gn.Cron)
}

func TestLoadFleetFromReaderMalformed(t *testing.T) {
	_, err := LoadFleetFromReader(strings.NewReader("tasks: {not: a list}"))
	require.Error(t, err)
}
