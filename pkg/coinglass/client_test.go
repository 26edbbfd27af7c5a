package coinglass

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockCoinglassServer(t *testing.T, routes map[string]interface{}) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("CG-API-KEY") != "test-key" {
			http.Error(w, "missing api key", http.StatusUnauthorized)
			return
		}
		data, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "path not mocked", http.StatusNotFound)
			return
		}
		writeEnvelope(w, data)
	}))

	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	return server, client
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code": "0",
		"msg":  "success",
		"data": data,
	})
}

func TestClientFundingRateOHLC(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/futures/fundingRate/ohlc-history", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("CG-API-KEY"))
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		writeEnvelope(w, []map[string]interface{}{
			{"t": 1714521600, "o": "0.01", "h": "0.012", "l": "0.009", "c": "0.011"},
			{"t": 1714525200, "o": "0.011", "h": "0.013", "l": "0.01", "c": "0.012"},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	records, err := client.FundingRateOHLC(context.Background(), HistoryParams{
		Exchange:  "Binance",
		Symbol:    "BTCUSDT",
		Interval:  "1h",
		Limit:     4500,
		StartTime: 1714521600,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1714521600), records[0].Time)
	assert.InDelta(t, 0.011, records[0].Close.Float64(), 1e-9)

	assert.Equal(t, "Binance", gotQuery["exchange"])
	assert.Equal(t, "BTCUSDT", gotQuery["symbol"])
	assert.Equal(t, "1h", gotQuery["interval"])
	assert.Equal(t, "4500", gotQuery["limit"])
	assert.Equal(t, "1714521600", gotQuery["startTime"])
}

func TestClientOmitsZeroParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("startTime"), "zero startTime should not be sent")
		require.False(t, r.URL.Query().Has("limit"), "zero limit should not be sent")
		writeEnvelope(w, []map[string]interface{}{})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.OIWeightOHLC(context.Background(), HistoryParams{Symbol: "BTC", Interval: "1h"})
	require.NoError(t, err)
}

func TestClientEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "50001",
			"msg":  "api key expired",
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.AHR999(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "50001", apiErr.Code)
	assert.Equal(t, "api key expired", apiErr.Msg)
	assert.Contains(t, err.Error(), "50001")
}

func TestClientHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.OptionInfo(context.Background(), "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 502")
}

func TestClientContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.BitcoinProfitableDays(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientLiquidationAggregatedHistory(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/futures/liquidation/v2/aggregated-history": []map[string]interface{}{
			{"timestamp": 1714521600, "longLiquidationUsd": "123456.78", "shortLiquidationUsd": 654.32},
		},
	})
	defer server.Close()

	records, err := client.LiquidationAggregatedHistory(context.Background(), HistoryParams{Symbol: "BTC", Interval: "1h"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1714521600), records[0].Timestamp)
	assert.InDelta(t, 123456.78, records[0].LongLiquidationUsd.Float64(), 1e-9)
	assert.InDelta(t, 654.32, records[0].ShortLiquidationUsd.Float64(), 1e-9)
}

func TestClientRatioEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/futures/globalLongShortAccountRatio/history": []map[string]interface{}{
			{"time": 1714521600, "longAccount": "62.5", "shortAccount": "37.5", "longShortRatio": "1.6667"},
		},
		"/api/futures/topLongShortAccountRatio/history": []map[string]interface{}{
			{"timestamp": 1714521600, "longAccount": "55", "shortAccount": "45", "longShortRatio": "1.2222"},
		},
		"/api/futures/topLongShortPositionRatio/history": []map[string]interface{}{
			{"timestamp": 1714525200, "longAccount": "51", "shortAccount": "49", "longShortRatio": "1.0408"},
		},
		"/api/futures/aggregatedTakerBuySellVolumeRatio/history": []map[string]interface{}{
			{"time": 1714521600, "longShortRatio": "0.98"},
		},
	})
	defer server.Close()

	ctx := context.Background()
	params := HistoryParams{Exchange: "Binance", Symbol: "BTCUSDT", Interval: "1h"}

	global, err := client.GlobalLongShortAccountRatio(ctx, params)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.InDelta(t, 62.5, global[0].LongAccount.Float64(), 1e-9)

	topAccount, err := client.TopLongShortAccountRatio(ctx, params)
	require.NoError(t, err)
	require.Len(t, topAccount, 1)
	assert.Equal(t, int64(1714521600), topAccount[0].Timestamp)

	topPosition, err := client.TopLongShortPositionRatio(ctx, params)
	require.NoError(t, err)
	require.Len(t, topPosition, 1)
	assert.InDelta(t, 1.0408, topPosition[0].LongShortRatio.Float64(), 1e-9)

	taker, err := client.AggregatedTakerBuySellRatio(ctx, params)
	require.NoError(t, err)
	require.Len(t, taker, 1)
	assert.InDelta(t, 0.98, taker[0].LongShortRatio.Float64(), 1e-9)
}

func TestClientETFEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/ethereum/etf/flow-history": []map[string]interface{}{
			{
				"date":      1714521600000,
				"changeUsd": "1000000",
				"price":     "3200.5",
				"list": []map[string]interface{}{
					{"ticker": "ETHA", "changeUsd": "600000"},
					{"ticker": "FETH"},
				},
			},
		},
		"/api/ethereum/etf/netAssets/history": []map[string]interface{}{
			{"date": 1714521600000, "netAssets": "9000000000", "price": "3200.5"},
		},
		"/api/bitcoin/etf/premium-discount-history": []map[string]interface{}{
			{
				"date": 1714521600000,
				"list": []map[string]interface{}{
					{"ticker": "IBIT", "nav": "40.1", "marketPrice": "40.2", "premiumDiscountPercent": "0.25"},
				},
			},
		},
	})
	defer server.Close()

	ctx := context.Background()

	flows, err := client.ETFFlowHistory(ctx, "ethereum")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, int64(1714521600000), flows[0].Date)
	require.Len(t, flows[0].List, 2)
	require.NotNil(t, flows[0].List[0].ChangeUsd)
	assert.InDelta(t, 600000, flows[0].List[0].ChangeUsd.Float64(), 1e-9)
	assert.Nil(t, flows[0].List[1].ChangeUsd, "fund with no flow reports no changeUsd")

	assets, err := client.ETFNetAssetsHistory(ctx, "ethereum")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.InDelta(t, 9e9, assets[0].NetAssets.Float64(), 1e-9)

	premiums, err := client.ETFPremiumDiscountHistory(ctx, "bitcoin")
	require.NoError(t, err)
	require.Len(t, premiums, 1)
	require.Len(t, premiums[0].List, 1)
	assert.Equal(t, "IBIT", premiums[0].List[0].Ticker)
	assert.InDelta(t, 0.25, premiums[0].List[0].PremiumDiscountPercent.Float64(), 1e-9)
}

func TestClientIndexEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/index/fear-greed-history": map[string]interface{}{
			"dates":  []int64{1714521600000, 1714608000000},
			"values": []interface{}{"72", "68"},
			"prices": []interface{}{"62000.1", "61500.4"},
		},
		"/api/coinbase-premium-index": []map[string]interface{}{
			{"time": 1714521600, "premium": "12.5", "premiumRate": "0.02"},
		},
		"/api/index/ahr999": []map[string]interface{}{
			{"date": 1714521600, "avg": "48000.5", "value": "62000.1", "ahr999": "1.02"},
		},
		"/api/index/bitcoin-profitable-days": []map[string]interface{}{
			{"createTime": 1714521600000, "price": "62000.1", "side": 1},
		},
		"/api/option/info": []map[string]interface{}{
			{"exchangeName": "Deribit", "openInterest": "300000", "openInterestUsd": "18600000000", "volUsd": "950000000", "rate": "86.2", "h24Change": "1.5", "h24VolChangePercent": "-3.2", "date": 1714521600000},
		},
	})
	defer server.Close()

	ctx := context.Background()

	fearGreed, err := client.FearGreedIndex(ctx)
	require.NoError(t, err)
	require.Len(t, fearGreed.Dates, 2)
	require.Len(t, fearGreed.Values, 2)
	assert.InDelta(t, 72, fearGreed.Values[0].Float64(), 1e-9)
	assert.InDelta(t, 61500.4, fearGreed.Prices[1].Float64(), 1e-9)

	premium, err := client.CoinbasePremiumIndex(ctx, HistoryParams{Interval: "1h"})
	require.NoError(t, err)
	require.Len(t, premium, 1)
	assert.InDelta(t, 12.5, premium[0].Premium.Float64(), 1e-9)

	ahr, err := client.AHR999(ctx)
	require.NoError(t, err)
	require.Len(t, ahr, 1)
	assert.InDelta(t, 1.02, ahr[0].AHR999.Float64(), 1e-9)

	days, err := client.BitcoinProfitableDays(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, int64(1714521600000), days[0].CreateTime)
	assert.InDelta(t, 1, days[0].Side.Float64(), 1e-9)

	options, err := client.OptionInfo(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Deribit", options[0].ExchangeName)
	assert.InDelta(t, 18.6e9, options[0].OpenInterestUsd.Float64(), 1e-9)
}

func TestClientVolumeAndDepthEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/futures/takerBuySellVolume/history": []map[string]interface{}{
			{"time": 1714521600, "buy": "1200000", "sell": "1100000"},
		},
		"/api/futures/orderbook/aggregated-history": []map[string]interface{}{
			{"time": 1714521600, "bidsUsd": "5000000", "bidsAmount": "80.5", "asksUsd": "4800000", "asksAmount": "77.2"},
		},
		"/api/bitfinex-margin-long-short": []map[string]interface{}{
			{"time": 1714521600, "longQty": "45000", "shortQty": "3000"},
		},
	})
	defer server.Close()

	ctx := context.Background()
	params := HistoryParams{Symbol: "BTC", Interval: "1h"}

	volume, err := client.AggregatedTakerBuySellVolume(ctx, params)
	require.NoError(t, err)
	require.Len(t, volume, 1)
	assert.InDelta(t, 1200000, volume[0].Buy.Float64(), 1e-9)

	depth, err := client.AggregatedOrderbookHistory(ctx, params)
	require.NoError(t, err)
	require.Len(t, depth, 1)
	assert.InDelta(t, 80.5, depth[0].BidsAmount.Float64(), 1e-9)

	margin, err := client.BitfinexMarginLongShort(ctx, HistoryParams{Symbol: "BTC", Interval: "1h"})
	require.NoError(t, err)
	require.Len(t, margin, 1)
	assert.InDelta(t, 45000, margin[0].LongQty.Float64(), 1e-9)
}

func TestClientCycleIndicatorEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/index/puell-multiple": []map[string]interface{}{
			{"date": 1714521600, "buyQty": "10", "price": "62000.1", "puellMultiple": "1.18", "sellQty": "4"},
		},
		"/api/index/pi": []map[string]interface{}{
			{"date": 1714521600, "created_time": 1714521600000, "price": "62000.1", "ma110": "58000", "ma350Mu2": "91000"},
		},
		"/api/index/bitcoin-rainbow-chart": []interface{}{
			[]interface{}{62000.1, 50000.0, nil, 2000.0, 3000.0, 4000.0, 5000.0, 6000.0, 7000.0, 8000.0, 9000.0, 1714521600000},
		},
		"/api/index/golden-ratio-multiplier": []map[string]interface{}{
			{"createTime": 1714521600000, "price": "62000.1", "ma350": "40000", "2LowBullHigh": "80000", "1.6AccumulationHigh": "64000", "x8": "320000"},
		},
		"/api/index/stock-flow": []map[string]interface{}{
			{"date": 1714521600, "price": "62000.1", "nextHalving": "1460"},
		},
		"/api/index/tow-hundred-week-moving-avg-heatmap": []map[string]interface{}{
			{"date": 1714521600, "buyQty": "3", "price": "62000.1", "mA1440": "34000", "mA1440IP": "1.1", "sellQty": "2"},
		},
		"/api/index/stableCoin-marketCap-history": []map[string]interface{}{
			{"date": 1714521600, "marketCap": "160000000000", "btcPrice": "62000.1"},
		},
	})
	defer server.Close()

	ctx := context.Background()

	puell, err := client.PuellMultiple(ctx)
	require.NoError(t, err)
	require.Len(t, puell, 1)
	assert.InDelta(t, 1.18, puell[0].PuellMultiple.Float64(), 1e-9)

	pi, err := client.PiCycleTopIndicator(ctx)
	require.NoError(t, err)
	require.Len(t, pi, 1)
	assert.Equal(t, int64(1714521600000), pi[0].CreateTime)
	assert.InDelta(t, 91000, pi[0].MA350Mu2.Float64(), 1e-9)

	rainbow, err := client.BitcoinRainbowChart(ctx)
	require.NoError(t, err)
	require.Len(t, rainbow, 1)
	assert.Equal(t, int64(1714521600000), rainbow[0].Timestamp)
	assert.Nil(t, rainbow[0].FireSale)
	require.NotNil(t, rainbow[0].BTCPrice)
	assert.InDelta(t, 62000.1, rainbow[0].BTCPrice.Float64(), 1e-9)

	golden, err := client.GoldenRatioMultiplier(ctx)
	require.NoError(t, err)
	require.Len(t, golden, 1)
	assert.InDelta(t, 80000, golden[0].TwoLowBullHigh.Float64(), 1e-9)
	assert.InDelta(t, 64000, golden[0].AccumulationHigh.Float64(), 1e-9)
	require.NotNil(t, golden[0].X8)
	assert.Nil(t, golden[0].X21)

	s2f, err := client.StockToFlow(ctx)
	require.NoError(t, err)
	require.Len(t, s2f, 1)
	assert.InDelta(t, 1460, s2f[0].NextHalving.Float64(), 1e-9)

	ma, err := client.TwoHundredWeekMAHeatmap(ctx)
	require.NoError(t, err)
	require.Len(t, ma, 1)
	assert.InDelta(t, 34000, ma[0].MA1440.Float64(), 1e-9)

	stable, err := client.StablecoinMarketCapHistory(ctx)
	require.NoError(t, err)
	require.Len(t, stable, 1)
	assert.InDelta(t, 1.6e11, stable[0].MarketCap.Float64(), 1e-9)
}

func TestClientScreenerAndLiquidationEndpoints(t *testing.T) {
	server, client := newMockCoinglassServer(t, map[string]interface{}{
		"/api/futures/coins-markets": []map[string]interface{}{
			{"symbol": "BTC", "price": "62000.1", "openInterest": "1000000", "volUsd": "2500000000", "ls24h": "1.05"},
		},
		"/api/option/exchange-vol-history": map[string]interface{}{
			"dateList":  []int64{1714521600000},
			"priceList": []interface{}{"62000.1"},
			"dataMap": map[string]interface{}{
				"Deribit": []interface{}{"950000000"},
			},
		},
		"/api/futures/liquidation/exchange-list": []map[string]interface{}{
			{"exchangeName": "Binance", "longVolUsd": "1200000", "shortVolUsd": "340000"},
		},
		"/api/futures/liquidation/model2/heatmap": []map[string]interface{}{
			{"price": "61000", "longVolUsd": "5000000", "shortVolUsd": "0"},
		},
	})
	defer server.Close()

	ctx := context.Background()

	coins, err := client.CoinsMarkets(ctx, "Binance")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "BTC", coins[0].Symbol)
	require.NotNil(t, coins[0].LS24h)
	assert.InDelta(t, 1.05, coins[0].LS24h.Float64(), 1e-9)

	vols, err := client.OptionExchangeVolHistory(ctx, "BTC", "USD")
	require.NoError(t, err)
	require.Len(t, vols.DateList, 1)
	require.Contains(t, vols.DataMap, "Deribit")
	assert.InDelta(t, 950000000, vols.DataMap["Deribit"][0].Float64(), 1e-9)

	list, err := client.LiquidationExchangeList(ctx, "BTC", "1h")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Binance", list[0].ExchangeName)

	heatmap, err := client.LiquidationHeatmapModel2(ctx, "Binance", "BTC", "3d")
	require.NoError(t, err)
	require.Len(t, heatmap, 1)
	assert.InDelta(t, 61000, heatmap[0].Price.Float64(), 1e-9)
}
