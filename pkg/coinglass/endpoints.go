package coinglass

import (
	"context"
	"net/url"
	"strconv"
)

func (p HistoryParams) values() url.Values {
	q := url.Values{}
	if p.Exchange != "" {
		q.Set("exchange", p.Exchange)
	}
	if p.Symbol != "" {
		q.Set("symbol", p.Symbol)
	}
	if p.Interval != "" {
		q.Set("interval", p.Interval)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.StartTime > 0 {
		q.Set("startTime", strconv.FormatInt(p.StartTime, 10))
	}
	return q
}

// FundingRateOHLC fetches per-exchange funding-rate OHLC history.
func (c *Client) FundingRateOHLC(ctx context.Context, p HistoryParams) ([]OHLCRecord, error) {
	var out []OHLCRecord
	if err := c.get(ctx, "/api/futures/fundingRate/ohlc-history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OIWeightOHLC fetches open-interest-weighted funding-rate OHLC history.
func (c *Client) OIWeightOHLC(ctx context.Context, p HistoryParams) ([]OHLCRecord, error) {
	var out []OHLCRecord
	if err := c.get(ctx, "/api/futures/fundingRate/oi-weight-ohlc-history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LiquidationAggregatedHistory fetches aggregated liquidation history for a pair.
func (c *Client) LiquidationAggregatedHistory(ctx context.Context, p HistoryParams) ([]LiquidationRecord, error) {
	var out []LiquidationRecord
	if err := c.get(ctx, "/api/futures/liquidation/v2/aggregated-history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GlobalLongShortAccountRatio fetches the global account long/short ratio history.
func (c *Client) GlobalLongShortAccountRatio(ctx context.Context, p HistoryParams) ([]GlobalAccountRatioRecord, error) {
	var out []GlobalAccountRatioRecord
	if err := c.get(ctx, "/api/futures/globalLongShortAccountRatio/history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopLongShortAccountRatio fetches the top-trader account ratio history.
func (c *Client) TopLongShortAccountRatio(ctx context.Context, p HistoryParams) ([]TopRatioRecord, error) {
	var out []TopRatioRecord
	if err := c.get(ctx, "/api/futures/topLongShortAccountRatio/history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopLongShortPositionRatio fetches the top-trader position ratio history.
func (c *Client) TopLongShortPositionRatio(ctx context.Context, p HistoryParams) ([]TopRatioRecord, error) {
	var out []TopRatioRecord
	if err := c.get(ctx, "/api/futures/topLongShortPositionRatio/history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregatedTakerBuySellRatio fetches the aggregated taker buy/sell ratio history.
func (c *Client) AggregatedTakerBuySellRatio(ctx context.Context, p HistoryParams) ([]TakerRatioRecord, error) {
	var out []TakerRatioRecord
	if err := c.get(ctx, "/api/futures/aggregatedTakerBuySellVolumeRatio/history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregatedTakerBuySellVolume fetches the aggregated taker buy/sell volume history.
func (c *Client) AggregatedTakerBuySellVolume(ctx context.Context, p HistoryParams) ([]TakerVolumeRecord, error) {
	var out []TakerVolumeRecord
	if err := c.get(ctx, "/api/futures/takerBuySellVolume/history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregatedOrderbookHistory fetches aggregated orderbook depth history.
func (c *Client) AggregatedOrderbookHistory(ctx context.Context, p HistoryParams) ([]OrderbookRecord, error) {
	var out []OrderbookRecord
	if err := c.get(ctx, "/api/futures/orderbook/aggregated-history", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BitfinexMarginLongShort fetches Bitfinex margin long/short history.
func (c *Client) BitfinexMarginLongShort(ctx context.Context, p HistoryParams) ([]BitfinexMarginRecord, error) {
	var out []BitfinexMarginRecord
	if err := c.get(ctx, "/api/bitfinex-margin-long-short", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ETFFlowHistory fetches daily ETF flow history for the given asset
// ("bitcoin" or "ethereum").
func (c *Client) ETFFlowHistory(ctx context.Context, asset string) ([]ETFFlowRecord, error) {
	var out []ETFFlowRecord
	if err := c.get(ctx, "/api/"+asset+"/etf/flow-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ETFNetAssetsHistory fetches daily ETF net assets history for the given asset.
func (c *Client) ETFNetAssetsHistory(ctx context.Context, asset string) ([]ETFNetAssetsRecord, error) {
	var out []ETFNetAssetsRecord
	if err := c.get(ctx, "/api/"+asset+"/etf/netAssets/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ETFPremiumDiscountHistory fetches daily ETF premium/discount history for
// the given asset.
func (c *Client) ETFPremiumDiscountHistory(ctx context.Context, asset string) ([]ETFPremiumDiscountRecord, error) {
	var out []ETFPremiumDiscountRecord
	if err := c.get(ctx, "/api/"+asset+"/etf/premium-discount-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OptionInfo fetches the per-exchange option open-interest summary.
func (c *Client) OptionInfo(ctx context.Context, symbol string) ([]OptionInfoRecord, error) {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	var out []OptionInfoRecord
	if err := c.get(ctx, "/api/option/info", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FearGreedIndex fetches the crypto fear & greed history.
func (c *Client) FearGreedIndex(ctx context.Context) (*FearGreedHistory, error) {
	var out FearGreedHistory
	if err := c.get(ctx, "/api/index/fear-greed-history", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CoinbasePremiumIndex fetches the Coinbase premium index history.
func (c *Client) CoinbasePremiumIndex(ctx context.Context, p HistoryParams) ([]CoinbasePremiumRecord, error) {
	var out []CoinbasePremiumRecord
	if err := c.get(ctx, "/api/coinbase-premium-index", p.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AHR999 fetches the AHR999 index history.
func (c *Client) AHR999(ctx context.Context) ([]AHR999Record, error) {
	var out []AHR999Record
	if err := c.get(ctx, "/api/index/ahr999", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BitcoinBubbleIndex fetches the bitcoin bubble index history.
func (c *Client) BitcoinBubbleIndex(ctx context.Context) ([]BubbleIndexRecord, error) {
	var out []BubbleIndexRecord
	if err := c.get(ctx, "/api/index/bitcoin-bubble-index", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BitcoinProfitableDays fetches the bitcoin-profitable-days index history.
func (c *Client) BitcoinProfitableDays(ctx context.Context) ([]ProfitableDaysRecord, error) {
	var out []ProfitableDaysRecord
	if err := c.get(ctx, "/api/index/bitcoin-profitable-days", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PuellMultiple fetches the Puell Multiple index history.
func (c *Client) PuellMultiple(ctx context.Context) ([]PuellMultipleRecord, error) {
	var out []PuellMultipleRecord
	if err := c.get(ctx, "/api/index/puell-multiple", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PiCycleTopIndicator fetches the Pi Cycle top indicator history.
func (c *Client) PiCycleTopIndicator(ctx context.Context) ([]PiCycleRecord, error) {
	var out []PiCycleRecord
	if err := c.get(ctx, "/api/index/pi", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BitcoinRainbowChart fetches the bitcoin rainbow chart history.
func (c *Client) BitcoinRainbowChart(ctx context.Context) ([]RainbowChartRecord, error) {
	var out []RainbowChartRecord
	if err := c.get(ctx, "/api/index/bitcoin-rainbow-chart", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GoldenRatioMultiplier fetches the golden ratio multiplier history.
func (c *Client) GoldenRatioMultiplier(ctx context.Context) ([]GoldenRatioRecord, error) {
	var out []GoldenRatioRecord
	if err := c.get(ctx, "/api/index/golden-ratio-multiplier", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StockToFlow fetches the stock-to-flow model history.
func (c *Client) StockToFlow(ctx context.Context) ([]StockToFlowRecord, error) {
	var out []StockToFlowRecord
	if err := c.get(ctx, "/api/index/stock-flow", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TwoHundredWeekMAHeatmap fetches the 200-week moving average heatmap
// history. The path carries the API's own misspelling.
func (c *Client) TwoHundredWeekMAHeatmap(ctx context.Context) ([]TwoHundredWeekMARecord, error) {
	var out []TwoHundredWeekMARecord
	if err := c.get(ctx, "/api/index/tow-hundred-week-moving-avg-heatmap", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StablecoinMarketCapHistory fetches the stablecoin market cap history.
func (c *Client) StablecoinMarketCapHistory(ctx context.Context) ([]StablecoinMarketCapRecord, error) {
	var out []StablecoinMarketCapRecord
	if err := c.get(ctx, "/api/index/stableCoin-marketCap-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CoinsMarkets fetches the futures market screener snapshot for one
// exchange.
func (c *Client) CoinsMarkets(ctx context.Context, exchange string) ([]CoinsMarketsRecord, error) {
	q := url.Values{}
	if exchange != "" {
		q.Set("exchanges", exchange)
	}
	var out []CoinsMarketsRecord
	if err := c.get(ctx, "/api/futures/coins-markets", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OptionExchangeVolHistory fetches the per-exchange option volume history
// for a base symbol, denominated in the given currency.
func (c *Client) OptionExchangeVolHistory(ctx context.Context, symbol, currency string) (*OptionExchangeVolHistory, error) {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if currency != "" {
		q.Set("currency", currency)
	}
	var out OptionExchangeVolHistory
	if err := c.get(ctx, "/api/option/exchange-vol-history", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiquidationExchangeList fetches the current per-exchange liquidation
// totals for a base symbol over the given range.
func (c *Client) LiquidationExchangeList(ctx context.Context, symbol, window string) ([]LiquidationExchangeRecord, error) {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if window != "" {
		q.Set("range", window)
	}
	var out []LiquidationExchangeRecord
	if err := c.get(ctx, "/api/futures/liquidation/exchange-list", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LiquidationHeatmapModel2 fetches the model2 liquidation heatmap snapshot
// for one exchange and base symbol over the given range.
func (c *Client) LiquidationHeatmapModel2(ctx context.Context, exchange, symbol, window string) ([]LiquidationHeatmapRecord, error) {
	q := url.Values{}
	if exchange != "" {
		q.Set("exchange", exchange)
	}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if window != "" {
		q.Set("range", window)
	}
	var out []LiquidationHeatmapRecord
	if err := c.get(ctx, "/api/futures/liquidation/model2/heatmap", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
