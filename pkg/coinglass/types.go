package coinglass

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number tolerates CoinGlass numeric fields that arrive either as JSON
// numbers or as quoted strings, depending on the endpoint.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}
	trimmed = bytes.Trim(trimmed, `"`)
	if len(trimmed) == 0 {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("coinglass: parse number %q: %w", string(trimmed), err)
	}
	*n = Number(f)
	return nil
}

// Float64 returns the plain float value.
func (n Number) Float64() float64 { return float64(n) }

// HistoryParams are the shared query parameters for per-symbol history
// endpoints. StartTime is the incremental-sync watermark in unix seconds;
// zero means "from the API default".
type HistoryParams struct {
	Exchange  string
	Symbol    string
	Interval  string
	Limit     int
	StartTime int64
}

// OHLCRecord is one bucket from the funding-rate OHLC history endpoints.
type OHLCRecord struct {
	Time  int64  `json:"t"`
	Open  Number `json:"o"`
	High  Number `json:"h"`
	Low   Number `json:"l"`
	Close Number `json:"c"`
}

// LiquidationRecord is one bucket of aggregated liquidation history.
type LiquidationRecord struct {
	Timestamp           int64  `json:"timestamp"`
	LongLiquidationUsd  Number `json:"longLiquidationUsd"`
	ShortLiquidationUsd Number `json:"shortLiquidationUsd"`
}

// GlobalAccountRatioRecord is one bucket of global long/short account ratio.
type GlobalAccountRatioRecord struct {
	Time           int64  `json:"time"`
	LongAccount    Number `json:"longAccount"`
	ShortAccount   Number `json:"shortAccount"`
	LongShortRatio Number `json:"longShortRatio"`
}

// TopRatioRecord is one bucket of the top-trader account or position ratio.
type TopRatioRecord struct {
	Timestamp      int64  `json:"timestamp"`
	LongAccount    Number `json:"longAccount"`
	ShortAccount   Number `json:"shortAccount"`
	LongShortRatio Number `json:"longShortRatio"`
}

// TakerRatioRecord is one bucket of the aggregated taker buy/sell ratio.
type TakerRatioRecord struct {
	Time           int64  `json:"time"`
	LongShortRatio Number `json:"longShortRatio"`
}

// TakerVolumeRecord is one bucket of aggregated taker buy/sell volume.
type TakerVolumeRecord struct {
	Time int64  `json:"time"`
	Buy  Number `json:"buy"`
	Sell Number `json:"sell"`
}

// OrderbookRecord is one bucket of aggregated orderbook depth history.
type OrderbookRecord struct {
	Time       int64  `json:"time"`
	BidsUsd    Number `json:"bidsUsd"`
	BidsAmount Number `json:"bidsAmount"`
	AsksUsd    Number `json:"asksUsd"`
	AsksAmount Number `json:"asksAmount"`
}

// BitfinexMarginRecord is one bucket of Bitfinex margin long/short history.
type BitfinexMarginRecord struct {
	Time     int64  `json:"time"`
	LongQty  Number `json:"longQty"`
	ShortQty Number `json:"shortQty"`
}

// ETFFlowTicker is one per-fund entry inside an ETF flow bucket.
type ETFFlowTicker struct {
	Ticker    string  `json:"ticker"`
	ChangeUsd *Number `json:"changeUsd"`
}

// ETFFlowRecord is one daily bucket of ETF flow history. Date is unix
// milliseconds.
type ETFFlowRecord struct {
	Date       int64           `json:"date"`
	ChangeUsd  Number          `json:"changeUsd"`
	ClosePrice Number          `json:"closePrice"`
	Price      Number          `json:"price"`
	List       []ETFFlowTicker `json:"list"`
}

// ETFNetAssetsRecord is one daily bucket of ETF net assets history.
type ETFNetAssetsRecord struct {
	Date      int64  `json:"date"`
	NetAssets Number `json:"netAssets"`
	Price     Number `json:"price"`
}

// ETFPremiumTicker is one per-fund entry inside a premium/discount bucket.
type ETFPremiumTicker struct {
	Ticker                 string `json:"ticker"`
	Nav                    Number `json:"nav"`
	MarketPrice            Number `json:"marketPrice"`
	PremiumDiscountPercent Number `json:"premiumDiscountPercent"`
}

// ETFPremiumDiscountRecord is one daily bucket of ETF premium/discount
// history. Date is unix milliseconds.
type ETFPremiumDiscountRecord struct {
	Date int64              `json:"date"`
	List []ETFPremiumTicker `json:"list"`
}

// OptionInfoRecord is one exchange row of the option open-interest summary.
type OptionInfoRecord struct {
	ExchangeName        string `json:"exchangeName"`
	OpenInterest        Number `json:"openInterest"`
	Rate                Number `json:"rate"`
	H24Change           Number `json:"h24Change"`
	ExchangeLogo        string `json:"exchangeLogo"`
	OpenInterestUsd     Number `json:"openInterestUsd"`
	VolUsd              Number `json:"volUsd"`
	H24VolChangePercent Number `json:"h24VolChangePercent"`
	Date                int64  `json:"date"`
}

// FearGreedHistory is the column-oriented fear & greed payload.
type FearGreedHistory struct {
	Dates  []int64  `json:"dates"`
	Values []Number `json:"values"`
	Prices []Number `json:"prices"`
}

// CoinbasePremiumRecord is one bucket of the Coinbase premium index.
type CoinbasePremiumRecord struct {
	Time        int64  `json:"time"`
	Premium     Number `json:"premium"`
	PremiumRate Number `json:"premiumRate"`
}

// AHR999Record is one daily row of the AHR999 index.
type AHR999Record struct {
	Date   int64  `json:"date"`
	Avg    Number `json:"avg"`
	Value  Number `json:"value"`
	AHR999 Number `json:"ahr999"`
}

// BubbleIndexRecord is one daily row of the bitcoin bubble index. The
// Transactions tag keeps the API's own misspelling.
type BubbleIndexRecord struct {
	Price         Number `json:"price"`
	Index         Number `json:"index"`
	GoogleTrend   Number `json:"googleTrend"`
	Difficulty    Number `json:"difficulty"`
	Transactions  Number `json:"transcations"`
	SentByAddress Number `json:"sentByAddress"`
	Tweets        Number `json:"tweets"`
	Date          int64  `json:"date"`
}

// ProfitableDaysRecord is one daily row of the bitcoin-profitable-days
// index. CreateTime is unix milliseconds.
type ProfitableDaysRecord struct {
	CreateTime int64  `json:"createTime"`
	Price      Number `json:"price"`
	Side       Number `json:"side"`
}

// PuellMultipleRecord is one daily row of the Puell Multiple index. Date is
// unix seconds.
type PuellMultipleRecord struct {
	Date          int64  `json:"date"`
	BuyQty        Number `json:"buyQty"`
	Price         Number `json:"price"`
	PuellMultiple Number `json:"puellMultiple"`
	SellQty       Number `json:"sellQty"`
}

// PiCycleRecord is one daily row of the Pi Cycle top indicator. The API keys
// the row twice: Date in unix seconds, CreateTime in unix milliseconds.
type PiCycleRecord struct {
	Date       int64  `json:"date"`
	CreateTime int64  `json:"created_time"`
	Price      Number `json:"price"`
	MA110      Number `json:"ma110"`
	MA350Mu2   Number `json:"ma350Mu2"`
}

// RainbowChartRecord is one daily row of the bitcoin rainbow chart. The API
// returns positional arrays: nine colour bands, the BTC price, the model
// price and a trailing unix-millisecond timestamp. Band values may be null
// before the model starts.
type RainbowChartRecord struct {
	BTCPrice               *Number
	ModelPrice             *Number
	FireSale               *Number
	Buy                    *Number
	Accumulate             *Number
	StillCheap             *Number
	Hold                   *Number
	IsThisABubble          *Number
	FOMOIntensifies        *Number
	SellSeriouslySell      *Number
	MaximumBubbleTerritory *Number
	Timestamp              int64
}

func (r *RainbowChartRecord) UnmarshalJSON(data []byte) error {
	var cols []*Number
	if err := json.Unmarshal(data, &cols); err != nil {
		return fmt.Errorf("coinglass: rainbow chart row: %w", err)
	}
	if len(cols) < 12 || cols[11] == nil {
		return fmt.Errorf("coinglass: rainbow chart row has %d columns, want 12", len(cols))
	}
	r.BTCPrice = cols[0]
	r.ModelPrice = cols[1]
	r.FireSale = cols[2]
	r.Buy = cols[3]
	r.Accumulate = cols[4]
	r.StillCheap = cols[5]
	r.Hold = cols[6]
	r.IsThisABubble = cols[7]
	r.FOMOIntensifies = cols[8]
	r.SellSeriouslySell = cols[9]
	r.MaximumBubbleTerritory = cols[10]
	r.Timestamp = int64(cols[11].Float64())
	return nil
}

// GoldenRatioRecord is one daily row of the golden ratio multiplier.
// CreateTime is unix milliseconds; the optional bands only appear once the
// price history supports them.
type GoldenRatioRecord struct {
	CreateTime       int64   `json:"createTime"`
	Price            Number  `json:"price"`
	MA350            Number  `json:"ma350"`
	TwoLowBullHigh   Number  `json:"2LowBullHigh"`
	ThreeLowBullHigh *Number `json:"3LowBullHigh"`
	AccumulationHigh Number  `json:"1.6AccumulationHigh"`
	X3               *Number `json:"x3"`
	X5               *Number `json:"x5"`
	X8               *Number `json:"x8"`
	X13              *Number `json:"x13"`
	X21              *Number `json:"x21"`
}

// StockToFlowRecord is one daily row of the stock-to-flow model. Date is
// unix seconds.
type StockToFlowRecord struct {
	Date        int64  `json:"date"`
	Price       Number `json:"price"`
	NextHalving Number `json:"nextHalving"`
}

// TwoHundredWeekMARecord is one daily row of the 200-week moving average
// heatmap. Date is unix seconds.
type TwoHundredWeekMARecord struct {
	Date     int64  `json:"date"`
	BuyQty   Number `json:"buyQty"`
	Price    Number `json:"price"`
	MA1440   Number `json:"mA1440"`
	MA1440IP Number `json:"mA1440IP"`
	SellQty  Number `json:"sellQty"`
}

// StablecoinMarketCapRecord is one bucket of stablecoin market cap history.
// Date is unix seconds.
type StablecoinMarketCapRecord struct {
	Date      int64  `json:"date"`
	MarketCap Number `json:"marketCap"`
	BTCPrice  Number `json:"btcPrice"`
}

// CoinsMarketsRecord is one coin row of the futures market screener
// snapshot. The windowed change columns are absent for thin markets.
type CoinsMarketsRecord struct {
	Symbol              string `json:"symbol"`
	Price               Number `json:"price"`
	MarketCap           Number `json:"marketCap"`
	OIMarketCapRatio    Number `json:"oiMarketCapRatio"`
	AvgFundingRateByOI  Number `json:"avgFundingRateByOi"`
	AvgFundingRateByVol Number `json:"avgFundingRateByVol"`
	OpenInterest        Number `json:"openInterest"`
	OpenInterestAmount  Number `json:"openInterestAmount"`
	OIVolRatio          Number `json:"oiVolRatio"`
	VolUsd              Number `json:"volUsd"`

	VolChangePercent5m  *Number `json:"volChangePercent5m"`
	VolChangePercent15m *Number `json:"volChangePercent15m"`
	VolChangePercent30m *Number `json:"volChangePercent30m"`
	VolChangePercent1h  *Number `json:"volChangePercent1h"`
	VolChangePercent4h  *Number `json:"volChangePercent4h"`
	VolChangePercent24h *Number `json:"volChangePercent24h"`
	VolChange1h         *Number `json:"volChange1h"`
	VolChange4h         *Number `json:"volChange4h"`
	VolChange24h        *Number `json:"volChange24h"`

	OIVolRatioChangePercent1h  *Number `json:"oiVolRatioChangePercent1h"`
	OIVolRatioChangePercent4h  *Number `json:"oiVolRatioChangePercent4h"`
	OIVolRatioChangePercent24h *Number `json:"oiVolRatioChangePercent24h"`
	OIChangePercent5m          *Number `json:"oiChangePercent5m"`
	OIChangePercent15m         *Number `json:"oiChangePercent15m"`
	OIChangePercent30m         *Number `json:"oiChangePercent30m"`
	OIChangePercent1h          *Number `json:"oiChangePercent1h"`
	OIChangePercent4h          *Number `json:"oiChangePercent4h"`
	OIChangePercent24h         *Number `json:"oiChangePercent24h"`
	OIChange5m                 *Number `json:"oiChange5m"`
	OIChange15m                *Number `json:"oiChange15m"`
	OIChange30m                *Number `json:"oiChange30m"`
	OIChange1h                 *Number `json:"oiChange1h"`
	OIChange4h                 *Number `json:"oiChange4h"`
	OIChange24h                *Number `json:"oiChange24h"`

	PriceChangePercent5m  *Number `json:"priceChangePercent5m"`
	PriceChangePercent15m *Number `json:"priceChangePercent15m"`
	PriceChangePercent30m *Number `json:"priceChangePercent30m"`
	PriceChangePercent1h  *Number `json:"priceChangePercent1h"`
	PriceChangePercent4h  *Number `json:"priceChangePercent4h"`
	PriceChangePercent12h *Number `json:"priceChangePercent12h"`
	PriceChangePercent24h *Number `json:"priceChangePercent24h"`

	LS5m           *Number `json:"ls5m"`
	LongVolUsd5m   *Number `json:"longVolUsd5m"`
	ShortVolUsd5m  *Number `json:"shortVolUsd5m"`
	LS15m          *Number `json:"ls15m"`
	LongVolUsd15m  *Number `json:"longVolUsd15m"`
	ShortVolUsd15m *Number `json:"shortVolUsd15m"`
	LS30m          *Number `json:"ls30m"`
	LongVolUsd30m  *Number `json:"longVolUsd30m"`
	ShortVolUsd30m *Number `json:"shortVolUsd30m"`
	LS1h           *Number `json:"ls1h"`
	LongVolUsd1h   *Number `json:"longVolUsd1h"`
	ShortVolUsd1h  *Number `json:"shortVolUsd1h"`
	LS4h           *Number `json:"ls4h"`
	LongVolUsd4h   *Number `json:"longVolUsd4h"`
	ShortVolUsd4h  *Number `json:"shortVolUsd4h"`
	LS12h          *Number `json:"ls12h"`
	LongVolUsd12h  *Number `json:"longVolUsd12h"`
	ShortVolUsd12h *Number `json:"shortVolUsd12h"`
	LS24h          *Number `json:"ls24h"`
	LongVolUsd24h  *Number `json:"longVolUsd24h"`
	ShortVolUsd24h *Number `json:"shortVolUsd24h"`

	LiquidationUsd1h       *Number `json:"liquidationUsd1h"`
	LongLiquidationUsd1h   *Number `json:"longLiquidationUsd1h"`
	ShortLiquidationUsd1h  *Number `json:"shortLiquidationUsd1h"`
	LiquidationUsd4h       *Number `json:"liquidationUsd4h"`
	LongLiquidationUsd4h   *Number `json:"longLiquidationUsd4h"`
	ShortLiquidationUsd4h  *Number `json:"shortLiquidationUsd4h"`
	LiquidationUsd12h      *Number `json:"liquidationUsd12h"`
	LongLiquidationUsd12h  *Number `json:"longLiquidationUsd12h"`
	ShortLiquidationUsd12h *Number `json:"shortLiquidationUsd12h"`
	LiquidationUsd24h      *Number `json:"liquidationUsd24h"`
	LongLiquidationUsd24h  *Number `json:"longLiquidationUsd24h"`
	ShortLiquidationUsd24h *Number `json:"shortLiquidationUsd24h"`
}

// OptionExchangeVolHistory is the column-oriented option volume payload:
// per-exchange daily series keyed by exchange name, aligned with DateList.
// DateList is unix milliseconds.
type OptionExchangeVolHistory struct {
	DateList  []int64              `json:"dateList"`
	PriceList []Number             `json:"priceList"`
	DataMap   map[string][]*Number `json:"dataMap"`
}

// LiquidationExchangeRecord is one exchange row of the liquidation
// exchange-list snapshot.
type LiquidationExchangeRecord struct {
	ExchangeName string `json:"exchangeName"`
	LongVolUsd   Number `json:"longVolUsd"`
	ShortVolUsd  Number `json:"shortVolUsd"`
}

// LiquidationHeatmapRecord is one price level of the model2 liquidation
// heatmap snapshot.
type LiquidationHeatmapRecord struct {
	Price       Number `json:"price"`
	LongVolUsd  Number `json:"longVolUsd"`
	ShortVolUsd Number `json:"shortVolUsd"`
}
