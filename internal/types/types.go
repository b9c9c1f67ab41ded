package types

// Candle is a single OHLCV bar. Value is the accumulated trade amount in
// quote currency over the bar. Indicator fields are nil until enough
// history exists to compute them.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Value     float64 `json:"value"`

	BBUpper    *float64 `json:"bb_upper"`
	BBMid      *float64 `json:"bb_mid"`
	BBLower    *float64 `json:"bb_lower"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDDiff   *float64 `json:"macd_diff"`
	SMA20      *float64 `json:"sma_20"`
	EMA12      *float64 `json:"ema_12"`
}

// BalanceEntry is the held amount of one currency on the exchange.
type BalanceEntry struct {
	Amount      float64 `json:"amount"`
	AvgBuyPrice float64 `json:"avg_buy_price"`
	Locked      float64 `json:"locked"`
}

// InvestmentStatus is the account view for one market: balances filtered to
// the traded coin and the quote currency, plus derived P&L figures.
// ProfitLossPercent is 0 when nothing is invested.
type InvestmentStatus struct {
	Balance           map[string]BalanceEntry `json:"balance"`
	CurrentPrice      float64                 `json:"current_price"`
	InvestedAmount    float64                 `json:"invested_amount"`
	CurrentValue      float64                 `json:"current_value"`
	ProfitLoss        float64                 `json:"profit_loss"`
	ProfitLossPercent float64                 `json:"profit_loss_percent"`
}

// OrderBookUnit is one price level of the order book.
type OrderBookUnit struct {
	AskPrice float64 `json:"ask_price"`
	BidPrice float64 `json:"bid_price"`
	AskSize  float64 `json:"ask_size"`
	BidSize  float64 `json:"bid_size"`
}

// OrderBookSnapshot is the aggregated order book state.
// AskBidRatio is TotalAskSize/TotalBidSize, or 0 when TotalBidSize is 0.
type OrderBookSnapshot struct {
	Timestamp    int64           `json:"timestamp"`
	TotalAskSize float64         `json:"total_ask_size"`
	TotalBidSize float64         `json:"total_bid_size"`
	AskBidRatio  float64         `json:"ask_bid_ratio"`
	Units        []OrderBookUnit `json:"orderbook_units"`
}

// AnalysisPayload is the complete market picture serialized into the
// decision prompt. Built fresh per request, never cached.
type AnalysisPayload struct {
	InvestmentStatus InvestmentStatus  `json:"investment_status"`
	CandleData       []Candle          `json:"candle_data"`
	HourCandleData   []Candle          `json:"hour_candle_data"`
	OrderBookStatus  OrderBookSnapshot `json:"orderbook_status"`
}

// Decision is the parsed LLM verdict. Decision is always lowercase, one of
// "buy", "sell", "hold".
type Decision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

const (
	DecisionBuy  = "buy"
	DecisionSell = "sell"
	DecisionHold = "hold"
)

// OrderResult reports what the executor did for one decision.
type OrderResult struct {
	Executed bool    `json:"executed"`
	Side     string  `json:"side,omitempty"`
	OrderID  string  `json:"order_id,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// TradingResult is the item returned by the trigger endpoint.
type TradingResult struct {
	Market   string      `json:"market"`
	Decision Decision    `json:"decision"`
	Order    OrderResult `json:"order"`
}
