package upbit

// Wire types for the Upbit REST API. Orderbook fields are pointers so a
// missing field in the upstream response is distinguishable from a zero.

type wireCandle struct {
	Market          string  `json:"market"`
	CandleDateTime  string  `json:"candle_date_time_utc"`
	OpeningPrice    float64 `json:"opening_price"`
	HighPrice       float64 `json:"high_price"`
	LowPrice        float64 `json:"low_price"`
	TradePrice      float64 `json:"trade_price"`
	Timestamp       int64   `json:"timestamp"`
	AccTradePrice   float64 `json:"candle_acc_trade_price"`
	AccTradeVolume  float64 `json:"candle_acc_trade_volume"`
}

type wireTicker struct {
	Market     string  `json:"market"`
	TradePrice float64 `json:"trade_price"`
}

type wireAccount struct {
	Currency    string `json:"currency"`
	Balance     string `json:"balance"`
	Locked      string `json:"locked"`
	AvgBuyPrice string `json:"avg_buy_price"`
	UnitCurrency string `json:"unit_currency"`
}

type wireOrderbookUnit struct {
	AskPrice *float64 `json:"ask_price"`
	BidPrice *float64 `json:"bid_price"`
	AskSize  *float64 `json:"ask_size"`
	BidSize  *float64 `json:"bid_size"`
}

type wireOrderbook struct {
	Market       string               `json:"market"`
	Timestamp    *int64               `json:"timestamp"`
	TotalAskSize *float64             `json:"total_ask_size"`
	TotalBidSize *float64             `json:"total_bid_size"`
	Units        *[]wireOrderbookUnit `json:"orderbook_units"`
}

type wireOrder struct {
	UUID    string `json:"uuid"`
	Side    string `json:"side"`
	OrdType string `json:"ord_type"`
	State   string `json:"state"`
	Market  string `json:"market"`
}
