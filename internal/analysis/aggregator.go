package analysis

import (
	"context"
	"math"

	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/ta"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/types"
)

// Indicator parameters are fixed: Bollinger 20/2, RSI 14, MACD 12/26/9,
// SMA 20, EMA 12.
const (
	bbWindow   = 20
	bbStdDev   = 2.0
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	smaWindow  = 20
	emaWindow  = 12
)

// Aggregator composes the exchange's read operations into one analysis
// payload. Any sub-call failure propagates unchanged; the decision agent
// needs the complete picture or nothing.
type Aggregator struct {
	exchange    interfaces.Exchange
	market      string
	dailyCount  int
	hourlyCount int
}

func New(exchange interfaces.Exchange, market string, dailyCount, hourlyCount int) *Aggregator {
	return &Aggregator{
		exchange:    exchange,
		market:      market,
		dailyCount:  dailyCount,
		hourlyCount: hourlyCount,
	}
}

// Snapshot builds a fresh AnalysisPayload from the exchange.
func (a *Aggregator) Snapshot(ctx context.Context) (types.AnalysisPayload, error) {
	ctx, span := trace.StartSpan(ctx, "analysis.Snapshot")
	defer span.End()

	var payload types.AnalysisPayload

	status, err := a.exchange.InvestmentStatus(ctx, a.market)
	if err != nil {
		return payload, err
	}
	payload.InvestmentStatus = status

	daily, err := a.exchange.DailyCandles(ctx, a.market, a.dailyCount)
	if err != nil {
		return payload, err
	}
	payload.CandleData = EnrichIndicators(daily)

	hourly, err := a.exchange.HourlyCandles(ctx, a.market, a.hourlyCount)
	if err != nil {
		return payload, err
	}
	payload.HourCandleData = EnrichIndicators(hourly)

	orderbook, err := a.exchange.OrderBook(ctx, a.market)
	if err != nil {
		return payload, err
	}
	payload.OrderBookStatus = orderbook

	logger.Debug(ctx, "Analysis payload assembled",
		"market", a.market,
		"daily_bars", len(payload.CandleData),
		"hourly_bars", len(payload.HourCandleData),
		"orderbook_levels", len(payload.OrderBookStatus.Units),
	)
	return payload, nil
}

// EnrichIndicators returns the window with derived indicator fields
// attached per bar. Bars with missing OHLC data are dropped first; order is
// otherwise preserved. Positions without enough history stay nil.
func EnrichIndicators(candles []types.Candle) []types.Candle {
	out := dropIncomplete(candles)
	if len(out) == 0 {
		return out
	}

	closes := make([]float64, len(out))
	for i, c := range out {
		closes[i] = c.Close
	}

	bbUpper, bbMid, bbLower := ta.BollingerSeries(closes, bbWindow, bbStdDev)
	rsi := ta.RSISeries(closes, rsiPeriod)
	macd, signal, hist := ta.MACDSeries(closes, macdFast, macdSlow, macdSignal)
	sma := ta.SMASeries(closes, smaWindow)
	ema := ta.EMASeries(closes, emaWindow)

	for i := range out {
		out[i].BBUpper = ptr(bbUpper[i])
		out[i].BBMid = ptr(bbMid[i])
		out[i].BBLower = ptr(bbLower[i])
		out[i].RSI = ptr(rsi[i])
		out[i].MACD = ptr(macd[i])
		out[i].MACDSignal = ptr(signal[i])
		out[i].MACDDiff = ptr(hist[i])
		out[i].SMA20 = ptr(sma[i])
		out[i].EMA12 = ptr(ema[i])
	}
	return out
}

func dropIncomplete(candles []types.Candle) []types.Candle {
	out := make([]types.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
