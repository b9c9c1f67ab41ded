package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"kestrel-trading-bot/internal/types"
)

type stubExchange struct {
	daily     []types.Candle
	hourly    []types.Candle
	status    types.InvestmentStatus
	orderbook types.OrderBookSnapshot

	dailyErr     error
	orderbookErr error
}

func (s *stubExchange) DailyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	return s.daily, s.dailyErr
}

func (s *stubExchange) HourlyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	return s.hourly, nil
}

func (s *stubExchange) InvestmentStatus(ctx context.Context, market string) (types.InvestmentStatus, error) {
	return s.status, nil
}

func (s *stubExchange) OrderBook(ctx context.Context, market string) (types.OrderBookSnapshot, error) {
	return s.orderbook, s.orderbookErr
}

func (s *stubExchange) Balance(ctx context.Context, currency string) (float64, error) {
	return 0, nil
}

func (s *stubExchange) BuyMarket(ctx context.Context, market string, price float64) (string, error) {
	return "", nil
}

func (s *stubExchange) SellMarket(ctx context.Context, market string, volume float64) (string, error) {
	return "", nil
}

func makeCandles(n int) []types.Candle {
	candles := make([]types.Candle, n)
	for i := range candles {
		price := 100 + math.Sin(float64(i))*5
		candles[i] = types.Candle{
			Timestamp: int64(i) * 1000,
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    10,
		}
	}
	return candles
}

func TestSnapshotComposesPayload(t *testing.T) {
	ex := &stubExchange{
		daily:  makeCandles(30),
		hourly: makeCandles(24),
		status: types.InvestmentStatus{CurrentPrice: 50000000},
		orderbook: types.OrderBookSnapshot{
			Timestamp:    123,
			TotalAskSize: 3,
			TotalBidSize: 1,
			AskBidRatio:  3,
			Units:        []types.OrderBookUnit{{AskPrice: 101, BidPrice: 100, AskSize: 1, BidSize: 1}},
		},
	}
	a := New(ex, "KRW-BTC", 30, 24)

	payload, err := a.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(payload.CandleData) != 30 {
		t.Errorf("Expected 30 daily bars, got %d", len(payload.CandleData))
	}
	if len(payload.HourCandleData) != 24 {
		t.Errorf("Expected 24 hourly bars, got %d", len(payload.HourCandleData))
	}
	if payload.InvestmentStatus.CurrentPrice != 50000000 {
		t.Errorf("Expected investment status carried through, got %f", payload.InvestmentStatus.CurrentPrice)
	}
	if payload.OrderBookStatus.AskBidRatio != 3 {
		t.Errorf("Expected orderbook carried through, got ratio %f", payload.OrderBookStatus.AskBidRatio)
	}

	// 30 bars cover the slowest window: last daily bar has every indicator.
	last := payload.CandleData[len(payload.CandleData)-1]
	for name, v := range map[string]*float64{
		"bb_upper": last.BBUpper, "bb_mid": last.BBMid, "bb_lower": last.BBLower,
		"rsi": last.RSI, "macd": last.MACD, "sma20": last.SMA20, "ema12": last.EMA12,
	} {
		if v == nil {
			t.Errorf("Expected %s defined at last daily bar", name)
		}
	}

	// 24 hourly bars are short of the 26-bar MACD window: nil, not zero.
	lastHour := payload.HourCandleData[len(payload.HourCandleData)-1]
	if lastHour.MACD != nil {
		t.Errorf("Expected nil MACD with 24 bars, got %f", *lastHour.MACD)
	}
	if lastHour.RSI == nil {
		t.Error("Expected RSI defined with 24 bars")
	}
}

func TestSnapshotPropagatesError(t *testing.T) {
	wantErr := errors.New("candles unavailable")
	ex := &stubExchange{dailyErr: wantErr}
	a := New(ex, "KRW-BTC", 30, 24)

	_, err := a.Snapshot(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected sub-call error to propagate, got %v", err)
	}
}

func TestSnapshotPropagatesOrderBookError(t *testing.T) {
	wantErr := errors.New("orderbook unavailable")
	ex := &stubExchange{
		daily:        makeCandles(30),
		hourly:       makeCandles(24),
		orderbookErr: wantErr,
	}
	a := New(ex, "KRW-BTC", 30, 24)

	_, err := a.Snapshot(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected orderbook error to propagate, got %v", err)
	}
}

func TestEnrichIndicatorsDropsIncompleteBars(t *testing.T) {
	candles := makeCandles(10)
	candles[4].Close = 0

	out := EnrichIndicators(candles)
	if len(out) != 9 {
		t.Errorf("Expected incomplete bar dropped, got %d bars", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Timestamp <= out[i-1].Timestamp {
			t.Error("Expected order preserved after dropping")
		}
	}
}

func TestEnrichIndicatorsEmpty(t *testing.T) {
	out := EnrichIndicators(nil)
	if len(out) != 0 {
		t.Errorf("Expected empty result, got %d", len(out))
	}
}

func TestEnrichIndicatorsInsufficientHistory(t *testing.T) {
	out := EnrichIndicators(makeCandles(5))
	for i, c := range out {
		if c.BBUpper != nil || c.RSI != nil || c.MACD != nil || c.SMA20 != nil {
			t.Errorf("Expected nil indicators at bar %d with 5 bars of history", i)
		}
	}
}
