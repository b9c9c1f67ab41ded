package exchangeobs

import (
	"context"

	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/types"
)

// observableExchange wraps an Exchange with logging and tracing.
type observableExchange struct {
	exchange interfaces.Exchange
}

var _ interfaces.Exchange = (*observableExchange)(nil)

// Wrap wraps an exchange with observability middleware
func Wrap(exchange interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{exchange: exchange}
}

func (oe *observableExchange) DailyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.DailyCandles")
	defer span.End()

	candles, err := oe.exchange.DailyCandles(ctx, market, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch daily candles", err, "market", market, "count", count)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Daily candles fetched", "market", market, "count", len(candles))
	return candles, nil
}

func (oe *observableExchange) HourlyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.HourlyCandles")
	defer span.End()

	candles, err := oe.exchange.HourlyCandles(ctx, market, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch hourly candles", err, "market", market, "count", count)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Hourly candles fetched", "market", market, "count", len(candles))
	return candles, nil
}

func (oe *observableExchange) InvestmentStatus(ctx context.Context, market string) (types.InvestmentStatus, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.InvestmentStatus")
	defer span.End()

	status, err := oe.exchange.InvestmentStatus(ctx, market)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch investment status", err, "market", market)
		return status, err
	}
	logger.DebugSkip(ctx, 1, "Investment status fetched",
		"market", market,
		"current_price", status.CurrentPrice,
		"profit_loss_percent", status.ProfitLossPercent,
	)
	return status, nil
}

func (oe *observableExchange) OrderBook(ctx context.Context, market string) (types.OrderBookSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.OrderBook")
	defer span.End()

	snap, err := oe.exchange.OrderBook(ctx, market)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch order book", err, "market", market)
		return snap, err
	}
	logger.DebugSkip(ctx, 1, "Order book fetched",
		"market", market,
		"levels", len(snap.Units),
		"ask_bid_ratio", snap.AskBidRatio,
	)
	return snap, nil
}

func (oe *observableExchange) Balance(ctx context.Context, currency string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Balance")
	defer span.End()

	amount, err := oe.exchange.Balance(ctx, currency)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err, "currency", currency)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Balance fetched", "currency", currency, "amount", amount)
	return amount, nil
}

func (oe *observableExchange) BuyMarket(ctx context.Context, market string, price float64) (string, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.BuyMarket")
	defer span.End()

	orderID, err := oe.exchange.BuyMarket(ctx, market, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place buy order", err, "market", market, "price", price)
		return "", err
	}
	logger.Order(ctx, market, "bid", price, orderID)
	return orderID, nil
}

func (oe *observableExchange) SellMarket(ctx context.Context, market string, volume float64) (string, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.SellMarket")
	defer span.End()

	orderID, err := oe.exchange.SellMarket(ctx, market, volume)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place sell order", err, "market", market, "volume", volume)
		return "", err
	}
	logger.Order(ctx, market, "ask", volume, orderID)
	return orderID, nil
}
