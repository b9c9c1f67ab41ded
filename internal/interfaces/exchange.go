package interfaces

import (
	"context"

	"kestrel-trading-bot/internal/types"
)

// Exchange defines the read and write operations against the exchange.
type Exchange interface {
	// DailyCandles fetches the last count daily OHLCV bars, oldest first.
	DailyCandles(ctx context.Context, market string, count int) ([]types.Candle, error)

	// HourlyCandles fetches the last count hourly OHLCV bars, oldest first.
	HourlyCandles(ctx context.Context, market string, count int) ([]types.Candle, error)

	// InvestmentStatus fetches current price and balances and derives the
	// P&L figures for the market.
	InvestmentStatus(ctx context.Context, market string) (types.InvestmentStatus, error)

	// OrderBook fetches the current order book snapshot.
	OrderBook(ctx context.Context, market string) (types.OrderBookSnapshot, error)

	// Balance returns the available amount of one currency.
	Balance(ctx context.Context, currency string) (float64, error)

	// BuyMarket places a market buy spending the given quote amount and
	// returns the order id.
	BuyMarket(ctx context.Context, market string, price float64) (string, error)

	// SellMarket places a market sell of the given volume and returns the
	// order id.
	SellMarket(ctx context.Context, market string, volume float64) (string, error)
}
