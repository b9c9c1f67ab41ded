package executor

import (
	"context"
	"fmt"
	"strings"

	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/tradelog"
	"kestrel-trading-bot/internal/types"
)

// Executor interprets a decision and conditionally submits a market order.
// Buys spend the full available quote balance after the exchange fee
// factor; sells liquidate the full held volume. Either side is skipped when
// the notional value does not exceed the configured minimum.
type Executor struct {
	exchange    interfaces.Exchange
	market      string
	minNotional float64
	feeFactor   float64
}

func New(exchange interfaces.Exchange, market string, minNotional, feeFactor float64) *Executor {
	return &Executor{
		exchange:    exchange,
		market:      market,
		minNotional: minNotional,
		feeFactor:   feeFactor,
	}
}

// Execute carries out one decision. The no-op paths (hold, below-minimum)
// return a result with Executed false and no error.
func (e *Executor) Execute(ctx context.Context, decision types.Decision) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "executor.Execute")
	defer span.End()

	logger.Decision(ctx, e.market, decision.Decision, decision.Reason)

	var (
		result types.OrderResult
		err    error
	)
	switch decision.Decision {
	case types.DecisionBuy:
		result, err = e.buy(ctx)
	case types.DecisionSell:
		result, err = e.sell(ctx)
	case types.DecisionHold:
		result = types.OrderResult{Message: "hold"}
	default:
		err = fmt.Errorf("unknown decision %q", decision.Decision)
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Order execution failed", err, "market", e.market, "decision", decision.Decision)
		return types.OrderResult{}, err
	}

	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Market:   e.market,
		Decision: decision.Decision,
		Reason:   decision.Reason,
		Executed: result.Executed,
	})
	return result, nil
}

func (e *Executor) buy(ctx context.Context) (types.OrderResult, error) {
	quote, _ := splitMarket(e.market)
	balance, err := e.exchange.Balance(ctx, quote)
	if err != nil {
		return types.OrderResult{}, err
	}

	spend := balance * e.feeFactor
	if spend <= e.minNotional {
		logger.Info(ctx, "Buy skipped below minimum notional",
			"market", e.market, "balance", balance, "spend", spend, "min_notional", e.minNotional)
		return types.OrderResult{Side: types.DecisionBuy, Message: "below minimum notional"}, nil
	}

	orderID, err := e.exchange.BuyMarket(ctx, e.market, spend)
	if err != nil {
		return types.OrderResult{}, err
	}
	_ = tradelog.Append(tradelog.Entry{Market: e.market, Side: "bid", OrderID: orderID, Amount: spend})
	return types.OrderResult{Executed: true, Side: types.DecisionBuy, OrderID: orderID, Amount: spend}, nil
}

func (e *Executor) sell(ctx context.Context) (types.OrderResult, error) {
	_, coin := splitMarket(e.market)
	volume, err := e.exchange.Balance(ctx, coin)
	if err != nil {
		return types.OrderResult{}, err
	}

	orderbook, err := e.exchange.OrderBook(ctx, e.market)
	if err != nil {
		return types.OrderResult{}, err
	}
	if len(orderbook.Units) == 0 {
		return types.OrderResult{}, fmt.Errorf("empty order book for %s", e.market)
	}
	bestAsk := orderbook.Units[0].AskPrice

	value := volume * bestAsk
	if value <= e.minNotional {
		logger.Info(ctx, "Sell skipped below minimum notional",
			"market", e.market, "volume", volume, "value", value, "min_notional", e.minNotional)
		return types.OrderResult{Side: types.DecisionSell, Message: "below minimum notional"}, nil
	}

	orderID, err := e.exchange.SellMarket(ctx, e.market, volume)
	if err != nil {
		return types.OrderResult{}, err
	}
	_ = tradelog.Append(tradelog.Entry{Market: e.market, Side: "ask", OrderID: orderID, Amount: volume})
	return types.OrderResult{Executed: true, Side: types.DecisionSell, OrderID: orderID, Amount: volume}, nil
}

func splitMarket(market string) (quote, coin string) {
	parts := strings.SplitN(market, "-", 2)
	if len(parts) != 2 {
		return market, ""
	}
	return parts[0], parts[1]
}
