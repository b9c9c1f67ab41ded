package upbit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kestrel-trading-bot/internal/httpx"
	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/types"
)

// Error wraps any exchange-side failure: upstream errors, malformed
// responses, rejected orders. Transport failures keep httpx.ErrUnavailable
// reachable through Unwrap.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("exchange: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Paper balances used when Mode is DRY_RUN: market data stays live but the
// account is simulated.
const (
	paperKRWBalance  = 1_000_000.0
	paperCoinBalance = 0.0
)

type Params struct {
	Mode          string
	AccessKey     string
	SecretKey     string
	BaseURL       string
	Timeout       time.Duration
	Retry         time.Duration
	RatePerSecond int
}

// Client is the Upbit exchange gateway. Construct once per process and
// reuse; it holds no mutable state beyond the HTTP connection pool.
type Client struct {
	p    Params
	http *httpx.Client
}

var _ interfaces.Exchange = (*Client)(nil)

func New(p Params) *Client {
	opts := []httpx.ClientOption{
		httpx.WithBaseURL(p.BaseURL),
		httpx.WithHeader("Accept", "application/json"),
	}
	if p.Timeout > 0 {
		opts = append(opts, httpx.WithTimeout(p.Timeout))
	}
	if p.RatePerSecond > 0 {
		opts = append(opts, httpx.WithRateLimit(p.RatePerSecond))
	}
	if p.Retry > 0 {
		opts = append(opts, httpx.WithRetry(p.Retry))
	}
	return &Client{p: p, http: httpx.NewClient(opts...)}
}

func (c *Client) DailyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	return c.fetchCandles(ctx, "/v1/candles/days", market, count, "daily candles")
}

func (c *Client) HourlyCandles(ctx context.Context, market string, count int) ([]types.Candle, error) {
	return c.fetchCandles(ctx, "/v1/candles/minutes/60", market, count, "hourly candles")
}

func (c *Client) fetchCandles(ctx context.Context, path, market string, count int, op string) ([]types.Candle, error) {
	u := fmt.Sprintf("%s?market=%s&count=%d", path, url.QueryEscape(market), count)
	resp, err := c.http.GET(ctx, u, nil)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	var wire []wireCandle
	if err := resp.ParseJSON(&wire); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	// Upbit returns newest first; callers expect chronological order.
	candles := make([]types.Candle, 0, len(wire))
	for i := len(wire) - 1; i >= 0; i-- {
		w := wire[i]
		candles = append(candles, types.Candle{
			Timestamp: w.Timestamp,
			Open:      w.OpeningPrice,
			High:      w.HighPrice,
			Low:       w.LowPrice,
			Close:     w.TradePrice,
			Volume:    w.AccTradeVolume,
			Value:     w.AccTradePrice,
		})
	}
	return candles, nil
}

// CurrentPrice returns the latest trade price for a market.
func (c *Client) CurrentPrice(ctx context.Context, market string) (float64, error) {
	u := "/v1/ticker?markets=" + url.QueryEscape(market)
	resp, err := c.http.GET(ctx, u, nil)
	if err != nil {
		return 0, &Error{Op: "current price", Err: err}
	}
	var wire []wireTicker
	if err := resp.ParseJSON(&wire); err != nil {
		return 0, &Error{Op: "current price", Err: err}
	}
	if len(wire) == 0 {
		return 0, &Error{Op: "current price", Err: fmt.Errorf("no ticker data for %s", market)}
	}
	return wire[0].TradePrice, nil
}

func (c *Client) InvestmentStatus(ctx context.Context, market string) (types.InvestmentStatus, error) {
	status := types.InvestmentStatus{Balance: map[string]types.BalanceEntry{}}

	price, err := c.CurrentPrice(ctx, market)
	if err != nil {
		return status, &Error{Op: "investment status", Err: err}
	}
	status.CurrentPrice = price

	quote, coin, err := splitMarket(market)
	if err != nil {
		return status, &Error{Op: "investment status", Err: err}
	}

	balances, err := c.balances(ctx)
	if err != nil {
		return status, &Error{Op: "investment status", Err: err}
	}
	for currency, entry := range balances {
		if currency == coin || currency == quote {
			status.Balance[currency] = entry
		}
	}

	if held, ok := status.Balance[coin]; ok && held.Amount > 0 {
		status.InvestedAmount = held.Amount * held.AvgBuyPrice
		status.CurrentValue = held.Amount * price
		status.ProfitLoss = status.CurrentValue - status.InvestedAmount
		if status.InvestedAmount > 0 {
			status.ProfitLossPercent = (status.CurrentValue/status.InvestedAmount - 1) * 100
		}
	}
	return status, nil
}

func (c *Client) OrderBook(ctx context.Context, market string) (types.OrderBookSnapshot, error) {
	var snap types.OrderBookSnapshot

	u := "/v1/orderbook?markets=" + url.QueryEscape(market)
	resp, err := c.http.GET(ctx, u, nil)
	if err != nil {
		return snap, &Error{Op: "order book", Err: err}
	}
	var wire []wireOrderbook
	if err := resp.ParseJSON(&wire); err != nil {
		return snap, &Error{Op: "order book", Err: err}
	}
	if len(wire) == 0 {
		return snap, &Error{Op: "order book", Err: fmt.Errorf("no orderbook data for %s", market)}
	}

	ob := wire[0]
	if ob.Timestamp == nil || ob.TotalAskSize == nil || ob.TotalBidSize == nil || ob.Units == nil {
		return snap, &Error{Op: "order book", Err: fmt.Errorf("missing required keys in orderbook data")}
	}

	snap.Timestamp = *ob.Timestamp
	snap.TotalAskSize = *ob.TotalAskSize
	snap.TotalBidSize = *ob.TotalBidSize
	if snap.TotalBidSize > 0 {
		snap.AskBidRatio = snap.TotalAskSize / snap.TotalBidSize
	}
	snap.Units = make([]types.OrderBookUnit, 0, len(*ob.Units))
	for _, u := range *ob.Units {
		// Levels missing any field are skipped, not fatal.
		if u.AskPrice == nil || u.BidPrice == nil || u.AskSize == nil || u.BidSize == nil {
			continue
		}
		snap.Units = append(snap.Units, types.OrderBookUnit{
			AskPrice: *u.AskPrice,
			BidPrice: *u.BidPrice,
			AskSize:  *u.AskSize,
			BidSize:  *u.BidSize,
		})
	}
	return snap, nil
}

func (c *Client) Balance(ctx context.Context, currency string) (float64, error) {
	balances, err := c.balances(ctx)
	if err != nil {
		return 0, &Error{Op: "balance", Err: err}
	}
	return balances[currency].Amount, nil
}

func (c *Client) BuyMarket(ctx context.Context, market string, price float64) (string, error) {
	if c.p.Mode == "DRY_RUN" {
		id := fmt.Sprintf("SIM-%d", time.Now().UnixNano())
		logger.Info(ctx, "Simulated market buy", "market", market, "price", price, "order_id", id)
		return id, nil
	}
	params := url.Values{}
	params.Set("market", market)
	params.Set("side", "bid")
	params.Set("price", formatFloat(price))
	params.Set("ord_type", "price")
	return c.placeOrder(ctx, params, "buy order")
}

func (c *Client) SellMarket(ctx context.Context, market string, volume float64) (string, error) {
	if c.p.Mode == "DRY_RUN" {
		id := fmt.Sprintf("SIM-%d", time.Now().UnixNano())
		logger.Info(ctx, "Simulated market sell", "market", market, "volume", volume, "order_id", id)
		return id, nil
	}
	params := url.Values{}
	params.Set("market", market)
	params.Set("side", "ask")
	params.Set("volume", formatFloat(volume))
	params.Set("ord_type", "market")
	return c.placeOrder(ctx, params, "sell order")
}

func (c *Client) placeOrder(ctx context.Context, params url.Values, op string) (string, error) {
	query := params.Encode()
	token, err := authToken(c.p.AccessKey, c.p.SecretKey, query)
	if err != nil {
		return "", &Error{Op: op, Err: err}
	}

	body := map[string]string{}
	for k := range params {
		body[k] = params.Get(k)
	}
	resp, err := c.http.POST(ctx, "/v1/orders", body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return "", &Error{Op: op, Err: err}
	}
	var order wireOrder
	if err := resp.ParseJSON(&order); err != nil {
		return "", &Error{Op: op, Err: err}
	}
	if order.UUID == "" {
		return "", &Error{Op: op, Err: fmt.Errorf("order response missing uuid")}
	}
	return order.UUID, nil
}

func (c *Client) balances(ctx context.Context) (map[string]types.BalanceEntry, error) {
	if c.p.Mode == "DRY_RUN" {
		return map[string]types.BalanceEntry{
			"KRW": {Amount: paperKRWBalance},
		}, nil
	}

	token, err := authToken(c.p.AccessKey, c.p.SecretKey, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.http.GET(ctx, "/v1/accounts", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}
	var wire []wireAccount
	if err := resp.ParseJSON(&wire); err != nil {
		return nil, err
	}

	balances := make(map[string]types.BalanceEntry, len(wire))
	for _, acc := range wire {
		amount, err := strconv.ParseFloat(acc.Balance, 64)
		if err != nil {
			return nil, fmt.Errorf("parse balance for %s: %w", acc.Currency, err)
		}
		locked, err := strconv.ParseFloat(acc.Locked, 64)
		if err != nil {
			return nil, fmt.Errorf("parse locked for %s: %w", acc.Currency, err)
		}
		avg, err := strconv.ParseFloat(acc.AvgBuyPrice, 64)
		if err != nil {
			return nil, fmt.Errorf("parse avg_buy_price for %s: %w", acc.Currency, err)
		}
		balances[acc.Currency] = types.BalanceEntry{
			Amount:      amount,
			AvgBuyPrice: avg,
			Locked:      locked,
		}
	}
	return balances, nil
}

// splitMarket splits "KRW-BTC" into quote "KRW" and coin "BTC".
func splitMarket(market string) (quote, coin string, err error) {
	parts := strings.SplitN(market, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed market %q", market)
	}
	return parts[0], parts[1], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
