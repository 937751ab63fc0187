// Package alpaca adapts the Alpaca trading API to the broker port. Calls are
// throttled client-side so a tight decision loop cannot trip the venue's
// rate limits.
package alpaca

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kudanforge/internal/broker"
	"kudanforge/internal/config"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

func init() {
	broker.Register("alpaca", func(cfg config.BrokerConfig) (broker.Broker, error) {
		return New(cfg)
	})
}

// Client implements broker.Broker against Alpaca's paper or live endpoints.
type Client struct {
	tradeClient *alpaca.Client
	mdClient    *marketdata.Client
	httpClient  *http.Client
	limiter     *rate.Limiter
	timeout     time.Duration
}

var _ broker.Broker = (*Client)(nil)

func New(cfg config.BrokerConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("alpaca credentials are missing")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	// The SDK calls take no context, so the deadline rides on the transport.
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		tradeClient: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:     cfg.APIKey,
			APISecret:  cfg.SecretKey,
			BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
			HTTPClient: httpClient,
		}),
		mdClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     cfg.APIKey,
			APISecret:  cfg.SecretKey,
			HTTPClient: httpClient,
		}),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitRPS),
		timeout:    timeout,
	}, nil
}

func (c *Client) Name() string { return "alpaca" }

// acquire waits for a rate limiter slot, bounded by the configured timeout.
// The HTTP call itself is bounded by the shared client's transport timeout.
func (c *Client) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.limiter.Wait(waitCtx); err != nil {
		return fmt.Errorf("%w: %v", broker.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	if err := c.acquire(ctx); err != nil {
		return broker.Account{}, err
	}
	acct, err := c.tradeClient.GetAccount()
	if err != nil {
		return broker.Account{}, fmt.Errorf("%w: get account: %v", broker.ErrUnavailable, err)
	}
	return broker.Account{Equity: acct.Equity, Cash: acct.Cash}, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]broker.Position, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	raw, err := c.tradeClient.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("%w: get positions: %v", broker.ErrUnavailable, err)
	}
	out := make([]broker.Position, 0, len(raw))
	for _, p := range raw {
		qty := p.Qty
		if strings.EqualFold(string(p.Side), "short") {
			qty = qty.Neg()
		}
		var mv decimal.Decimal
		if p.MarketValue != nil {
			mv = *p.MarketValue
		}
		out = append(out, broker.Position{Symbol: p.Symbol, Qty: qty, MarketValue: mv})
	}
	return out, nil
}

func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := c.acquire(ctx); err != nil {
		return decimal.Zero, err
	}
	quote, err := c.mdClient.GetLatestCryptoQuote(symbol, marketdata.GetLatestCryptoQuoteRequest{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: latest quote %s: %v", broker.ErrUnavailable, symbol, err)
	}
	if quote == nil {
		return decimal.Zero, fmt.Errorf("%w: no quote for %s", broker.ErrUnavailable, symbol)
	}
	return decimal.NewFromFloat(quote.BidPrice), nil
}

func (c *Client) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	if err := c.acquire(ctx); err != nil {
		return broker.Order{}, err
	}
	qty := req.Qty
	placeReq := alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          alpaca.Side(req.Side),
		Type:          alpaca.OrderType(req.Type),
		TimeInForce:   alpaca.GTC,
		ClientOrderID: req.ClientOrderID,
	}
	if req.LimitPrice != nil {
		placeReq.LimitPrice = req.LimitPrice
	}
	order, err := c.tradeClient.PlaceOrder(placeReq)
	if err != nil {
		return broker.Order{}, fmt.Errorf("%w: place order %s %s: %v", broker.ErrUnavailable, req.Side, req.Symbol, err)
	}
	return broker.Order{ID: order.ID, Status: string(order.Status)}, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (broker.Order, error) {
	if err := c.acquire(ctx); err != nil {
		return broker.Order{}, err
	}
	if err := c.tradeClient.CancelOrder(orderID); err != nil {
		return broker.Order{}, fmt.Errorf("%w: cancel order %s: %v", broker.ErrUnavailable, orderID, err)
	}
	return broker.Order{ID: orderID, Status: "canceled"}, nil
}
