// Package broker defines the capability interface between the decision
// pipeline and a trading venue. Implementations are selected at construction
// time through the registry in factory.go; the core never inspects which
// venue it is talking to.
package broker

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable marks venue-side failures (network, auth, rate limit).
// Callers must not retry PlaceOrder on it without a fresh ClientOrderID or
// venue-side deduplication: a blind retry is a new order.
var ErrUnavailable = errors.New("broker unavailable")

const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// Account is a read-only snapshot of venue-side account state.
type Account struct {
	Equity decimal.Decimal `json:"equity"`
	Cash   decimal.Decimal `json:"cash"`
}

// Position is one venue-side holding. Qty sign encodes long/short.
type Position struct {
	Symbol      string          `json:"symbol"`
	Qty         decimal.Decimal `json:"qty"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// OrderRequest describes a single order submission. ClientOrderID is the
// caller-generated idempotency token; venues that support it deduplicate on
// the token, the mock always does.
type OrderRequest struct {
	Symbol        string
	Side          string
	Qty           decimal.Decimal
	Type          string
	LimitPrice    *decimal.Decimal
	ClientOrderID string
}

// Order is the venue's acknowledgement of a submission or cancellation.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Broker is the venue capability port. Every call is synchronous and must
// honor ctx deadlines; failures surface as (or wrap) ErrUnavailable.
type Broker interface {
	Name() string
	GetAccount(ctx context.Context) (Account, error)
	GetPositions(ctx context.Context) ([]Position, error)
	GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (Order, error)
	CancelOrder(ctx context.Context, orderID string) (Order, error)
}
