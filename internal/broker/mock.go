package broker

import (
	"context"
	"fmt"
	"sync"

	"kudanforge/internal/config"

	"github.com/shopspring/decimal"
)

func init() {
	Register("mock", func(config.BrokerConfig) (Broker, error) {
		return NewMock(), nil
	})
}

// Mock is a deterministic in-memory venue. PlaceOrder mutates its position
// ledger synchronously, so tests can assert exact post-trade state without
// any network I/O. Safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	positions map[string]decimal.Decimal
	prices    map[string]decimal.Decimal
	equity    decimal.Decimal
	submitted map[string]Order // by ClientOrderID
}

func NewMock() *Mock {
	return &Mock{
		positions: map[string]decimal.Decimal{},
		prices: map[string]decimal.Decimal{
			"BTCUSD": decimal.NewFromInt(50000),
			"ETHUSD": decimal.NewFromInt(3000),
		},
		equity:    decimal.NewFromInt(100000),
		submitted: map[string]Order{},
	}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) GetAccount(context.Context) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	half := decimal.NewFromFloat(0.5)
	return Account{Equity: m.equity, Cash: m.equity.Mul(half)}, nil
}

func (m *Mock) GetPositions(ctx context.Context) ([]Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Position
	for symbol, qty := range m.positions {
		if qty.IsZero() {
			continue
		}
		out = append(out, Position{
			Symbol:      symbol,
			Qty:         qty,
			MarketValue: qty.Mul(m.priceLocked(symbol)),
		})
	}
	return out, nil
}

func (m *Mock) GetLatestPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceLocked(symbol), nil
}

func (m *Mock) priceLocked(symbol string) decimal.Decimal {
	if p, ok := m.prices[symbol]; ok {
		return p
	}
	return decimal.NewFromInt(100)
}

func (m *Mock) PlaceOrder(_ context.Context, req OrderRequest) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ClientOrderID != "" {
		if prev, ok := m.submitted[req.ClientOrderID]; ok {
			return prev, nil
		}
	}
	current := m.positions[req.Symbol]
	if req.Side == SideSell {
		m.positions[req.Symbol] = current.Sub(req.Qty)
	} else {
		m.positions[req.Symbol] = current.Add(req.Qty)
	}
	order := Order{
		ID:     fmt.Sprintf("mock-%s-%s", req.Symbol, req.Qty.String()),
		Status: "accepted",
	}
	if req.ClientOrderID != "" {
		m.submitted[req.ClientOrderID] = order
	}
	return order, nil
}

func (m *Mock) CancelOrder(_ context.Context, orderID string) (Order, error) {
	return Order{ID: orderID, Status: "canceled"}, nil
}

// SetPrice overrides the quoted price for symbol.
func (m *Mock) SetPrice(symbol string, price decimal.Decimal) {
	m.mu.Lock()
	m.prices[symbol] = price
	m.mu.Unlock()
}

// SetEquity overrides the account equity.
func (m *Mock) SetEquity(equity decimal.Decimal) {
	m.mu.Lock()
	m.equity = equity
	m.mu.Unlock()
}

// SetPosition seeds a holding directly, bypassing order flow.
func (m *Mock) SetPosition(symbol string, qty decimal.Decimal) {
	m.mu.Lock()
	m.positions[symbol] = qty
	m.mu.Unlock()
}
