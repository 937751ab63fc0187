// Package store owns all persistent state: scalar control flags, the
// strategy roster, and the three append-only ledgers (runs, orders, risk
// events). Other components never cache authoritative copies of anything it
// holds across cycles.
package store

import (
	"context"
	"time"

	"kudanforge/internal/store/model"
)

// Store is the entry point for database access.
type Store interface {
	State() StateRepository
	Strategies() StrategyRepository
	Runs() RunRepository
	Orders() OrderRepository
	RiskEvents() RiskEventRepository
	Close() error
}

// StateRepository handles the scalar control flags.
type StateRepository interface {
	// Get returns the stored value or def when the key is absent.
	Get(ctx context.Context, key, def string) (string, error)
	// Set upserts the value and bumps updated_at.
	Set(ctx context.Context, key, value string) error
}

// StrategyRepository handles the provisioned strategy roster.
type StrategyRepository interface {
	List(ctx context.Context) ([]model.StrategyModel, error)
	FindByID(ctx context.Context, id int64) (*model.StrategyModel, error)
	UpdateMode(ctx context.Context, id int64, mode string) error
	// SetEnabled archives (false) or reactivates (true) a strategy; rows
	// are never deleted.
	SetEnabled(ctx context.Context, id int64, enabled bool) error
}

// RunRepository appends and lists cycle records.
type RunRepository interface {
	Append(ctx context.Context, status, summary string, details any) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.RunModel, error)
}

// OrderRepository appends and queries the order ledger.
type OrderRepository interface {
	Append(ctx context.Context, rec *model.OrderModel) error
	ListRecent(ctx context.Context, limit int) ([]model.OrderModel, error)
	// CountSince returns the number of ledger rows created within the window.
	CountSince(ctx context.Context, window time.Duration) (int, error)
}

// RiskEventRepository appends and lists governor block events.
type RiskEventRepository interface {
	Append(ctx context.Context, level, reason string, eventContext any) error
	ListRecent(ctx context.Context, limit int) ([]model.RiskEventModel, error)
}
