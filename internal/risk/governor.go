// Package risk holds the two authorization gates an order must clear: the
// portfolio-level governor and the live-trading gate. Neither knows which
// symbol or strategy it is judging; both are pure functions of account-level
// figures plus the persisted control flags.
package risk

import (
	"context"
	"fmt"
	"sync"

	"kudanforge/internal/config"
	"kudanforge/internal/store"
	"kudanforge/internal/store/model"

	"github.com/shopspring/decimal"
)

// Governor block reason codes.
const (
	ReasonMaxDrawdown      = "max_drawdown_exceeded"
	ReasonMaxDailyLoss     = "max_daily_loss_exceeded"
	ReasonMaxGrossExposure = "max_gross_exposure_exceeded"
	ReasonPerTradeRisk     = "per_trade_risk_exceeded"
	ReasonMaxOrdersPerHour = "max_orders_per_hour_exceeded"
	ReasonKillSwitch       = "kill_switch_enabled"
)

// Decision is the outcome of a gate evaluation. It is expected control flow,
// never an error: a blocked order is recorded, not thrown.
type Decision struct {
	Allowed    bool     `json:"allowed"`
	Reasons    []string `json:"reasons"`
	Pause      bool     `json:"pause"`
	KillSwitch bool     `json:"kill_switch"`
}

// Limits are the portfolio thresholds the governor enforces.
type Limits struct {
	MaxDrawdownFromPeak decimal.Decimal
	MaxDailyLoss        decimal.Decimal
	PerTradeRisk        decimal.Decimal
	MaxGrossExposure    decimal.Decimal
	MaxOrdersPerHour    int
}

func LimitsFromConfig(cfg config.RiskConfig) Limits {
	return Limits{
		MaxDrawdownFromPeak: decimal.NewFromFloat(cfg.MaxDrawdownFromPeak),
		MaxDailyLoss:        decimal.NewFromFloat(cfg.MaxDailyLoss),
		PerTradeRisk:        decimal.NewFromFloat(cfg.PerTradeRisk),
		MaxGrossExposure:    decimal.NewFromFloat(cfg.MaxGrossExposure),
		MaxOrdersPerHour:    cfg.MaxOrdersPerHour,
	}
}

// Input carries the four portfolio-level figures a candidate is judged on.
type Input struct {
	Equity         decimal.Decimal `json:"equity"`
	GrossExposure  decimal.Decimal `json:"gross_exposure"`
	OrderNotional  decimal.Decimal `json:"order_notional"`
	OrdersLastHour int             `json:"orders_last_hour"`
}

// Governor evaluates candidate orders against the portfolio limits, ratchets
// peak equity and persists the paused flag when a drawdown limit trips.
// Limits are swappable at runtime (config hot reload); the persisted flags
// are read fresh on every evaluation.
type Governor struct {
	state  store.StateRepository
	events store.RiskEventRepository

	mu     sync.RWMutex
	limits Limits
}

func NewGovernor(st store.Store, limits Limits) *Governor {
	return &Governor{
		state:  st.State(),
		events: st.RiskEvents(),
		limits: limits,
	}
}

// SetLimits atomically replaces the enforced limits.
func (g *Governor) SetLimits(limits Limits) {
	g.mu.Lock()
	g.limits = limits
	g.mu.Unlock()
}

// Limits returns the limits currently in force.
func (g *Governor) Limits() Limits {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.limits
}

// Evaluate runs every check and collects all violated reason codes; no check
// short-circuits another. On any block it emits one risk event per reason
// with a snapshot of the inputs.
func (g *Governor) Evaluate(ctx context.Context, in Input) (Decision, error) {
	limits := g.Limits()

	reasons := make([]string, 0, 4)
	pause := false

	killRaw, err := g.state.Get(ctx, model.KeyKillSwitch, "false")
	if err != nil {
		return Decision{}, fmt.Errorf("reading kill switch: %w", err)
	}
	kill := killRaw == "true"

	peak, err := g.stateDecimal(ctx, model.KeyPeakEquity, "100000")
	if err != nil {
		return Decision{}, err
	}
	// Ratchet: the peak only ever moves up here. Lowering it is an explicit
	// operator action outside the governor.
	if in.Equity.GreaterThan(peak) {
		if err := g.state.Set(ctx, model.KeyPeakEquity, in.Equity.String()); err != nil {
			return Decision{}, fmt.Errorf("persisting peak equity: %w", err)
		}
		peak = in.Equity
	}

	dayStart, err := g.stateDecimal(ctx, model.KeyDayStartEquity, in.Equity.String())
	if err != nil {
		return Decision{}, err
	}

	drawdown := lossFraction(peak, in.Equity)
	if drawdown.GreaterThanOrEqual(limits.MaxDrawdownFromPeak) {
		reasons = append(reasons, ReasonMaxDrawdown)
		pause = true
	}

	dailyLoss := lossFraction(dayStart, in.Equity)
	if dailyLoss.GreaterThanOrEqual(limits.MaxDailyLoss) {
		reasons = append(reasons, ReasonMaxDailyLoss)
		pause = true
	}

	if in.GrossExposure.GreaterThan(limits.MaxGrossExposure) {
		reasons = append(reasons, ReasonMaxGrossExposure)
	}
	if in.OrderNotional.GreaterThan(in.Equity.Mul(limits.PerTradeRisk)) {
		reasons = append(reasons, ReasonPerTradeRisk)
	}
	if in.OrdersLastHour >= limits.MaxOrdersPerHour {
		reasons = append(reasons, ReasonMaxOrdersPerHour)
	}
	if kill {
		reasons = append(reasons, ReasonKillSwitch)
	}

	if pause {
		// Never auto-clears; an operator has to flip it back.
		if err := g.state.Set(ctx, model.KeyPaused, "true"); err != nil {
			return Decision{}, fmt.Errorf("persisting paused flag: %w", err)
		}
	}

	decision := Decision{
		Allowed:    len(reasons) == 0,
		Reasons:    reasons,
		Pause:      pause,
		KillSwitch: kill,
	}
	if !decision.Allowed {
		for _, reason := range reasons {
			if err := g.events.Append(ctx, "block", reason, in); err != nil {
				return Decision{}, fmt.Errorf("appending risk event: %w", err)
			}
		}
	}
	return decision, nil
}

func (g *Governor) stateDecimal(ctx context.Context, key, def string) (decimal.Decimal, error) {
	raw, err := g.state.Get(ctx, key, def)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading %s: %w", key, err)
	}
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s=%q: %w", key, raw, err)
	}
	return val, nil
}

// lossFraction returns max(0, (base-current)/base), or zero when base <= 0.
func lossFraction(base, current decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	loss := base.Sub(current).Div(base)
	if loss.IsNegative() {
		return decimal.Zero
	}
	return loss
}
