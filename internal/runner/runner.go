// Package runner executes the decision cycle: fetch account state, evaluate
// every enabled strategy, diff targets against holdings, gate each candidate
// and submit what survives. Cycles are serialized system-wide; the timer and
// on-demand triggers share one exclusion gate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kudanforge/internal/broker"
	"kudanforge/internal/logger"
	"kudanforge/internal/risk"
	"kudanforge/internal/store"
	"kudanforge/internal/store/model"
	"kudanforge/internal/strategy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// ErrCycleRunning is returned to a trigger that arrives while another cycle
// is in flight. Triggers are rejected rather than queued: the next cycle
// re-derives everything from fresh state anyway.
var ErrCycleRunning = errors.New("cycle_already_running")

// dustEpsilon is the no-op threshold; deltas below it never become orders.
var dustEpsilon = decimal.NewFromFloat(1e-6)

// Decision is one candidate's recorded outcome within a cycle.
type Decision struct {
	Strategy string          `json:"strategy,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Side     string          `json:"side,omitempty"`
	Qty      decimal.Decimal `json:"qty"`
	Status   string          `json:"status"`
	OrderID  string          `json:"order_id,omitempty"`
	Reasons  []string        `json:"reasons,omitempty"`
}

// RunResult is what a completed cycle returns to its trigger.
type RunResult struct {
	RunID     int64      `json:"run_id"`
	Status    string     `json:"status"`
	Decisions []Decision `json:"decisions"`
}

// Runner orchestrates single cycles over the broker, the gates and the store.
type Runner struct {
	broker   broker.Broker
	st       store.Store
	governor *risk.Governor
	gate     *risk.Gate

	// gate of width 1: at most one cycle in flight system-wide.
	sem *semaphore.Weighted
}

func New(b broker.Broker, st store.Store, governor *risk.Governor, gate *risk.Gate) *Runner {
	return &Runner{
		broker:   b,
		st:       st,
		governor: governor,
		gate:     gate,
		sem:      semaphore.NewWeighted(1),
	}
}

// Broker exposes the venue port for read-only callers (state endpoint).
func (r *Runner) Broker() broker.Broker { return r.broker }

// RunOnce executes one full decision cycle, or fails fast with
// ErrCycleRunning when one is already in flight.
func (r *Runner) RunOnce(ctx context.Context) (RunResult, error) {
	if !r.sem.TryAcquire(1) {
		return RunResult{}, ErrCycleRunning
	}
	defer r.sem.Release(1)
	return r.runCycle(ctx)
}

func (r *Runner) runCycle(ctx context.Context) (RunResult, error) {
	account, err := r.broker.GetAccount(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("fetching account: %w", err)
	}
	positions, err := r.broker.GetPositions(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("fetching positions: %w", err)
	}

	posQty := make(map[string]decimal.Decimal, len(positions))
	exposure := decimal.Zero
	for _, p := range positions {
		posQty[p.Symbol] = p.Qty
		exposure = exposure.Add(p.MarketValue.Abs())
	}
	grossExposure := decimal.Zero
	if account.Equity.GreaterThan(decimal.Zero) {
		grossExposure = exposure.Div(account.Equity)
	}

	rows, err := r.st.Strategies().List(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("listing strategies: %w", err)
	}
	enabled, err := buildEnabled(rows)
	if err != nil {
		// A misprovisioned roster is fatal before any candidate is touched.
		return RunResult{}, err
	}

	var decisions []Decision
	for _, entry := range enabled {
		decisions = append(decisions, r.evaluateStrategy(ctx, entry, account, grossExposure, posQty)...)
	}

	status := model.RunStatusOK
	for _, d := range decisions {
		if d.Status != model.OrderStatusSubmitted {
			status = model.RunStatusPartial
			break
		}
	}

	runID, err := r.st.Runs().Append(ctx, status,
		fmt.Sprintf("Cycle executed with %d decisions", len(decisions)),
		map[string]any{"decisions": decisions})
	if err != nil {
		return RunResult{}, fmt.Errorf("appending run record: %w", err)
	}
	for _, d := range decisions {
		rec := &model.OrderModel{
			RunID:         runID,
			Symbol:        d.Symbol,
			Side:          d.Side,
			Qty:           d.Qty,
			Status:        d.Status,
			BrokerOrderID: d.OrderID,
			Reason:        strings.Join(d.Reasons, ","),
		}
		if err := r.st.Orders().Append(ctx, rec); err != nil {
			return RunResult{}, fmt.Errorf("appending order record: %w", err)
		}
	}

	logger.Infof("cycle complete run_id=%d status=%s decisions=%d", runID, status, len(decisions))
	return RunResult{RunID: runID, Status: status, Decisions: decisions}, nil
}

type enabledStrategy struct {
	impl strategy.Strategy
	mode string
}

// buildEnabled instantiates every enabled roster row up front so that an
// unknown strategy name aborts the cycle before any order is evaluated.
func buildEnabled(rows []model.StrategyModel) ([]enabledStrategy, error) {
	var out []enabledStrategy
	for _, row := range rows {
		if !row.Enabled {
			continue
		}
		impl, err := strategy.New(row.Name, []byte(row.Params))
		if err != nil {
			return nil, fmt.Errorf("building strategy %d: %w", row.ID, err)
		}
		out = append(out, enabledStrategy{impl: impl, mode: row.Mode})
	}
	return out, nil
}

// evaluateStrategy runs one strategy's signal and gates every resulting
// candidate. Signal or data failures are isolated to this strategy.
func (r *Runner) evaluateStrategy(ctx context.Context, entry enabledStrategy, account broker.Account, grossExposure decimal.Decimal, posQty map[string]decimal.Decimal) []Decision {
	name := entry.impl.Name()

	marketData, lastPrice, err := r.fetchMarketData(ctx, entry.impl.Universe())
	if err != nil {
		logger.Warnf("strategy %s: market data fetch failed: %v", name, err)
		return []Decision{{Strategy: name, Status: model.OrderStatusStrategyError, Reasons: []string{err.Error()}}}
	}
	targets, err := entry.impl.GenerateTargets(marketData)
	if err != nil {
		logger.Warnf("strategy %s: signal generation failed: %v", name, err)
		return []Decision{{Strategy: name, Status: model.OrderStatusStrategyError, Reasons: []string{err.Error()}}}
	}

	var decisions []Decision
	// Universe order keeps candidate processing deterministic; later
	// candidates see the hourly counts and peak equity left by earlier ones.
	for _, symbol := range entry.impl.Universe() {
		weight, ok := targets[symbol]
		if !ok {
			continue
		}
		if d, ok := r.evaluateCandidate(ctx, name, entry.mode, symbol, weight, lastPrice[symbol], account, grossExposure, posQty); ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// evaluateCandidate turns one (symbol, target weight) into an outcome. The
// second return is false for dust deltas, which produce no decision at all.
func (r *Runner) evaluateCandidate(ctx context.Context, strategyName, mode, symbol string, weight, price decimal.Decimal, account broker.Account, grossExposure decimal.Decimal, posQty map[string]decimal.Decimal) (Decision, bool) {
	if price.LessThanOrEqual(decimal.Zero) {
		return Decision{Strategy: strategyName, Symbol: symbol, Status: model.OrderStatusError,
			Reasons: []string{fmt.Sprintf("non-positive price for %s", symbol)}}, true
	}
	targetQty := account.Equity.Mul(weight).Div(price)
	delta := targetQty.Sub(posQty[symbol])
	if delta.Abs().LessThan(dustEpsilon) {
		return Decision{}, false
	}
	side := broker.SideBuy
	if delta.IsNegative() {
		side = broker.SideSell
	}
	qty := delta.Abs()
	notional := qty.Mul(price)

	if mode == model.ModeLive || mode == model.ModeCanary {
		gateDecision, err := r.gate.EnsureLiveGate(ctx)
		if err != nil {
			return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
				Status: model.OrderStatusError, Reasons: []string{err.Error()}}, true
		}
		if !gateDecision.Allowed {
			return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
				Status: model.OrderStatusBlocked, Reasons: gateDecision.Reasons}, true
		}
	}

	ordersLastHour, err := r.st.Orders().CountSince(ctx, time.Hour)
	if err != nil {
		return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
			Status: model.OrderStatusError, Reasons: []string{err.Error()}}, true
	}
	riskDecision, err := r.governor.Evaluate(ctx, risk.Input{
		Equity:         account.Equity,
		GrossExposure:  grossExposure,
		OrderNotional:  notional,
		OrdersLastHour: ordersLastHour,
	})
	if err != nil {
		return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
			Status: model.OrderStatusError, Reasons: []string{err.Error()}}, true
	}
	if !riskDecision.Allowed {
		return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
			Status: model.OrderStatusRiskBlock, Reasons: riskDecision.Reasons}, true
	}

	order, err := r.broker.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:        symbol,
		Side:          side,
		Qty:           qty,
		Type:          broker.OrderTypeMarket,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		// One failed submission never stops the rest of the cycle.
		logger.Warnf("place order failed symbol=%s side=%s: %v", symbol, side, err)
		return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
			Status: model.OrderStatusError, Reasons: []string{err.Error()}}, true
	}
	return Decision{Strategy: strategyName, Symbol: symbol, Side: side, Qty: qty,
		Status: model.OrderStatusSubmitted, OrderID: order.ID}, true
}

// fetchMarketData quotes every symbol once and synthesizes the two-sample
// series the strategies need for a delta comparison.
func (r *Runner) fetchMarketData(ctx context.Context, universe []string) (map[string][]decimal.Decimal, map[string]decimal.Decimal, error) {
	series := make(map[string][]decimal.Decimal, len(universe))
	last := make(map[string]decimal.Decimal, len(universe))
	drift := decimal.NewFromFloat(0.99)
	for _, symbol := range universe {
		price, err := r.broker.GetLatestPrice(ctx, symbol)
		if err != nil {
			return nil, nil, fmt.Errorf("quoting %s: %w", symbol, err)
		}
		series[symbol] = []decimal.Decimal{price.Mul(drift), price}
		last[symbol] = price
	}
	return series, last, nil
}
