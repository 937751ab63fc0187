package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"kudanforge/internal/risk"
	"kudanforge/internal/runner"
	"kudanforge/internal/store"
	"kudanforge/internal/store/model"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// armPhrase is the confirmation string an operator must type to arm live
// trading. Arming is deliberately harder than disarming.
const armPhrase = "ARM LIVE TRADING"

// Router wires the operator API onto the runner, scheduler, gates and store.
type Router struct {
	Runner    *runner.Runner
	Scheduler *runner.Scheduler
	Store     store.Store
	Gate      *risk.Gate
}

func NewRouter(r *runner.Runner, sched *runner.Scheduler, st store.Store, gate *risk.Gate) *Router {
	return &Router{Runner: r, Scheduler: sched, Store: st, Gate: gate}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/state", r.handleState)
	group.POST("/run_once", r.handleRunOnce)
	group.POST("/kill_switch/enable", r.handleKillSwitch(true))
	group.POST("/kill_switch/disable", r.handleKillSwitch(false))
	group.POST("/arm_live", r.handleArmLive)
	group.POST("/disarm_live", r.handleDisarmLive)
	group.POST("/strategy/:id/promote", r.handlePromote)
	group.GET("/strategies", r.handleStrategies)
	group.GET("/runs", r.handleRuns)
	group.GET("/orders", r.handleOrders)
	group.GET("/risk_events", r.handleRiskEvents)
	group.GET("/scheduler", r.handleSchedulerState)
	group.POST("/scheduler/start", r.handleSchedulerStart)
	group.POST("/scheduler/stop", r.handleSchedulerStop)
}

func (r *Router) handleState(c *gin.Context) {
	ctx := c.Request.Context()
	account, err := r.Runner.Broker().GetAccount(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	positions, err := r.Runner.Broker().GetPositions(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	exposure := decimal.Zero
	for _, p := range positions {
		exposure = exposure.Add(p.MarketValue.Abs())
	}
	state := r.Store.State()
	peak, err := r.stateDecimal(ctx, model.KeyPeakEquity, account.Equity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dayStart, err := r.stateDecimal(ctx, model.KeyDayStartEquity, account.Equity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	drawdown := decimal.Zero
	if peak.GreaterThan(decimal.Zero) {
		drawdown = peak.Sub(account.Equity).Div(peak)
		if drawdown.IsNegative() {
			drawdown = decimal.Zero
		}
	}
	killSwitch, err := state.Get(ctx, model.KeyKillSwitch, "false")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	armed, err := state.Get(ctx, model.KeyArmedLive, "false")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	liveAllowed, err := r.Gate.IsLiveAllowed(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	mode := "paper"
	if liveAllowed {
		mode = "live"
	}
	c.JSON(http.StatusOK, gin.H{
		"equity":      account.Equity,
		"drawdown":    drawdown,
		"daily_pnl":   account.Equity.Sub(dayStart),
		"exposure":    exposure,
		"positions":   positions,
		"mode":        mode,
		"kill_switch": killSwitch == "true",
		"armed":       armed == "true",
	})
}

func (r *Router) stateDecimal(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, err := r.Store.State().Get(ctx, key, def.String())
	if err != nil {
		return decimal.Zero, err
	}
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s flag %q: %w", key, raw, err)
	}
	return val, nil
}

func (r *Router) handleRunOnce(c *gin.Context) {
	result, err := r.Runner.RunOnce(c.Request.Context())
	if errors.Is(err, runner.ErrCycleRunning) {
		c.JSON(http.StatusConflict, gin.H{"status": "rejected", "reason": runner.ErrCycleRunning.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) handleKillSwitch(enable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, status := "false", "disabled"
		if enable {
			value, status = "true", "enabled"
		}
		if err := r.Store.State().Set(c.Request.Context(), model.KeyKillSwitch, value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

func (r *Router) handleArmLive(c *gin.Context) {
	var req struct {
		Phrase string `json:"phrase" form:"phrase"`
	}
	if err := c.ShouldBind(&req); err != nil || req.Phrase != armPhrase {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid arming phrase"})
		return
	}
	if err := r.Store.State().Set(c.Request.Context(), model.KeyArmedLive, "true"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "armed"})
}

func (r *Router) handleDisarmLive(c *gin.Context) {
	if err := r.Store.State().Set(c.Request.Context(), model.KeyArmedLive, "false"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disarmed"})
}

func (r *Router) handlePromote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid strategy id"})
		return
	}
	mode := c.DefaultPostForm("mode", model.ModePaper)
	switch mode {
	case model.ModePaper, model.ModeCanary, model.ModeLive:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode"})
		return
	}
	ctx := c.Request.Context()
	row, err := r.Store.Strategies().FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
		return
	}
	// Promotion into live order flow re-checks the gate so a strategy can
	// never be promoted past what the operator has armed.
	if mode == model.ModeLive || mode == model.ModeCanary {
		gateDecision, err := r.Gate.EnsureLiveGate(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !gateDecision.Allowed {
			c.JSON(http.StatusBadRequest, gin.H{"status": "blocked", "reasons": gateDecision.Reasons})
			return
		}
	}
	if err := r.Store.Strategies().UpdateMode(ctx, id, mode); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "strategy_id": id, "mode": mode})
}

func (r *Router) handleStrategies(c *gin.Context) {
	rows, err := r.Store.Strategies().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategies": rows})
}

func limitParam(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func (r *Router) handleRuns(c *gin.Context) {
	rows, err := r.Store.Runs().ListRecent(c.Request.Context(), limitParam(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": rows})
}

func (r *Router) handleOrders(c *gin.Context) {
	rows, err := r.Store.Orders().ListRecent(c.Request.Context(), limitParam(c, 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

func (r *Router) handleRiskEvents(c *gin.Context) {
	rows, err := r.Store.RiskEvents().ListRecent(c.Request.Context(), limitParam(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_events": rows})
}

func (r *Router) handleSchedulerState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": r.Scheduler.Running()})
}

func (r *Router) handleSchedulerStart(c *gin.Context) {
	r.Scheduler.Start()
	c.JSON(http.StatusOK, gin.H{"running": r.Scheduler.Running()})
}

func (r *Router) handleSchedulerStop(c *gin.Context) {
	r.Scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"running": r.Scheduler.Running()})
}
