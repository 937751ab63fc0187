package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"kudanforge/internal/store/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	st, err := NewSqliteStore(filepath.Join(t.TempDir(), "kudan.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSeedDefaults(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for key, want := range map[string]string{
		model.KeyArmedLive:      "false",
		model.KeyKillSwitch:     "false",
		model.KeyPaused:         "false",
		model.KeyPeakEquity:     "100000",
		model.KeyDayStartEquity: "100000",
	} {
		got, err := st.State().Get(ctx, key, "missing")
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}

	strategies, err := st.Strategies().List(ctx)
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	assert.Equal(t, "momentum", strategies[0].Name)
	assert.Equal(t, "mean_reversion", strategies[1].Name)
	for _, s := range strategies {
		assert.True(t, s.Enabled)
		assert.Equal(t, model.ModePaper, s.Mode)
		assert.Equal(t, "v1", s.Version)
	}
}

func TestStateGetSet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	got, err := st.State().Get(ctx, "no_such_key", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	require.NoError(t, st.State().Set(ctx, model.KeyPeakEquity, "123456.78"))
	require.NoError(t, st.State().Set(ctx, model.KeyPeakEquity, "200000"))
	got, err = st.State().Get(ctx, model.KeyPeakEquity, "0")
	require.NoError(t, err)
	assert.Equal(t, "200000", got, "Set must upsert, not duplicate")
}

func TestStrategyModeAndEnabled(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	strategies, err := st.Strategies().List(ctx)
	require.NoError(t, err)
	id := strategies[0].ID

	require.NoError(t, st.Strategies().UpdateMode(ctx, id, model.ModeCanary))
	require.NoError(t, st.Strategies().SetEnabled(ctx, id, false))

	row, err := st.Strategies().FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, model.ModeCanary, row.Mode)
	assert.False(t, row.Enabled)

	missing, err := st.Strategies().FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunLedger(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	runID, err := st.Runs().Append(ctx, model.RunStatusOK, "Cycle executed with 0 decisions",
		map[string]any{"decisions": []string{}})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := st.Runs().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusOK, runs[0].Status)
	assert.JSONEq(t, `{"decisions":[]}`, string(runs[0].Details))
}

func TestOrderLedgerAndCountSince(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	recent := &model.OrderModel{
		RunID:  1,
		Symbol: "BTCUSD",
		Side:   "buy",
		Qty:    decimal.NewFromFloat(0.2),
		Status: model.OrderStatusSubmitted,
	}
	require.NoError(t, st.Orders().Append(ctx, recent))

	stale := &model.OrderModel{
		RunID:     1,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		Symbol:    "ETHUSD",
		Side:      "sell",
		Qty:       decimal.NewFromInt(1),
		Status:    model.OrderStatusRiskBlock,
		Reason:    "per_trade_risk_exceeded",
	}
	require.NoError(t, st.Orders().Append(ctx, stale))

	count, err := st.Orders().CountSince(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "orders older than the window are not counted")

	orders, err := st.Orders().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[1].Qty.Equal(decimal.NewFromFloat(0.2)), "the true computed quantity is persisted")
}

func TestRiskEventLedger(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.RiskEvents().Append(ctx, "block", "kill_switch_enabled",
		map[string]any{"equity": 100000})
	require.NoError(t, err)

	events, err := st.RiskEvents().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "block", events[0].Level)
	assert.Equal(t, "kill_switch_enabled", events[0].Reason)
	assert.JSONEq(t, `{"equity":100000}`, string(events[0].Context))
}
