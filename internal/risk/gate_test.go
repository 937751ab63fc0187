package risk

import (
	"context"
	"testing"

	"kudanforge/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateRequiresBothConditions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Fresh install: env enabled, not armed.
	g := NewGate(true, st)
	allowed, err := g.IsLiveAllowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)

	decision, err := g.EnsureLiveGate(ctx)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{ReasonNotArmed}, decision.Reasons)

	// Armed but env permission off.
	require.NoError(t, st.State().Set(ctx, model.KeyArmedLive, "true"))
	g = NewGate(false, st)
	allowed, err = g.IsLiveAllowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)

	decision, err = g.EnsureLiveGate(ctx)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{ReasonEnvDisabled}, decision.Reasons)

	// Both conditions hold.
	g = NewGate(true, st)
	allowed, err = g.IsLiveAllowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	decision, err = g.EnsureLiveGate(ctx)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reasons)
}

func TestGateReportsEveryUnmetCondition(t *testing.T) {
	st := newTestStore(t)

	g := NewGate(false, st)
	decision, err := g.EnsureLiveGate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ReasonEnvDisabled, ReasonNotArmed}, decision.Reasons)
}

func TestGateReadsArmingFlagFresh(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	g := NewGate(true, st)

	require.NoError(t, st.State().Set(ctx, model.KeyArmedLive, "true"))
	allowed, err := g.IsLiveAllowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Disarming takes effect without rebuilding the gate.
	require.NoError(t, st.State().Set(ctx, model.KeyArmedLive, "false"))
	allowed, err = g.IsLiveAllowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)
}
