package risk

import (
	"context"

	"kudanforge/internal/store"
	"kudanforge/internal/store/model"
)

// Live gate reason strings.
const (
	ReasonEnvDisabled = "environment permission disabled"
	ReasonNotArmed    = "not armed"
)

// Gate authorizes live order flow. Both the environment-level permission and
// the persisted operator arming flag must hold; the gate is independent of
// the governor and is checked first for canary and live mode orders.
type Gate struct {
	envPermission bool
	state         store.StateRepository
}

func NewGate(envPermission bool, st store.Store) *Gate {
	return &Gate{envPermission: envPermission, state: st.State()}
}

func (g *Gate) IsLiveAllowed(ctx context.Context) (bool, error) {
	if !g.envPermission {
		return false, nil
	}
	armed, err := g.state.Get(ctx, model.KeyArmedLive, "false")
	if err != nil {
		return false, err
	}
	return armed == "true", nil
}

// EnsureLiveGate returns an allowed decision iff both conditions hold,
// otherwise one reason per unmet condition.
func (g *Gate) EnsureLiveGate(ctx context.Context) (Decision, error) {
	armed, err := g.state.Get(ctx, model.KeyArmedLive, "false")
	if err != nil {
		return Decision{}, err
	}
	var reasons []string
	if !g.envPermission {
		reasons = append(reasons, ReasonEnvDisabled)
	}
	if armed != "true" {
		reasons = append(reasons, ReasonNotArmed)
	}
	if len(reasons) > 0 {
		return Decision{Allowed: false, Reasons: reasons}, nil
	}
	return Decision{Allowed: true, Reasons: []string{}}, nil
}
