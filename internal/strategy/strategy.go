// Package strategy maps recent price series to target portfolio weights.
// Strategies are pure: no broker or store access, just series in, weights
// out, so a failing strategy can be isolated to its own symbols.
package strategy

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Strategy turns per-symbol price series into target weights (signed
// fractions of equity). Symbols outside Universe are never passed in.
type Strategy interface {
	Name() string
	Universe() []string
	GenerateTargets(marketData map[string][]decimal.Decimal) (map[string]decimal.Decimal, error)
}

// Params is the persisted per-strategy parameter blob.
type Params struct {
	Symbols []string `json:"symbols"`
}

var defaultUniverse = []string{"BTCUSD", "ETHUSD"}

// New builds a strategy from its provisioned name and raw params JSON.
// Unknown names are a configuration error surfaced at construction time.
func New(name string, rawParams []byte) (Strategy, error) {
	var params Params
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, &params); err != nil {
			return nil, fmt.Errorf("strategy %s: parsing params: %w", name, err)
		}
	}
	universe := params.Symbols
	if len(universe) == 0 {
		universe = defaultUniverse
	}
	switch name {
	case "momentum":
		return &Momentum{universe: universe}, nil
	case "mean_reversion":
		return &MeanReversion{universe: universe}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func toFloats(series []decimal.Decimal) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v.InexactFloat64()
	}
	return out
}
