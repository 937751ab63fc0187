package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

var momentumWeight = decimal.NewFromFloat(0.10)

// Momentum allocates a fixed weight to symbols whose price rose over the
// observed window and flattens the rest.
type Momentum struct {
	universe []string
}

func (m *Momentum) Name() string       { return "momentum" }
func (m *Momentum) Universe() []string { return m.universe }

func (m *Momentum) GenerateTargets(marketData map[string][]decimal.Decimal) (map[string]decimal.Decimal, error) {
	targets := make(map[string]decimal.Decimal, len(m.universe))
	for _, symbol := range m.universe {
		series, ok := marketData[symbol]
		if !ok || len(series) < 2 {
			return nil, fmt.Errorf("momentum: need at least 2 samples for %s", symbol)
		}
		closes := toFloats(series)
		roc := talib.Roc(closes, len(closes)-1)
		if roc[len(roc)-1] > 0 {
			targets[symbol] = momentumWeight
		} else {
			targets[symbol] = decimal.Zero
		}
	}
	return targets, nil
}
