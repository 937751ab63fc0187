package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

var (
	meanReversionWeight  = decimal.NewFromFloat(0.08)
	meanReversionTrigger = 0.98 // buy when last < mean * trigger
)

// MeanReversion allocates a fixed weight to symbols trading meaningfully
// below their window mean.
type MeanReversion struct {
	universe []string
}

func (m *MeanReversion) Name() string       { return "mean_reversion" }
func (m *MeanReversion) Universe() []string { return m.universe }

func (m *MeanReversion) GenerateTargets(marketData map[string][]decimal.Decimal) (map[string]decimal.Decimal, error) {
	targets := make(map[string]decimal.Decimal, len(m.universe))
	for _, symbol := range m.universe {
		series, ok := marketData[symbol]
		if !ok || len(series) < 2 {
			return nil, fmt.Errorf("mean_reversion: need at least 2 samples for %s", symbol)
		}
		closes := toFloats(series)
		sma := talib.Sma(closes, len(closes))
		mean := sma[len(sma)-1]
		if closes[len(closes)-1] < mean*meanReversionTrigger {
			targets[symbol] = meanReversionWeight
		} else {
			targets[symbol] = decimal.Zero
		}
	}
	return targets, nil
}
