package strategies

import (
	"time"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pkg/id"
)

// Noop always holds. It is useful for exercising the risk chain and journal
// without a real signal source.
type Noop struct {
	id string
}

var _ Strategy = (*Noop)(nil)

func NewNoop() *Noop {
	return &Noop{id: id.WithPrefix("noop")}
}

func (n *Noop) StrategyID() string  { return n.id }
func (n *Noop) Name() string        { return "Noop Strategy" }
func (n *Noop) Description() string { return "Never trades; every analysis returns HOLD" }
func (n *Noop) ParamsHash() string  { return hashParams(map[string]any{}) }

func (n *Noop) Analyze(md market.MarketData) (Signal, error) {
	return Signal{
		ID:            id.WithPrefix("signal"),
		Time:          time.Now().UTC(),
		StrategyID:    n.id,
		Symbol:        md.Symbol,
		Direction:     market.Hold,
		Strength:      0,
		Reason:        "noop strategy",
		ParamsHash:    n.ParamsHash(),
		CorrelationID: id.Correlation(),
	}, nil
}
