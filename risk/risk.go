// Package risk gates signals through an ordered chain of independent rules.
//
// Each Rule returns its own Decision; how decisions combine into a final
// verdict is chosen by the caller through a Policy.
package risk

import (
	"errors"
	"time"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/strategies"
)

// ErrInvalidConfig is returned by rule constructors for malformed limits.
var ErrInvalidConfig = errors.New("invalid risk rule config")

// Context is the account state a signal is judged against. The orchestrator
// assembles it from live balance, position and P&L data.
type Context struct {
	Signal        strategies.Signal
	Positions     []market.Position
	Balance       market.Balance
	DailyPnL      float64
	PeakEquity    float64
	OpenOrders    int
	Time          time.Time
	CorrelationID string
}

// Decision is one rule's verdict.
type Decision struct {
	Approved bool           `json:"approved"`
	Reason   string         `json:"reason"`
	RuleID   string         `json:"ruleId"`
	RuleName string         `json:"ruleName"`
	Time     time.Time      `json:"timestamp"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Rule is a stateless check. Check never fails: every path yields a
// Decision so evaluation can always be logged.
type Rule interface {
	RuleID() string
	Name() string
	Description() string
	Check(ctx Context) Decision
}

// base carries the identity shared by every rule.
type base struct {
	id          string
	name        string
	description string
}

func (b base) RuleID() string      { return b.id }
func (b base) Name() string        { return b.name }
func (b base) Description() string { return b.description }

func (b base) decide(ctx Context, approved bool, reason string, meta map[string]any) Decision {
	ts := ctx.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Decision{
		Approved: approved,
		Reason:   reason,
		RuleID:   b.id,
		RuleName: b.name,
		Time:     ts,
		Metadata: meta,
	}
}
