// Package strategies turns market data into trading signals.
package strategies

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

var (
	// ErrInsufficientData is returned by Analyze when the bar history is too
	// short. Callers can retry once more bars are available.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParams is returned by constructors for malformed parameters.
	ErrInvalidParams = errors.New("invalid strategy parameters")
)

// Signal is a directional recommendation produced by a Strategy.
type Signal struct {
	ID            string           `json:"signalId"`
	Time          time.Time        `json:"timestamp"`
	StrategyID    string           `json:"strategyId"`
	Symbol        string           `json:"symbol"`
	Direction     market.Direction `json:"direction"`
	Strength      float64          `json:"strength"`
	Reason        string           `json:"reason"`
	ParamsHash    string           `json:"paramsHash"`
	CorrelationID string           `json:"correlationId"`
	TargetPrice   *float64         `json:"targetPrice,omitempty"`
	StopLoss      *float64         `json:"stopLoss,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
}

// Actionable reports whether the signal asks for a trade.
func (s Signal) Actionable() bool {
	return s.Direction == market.Buy || s.Direction == market.Sell
}

// Strategy analyzes one symbol's bar history.
//
// Implementations hold immutable configuration after construction and are
// safe for concurrent use.
type Strategy interface {
	StrategyID() string
	Name() string
	Description() string
	ParamsHash() string
	Analyze(md market.MarketData) (Signal, error)
}

// StrategyByName builds a strategy from its CLI/config name. params is only
// consulted by strategies that take moving-average parameters.
func StrategyByName(name string, params MACrossParams) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return NewNoop(), nil

	case "ma-cross", "macross", "ma_cross":
		return NewMACross(params)

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: ma-cross, noop)", name)
	}
}

func ptr(v float64) *float64 { return &v }
