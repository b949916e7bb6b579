// Package indicators provides moving-average indicators over price series.
package indicators

import (
	"fmt"
	"strings"
)

// Series computes a derived series from an input series.
// It is deterministic and safe for concurrent use.
type Series interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Calculate returns the derived series for data.
	Calculate(data []float64) ([]float64, error)
}

// Kind selects the moving-average formula.
type Kind string

const (
	Simple      Kind = "SIMPLE"
	Exponential Kind = "EXPONENTIAL"
	Weighted    Kind = "WEIGHTED"
)

// ParseKind accepts the canonical names and the SMA/EMA/WMA abbreviations,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SIMPLE", "SMA":
		return Simple, nil
	case "EXPONENTIAL", "EMA":
		return Exponential, nil
	case "WEIGHTED", "WMA":
		return Weighted, nil
	default:
		return "", fmt.Errorf("unsupported moving average type %q", s)
	}
}

func (k Kind) Valid() bool {
	switch k {
	case Simple, Exponential, Weighted:
		return true
	}
	return false
}

// Abbrev returns SMA, EMA or WMA.
func (k Kind) Abbrev() string {
	switch k {
	case Simple:
		return "SMA"
	case Exponential:
		return "EMA"
	case Weighted:
		return "WMA"
	default:
		return "MA"
	}
}

// MovingAverage binds one Kind and period to the matching batch function.
type MovingAverage struct {
	kind   Kind
	period int
	name   string
}

var _ Series = (*MovingAverage)(nil)

func NewMovingAverage(kind Kind, period int) (*MovingAverage, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPeriod, period)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported moving average type %q", kind)
	}
	return &MovingAverage{
		kind:   kind,
		period: period,
		name:   fmt.Sprintf("%s(%d)", kind.Abbrev(), period),
	}, nil
}

func (m *MovingAverage) Name() string { return m.name }
func (m *MovingAverage) Kind() Kind   { return m.kind }
func (m *MovingAverage) Period() int  { return m.period }

func (m *MovingAverage) Calculate(data []float64) ([]float64, error) {
	switch m.kind {
	case Simple:
		return SMA(data, m.period)
	case Exponential:
		return EMA(data, m.period)
	case Weighted:
		return WMA(data, m.period)
	default:
		return nil, fmt.Errorf("unsupported moving average type %q", m.kind)
	}
}
