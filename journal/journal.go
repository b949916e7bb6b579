// Package journal persists bars, watchlists, signals and risk decisions.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

// Journal is the audit sink for the signal pipeline.
type Journal interface {
	RecordSignal(ctx context.Context, sig strategies.Signal) error
	RecordDecisions(ctx context.Context, sig strategies.Signal, decisions []risk.Decision) error
	Close() error
}

// DecisionRecord is a stored risk decision with the signal it judged.
type DecisionRecord struct {
	CorrelationID string
	SignalID      string
	Symbol        string
	Seq           int
	risk.Decision
}

// Multi fans records out to several journals. The first error wins but
// every journal is attempted.
type Multi []Journal

func (m Multi) RecordSignal(ctx context.Context, sig strategies.Signal) error {
	var first error
	for _, j := range m {
		if err := j.RecordSignal(ctx, sig); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) RecordDecisions(ctx context.Context, sig strategies.Signal, decisions []risk.Decision) error {
	var first error
	for _, j := range m {
		if err := j.RecordDecisions(ctx, sig, decisions); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
