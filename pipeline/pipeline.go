// Package pipeline runs one analysis cycle: strategy, risk chain, policy,
// then the journal. It owns no account state; callers pass a snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rustyeddy/autotrader/indicators"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/metrics"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
	"github.com/rustyeddy/autotrader/trace"
)

// AccountState is the account snapshot an evaluation runs against.
type AccountState struct {
	Positions  []market.Position
	Balance    market.Balance
	DailyPnL   float64
	PeakEquity float64
	OpenOrders int
}

// Sizing turns an approved BUY into a share count. See risk.Size.
type Sizing struct {
	RiskPct       float64
	MaxOrderValue float64
	MaxWeightPct  float64
}

// Outcome is the full result of one evaluation. Approved is true only for
// an actionable signal that passed the policy.
type Outcome struct {
	Signal     strategies.Signal
	Decisions  []risk.Decision
	Approved   bool
	Rejections []risk.Decision
	Size       *risk.SizeResult
}

type Pipeline struct {
	Strategy strategies.Strategy
	Chain    *risk.Chain     // required; an empty chain approves everything
	Policy   risk.Policy     // nil means risk.AllMustPass
	Journal  journal.Journal // optional
	Sizing   *Sizing         // optional
	Logger   zerolog.Logger
	Now      func() time.Time
}

var (
	ErrNoStrategy = errors.New("pipeline has no strategy")
	ErrNoChain    = errors.New("pipeline has no risk chain")
)

// Evaluate analyzes md and runs the resulting signal through the risk
// chain. HOLD signals are still judged and journaled so every analysis
// leaves an audit trail.
func (p *Pipeline) Evaluate(ctx context.Context, md market.MarketData, acct AccountState) (Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", md.Symbol), attribute.Int("bars", len(md.Bars)))

	if p.Strategy == nil {
		return Outcome{}, ErrNoStrategy
	}
	if p.Chain == nil {
		return Outcome{}, ErrNoChain
	}

	sig, err := p.analyze(ctx, md)
	if err != nil {
		kind := errorKind(err)
		metrics.ObserveError(kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		p.Logger.Warn().Err(err).Str("symbol", md.Symbol).Str("kind", kind).Msg("analysis failed")
		return Outcome{}, fmt.Errorf("analyze %s: %w", md.Symbol, err)
	}
	metrics.ObserveSignal(p.Strategy.Name(), sig.Symbol, string(sig.Direction), sig.Strength)
	span.SetAttributes(
		attribute.String("direction", string(sig.Direction)),
		attribute.String("correlation_id", sig.CorrelationID),
	)

	log := p.Logger.With().
		Str("correlation_id", sig.CorrelationID).
		Str("symbol", sig.Symbol).
		Logger()
	log.Info().
		Str("signal_id", sig.ID).
		Str("direction", string(sig.Direction)).
		Float64("strength", sig.Strength).
		Str("reason", sig.Reason).
		Msg("signal")

	decisions := p.judge(ctx, sig, acct)

	policy := p.Policy
	if policy == nil {
		policy = risk.AllMustPass
	}
	verdict := policy(decisions)

	out := Outcome{
		Signal:     sig,
		Decisions:  decisions,
		Approved:   verdict.Approved && sig.Actionable(),
		Rejections: verdict.Rejections,
	}

	for _, d := range decisions {
		metrics.ObserveDecision(d.RuleName, d.Approved)
		log.Info().
			Str("rule", d.RuleName).
			Bool("approved", d.Approved).
			Str("reason", d.Reason).
			Msg("risk decision")
	}

	if out.Approved && p.Sizing != nil && sig.Direction == market.Buy && sig.StopLoss != nil {
		sz := risk.Size(risk.SizeInputs{
			Equity:        acct.Balance.TotalEquity,
			RiskPct:       p.Sizing.RiskPct,
			EntryPrice:    md.CurrentPrice,
			StopPrice:     *sig.StopLoss,
			MaxOrderValue: p.Sizing.MaxOrderValue,
			MaxWeightPct:  p.Sizing.MaxWeightPct,
		})
		out.Size = &sz
		log.Info().Int64("shares", sz.Shares).Float64("order_value", sz.OrderValue).Msg("position sized")
	}

	log.Info().Bool("approved", out.Approved).Int("rejections", len(out.Rejections)).Msg("evaluation complete")

	if p.Journal != nil {
		if err := p.record(ctx, sig, decisions); err != nil {
			metrics.ObserveError("journal")
			span.RecordError(err)
			return out, fmt.Errorf("journal: %w", err)
		}
	}
	return out, nil
}

func (p *Pipeline) analyze(ctx context.Context, md market.MarketData) (strategies.Signal, error) {
	_, span := trace.StartSpan(ctx, "strategy.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("strategy", p.Strategy.StrategyID()))
	return p.Strategy.Analyze(md)
}

func (p *Pipeline) judge(ctx context.Context, sig strategies.Signal, acct AccountState) []risk.Decision {
	_, span := trace.StartSpan(ctx, "risk.Chain")
	defer span.End()

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	decisions := p.Chain.Evaluate(risk.Context{
		Signal:        sig,
		Positions:     acct.Positions,
		Balance:       acct.Balance,
		DailyPnL:      acct.DailyPnL,
		PeakEquity:    acct.PeakEquity,
		OpenOrders:    acct.OpenOrders,
		Time:          now().UTC(),
		CorrelationID: sig.CorrelationID,
	})
	span.SetAttributes(attribute.Int("rules", len(decisions)))
	return decisions
}

func (p *Pipeline) record(ctx context.Context, sig strategies.Signal, decisions []risk.Decision) error {
	if err := p.Journal.RecordSignal(ctx, sig); err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	if len(decisions) == 0 {
		return nil
	}
	if err := p.Journal.RecordDecisions(ctx, sig, decisions); err != nil {
		return fmt.Errorf("record decisions: %w", err)
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, strategies.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, indicators.ErrInvalidData):
		return "invalid_data"
	case errors.Is(err, indicators.ErrInvalidPeriod):
		return "invalid_period"
	default:
		return "other"
	}
}
