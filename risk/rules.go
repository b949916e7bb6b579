package risk

import (
	"fmt"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pkg/id"
)

// Only BUY signals add exposure; the rules below approve SELL and HOLD.

// MaxPositionCount rejects a BUY that would open a new position once Max
// positions are already open. Adding to a held symbol is allowed.
type MaxPositionCount struct {
	base
	max int
}

var _ Rule = (*MaxPositionCount)(nil)

func NewMaxPositionCount(limit int) (*MaxPositionCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: max position count must be positive, got %d", ErrInvalidConfig, limit)
	}
	return &MaxPositionCount{
		base: base{
			id:          id.WithPrefix("max-position-count"),
			name:        "Max Position Count",
			description: "Limits the number of simultaneously open positions",
		},
		max: limit,
	}, nil
}

func (r *MaxPositionCount) Check(ctx Context) Decision {
	open := market.OpenCount(ctx.Positions)
	meta := map[string]any{"openPositions": open, "max": r.max}

	if ctx.Signal.Direction != market.Buy {
		return r.decide(ctx, true, "Signal does not open a position.", meta)
	}
	if market.Holds(ctx.Positions, ctx.Signal.Symbol) {
		return r.decide(ctx, true,
			fmt.Sprintf("Already holding %s. Position count unchanged.", ctx.Signal.Symbol), meta)
	}
	if open >= r.max {
		return r.decide(ctx, false,
			fmt.Sprintf("Open positions (%d) at limit (%d). Trading blocked.", open, r.max), meta)
	}
	return r.decide(ctx, true,
		fmt.Sprintf("Open positions (%d) below limit (%d). Trading allowed.", open, r.max), meta)
}

// Concentration rejects a BUY when the symbol already makes up MaxPercent or
// more of total equity.
type Concentration struct {
	base
	max float64
}

var _ Rule = (*Concentration)(nil)

func NewConcentration(maxPercent float64) (*Concentration, error) {
	if maxPercent <= 0 || maxPercent > 1 {
		return nil, fmt.Errorf("%w: concentration limit must be in (0, 1], got %v", ErrInvalidConfig, maxPercent)
	}
	return &Concentration{
		base: base{
			id:          id.WithPrefix("concentration"),
			name:        "Concentration Limit",
			description: "Caps the share of equity held in a single symbol",
		},
		max: maxPercent,
	}, nil
}

func (r *Concentration) Check(ctx Context) Decision {
	exposure := market.Exposure(ctx.Positions, ctx.Signal.Symbol)
	equity := ctx.Balance.TotalEquity
	weight := 0.0
	if equity > 0 {
		weight = exposure / equity
	}
	meta := map[string]any{"exposure": exposure, "weight": weight, "limit": r.max}

	if ctx.Signal.Direction != market.Buy {
		return r.decide(ctx, true, "Signal does not add exposure.", meta)
	}
	if equity <= 0 {
		return r.decide(ctx, false, "Total equity is not positive. Trading blocked.", meta)
	}
	if weight >= r.max {
		return r.decide(ctx, false,
			fmt.Sprintf("%s weight (%.2f%%) at or above limit (%.2f%%). Trading blocked.",
				ctx.Signal.Symbol, weight*100, r.max*100), meta)
	}
	return r.decide(ctx, true,
		fmt.Sprintf("%s weight (%.2f%%) below limit (%.2f%%). Trading allowed.",
			ctx.Signal.Symbol, weight*100, r.max*100), meta)
}

// CashReserve rejects a BUY when available cash is below MinPercent of
// total equity.
type CashReserve struct {
	base
	min float64
}

var _ Rule = (*CashReserve)(nil)

func NewCashReserve(minPercent float64) (*CashReserve, error) {
	if minPercent <= 0 || minPercent >= 1 {
		return nil, fmt.Errorf("%w: cash reserve must be in (0, 1), got %v", ErrInvalidConfig, minPercent)
	}
	return &CashReserve{
		base: base{
			id:          id.WithPrefix("cash-reserve"),
			name:        "Cash Reserve",
			description: "Keeps a minimum share of equity in cash",
		},
		min: minPercent,
	}, nil
}

func (r *CashReserve) Check(ctx Context) Decision {
	equity := ctx.Balance.TotalEquity
	ratio := 0.0
	if equity > 0 {
		ratio = ctx.Balance.AvailableCash / equity
	}
	meta := map[string]any{"availableCash": ctx.Balance.AvailableCash, "cashRatio": ratio, "min": r.min}

	if ctx.Signal.Direction != market.Buy {
		return r.decide(ctx, true, "Signal does not spend cash.", meta)
	}
	if ratio < r.min {
		return r.decide(ctx, false,
			fmt.Sprintf("Cash ratio (%.2f%%) below reserve (%.2f%%). Trading blocked.", ratio*100, r.min*100), meta)
	}
	return r.decide(ctx, true,
		fmt.Sprintf("Cash ratio (%.2f%%) meets reserve (%.2f%%). Trading allowed.", ratio*100, r.min*100), meta)
}

// MaxDrawdown blocks all new exposure once equity has fallen more than Limit
// (a negative fraction) below Context.PeakEquity.
type MaxDrawdown struct {
	base
	limit float64
}

var _ Rule = (*MaxDrawdown)(nil)

func NewMaxDrawdown(limit float64) (*MaxDrawdown, error) {
	if limit >= 0 {
		return nil, fmt.Errorf("%w: drawdown limit must be negative, got %v", ErrInvalidConfig, limit)
	}
	return &MaxDrawdown{
		base: base{
			id:          id.WithPrefix("max-drawdown"),
			name:        "Max Drawdown",
			description: "Stops buying when equity falls too far from its peak",
		},
		limit: limit,
	}, nil
}

func (r *MaxDrawdown) Check(ctx Context) Decision {
	peak := ctx.PeakEquity
	dd := 0.0
	if peak > 0 {
		dd = (ctx.Balance.TotalEquity - peak) / peak
	}
	meta := map[string]any{"peakEquity": peak, "drawdown": dd, "limit": r.limit}

	if ctx.Signal.Direction != market.Buy || peak <= 0 {
		return r.decide(ctx, true, "No drawdown constraint applies.", meta)
	}
	if dd < r.limit {
		return r.decide(ctx, false,
			fmt.Sprintf("Drawdown (%.2f%%) exceeded limit (%.2f%%). Trading blocked.", dd*100, r.limit*100), meta)
	}
	return r.decide(ctx, true,
		fmt.Sprintf("Drawdown (%.2f%%) is within limit (%.2f%%). Trading allowed.", dd*100, r.limit*100), meta)
}
