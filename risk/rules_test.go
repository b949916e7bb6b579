package risk

import (
	"testing"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(symbol string, qty int64, value float64) market.Position {
	return market.Position{Symbol: symbol, Quantity: qty, MarketValue: value}
}

func sigCtx(dir market.Direction, symbol string, positions []market.Position, bal market.Balance) Context {
	return Context{
		Signal:    strategies.Signal{Symbol: symbol, Direction: dir},
		Positions: positions,
		Balance:   bal,
	}
}

func TestRuleConstructors_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewMaxPositionCount(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewConcentration(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewConcentration(1.5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewCashReserve(1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewMaxDrawdown(0.1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMaxPositionCount(t *testing.T) {
	t.Parallel()

	r, err := NewMaxPositionCount(2)
	require.NoError(t, err)

	held := []market.Position{pos("005930", 10, 700_000), pos("000660", 5, 600_000), pos("035420", 0, 0)}
	bal := market.Balance{TotalEquity: 10_000_000}

	tests := []struct {
		name     string
		ctx      Context
		approved bool
	}{
		{"new symbol at limit", sigCtx(market.Buy, "051910", held, bal), false},
		{"add to held symbol", sigCtx(market.Buy, "005930", held, bal), true},
		{"closed position not counted", sigCtx(market.Buy, "051910", held[1:], bal), true},
		{"sell at limit", sigCtx(market.Sell, "051910", held, bal), true},
		{"hold at limit", sigCtx(market.Hold, "051910", held, bal), true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := r.Check(tt.ctx)
			assert.Equal(t, tt.approved, d.Approved, d.Reason)
			assert.Equal(t, r.RuleID(), d.RuleID)
		})
	}
}

func TestConcentration(t *testing.T) {
	t.Parallel()

	r, err := NewConcentration(0.30)
	require.NoError(t, err)

	positions := []market.Position{pos("005930", 40, 3_000_000), pos("000660", 10, 1_000_000)}
	bal := market.Balance{TotalEquity: 10_000_000}

	d := r.Check(sigCtx(market.Buy, "005930", positions, bal))
	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "30.00%")

	d = r.Check(sigCtx(market.Buy, "000660", positions, bal))
	assert.True(t, d.Approved)
	assert.InDelta(t, 0.1, d.Metadata["weight"], 1e-12)

	d = r.Check(sigCtx(market.Sell, "005930", positions, bal))
	assert.True(t, d.Approved)

	d = r.Check(sigCtx(market.Buy, "000660", positions, market.Balance{}))
	assert.False(t, d.Approved)
}

func TestCashReserve(t *testing.T) {
	t.Parallel()

	r, err := NewCashReserve(0.10)
	require.NoError(t, err)

	d := r.Check(sigCtx(market.Buy, "005930", nil, market.Balance{TotalEquity: 10_000_000, AvailableCash: 500_000}))
	assert.False(t, d.Approved)
	assert.Equal(t, "Cash ratio (5.00%) below reserve (10.00%). Trading blocked.", d.Reason)

	d = r.Check(sigCtx(market.Buy, "005930", nil, market.Balance{TotalEquity: 10_000_000, AvailableCash: 1_000_000}))
	assert.True(t, d.Approved)

	d = r.Check(sigCtx(market.Sell, "005930", nil, market.Balance{TotalEquity: 10_000_000}))
	assert.True(t, d.Approved)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	r, err := NewMaxDrawdown(-0.10)
	require.NoError(t, err)

	ctx := sigCtx(market.Buy, "005930", nil, market.Balance{TotalEquity: 8_500_000})
	ctx.PeakEquity = 10_000_000
	d := r.Check(ctx)
	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "-15.00%")

	ctx.Balance.TotalEquity = 9_500_000
	assert.True(t, r.Check(ctx).Approved)

	ctx.PeakEquity = 0
	ctx.Balance.TotalEquity = 1
	assert.True(t, r.Check(ctx).Approved)
}
