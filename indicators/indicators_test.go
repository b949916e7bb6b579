package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMovingAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		period int
		name   string
	}{
		{Simple, 20, "SMA(20)"},
		{Exponential, 50, "EMA(50)"},
		{Weighted, 9, "WMA(9)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ma, err := NewMovingAverage(tt.kind, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.name, ma.Name())
			assert.Equal(t, tt.kind, ma.Kind())
			assert.Equal(t, tt.period, ma.Period())
		})
	}
}

func TestNewMovingAverage_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewMovingAverage(Simple, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Contains(t, err.Error(), "period must be positive")

	_, err = NewMovingAverage(Simple, -5)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = NewMovingAverage(Kind("HULL"), 5)
	assert.Error(t, err)
}

func TestMovingAverage_Calculate(t *testing.T) {
	t.Parallel()

	data := []float64{10, 20, 30, 40, 50}

	sma, err := NewMovingAverage(Simple, 3)
	require.NoError(t, err)
	got, err := sma.Calculate(data)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.InDelta(t, 20, got[0], 1e-9)

	ema, err := NewMovingAverage(Exponential, 3)
	require.NoError(t, err)
	got, err = ema.Calculate(data)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	wma, err := NewMovingAverage(Weighted, 3)
	require.NoError(t, err)
	got, err = wma.Calculate(data)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.InDelta(t, 140.0/6.0, got[0], 1e-9)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{
		"SIMPLE": Simple, "sma": Simple,
		"exponential": Exponential, "EMA": Exponential,
		" weighted ": Weighted, "wma": Weighted,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("hull")
	assert.Error(t, err)
}

func TestKindAbbrev(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SMA", Simple.Abbrev())
	assert.Equal(t, "EMA", Exponential.Abbrev())
	assert.Equal(t, "WMA", Weighted.Abbrev())
	assert.Equal(t, "MA", Kind("X").Abbrev())
	assert.False(t, Kind("X").Valid())
}
