package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type maFunc func([]float64, int) ([]float64, error)

var allMAs = map[string]maFunc{
	"SMA": SMA,
	"EMA": EMA,
	"WMA": WMA,
}

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 0.01, "index %d", i)
	}
}

func TestSMA(t *testing.T) {
	t.Parallel()

	got, err := SMA([]float64{10, 20, 30, 40, 50}, 3)
	require.NoError(t, err)
	assertSeries(t, []float64{20, 30, 40}, got)

	got, err = SMA([]float64{10, 20, 30, 40, 50}, 5)
	require.NoError(t, err)
	assertSeries(t, []float64{30}, got)
}

func TestEMA(t *testing.T) {
	t.Parallel()

	got, err := EMA([]float64{10, 20, 30, 40, 50}, 3)
	require.NoError(t, err)
	// Leading values mirror the input, index 2 is the seed SMA, k = 0.5.
	assertSeries(t, []float64{10, 20, 20, 30, 40}, got)
}

func TestWMA(t *testing.T) {
	t.Parallel()

	got, err := WMA([]float64{10, 20, 30, 40, 50}, 3)
	require.NoError(t, err)
	// (30*3 + 20*2 + 10*1) / 6 and so on.
	assertSeries(t, []float64{23.33, 33.33, 43.33}, got)
}

func TestMovingAverages_NotEnoughData(t *testing.T) {
	t.Parallel()

	for name, fn := range allMAs {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, data := range [][]float64{nil, {}, {10, 20}, {1, 2, 3, 4}} {
				got, err := fn(data, 5)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
		})
	}
}

func TestMovingAverages_PeriodOneIsIdentity(t *testing.T) {
	t.Parallel()

	data := []float64{10, 20, 30}
	for name, fn := range allMAs {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := fn(data, 1)
			require.NoError(t, err)
			assert.Equal(t, data, got)

			// The result must not alias the input.
			got[0] = 99
			assert.Equal(t, 10.0, data[0])
		})
	}
}

func TestMovingAverages_ResultLength(t *testing.T) {
	t.Parallel()

	data := make([]float64, 30)
	for i := range data {
		data[i] = float64(100 + i)
	}
	for period := 1; period <= len(data); period++ {
		sma, err := SMA(data, period)
		require.NoError(t, err)
		wma, err := WMA(data, period)
		require.NoError(t, err)
		ema, err := EMA(data, period)
		require.NoError(t, err)

		assert.Len(t, sma, len(data)-period+1)
		assert.Len(t, wma, len(data)-period+1)
		assert.Len(t, ema, len(data))
	}
}

func TestMovingAverages_InvalidValues(t *testing.T) {
	t.Parallel()

	inputs := [][]float64{
		{10, 20, math.NaN(), 40, 50},
		{10, 20, math.Inf(1), 40, 50},
		{math.Inf(-1)},
	}
	for name, fn := range allMAs {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, data := range inputs {
				got, err := fn(data, 3)
				assert.ErrorIs(t, err, ErrInvalidData)
				assert.Contains(t, err.Error(), "invalid values")
				assert.Nil(t, got)
			}
		})
	}
}

func TestMovingAverages_InvalidPeriod(t *testing.T) {
	t.Parallel()

	for name, fn := range allMAs {
		for _, p := range []int{0, -3} {
			_, err := fn([]float64{1, 2, 3}, p)
			assert.ErrorIs(t, err, ErrInvalidPeriod, name)
		}
	}
}
