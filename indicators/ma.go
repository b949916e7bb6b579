package indicators

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidData is returned when a series holds NaN or infinite values.
	ErrInvalidData = errors.New("data contains invalid values (NaN or Inf)")

	// ErrInvalidPeriod is returned for a non-positive period.
	ErrInvalidPeriod = errors.New("period must be positive")
)

// SMA calculates the Simple Moving Average of every contiguous window of
// period values. The result has len(data)-period+1 values, or is empty when
// there is not enough history yet.
func SMA(data []float64, period int) ([]float64, error) {
	if err := prepare(data, period); err != nil {
		return nil, err
	}
	if len(data) < period {
		return []float64{}, nil
	}
	if period == 1 {
		return clone(data), nil
	}

	out := make([]float64, 0, len(data)-period+1)
	for i := period - 1; i < len(data); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += data[i-j]
		}
		out = append(out, sum/float64(period))
	}
	return out, nil
}

// EMA calculates the Exponential Moving Average.
//
// The result is always len(data) long so it lines up 1:1 with the input.
// The first period-1 values are the raw inputs, index period-1 holds the seed
// SMA and the rest follow ema = (x-prev)*k + prev with k = 2/(period+1).
func EMA(data []float64, period int) ([]float64, error) {
	if err := prepare(data, period); err != nil {
		return nil, err
	}
	if len(data) < period {
		return []float64{}, nil
	}
	if period == 1 {
		return clone(data), nil
	}

	multiplier := 2.0 / float64(period+1)

	// Start with SMA for first value
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += data[i]
	}

	out := make([]float64, 0, len(data))
	out = append(out, data[:period-1]...)
	out = append(out, sma/float64(period))

	for i := period; i < len(data); i++ {
		prev := out[i-1]
		out = append(out, (data[i]-prev)*multiplier+prev)
	}
	return out, nil
}

// WMA calculates the linearly Weighted Moving Average. Inside each window the
// newest sample weighs period and the oldest weighs 1.
func WMA(data []float64, period int) ([]float64, error) {
	if err := prepare(data, period); err != nil {
		return nil, err
	}
	if len(data) < period {
		return []float64{}, nil
	}
	if period == 1 {
		return clone(data), nil
	}

	denom := float64(period*(period+1)) / 2
	out := make([]float64, 0, len(data)-period+1)
	for i := period - 1; i < len(data); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += data[i-j] * float64(period-j)
		}
		out = append(out, sum/denom)
	}
	return out, nil
}

func prepare(data []float64, period int) error {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at index %d", ErrInvalidData, i)
		}
	}
	if period <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidPeriod, period)
	}
	return nil
}

func clone(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	return out
}
