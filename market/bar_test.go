package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validBar() Bar {
	return Bar{
		ID:     "005930-20240102-0",
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Symbol: "005930",
		Open:   70000,
		High:   71000,
		Low:    69500,
		Close:  70500,
		Volume: 1000,
		Source: SourceKISRest,
	}
}

func TestBarValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Bar)
		errMsg string
	}{
		{"valid", func(*Bar) {}, ""},
		{"missing id", func(b *Bar) { b.ID = "" }, "missing field 'barId'"},
		{"missing symbol", func(b *Bar) { b.Symbol = "" }, "missing field 'symbol'"},
		{"missing time", func(b *Bar) { b.Time = time.Time{} }, "missing field 'timestamp'"},
		{"high below low", func(b *Bar) { b.High = 69000 }, "high must be >= low"},
		{"negative price", func(b *Bar) { b.Open = -1 }, "prices cannot be negative"},
		{"negative volume", func(b *Bar) { b.Volume = -5 }, "volume cannot be negative"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := validBar()
			tt.mutate(&b)
			err := b.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBar)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewMarketData(t *testing.T) {
	t.Parallel()

	a := validBar()
	b := validBar()
	b.Close = 71000
	b.Volume = 3000

	md := NewMarketData("005930", []Bar{a, b})
	assert.Equal(t, 71000.0, md.CurrentPrice)
	assert.Equal(t, int64(4000), md.Volume24h)
	assert.Equal(t, []float64{70500, 71000}, md.Closes())

	last, ok := md.LastBar()
	assert.True(t, ok)
	assert.Equal(t, int64(3000), last.Volume)

	empty := NewMarketData("005930", nil)
	assert.Equal(t, 0.0, empty.CurrentPrice)
	_, ok = empty.LastBar()
	assert.False(t, ok)
	assert.Empty(t, empty.Closes())
}

func TestPriceValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	assert.NoError(t, Price{Symbol: "005930", Price: 1, Time: now}.Validate())
	assert.ErrorIs(t, Price{Symbol: "005930", Price: -1, Time: now}.Validate(), ErrInvalidPrice)
	assert.ErrorIs(t, Price{Symbol: " ", Price: 1, Time: now}.Validate(), ErrInvalidPrice)
	assert.ErrorIs(t, Price{Symbol: "005930", Price: 1}.Validate(), ErrInvalidPrice)
}

func TestPositionsHelpers(t *testing.T) {
	t.Parallel()

	positions := []Position{
		{Symbol: "005930", Quantity: 10, MarketValue: 700000},
		{Symbol: "005930", Quantity: 5, MarketValue: 350000},
		{Symbol: "000660", Quantity: 0, MarketValue: 0},
		{Symbol: "035420", Quantity: 2, MarketValue: 400000},
	}

	assert.Equal(t, 1050000.0, Exposure(positions, "005930"))
	assert.Equal(t, 0.0, Exposure(positions, "000660"))
	assert.Equal(t, 3, OpenCount(positions))
	assert.True(t, Holds(positions, "035420"))
	assert.False(t, Holds(positions, "000660"))
}

func TestMergeSymbols(t *testing.T) {
	t.Parallel()

	got := MergeSymbols([]string{"005930", "000660"}, []string{"000660", "", "035420", "005930"})
	assert.Equal(t, []string{"005930", "000660", "035420"}, got)
}

func TestPriceStore(t *testing.T) {
	t.Parallel()

	ps := NewPriceStore()
	_, err := ps.Get("005930")
	assert.Error(t, err)

	ps.Set(Price{Symbol: "005930", Price: 70000})
	p, err := ps.Get("005930")
	assert.NoError(t, err)
	assert.Equal(t, 70000.0, p.Price)
}

func TestBarID(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 15, 30, 0, 0, time.FixedZone("KST", 9*3600))
	assert.Equal(t, "005930-20240305-2", BarID("005930", ts, 2))
}
