package market

import "time"

// Direction is the side a signal recommends.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Position is an open holding in one symbol.
type Position struct {
	ID            string
	Symbol        string
	Quantity      int64
	AveragePrice  float64
	CurrentPrice  float64
	UnrealizedPnL float64
	RealizedPnL   float64
	TotalCost     float64
	MarketValue   float64
	OpenedAt      time.Time
	UpdatedAt     time.Time
}

// Balance is the account snapshot the risk layer evaluates against.
type Balance struct {
	TotalEquity   float64
	Cash          float64
	AvailableCash float64
	StockValue    float64
	UnrealizedPnL float64
	RealizedPnL   float64
	Time          time.Time
}

// Exposure returns the market value held in symbol across open positions.
func Exposure(positions []Position, symbol string) float64 {
	total := 0.0
	for _, p := range positions {
		if p.Symbol == symbol && p.Quantity > 0 {
			total += p.MarketValue
		}
	}
	return total
}

// OpenCount returns the number of positions with a positive quantity.
func OpenCount(positions []Position) int {
	n := 0
	for _, p := range positions {
		if p.Quantity > 0 {
			n++
		}
	}
	return n
}

// Holds reports whether an open position exists for symbol.
func Holds(positions []Position, symbol string) bool {
	for _, p := range positions {
		if p.Symbol == symbol && p.Quantity > 0 {
			return true
		}
	}
	return false
}
