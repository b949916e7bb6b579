// Package market holds the equities data model shared by collectors,
// strategies and the risk layer.
package market

import (
	"errors"
	"fmt"
	"time"
)

// Source tags where a bar or price came from.
type Source string

const (
	SourceKISRest      Source = "KIS_REST"
	SourceKISWebsocket Source = "KIS_WEBSOCKET"
	SourceBacktest     Source = "BACKTEST"
	SourceSimulator    Source = "SIMULATOR"
	SourceCSV          Source = "CSV"
)

// Bar is one OHLCV observation for a symbol.
//
// The data collection layer guarantees OHLC sanity (see Validate) before
// handing bars to a strategy; strategies read them as-is.
type Bar struct {
	ID     string    `json:"barId"`
	Time   time.Time `json:"timestamp"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Source Source    `json:"source"`
}

var ErrInvalidBar = errors.New("invalid bar")

// Validate checks the bar invariants: required fields present, high >= low,
// no negative prices or volume.
func (b Bar) Validate() error {
	switch {
	case b.ID == "":
		return fmt.Errorf("%w: missing field 'barId'", ErrInvalidBar)
	case b.Symbol == "":
		return fmt.Errorf("%w: missing field 'symbol'", ErrInvalidBar)
	case b.Time.IsZero():
		return fmt.Errorf("%w: missing field 'timestamp'", ErrInvalidBar)
	}
	if b.High < b.Low {
		return fmt.Errorf("%w: high must be >= low", ErrInvalidBar)
	}
	if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
		return fmt.Errorf("%w: prices cannot be negative", ErrInvalidBar)
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: volume cannot be negative", ErrInvalidBar)
	}
	return nil
}

// BarID returns "<symbol>-<yyyymmdd>-<idx>".
func BarID(symbol string, t time.Time, idx int) string {
	return fmt.Sprintf("%s-%s-%d", symbol, t.UTC().Format("20060102"), idx)
}

// MarketData is a time-ascending bar series for one symbol plus the current
// price snapshot. It is built fresh for each analysis.
type MarketData struct {
	Symbol       string
	Time         time.Time
	CurrentPrice float64
	Bars         []Bar
	Volume24h    int64
}

// NewMarketData builds a MarketData from bars, taking the current price from
// the last close.
func NewMarketData(symbol string, bars []Bar) MarketData {
	md := MarketData{
		Symbol: symbol,
		Time:   time.Now().UTC(),
		Bars:   bars,
	}
	if n := len(bars); n > 0 {
		md.CurrentPrice = bars[n-1].Close
	}
	for _, b := range bars {
		md.Volume24h += b.Volume
	}
	return md
}

// Closes returns the closing prices in bar order.
func (md MarketData) Closes() []float64 {
	out := make([]float64, len(md.Bars))
	for i, b := range md.Bars {
		out[i] = b.Close
	}
	return out
}

// LastBar returns the most recent bar, if any.
func (md MarketData) LastBar() (Bar, bool) {
	if len(md.Bars) == 0 {
		return Bar{}, false
	}
	return md.Bars[len(md.Bars)-1], true
}
