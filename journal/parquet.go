package journal

import (
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rustyeddy/autotrader/market"
)

// barRow is the parquet layout for exported bars. Time is Unix milliseconds.
type barRow struct {
	BarID     string  `parquet:"bar_id"`
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"t"`
	Open      float64 `parquet:"o"`
	High      float64 `parquet:"h"`
	Low       float64 `parquet:"l"`
	Close     float64 `parquet:"c"`
	Volume    int64   `parquet:"v"`
	Source    string  `parquet:"source,optional"`
}

// WriteBarsParquet writes bars to a parquet file at path.
func WriteBarsParquet(path string, bars []market.Bar) error {
	rows := make([]barRow, len(bars))
	for i, b := range bars {
		rows[i] = barRow{
			BarID:     b.ID,
			Symbol:    b.Symbol,
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			Source:    string(b.Source),
		}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// ReadBarsParquet loads bars written by WriteBarsParquet.
func ReadBarsParquet(path string) ([]market.Bar, error) {
	rows, err := parquet.ReadFile[barRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	bars := make([]market.Bar, len(rows))
	for i, r := range rows {
		bars[i] = market.Bar{
			ID:     r.BarID,
			Symbol: r.Symbol,
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			Source: market.Source(r.Source),
		}
	}
	return bars, nil
}
