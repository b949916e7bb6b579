package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

// BarsHeader is the column layout read by ReadBarsCSV and written by
// WriteBarsCSV.
var BarsHeader = []string{"time", "open", "high", "low", "close", "volume"}

var barTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "20060102"}

// ReadBarsCSV parses an OHLCV CSV with a header row. Header names are matched
// case-insensitively and may appear in any order. Every bar is validated.
func ReadBarsCSV(r io.Reader, symbol string) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("bars csv: empty input")
		}
		return nil, fmt.Errorf("bars csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range BarsHeader {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("bars csv: missing column %q", want)
		}
	}

	var bars []market.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bars csv line %d: %w", line, err)
		}

		b, err := parseBarRecord(rec, col, symbol, len(bars))
		if err != nil {
			return nil, fmt.Errorf("bars csv line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBarRecord(rec []string, col map[string]int, symbol string, idx int) (market.Bar, error) {
	ts, err := parseBarTime(rec[col["time"]])
	if err != nil {
		return market.Bar{}, err
	}

	var px [4]float64
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[name]]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("%s: %w", name, err)
		}
		px[i] = v
	}
	vol, err := strconv.ParseInt(strings.TrimSpace(rec[col["volume"]]), 10, 64)
	if err != nil {
		return market.Bar{}, fmt.Errorf("volume: %w", err)
	}

	b := market.Bar{
		ID:     market.BarID(symbol, ts, idx),
		Time:   ts,
		Symbol: symbol,
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
		Source: market.SourceCSV,
	}
	if err := b.Validate(); err != nil {
		return market.Bar{}, err
	}
	return b, nil
}

func parseBarTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range barTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// WriteBarsCSV writes bars in the BarsHeader layout.
func WriteBarsCSV(w io.Writer, bars []market.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BarsHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := cw.Write([]string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
