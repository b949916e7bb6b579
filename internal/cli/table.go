package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pipeline"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return market.FormatAmount(*v)
}

func renderSignal(w io.Writer, s strategies.Signal) {
	t := newTable(w, "SIGNAL")
	t.AppendRows([]table.Row{
		{"Symbol", s.Symbol},
		{"Direction", s.Direction},
		{"Strength", fmt.Sprintf("%.4f", s.Strength)},
		{"Reason", s.Reason},
		{"Target", optPrice(s.TargetPrice)},
		{"Stop", optPrice(s.StopLoss)},
		{"Strategy", s.StrategyID},
		{"Params", s.ParamsHash[:min(12, len(s.ParamsHash))]},
		{"Correlation", s.CorrelationID},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 12, Align: text.AlignLeft},
		{Number: 2, WidthMax: 80, Align: text.AlignLeft},
	})
	t.Render()
}

func renderDecisions(w io.Writer, decisions []risk.Decision) {
	t := newTable(w, "RISK DECISIONS")
	t.AppendHeader(table.Row{"#", "Rule", "Approved", "Reason"})
	for i, d := range decisions {
		mark := "yes"
		if !d.Approved {
			mark = "NO"
		}
		t.AppendRow(table.Row{i + 1, d.RuleName, mark, d.Reason})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 70},
	})
	t.Render()
}

func renderOutcome(w io.Writer, out pipeline.Outcome) {
	renderSignal(w, out.Signal)
	if len(out.Decisions) > 0 {
		renderDecisions(w, out.Decisions)
	}

	verdict := "REJECTED"
	switch {
	case out.Approved:
		verdict = "APPROVED"
	case !out.Signal.Actionable():
		verdict = "NO TRADE (" + string(out.Signal.Direction) + ")"
	}
	fmt.Fprintf(w, "Verdict: %s\n", verdict)
	if out.Size != nil {
		fmt.Fprintf(w, "Size: %d shares, order value %s KRW, risk %s KRW\n",
			out.Size.Shares, market.FormatAmount(out.Size.OrderValue), market.FormatAmount(out.Size.RiskAmount))
	}
}

func renderSignalList(w io.Writer, signals []strategies.Signal) {
	t := newTable(w, "SIGNALS")
	t.AppendHeader(table.Row{"Time", "Symbol", "Direction", "Strength", "ID"})
	for _, s := range signals {
		t.AppendRow(table.Row{s.Time.Format("2006-01-02 15:04:05"), s.Symbol, s.Direction, fmt.Sprintf("%.4f", s.Strength), s.ID})
	}
	t.Render()
}

func renderPrices(w io.Writer, prices []market.Price) {
	t := newTable(w, "PRICES")
	t.AppendHeader(table.Row{"Symbol", "Price", "Time"})
	for _, p := range prices {
		t.AppendRow(table.Row{p.Symbol, market.FormatAmount(p.Price), p.Time.Format("15:04:05")})
	}
	t.Render()
}

func renderWatchlist(w io.Writer, wl market.Watchlist) {
	t := newTable(w, "WATCHLIST "+wl.Name)
	t.AppendHeader(table.Row{"#", "Symbol"})
	for i, s := range wl.Symbols {
		t.AppendRow(table.Row{i + 1, s})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("updated %s", wl.UpdatedAt.Format("2006-01-02 15:04"))})
	t.Render()
}
