package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

var t0 = time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

func testSignal() strategies.Signal {
	target, stop := 75600.0, 70560.0
	return strategies.Signal{
		ID:            "signal-01HV0000000000000000000000",
		Time:          t0,
		StrategyID:    "ma-cross-5-20-01HV0000000000000000000001",
		Symbol:        "005930",
		Direction:     market.Buy,
		Strength:      0.6319,
		Reason:        "Short MA (SMA(5)=72000.00) crossed above Long MA (SMA(20)=70500.00) with volume 2,000,000",
		ParamsHash:    "feee2c89b2b8a41a8bd67ef774caa86b88c571f3a914cdbf418a4c75393d3bd0",
		CorrelationID: "6f1c1f7e-8f55-4b7e-9f0e-0a1b2c3d4e5f",
		TargetPrice:   &target,
		StopLoss:      &stop,
		Metadata:      map[string]any{"shortMA": 72000.0, "longMA": 70500.0, "bars": 21},
	}
}

func testDecisions() []risk.Decision {
	return []risk.Decision{
		{
			Approved: true,
			Reason:   "Daily loss (-1.00%) is within limit (-2.00%). Trading allowed.",
			RuleID:   "daily-loss-limit-1",
			RuleName: "Daily Loss Limit",
			Time:     t0,
			Metadata: map[string]any{"dailyPnL": -100000.0, "limit": -0.02},
		},
		{
			Approved: false,
			Reason:   "Open positions (5) at limit (5). Trading blocked.",
			RuleID:   "max-position-count-1",
			RuleName: "Max Position Count",
			Time:     t0,
		},
	}
}

func testBars(symbol string, n int) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		ts := t0.Truncate(24*time.Hour).AddDate(0, 0, i)
		c := 70000 + float64(i)*100
		bars[i] = market.Bar{
			ID:     fmt.Sprintf("%s-%s-%d", symbol, ts.Format("20060102"), i),
			Time:   ts,
			Symbol: symbol,
			Open:   c - 50,
			High:   c + 200,
			Low:    c - 200,
			Close:  c,
			Volume: int64(1_000_000 + i),
			Source: market.SourceKISRest,
		}
	}
	return bars
}
