package risk

import "math"

// SizeInputs describes a proposed equity order.
type SizeInputs struct {
	Equity        float64
	RiskPct       float64 // fraction of equity lost if the stop is hit, e.g. 0.01
	EntryPrice    float64
	StopPrice     float64
	MaxOrderValue float64 // absolute cap on entry*shares, 0 for none
	MaxWeightPct  float64 // cap on entry*shares/equity, 0 for none
}

// SizeResult is the share count that keeps the stop-out loss at RiskPct.
type SizeResult struct {
	Shares     int64
	RiskAmount float64
	OrderValue float64
}

// Size computes whole shares so that (entry-stop)*shares is RiskPct of
// equity, then applies the order-value and weight caps. Zero shares means
// the trade cannot be sized.
func Size(in SizeInputs) SizeResult {
	perShare := math.Abs(in.EntryPrice - in.StopPrice)
	if in.Equity <= 0 || in.EntryPrice <= 0 || perShare == 0 || in.RiskPct <= 0 {
		return SizeResult{}
	}

	riskAmt := in.Equity * in.RiskPct
	shares := math.Floor(riskAmt / perShare)

	if in.MaxOrderValue > 0 {
		shares = math.Min(shares, math.Floor(in.MaxOrderValue/in.EntryPrice))
	}
	if in.MaxWeightPct > 0 {
		shares = math.Min(shares, math.Floor(in.Equity*in.MaxWeightPct/in.EntryPrice))
	}

	n := int64(shares)
	return SizeResult{
		Shares:     n,
		RiskAmount: float64(n) * perShare,
		OrderValue: float64(n) * in.EntryPrice,
	}
}

// RR returns reward over risk for an entry, stop and target.
func RR(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(target-entry) / risk
}
