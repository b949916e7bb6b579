package risk

import (
	"fmt"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pkg/id"
)

// DailyLossLimitConfig sets the loss floor as a negative fraction of equity,
// for example -0.02 for 2%.
type DailyLossLimitConfig struct {
	MaxDailyLossPercent float64 `json:"maxDailyLossPercent" yaml:"max_daily_loss_pct"`
}

// DailyLossLimit blocks trading once the day's P&L falls below the floor.
// A loss exactly at the floor is allowed.
type DailyLossLimit struct {
	base
	limit float64
}

var _ Rule = (*DailyLossLimit)(nil)

func NewDailyLossLimit(cfg DailyLossLimitConfig) (*DailyLossLimit, error) {
	if cfg.MaxDailyLossPercent >= 0 {
		return nil, fmt.Errorf("%w: daily loss limit must be negative, got %v",
			ErrInvalidConfig, cfg.MaxDailyLossPercent)
	}
	return &DailyLossLimit{
		base: base{
			id:          id.WithPrefix("daily-loss-limit"),
			name:        "Daily Loss Limit",
			description: "Prevents trading when daily loss exceeds the configured limit",
		},
		limit: cfg.MaxDailyLossPercent,
	}, nil
}

func (r *DailyLossLimit) Limit() float64 { return r.limit }

func (r *DailyLossLimit) Check(ctx Context) Decision {
	pnl := ctx.DailyPnL
	lossPct := 0.0
	if ctx.Balance.TotalEquity > 0 {
		lossPct = pnl / ctx.Balance.TotalEquity
	}

	meta := map[string]any{
		"dailyPnL":         pnl,
		"dailyLossPercent": lossPct,
		"limit":            r.limit,
	}

	if pnl >= 0 {
		return r.decide(ctx, true,
			fmt.Sprintf("Daily profit (+%s KRW). Trading allowed.", market.FormatAmount(pnl)), meta)
	}

	if lossPct >= r.limit {
		return r.decide(ctx, true,
			fmt.Sprintf("Daily loss (%.2f%%) is within limit (%.2f%%). Trading allowed.",
				lossPct*100, r.limit*100), meta)
	}

	meta["excessLoss"] = lossPct - r.limit
	return r.decide(ctx, false,
		fmt.Sprintf("Daily loss (%.2f%%) exceeded limit (%.2f%%). Trading blocked.",
			lossPct*100, r.limit*100), meta)
}
