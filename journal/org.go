package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

// FormatSignalOrg renders a signal and its risk decisions as an Org-mode
// block. Structured facts go in the PROPERTIES drawer; each decision becomes
// a checklist item.
func FormatSignalOrg(s strategies.Signal, decisions []risk.Decision) string {
	heading := fmt.Sprintf("** Signal: %s %s (%s)", s.Symbol, s.Direction, shortID(s.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":SIGNAL_ID: %s\n", s.ID))
	b.WriteString(fmt.Sprintf(":CORRELATION_ID: %s\n", s.CorrelationID))
	b.WriteString(fmt.Sprintf(":STRATEGY_ID: %s\n", s.StrategyID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", s.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", s.Direction))
	b.WriteString(fmt.Sprintf(":STRENGTH: %.4f\n", s.Strength))
	if s.TargetPrice != nil {
		b.WriteString(fmt.Sprintf(":TARGET_PRICE: %.2f\n", *s.TargetPrice))
	}
	if s.StopLoss != nil {
		b.WriteString(fmt.Sprintf(":STOP_LOSS: %.2f\n", *s.StopLoss))
	}
	b.WriteString(fmt.Sprintf(":PARAMS_HASH: %s\n", s.ParamsHash))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", s.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString(s.Reason)
	b.WriteString("\n")

	if len(decisions) > 0 {
		b.WriteString("\n*** Risk\n")
		for _, d := range decisions {
			box := "[X]"
			if !d.Approved {
				box = "[ ]"
			}
			b.WriteString(fmt.Sprintf("- %s %s: %s\n", box, d.RuleName, d.Reason))
		}
	}

	b.WriteString("\n*** Review\n- \n")
	return b.String()
}

// FormatSignalsOrg renders multiple signals, without decisions, separated by
// blank lines.
func FormatSignalsOrg(signals []strategies.Signal) string {
	var b strings.Builder
	for i, s := range signals {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatSignalOrg(s, nil))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
