package journal

import (
	"strings"
	"testing"

	"github.com/rustyeddy/autotrader/strategies"
	"github.com/stretchr/testify/assert"
)

func TestFormatSignalOrg(t *testing.T) {
	t.Parallel()

	sig := testSignal()
	result := FormatSignalOrg(sig, testDecisions())

	assert.True(t, strings.HasPrefix(result, "** Signal: 005930 BUY (signal-0)\n"))

	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":SIGNAL_ID: "+sig.ID)
	assert.Contains(t, result, ":CORRELATION_ID: "+sig.CorrelationID)
	assert.Contains(t, result, ":STRENGTH: 0.6319")
	assert.Contains(t, result, ":TARGET_PRICE: 75600.00")
	assert.Contains(t, result, ":STOP_LOSS: 70560.00")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, sig.Reason)

	assert.Contains(t, result, "*** Risk")
	assert.Contains(t, result, "- [X] Daily Loss Limit: Daily loss (-1.00%)")
	assert.Contains(t, result, "- [ ] Max Position Count: Open positions (5)")
	assert.Contains(t, result, "*** Review")
}

func TestFormatSignalOrgWithoutDecisions(t *testing.T) {
	t.Parallel()

	sig := testSignal()
	sig.TargetPrice, sig.StopLoss = nil, nil
	result := FormatSignalOrg(sig, nil)

	assert.NotContains(t, result, "*** Risk")
	assert.NotContains(t, result, ":TARGET_PRICE:")
	assert.NotContains(t, result, ":STOP_LOSS:")
}

func TestFormatSignalsOrg(t *testing.T) {
	t.Parallel()

	a, b := testSignal(), testSignal()
	b.Symbol = "000660"

	result := FormatSignalsOrg([]strategies.Signal{a, b})
	assert.Equal(t, 2, strings.Count(result, "** Signal:"))
	assert.Contains(t, result, "*** Review\n- \n\n\n** Signal: 000660")

	assert.Empty(t, FormatSignalsOrg(nil))
	assert.NotContains(t, FormatSignalsOrg([]strategies.Signal{a}), "\n\n\n")
}

func TestShortID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"long ID gets truncated", "signal-01HV000000", "signal-0"},
		{"exactly 8 characters", "12345678", "12345678"},
		{"less than 8 characters", "short", "short"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, shortID(tt.input))
		})
	}
}
