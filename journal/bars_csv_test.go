package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/autotrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBarsCSV(t *testing.T) {
	t.Parallel()

	in := `time,open,high,low,close,volume
2024-01-02,70000,71000,69500,70500,1200000
2024-01-03T00:00:00Z,70500,72000,70000,71800,1500000
20240104,71800,72500,71000,72000,900000
`
	bars, err := ReadBarsCSV(strings.NewReader(in), "005930")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "005930-20240102-0", bars[0].ID)
	assert.Equal(t, "005930-20240104-2", bars[2].ID)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Time)
	assert.Equal(t, 71800.0, bars[1].Close)
	assert.Equal(t, int64(900000), bars[2].Volume)
	assert.Equal(t, market.SourceCSV, bars[0].Source)
	assert.Equal(t, "005930", bars[0].Symbol)
}

func TestReadBarsCSV_ColumnOrder(t *testing.T) {
	t.Parallel()

	in := "Volume,Close,Low,High,Open,Time\n10,5,4,6,5,2024-01-02\n"
	bars, err := ReadBarsCSV(strings.NewReader(in), "X")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 6.0, bars[0].High)
	assert.Equal(t, int64(10), bars[0].Volume)
}

func TestReadBarsCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "empty input"},
		{"missing column", "time,open,high,low,close\n", `missing column "volume"`},
		{"bad time", "time,open,high,low,close,volume\nyesterday,1,1,1,1,1\n", "line 2"},
		{"bad price", "time,open,high,low,close,volume\n2024-01-02,x,1,1,1,1\n", "open"},
		{"high below low", "time,open,high,low,close,volume\n2024-01-02,1,1,2,1,1\n", "high must be >= low"},
		{"negative volume", "time,open,high,low,close,volume\n2024-01-02,1,2,1,1,-5\n", "volume cannot be negative"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadBarsCSV(strings.NewReader(tt.in), "X")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteBarsCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	bars := testBars("005930", 4)
	var buf bytes.Buffer
	require.NoError(t, WriteBarsCSV(&buf, bars))
	assert.True(t, strings.HasPrefix(buf.String(), "time,open,high,low,close,volume\n"))

	got, err := ReadBarsCSV(&buf, "005930")
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range bars {
		assert.True(t, bars[i].Time.Equal(got[i].Time))
		assert.Equal(t, bars[i].Close, got[i].Close)
		assert.Equal(t, bars[i].Volume, got[i].Volume)
	}
}
