package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsParquetRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.parquet")
	bars := testBars("005930", 10)

	require.NoError(t, WriteBarsParquet(path, bars))

	got, err := ReadBarsParquet(path)
	require.NoError(t, err)
	require.Len(t, got, len(bars))
	for i := range bars {
		assert.Equal(t, bars[i].ID, got[i].ID)
		assert.True(t, bars[i].Time.Equal(got[i].Time))
		assert.Equal(t, bars[i].Close, got[i].Close)
		assert.Equal(t, bars[i].Volume, got[i].Volume)
		assert.Equal(t, bars[i].Source, got[i].Source)
	}
}

func TestReadBarsParquet_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadBarsParquet(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}
