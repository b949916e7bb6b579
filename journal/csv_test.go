package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	signalsPath := filepath.Join(dir, "signals.csv")
	decisionsPath := filepath.Join(dir, "decisions.csv")

	j, err := NewCSV(signalsPath, decisionsPath)
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	assert.Equal(t, [][]string{signalHeader}, readCSV(t, signalsPath))
	assert.Equal(t, [][]string{decisionHeader}, readCSV(t, decisionsPath))
}

func TestCSVJournalRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	signalsPath := filepath.Join(dir, "signals.csv")
	decisionsPath := filepath.Join(dir, "decisions.csv")

	j, err := NewCSV(signalsPath, decisionsPath)
	require.NoError(t, err)

	ctx := context.Background()
	sig := testSignal()
	require.NoError(t, j.RecordSignal(ctx, sig))
	require.NoError(t, j.RecordDecisions(ctx, sig, testDecisions()))
	require.NoError(t, j.Close())

	rows := readCSV(t, signalsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		sig.ID,
		sig.CorrelationID,
		t0.Format(time.RFC3339Nano),
		sig.StrategyID,
		"005930",
		"BUY",
		"0.6319",
		"75600.00",
		"70560.00",
		sig.ParamsHash,
		sig.Reason,
	}, rows[1])

	rows = readCSV(t, decisionsPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{sig.CorrelationID, sig.ID, "0", t0.Format(time.RFC3339Nano),
		"daily-loss-limit-1", "Daily Loss Limit", "true",
		"Daily loss (-1.00%) is within limit (-2.00%). Trading allowed."}, rows[1])
	assert.Equal(t, "1", rows[2][2])
	assert.Equal(t, "false", rows[2][6])
}

func TestMultiJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := NewCSV(filepath.Join(dir, "s.csv"), filepath.Join(dir, "d.csv"))
	require.NoError(t, err)
	s, err := NewSQLite(filepath.Join(dir, "j.db"))
	require.NoError(t, err)

	m := Multi{c, s}
	ctx := context.Background()
	sig := testSignal()
	require.NoError(t, m.RecordSignal(ctx, sig))
	require.NoError(t, m.RecordDecisions(ctx, sig, testDecisions()))

	recs, err := s.DecisionsByCorrelation(ctx, sig.CorrelationID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, m.Close())
	assert.Len(t, readCSV(t, filepath.Join(dir, "d.csv")), 3)
}
