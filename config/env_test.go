package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate the process environment and cannot run in parallel.

func TestApplyEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KIS_APP_KEY", "key")
	t.Setenv("KIS_APP_SECRET", "secret")
	t.Setenv("KIS_ACCOUNT_NO", "12345678-01")
	t.Setenv("DB_PATH", "/tmp/at.db")
	t.Setenv("PRICE_CACHE_TTL", "120")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MAX_DAILY_LOSS_PCT", "-0.03")
	t.Setenv("MAX_POSITION_COUNT", "7")
	t.Setenv("MIN_CASH_RESERVE_PCT", "0.05")
	t.Setenv("WATCH_SYMBOLS", "005930, 000660,,035420")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "key", cfg.KIS.AppKey)
	assert.Equal(t, "01", cfg.KIS.AccountType)
	assert.Equal(t, "/tmp/at.db", cfg.Database.Path)
	assert.Equal(t, "2m0s", cfg.Cache.PriceTTL)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.Addr)
	assert.Equal(t, -0.03, cfg.Risk.MaxDailyLossPct)
	assert.Equal(t, 7, cfg.Risk.MaxPositionCount)
	assert.Equal(t, 0.05, cfg.Risk.MinCashReservePct)
	assert.Equal(t, 0.30, cfg.Risk.MaxConcentrationPct)
	assert.Equal(t, []string{"005930", "000660", "035420"}, cfg.Collector.Symbols)
	assert.NoError(t, cfg.RequireKIS())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("MAX_POSITION_COUNT", "five")
	err := ApplyEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_POSITION_COUNT")

	t.Setenv("MAX_POSITION_COUNT", "")
	t.Setenv("PRICE_CACHE_TTL", "-5")
	err = ApplyEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICE_CACHE_TTL")
}

func TestRequireKIS(t *testing.T) {
	cfg := Default()
	err := cfg.RequireKIS()
	require.Error(t, err)
	assert.Equal(t, "required environment variable KIS_APP_KEY is not set", err.Error())

	cfg.KIS.AppKey = "k"
	cfg.KIS.AppSecret = "s"
	err = cfg.RequireKIS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KIS_ACCOUNT_NO")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("AUTOTRADER_TEST_VALUE=from-file\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("AUTOTRADER_TEST_VALUE") })

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("AUTOTRADER_TEST_VALUE"))
}

func TestLoad(t *testing.T) {
	t.Setenv("MAX_POSITION_COUNT", "2")

	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, Default().SaveToFile(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Risk.MaxPositionCount)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Risk.MaxPositionCount)

	t.Setenv("MAX_DAILY_LOSS_PCT", "0.1")
	_, err = Load("")
	assert.Error(t, err)
}
