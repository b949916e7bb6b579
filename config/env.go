package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set are not overridden. With no
// arguments it loads ".env".
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")

	setString(&cfg.KIS.AppKey, "KIS_APP_KEY")
	setString(&cfg.KIS.AppSecret, "KIS_APP_SECRET")
	setString(&cfg.KIS.AccountNo, "KIS_ACCOUNT_NO")
	setString(&cfg.KIS.AccountType, "KIS_ACCOUNT_TYPE")
	setString(&cfg.KIS.BaseURL, "KIS_BASE_URL")

	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Cache.Type, "CACHE_TYPE")
	setString(&cfg.Cache.Addr, "REDIS_URL")

	if v, ok := lookup("PRICE_CACHE_TTL"); ok {
		d, err := parseTTL(v)
		if err != nil {
			return fmt.Errorf("invalid PRICE_CACHE_TTL: %w", err)
		}
		cfg.Cache.PriceTTL = d.String()
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"MAX_DAILY_LOSS_PCT", &cfg.Risk.MaxDailyLossPct},
		{"MAX_POSITION_WEIGHT_PCT", &cfg.Risk.MaxPositionWeightPct},
		{"MAX_CONCENTRATION_PCT", &cfg.Risk.MaxConcentrationPct},
		{"MAX_ORDER_SIZE", &cfg.Risk.MaxOrderSize},
		{"MAX_DRAWDOWN_PCT", &cfg.Risk.MaxDrawdownPct},
		{"MIN_CASH_RESERVE_PCT", &cfg.Risk.MinCashReservePct},
		{"RISK_PER_TRADE_PCT", &cfg.Risk.RiskPerTradePct},
	}
	for _, f := range floats {
		if v, ok := lookup(f.key); ok {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = x
		}
	}

	if v, ok := lookup("MAX_POSITION_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_POSITION_COUNT: %w", err)
		}
		cfg.Risk.MaxPositionCount = n
	}

	if v, ok := lookup("WATCH_SYMBOLS"); ok {
		var syms []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				syms = append(syms, s)
			}
		}
		cfg.Collector.Symbols = syms
	}
	return nil
}

// RequireKIS reports the first missing broker credential.
func (c *Config) RequireKIS() error {
	for _, kv := range []struct{ key, val string }{
		{"KIS_APP_KEY", c.KIS.AppKey},
		{"KIS_APP_SECRET", c.KIS.AppSecret},
		{"KIS_ACCOUNT_NO", c.KIS.AccountNo},
	} {
		if kv.val == "" {
			return fmt.Errorf("required environment variable %s is not set", kv.key)
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// parseTTL accepts a Go duration ("5m") or a bare number of seconds ("300").
func parseTTL(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
