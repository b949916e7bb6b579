package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/autotrader/indicators"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

// Config is the complete autotrader configuration.
type Config struct {
	App       AppConfig       `json:"app" yaml:"app"`
	KIS       KISConfig       `json:"kis" yaml:"kis"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Risk      RiskLimits      `json:"risk" yaml:"risk"`
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
}

type AppConfig struct {
	Env      string `json:"env" yaml:"env"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// KISConfig holds the broker API credentials. Credentials are normally
// supplied through the environment rather than the config file.
type KISConfig struct {
	AppKey      string `json:"app_key,omitempty" yaml:"app_key,omitempty"`
	AppSecret   string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`
	AccountNo   string `json:"account_no,omitempty" yaml:"account_no,omitempty"`
	AccountType string `json:"account_type" yaml:"account_type"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	WSURL       string `json:"ws_url" yaml:"ws_url"`
	Timeout     string `json:"timeout" yaml:"timeout"` // e.g. "10s"
}

type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

type CacheConfig struct {
	Type     string `json:"type" yaml:"type"`           // memory or redis
	Addr     string `json:"addr" yaml:"addr"`           // host:port or redis:// URL
	PriceTTL string `json:"price_ttl" yaml:"price_ttl"` // e.g. "5m"
}

type StrategyConfig struct {
	Name            string `json:"name" yaml:"name"`
	ShortPeriod     int    `json:"short_period" yaml:"short_period"`
	LongPeriod      int    `json:"long_period" yaml:"long_period"`
	MAType          string `json:"ma_type" yaml:"ma_type"`
	VolumeThreshold int64  `json:"volume_threshold" yaml:"volume_threshold"`
}

// RiskLimits configures the rule chain. Fractions are of total equity;
// loss and drawdown limits are negative. A zero optional limit disables
// its rule.
type RiskLimits struct {
	MaxDailyLossPct      float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxPositionCount     int     `json:"max_position_count" yaml:"max_position_count"`
	MaxPositionWeightPct float64 `json:"max_position_weight_pct" yaml:"max_position_weight_pct"`
	MaxConcentrationPct  float64 `json:"max_concentration_pct" yaml:"max_concentration_pct"`
	MaxOrderSize         float64 `json:"max_order_size" yaml:"max_order_size"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MinCashReservePct    float64 `json:"min_cash_reserve_pct" yaml:"min_cash_reserve_pct"`
	RiskPerTradePct      float64 `json:"risk_per_trade_pct" yaml:"risk_per_trade_pct"`
	Policy               string  `json:"policy" yaml:"policy"` // all-must-pass, first-rejection, violations
}

type CollectorConfig struct {
	Symbols  []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Interval string   `json:"interval" yaml:"interval"` // e.g. "1m"
}

type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	SignalsFile   string `json:"signals_file,omitempty" yaml:"signals_file,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LoadFromFile loads configuration from a YAML or JSON file on top of
// Default and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load builds the runtime configuration: defaults, then the optional file,
// then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := strategies.StrategyByName(c.Strategy.Name, strategies.DefaultMACrossParams()); err != nil {
		return fmt.Errorf("strategy.name: %w", err)
	}
	if _, err := indicators.ParseKind(c.Strategy.MAType); err != nil {
		return fmt.Errorf("strategy.ma_type: %w", err)
	}
	if c.Strategy.ShortPeriod <= 0 || c.Strategy.LongPeriod <= 0 {
		return fmt.Errorf("strategy periods must be positive")
	}
	if c.Strategy.ShortPeriod >= c.Strategy.LongPeriod {
		return fmt.Errorf("strategy.short_period must be less than strategy.long_period")
	}
	if c.Strategy.VolumeThreshold < 0 {
		return fmt.Errorf("strategy.volume_threshold cannot be negative")
	}

	r := c.Risk
	if r.MaxDailyLossPct >= 0 {
		return fmt.Errorf("risk.max_daily_loss_pct must be negative")
	}
	if r.MaxPositionCount < 0 {
		return fmt.Errorf("risk.max_position_count cannot be negative")
	}
	if !fraction(r.MaxPositionWeightPct) || !fraction(r.MaxConcentrationPct) ||
		!fraction(r.MinCashReservePct) || !fraction(r.RiskPerTradePct) {
		return fmt.Errorf("risk percentages must be between 0 and 1")
	}
	if r.MinCashReservePct >= 1 {
		return fmt.Errorf("risk.min_cash_reserve_pct must be below 1")
	}
	if r.MaxDrawdownPct > 0 {
		return fmt.Errorf("risk.max_drawdown_pct must be negative")
	}
	if r.MaxOrderSize < 0 {
		return fmt.Errorf("risk.max_order_size cannot be negative")
	}
	if _, err := risk.PolicyByName(r.Policy); err != nil {
		return fmt.Errorf("risk.policy: %w", err)
	}

	for name, d := range map[string]string{
		"cache.price_ttl":    c.Cache.PriceTTL,
		"collector.interval": c.Collector.Interval,
		"kis.timeout":        c.KIS.Timeout,
	} {
		if d == "" {
			continue
		}
		if v, err := time.ParseDuration(d); err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %q", name, d)
		}
	}

	switch c.Cache.Type {
	case "memory", "":
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be 'memory' or 'redis'")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path required for sqlite journal")
		}
	case "csv":
		if c.Journal.SignalsFile == "" || c.Journal.DecisionsFile == "" {
			return fmt.Errorf("journal signals_file and decisions_file required for CSV type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr required when metrics are enabled")
	}
	return nil
}

func fraction(v float64) bool { return v >= 0 && v <= 1 }

// Default returns the configuration used when no file is given. Risk
// defaults match the production limits.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:      "development",
			LogLevel: "info",
		},
		KIS: KISConfig{
			AccountType: "01",
			BaseURL:     "https://openapi.koreainvestment.com:9443",
			WSURL:       "wss://openapi.koreainvestment.com:9443/ws",
			Timeout:     "10s",
		},
		Database: DatabaseConfig{Path: "./autotrader.db"},
		Cache:    CacheConfig{Type: "memory", PriceTTL: "5m"},
		Strategy: StrategyConfig{
			Name:        "ma-cross",
			ShortPeriod: 5,
			LongPeriod:  20,
			MAType:      string(indicators.Simple),
		},
		Risk: RiskLimits{
			MaxDailyLossPct:      -0.02,
			MaxPositionCount:     5,
			MaxPositionWeightPct: 0.20,
			MaxConcentrationPct:  0.30,
			MaxOrderSize:         10_000_000,
			MaxDrawdownPct:       -0.10,
			MinCashReservePct:    0.10,
			RiskPerTradePct:      0.01,
			Policy:               "all-must-pass",
		},
		Collector: CollectorConfig{Interval: "1m"},
		Journal:   JournalConfig{Type: "sqlite"},
		Metrics:   MetricsConfig{Addr: ":9090"},
	}
}

// StrategyParams converts the strategy section into crossover parameters.
func (c *Config) StrategyParams() (strategies.MACrossParams, error) {
	kind, err := indicators.ParseKind(c.Strategy.MAType)
	if err != nil {
		return strategies.MACrossParams{}, err
	}
	return strategies.MACrossParams{
		ShortPeriod:     c.Strategy.ShortPeriod,
		LongPeriod:      c.Strategy.LongPeriod,
		MAType:          kind,
		VolumeThreshold: c.Strategy.VolumeThreshold,
	}, nil
}

// NewStrategy builds the configured strategy.
func (c *Config) NewStrategy() (strategies.Strategy, error) {
	params, err := c.StrategyParams()
	if err != nil {
		return nil, err
	}
	return strategies.StrategyByName(c.Strategy.Name, params)
}

// RiskChain builds the rule chain from the risk limits. The daily loss rule
// is always present; the others are added when their limit is set.
func (c *Config) RiskChain() (*risk.Chain, error) {
	r := c.Risk

	daily, err := risk.NewDailyLossLimit(risk.DailyLossLimitConfig{MaxDailyLossPercent: r.MaxDailyLossPct})
	if err != nil {
		return nil, err
	}
	chain := risk.NewChain(daily)

	if r.MaxPositionCount > 0 {
		rule, err := risk.NewMaxPositionCount(r.MaxPositionCount)
		if err != nil {
			return nil, err
		}
		chain.Append(rule)
	}
	if r.MaxConcentrationPct > 0 {
		rule, err := risk.NewConcentration(r.MaxConcentrationPct)
		if err != nil {
			return nil, err
		}
		chain.Append(rule)
	}
	if r.MinCashReservePct > 0 {
		rule, err := risk.NewCashReserve(r.MinCashReservePct)
		if err != nil {
			return nil, err
		}
		chain.Append(rule)
	}
	if r.MaxDrawdownPct < 0 {
		rule, err := risk.NewMaxDrawdown(r.MaxDrawdownPct)
		if err != nil {
			return nil, err
		}
		chain.Append(rule)
	}
	return chain, nil
}

// Policy returns the configured aggregation policy.
func (c *Config) Policy() (risk.Policy, error) {
	return risk.PolicyByName(c.Risk.Policy)
}

// PriceTTL returns the price cache TTL, five minutes when unset.
func (c *Config) PriceTTL() time.Duration {
	return durationOr(c.Cache.PriceTTL, 5*time.Minute)
}

// CollectInterval returns the collector tick interval, one minute when unset.
func (c *Config) CollectInterval() time.Duration {
	return durationOr(c.Collector.Interval, time.Minute)
}

// KISTimeout returns the HTTP timeout for broker calls.
func (c *Config) KISTimeout() time.Duration {
	return durationOr(c.KIS.Timeout, 10*time.Second)
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
