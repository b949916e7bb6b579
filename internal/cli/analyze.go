package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/config"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pipeline"
)

type analyzeOptions struct {
	bars      string
	symbol    string
	from, to  string
	equity    float64
	cash      float64
	dailyPnL  float64
	peak      float64
	org       bool
	noJournal bool
}

func newAnalyzeCmd(rc *RootConfig) *cobra.Command {
	o := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the strategy and risk chain over a bar history",
		Long: `Analyze a symbol's bar history and judge the resulting signal.

Bars come from --bars (CSV or .parquet) or, without it, from the database.

Examples:
  autotrader analyze --bars 005930.csv --symbol 005930
  autotrader analyze --symbol 005930 --from 2024-01-01 --equity 50000000 --daily-pnl -200000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, rc, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.bars, "bars", "", "bars file (CSV with time,open,high,low,close,volume or .parquet)")
	f.StringVarP(&o.symbol, "symbol", "s", "", "symbol to analyze (required)")
	f.StringVar(&o.from, "from", "", "first bar date when reading from the database (YYYY-MM-DD)")
	f.StringVar(&o.to, "to", "", "last bar date when reading from the database (YYYY-MM-DD)")
	f.Float64Var(&o.equity, "equity", 10_000_000, "total account equity (KRW)")
	f.Float64Var(&o.cash, "cash", -1, "available cash (KRW, defaults to equity)")
	f.Float64Var(&o.dailyPnL, "daily-pnl", 0, "realized plus unrealized P&L today (KRW)")
	f.Float64Var(&o.peak, "peak-equity", 0, "peak equity for the drawdown rule (defaults to equity)")
	f.BoolVar(&o.org, "org", false, "print the result as an org-mode entry")
	f.BoolVar(&o.noJournal, "no-journal", false, "do not record the signal and decisions")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func runAnalyze(cmd *cobra.Command, rc *RootConfig, o *analyzeOptions) error {
	cfg := rc.Config()
	ctx := cmd.Context()

	var db *journal.SQLite
	openDB := func() (*journal.SQLite, error) {
		if db != nil {
			return db, nil
		}
		var err error
		db, err = rc.OpenDB()
		return db, err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	bars, err := loadBars(cmd, o, openDB)
	if err != nil {
		return err
	}

	strat, err := cfg.NewStrategy()
	if err != nil {
		return err
	}
	chain, err := cfg.RiskChain()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Strategy: strat,
		Chain:    chain,
		Policy:   policy,
		Sizing: &pipeline.Sizing{
			RiskPct:       cfg.Risk.RiskPerTradePct,
			MaxOrderValue: cfg.Risk.MaxOrderSize,
			MaxWeightPct:  cfg.Risk.MaxPositionWeightPct,
		},
		Logger: rc.log,
	}

	if !o.noJournal {
		j, err := openJournal(cfg, openDB)
		if err != nil {
			return err
		}
		if j != nil {
			if cfg.Journal.Type == "csv" {
				defer j.Close()
			}
			p.Journal = j
		}
	}

	cash := o.cash
	if cash < 0 {
		cash = o.equity
	}
	peak := o.peak
	if peak <= 0 {
		peak = o.equity
	}
	acct := pipeline.AccountState{
		Balance: market.Balance{
			TotalEquity:   o.equity,
			Cash:          cash,
			AvailableCash: cash,
			Time:          time.Now().UTC(),
		},
		DailyPnL:   o.dailyPnL,
		PeakEquity: peak,
	}

	out, err := p.Evaluate(ctx, market.NewMarketData(o.symbol, bars), acct)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if o.org {
		fmt.Fprint(w, journal.FormatSignalOrg(out.Signal, out.Decisions))
		return nil
	}
	renderOutcome(w, out)
	return nil
}

func loadBars(cmd *cobra.Command, o *analyzeOptions, openDB func() (*journal.SQLite, error)) ([]market.Bar, error) {
	if o.bars != "" {
		return readBarsFile(o.bars, o.symbol)
	}

	from, err := parseDate(o.from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := parseDate(o.to)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	db, err := openDB()
	if err != nil {
		return nil, err
	}
	bars, err := db.ListBars(cmd.Context(), o.symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bars: %w", err)
	}
	return bars, nil
}

func readBarsFile(path, symbol string) ([]market.Bar, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		bars, err := journal.ReadBarsParquet(path)
		if err != nil {
			return nil, err
		}
		out := bars[:0]
		for _, b := range bars {
			if b.Symbol == symbol {
				out = append(out, b)
			}
		}
		return out, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()
	return journal.ReadBarsCSV(f, symbol)
}

// openJournal returns the configured journal, or nil for "none". The
// SQLite journal shares the command's database handle.
func openJournal(cfg *config.Config, openDB func() (*journal.SQLite, error)) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return openDB()
	case "csv":
		return journal.NewCSV(cfg.Journal.SignalsFile, cfg.Journal.DecisionsFile)
	default:
		return nil, nil
	}
}

// parseDate accepts YYYY-MM-DD; empty input yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
