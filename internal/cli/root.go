// Package cli implements the autotrader command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/config"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/pkg/logx"
	"github.com/rustyeddy/autotrader/trace"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootConfig carries the persistent flags and the state loaded from them
// in PersistentPreRunE.
type RootConfig struct {
	ConfigPath string
	EnvFiles   []string
	DBPath     string
	LogLevel   string
	JSONLogs   bool

	cfg *config.Config
	log zerolog.Logger
}

// Config returns the loaded configuration.
func (rc *RootConfig) Config() *config.Config { return rc.cfg }

// OpenDB opens the SQLite database selected by --db or database.path.
func (rc *RootConfig) OpenDB() (*journal.SQLite, error) {
	path := rc.cfg.Database.Path
	if rc.DBPath != "" {
		path = rc.DBPath
	}
	db, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	return db, nil
}

func (rc *RootConfig) load(stderr io.Writer) error {
	if err := config.LoadEnv(rc.EnvFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return err
	}
	if rc.LogLevel != "" {
		cfg.App.LogLevel = rc.LogLevel
	}
	rc.cfg = cfg

	if rc.JSONLogs {
		rc.log = logx.New(cfg.App.LogLevel, stderr)
	} else {
		rc.log = logx.New(cfg.App.LogLevel, zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05", NoColor: true})
	}

	return trace.Init(cfg.Tracing.Enabled, stderr, Version)
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "autotrader",
		Short: "Autotrader: KOSPI signal generation, risk gating and market data tooling",
		Long: `Autotrader analyzes Korean equities with a moving-average crossover strategy
and gates every signal through an ordered chain of risk rules.

It provides tools for:
  - Analyzing bar history and judging the resulting signal
  - Collecting quotes and daily bars from the KIS open API
  - Managing watchlists
  - Reviewing the signal and risk decision journal
  - Exporting stored bars to CSV or Parquet`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "path to config file (optional)")
	cmd.PersistentFlags().StringSliceVar(&rc.EnvFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite database (overrides database.path)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.JSONLogs, "json-logs", false, "emit JSON logs instead of console output")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load(cmd.ErrOrStderr())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return trace.Shutdown(context.Background())
	}

	cmd.AddCommand(
		newAnalyzeCmd(rc),
		newCollectCmd(rc),
		newWatchlistCmd(rc),
		newSignalsCmd(rc),
		newExportCmd(rc),
		newImportCmd(rc),
		newConfigCmd(rc),
		newMetricsCmd(rc),
		newVersionCmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "autotrader version %s\n", Version)
		},
	}
}
