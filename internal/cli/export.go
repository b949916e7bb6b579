package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
)

func newExportCmd(rc *RootConfig) *cobra.Command {
	var symbol, out, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored bars to CSV or Parquet",
		Long: `Write a symbol's bars from the database to a file. The format follows
the output extension: .parquet for Parquet, anything else for CSV.

Example:
  autotrader export --symbol 005930 --out 005930.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if !end.IsZero() {
				end = end.Add(24*time.Hour - time.Nanosecond)
			}

			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			bars, err := db.ListBars(cmd.Context(), symbol, start, end)
			if err != nil {
				return fmt.Errorf("list bars: %w", err)
			}
			if len(bars) == 0 {
				return fmt.Errorf("no bars stored for %s", symbol)
			}

			if strings.EqualFold(filepath.Ext(out), ".parquet") {
				err = journal.WriteBarsParquet(out, bars)
			} else {
				err = writeCSVFile(out, bars)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bars to %s\n", len(bars), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "symbol to export (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (required)")
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newImportCmd(rc *RootConfig) *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load bars from a CSV or Parquet file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := readBarsFile(args[0], symbol)
			if err != nil {
				return err
			}
			for i, b := range bars {
				if err := b.Validate(); err != nil {
					return fmt.Errorf("bar %d: %w", i, err)
				}
			}

			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.UpsertBars(cmd.Context(), bars)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d bars for %s\n", n, symbol)
			return nil
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "symbol the bars belong to (required)")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func writeCSVFile(path string, bars []market.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := journal.WriteBarsCSV(f, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
