package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/risk"
)

func newSignalsCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Query the signal journal",
		Long: `Query signals and risk decisions recorded in the SQLite journal.

Subcommands:
  recent - List the latest signals
  show   - Print one signal and its decisions as an org-mode entry

Examples:
  autotrader signals recent --symbol 005930 --limit 20
  autotrader signals show signal-01HV...`,
	}

	var (
		symbol string
		limit  int
		org    bool
	)
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the latest signals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			sigs, err := db.RecentSignals(cmd.Context(), symbol, limit)
			if err != nil {
				return fmt.Errorf("query signals: %w", err)
			}
			if org {
				fmt.Fprint(cmd.OutOrStdout(), journal.FormatSignalsOrg(sigs))
				return nil
			}
			renderSignalList(cmd.OutOrStdout(), sigs)
			return nil
		},
	}
	recent.Flags().StringVarP(&symbol, "symbol", "s", "", "only this symbol")
	recent.Flags().IntVarP(&limit, "limit", "n", 20, "maximum signals to list")
	recent.Flags().BoolVar(&org, "org", false, "print as org-mode entries")

	show := &cobra.Command{
		Use:   "show <signal-id>",
		Short: "Print a signal with its risk decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			sig, err := db.GetSignal(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get signal: %w", err)
			}
			recs, err := db.DecisionsByCorrelation(cmd.Context(), sig.CorrelationID)
			if err != nil {
				return fmt.Errorf("get decisions: %w", err)
			}
			decisions := make([]risk.Decision, len(recs))
			for i, r := range recs {
				decisions[i] = r.Decision
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatSignalOrg(sig, decisions))
			return nil
		},
	}

	cmd.AddCommand(recent, show)
	return cmd
}
