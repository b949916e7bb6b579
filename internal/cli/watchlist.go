package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/collector"
)

func newWatchlistCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage named watchlists",
		Long: `Watchlists are stored in the database and can drive "collect watch".

Examples:
  autotrader watchlist add tech 005930 000660
  autotrader watchlist show tech`,
	}

	add := &cobra.Command{
		Use:   "add <name> <symbol>...",
		Short: "Create a watchlist or add symbols to it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			c := collector.New(nil, db, nil, collector.WithLogger(rc.log))
			wl, err := c.AddToWatchlist(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			renderWatchlist(cmd.OutOrStdout(), wl)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rc.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()

			wl, err := collector.New(nil, db, nil).GetWatchlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if wl == nil {
				return fmt.Errorf("watchlist %q not found", args[0])
			}
			renderWatchlist(cmd.OutOrStdout(), *wl)
			return nil
		},
	}

	cmd.AddCommand(add, show)
	return cmd
}
