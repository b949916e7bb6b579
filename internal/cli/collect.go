package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/collector"
	"github.com/rustyeddy/autotrader/kis"
	"github.com/rustyeddy/autotrader/market"
)

func newMarketAPI(rc *RootConfig) (*kis.MarketAPI, error) {
	cfg := rc.Config()
	if err := cfg.RequireKIS(); err != nil {
		return nil, err
	}
	opts := []kis.Option{kis.WithTimeout(cfg.KISTimeout()), kis.WithLogger(rc.log)}
	auth := kis.NewAuth(kis.Credentials{
		AppKey:    cfg.KIS.AppKey,
		AppSecret: cfg.KIS.AppSecret,
		AccountNo: cfg.KIS.AccountNo,
	}, cfg.KIS.BaseURL, opts...)
	return kis.NewMarketAPI(auth, cfg.KIS.BaseURL, opts...), nil
}

// newCollector wires the KIS client, the price cache and the database.
// The caller runs the returned cleanup.
func newCollector(ctx context.Context, rc *RootConfig) (*collector.Collector, func(), error) {
	api, err := newMarketAPI(rc)
	if err != nil {
		return nil, nil, err
	}
	cfg := rc.Config()
	cache, err := collector.NewCache(ctx, cfg.Cache.Type, cfg.Cache.Addr, rc.log)
	if err != nil {
		return nil, nil, err
	}
	closeCache := func() {
		if c, ok := cache.(io.Closer); ok {
			_ = c.Close()
		}
	}
	db, err := rc.OpenDB()
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	c := collector.New(api, db, cache,
		collector.WithLogger(rc.log),
		collector.WithPriceTTL(cfg.PriceTTL()),
	)
	return c, func() {
		_ = db.Close()
		closeCache()
	}, nil
}

func newCollectCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect market data from the KIS open API",
		Long: `Collect quotes and bars. Requires KIS_APP_KEY, KIS_APP_SECRET and
KIS_ACCOUNT_NO in the environment or a .env file.

Subcommands:
  prices   - Fetch current prices
  history  - Store historical bars in the database
  watch    - Collect prices on a schedule until interrupted
  book     - Show the order book for a symbol
  search   - Look up a symbol`,
	}
	cmd.AddCommand(
		newCollectPricesCmd(rc),
		newCollectHistoryCmd(rc),
		newCollectWatchCmd(rc),
		newCollectBookCmd(rc),
		newCollectSearchCmd(rc),
	)
	return cmd
}

func newCollectPricesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "prices <symbol>...",
		Short: "Fetch current prices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := newCollector(cmd.Context(), rc)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			res, err := c.CollectMany(ctx, args)
			if err != nil {
				return err
			}

			prices := make([]market.Price, 0, len(res.Success))
			for _, s := range res.Success {
				p, err := c.CollectPrice(ctx, s)
				if err != nil {
					return err
				}
				prices = append(prices, p)
			}
			w := cmd.OutOrStdout()
			renderPrices(w, prices)
			for _, s := range res.Failed {
				fmt.Fprintf(w, "failed %s: %s\n", s, res.Errors[s])
			}
			return nil
		},
	}
}

func newCollectHistoryCmd(rc *RootConfig) *cobra.Command {
	var from, to, interval string

	cmd := &cobra.Command{
		Use:   "history <symbol>...",
		Short: "Fetch historical bars into the database",
		Example: `  autotrader collect history 005930 --from 2024-01-01 --to 2024-03-31
  autotrader collect history 005930 000660 --from 2023-01-01 --interval W`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end := time.Now().UTC()
			if to != "" {
				if end, err = parseDate(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			c, cleanup, err := newCollector(cmd.Context(), rc)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, sym := range args {
				res, err := c.CollectHistorical(cmd.Context(), sym, start, end, interval)
				if err != nil {
					return fmt.Errorf("%s: %w", sym, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bars (%s to %s, %s)\n",
					res.Symbol, res.BarsCollected, res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.Interval)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&interval, "interval", "D", "bar interval: 1m, 5m, 1h, D, W or M")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newCollectWatchCmd(rc *RootConfig) *cobra.Command {
	var list string

	cmd := &cobra.Command{
		Use:   "watch [symbol]...",
		Short: "Collect prices every collector.interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := newCollector(cmd.Context(), rc)
			if err != nil {
				return err
			}
			defer cleanup()

			symbols := args
			if list != "" {
				wl, err := c.GetWatchlist(cmd.Context(), list)
				if err != nil {
					return err
				}
				if wl == nil {
					return fmt.Errorf("watchlist %q not found", list)
				}
				symbols = market.MergeSymbols(wl.Symbols, args)
			}
			if len(symbols) == 0 {
				symbols = rc.Config().Collector.Symbols
			}
			if len(symbols) == 0 {
				return errors.New("no symbols: pass symbols, --watchlist or set WATCH_SYMBOLS")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := c.Start(ctx, symbols, rc.Config().CollectInterval()); err != nil {
				return err
			}
			<-ctx.Done()
			c.Stop()
			return nil
		},
	}
	cmd.Flags().StringVarP(&list, "watchlist", "w", "", "collect the symbols of this watchlist")
	return cmd
}

func newCollectBookCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "book <symbol>",
		Short: "Show the order book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newMarketAPI(rc)
			if err != nil {
				return err
			}
			book, err := api.GetOrderBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			asks := append([]market.OrderBookLevel(nil), book.Asks...)
			sort.Slice(asks, func(i, j int) bool { return asks[i].Price > asks[j].Price })

			t := newTable(cmd.OutOrStdout(), "ORDER BOOK "+book.Symbol)
			t.AppendHeader(table.Row{"Ask Qty", "Price", "Bid Qty"})
			for _, a := range asks {
				t.AppendRow(table.Row{market.FormatCount(a.Volume), market.FormatAmount(a.Price), ""})
			}
			t.AppendSeparator()
			for _, b := range book.Bids {
				t.AppendRow(table.Row{"", market.FormatAmount(b.Price), market.FormatCount(b.Volume)})
			}
			t.Render()
			return nil
		},
	}
}

func newCollectSearchCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "search <code>",
		Short: "Look up listing information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newMarketAPI(rc)
			if err != nil {
				return err
			}
			infos, err := api.SearchSymbol(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "SYMBOLS")
			t.AppendHeader(table.Row{"Symbol", "Name", "Exchange", "Status", "ID"})
			for _, s := range infos {
				t.AppendRow(table.Row{s.Symbol, s.Name, s.Exchange, s.Status, s.ID})
			}
			t.Render()
			return nil
		},
	}
}
