// Package collector pulls quotes and bars from the broker into the price
// cache and the bar store, and maintains watchlists.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/metrics"
	"github.com/rustyeddy/autotrader/pkg/id"
)

// DefaultPriceTTL is how long a collected quote stays cached.
const DefaultPriceTTL = 5 * time.Minute

var (
	ErrAlreadyRunning = errors.New("collection already running, stop it first")
	ErrNoStore        = errors.New("no bar store configured")
)

// MarketSource is the broker side. *kis.MarketAPI satisfies it.
type MarketSource interface {
	GetPrice(ctx context.Context, symbol string) (market.Price, error)
	GetPrices(ctx context.Context, symbols []string) ([]market.Price, error)
	GetHistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval string) ([]market.Bar, error)
}

// BarStore persists bars and watchlists. *journal.SQLite satisfies it.
type BarStore interface {
	UpsertBars(ctx context.Context, bars []market.Bar) (int, error)
	Watchlist(ctx context.Context, name string) (*market.Watchlist, error)
	SaveWatchlist(ctx context.Context, wl market.Watchlist) error
}

// Result reports a multi-symbol price collection. Errors is keyed by
// symbol.
type Result struct {
	Success []string
	Failed  []string
	Errors  map[string]string
}

type HistoricalResult struct {
	Symbol        string
	BarsCollected int
	Start         time.Time
	End           time.Time
	Interval      string
}

type Option func(*Collector)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

func WithPriceTTL(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

type Collector struct {
	source MarketSource
	store  BarStore
	cache  PriceCache
	logger zerolog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Collector. A nil cache gets a MemoryCache; store may be nil
// when only quotes are collected.
func New(source MarketSource, store BarStore, cache PriceCache, opts ...Option) *Collector {
	if cache == nil {
		cache = NewMemoryCache()
	}
	c := &Collector{
		source: source,
		store:  store,
		cache:  cache,
		logger: zerolog.Nop(),
		ttl:    DefaultPriceTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectPrice returns the cached quote when present, else fetches,
// validates and caches it.
func (c *Collector) CollectPrice(ctx context.Context, symbol string) (market.Price, error) {
	if p, ok := c.cache.Get(ctx, symbol); ok {
		return p, nil
	}

	p, err := c.source.GetPrice(ctx, symbol)
	if err != nil {
		return market.Price{}, err
	}
	if err := p.Validate(); err != nil {
		return market.Price{}, err
	}
	c.cache.Set(ctx, p, c.ttl)
	return p, nil
}

// CollectHistorical fetches bars for [start, end], validates every bar and
// upserts them. Nothing is stored if any bar is invalid.
func (c *Collector) CollectHistorical(ctx context.Context, symbol string, start, end time.Time, interval string) (HistoricalResult, error) {
	if start.After(end) {
		return HistoricalResult{}, errors.New("invalid date range: start date must be before or equal to end date")
	}
	if c.store == nil {
		return HistoricalResult{}, ErrNoStore
	}

	bars, err := c.source.GetHistoricalBars(ctx, symbol, start, end, interval)
	if err != nil {
		return HistoricalResult{}, err
	}
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return HistoricalResult{}, fmt.Errorf("bar %d (%s): %w", i, b.ID, err)
		}
	}

	n, err := c.store.UpsertBars(ctx, bars)
	if err != nil {
		return HistoricalResult{}, fmt.Errorf("store bars: %w", err)
	}

	c.logger.Info().
		Str("symbol", symbol).
		Int("bars", n).
		Str("interval", interval).
		Msg("historical bars collected")

	return HistoricalResult{
		Symbol:        symbol,
		BarsCollected: n,
		Start:         start,
		End:           end,
		Interval:      interval,
	}, nil
}

// CollectMany fetches quotes for symbols and caches the valid ones.
func (c *Collector) CollectMany(ctx context.Context, symbols []string) (Result, error) {
	res := Result{Errors: make(map[string]string)}

	prices, err := c.source.GetPrices(ctx, symbols)
	if err != nil {
		return res, err
	}

	got := make(map[string]bool, len(prices))
	for _, p := range prices {
		got[p.Symbol] = true
		if err := p.Validate(); err != nil {
			res.Failed = append(res.Failed, p.Symbol)
			res.Errors[p.Symbol] = err.Error()
			continue
		}
		c.cache.Set(ctx, p, c.ttl)
		res.Success = append(res.Success, p.Symbol)
	}

	for _, s := range symbols {
		if !got[s] {
			res.Failed = append(res.Failed, s)
			res.Errors[s] = "no price data returned"
		}
	}
	metrics.ObserveCollection(len(res.Success), len(res.Failed))
	return res, nil
}

// AddToWatchlist creates the named watchlist or merges symbols into it,
// keeping first-seen order.
func (c *Collector) AddToWatchlist(ctx context.Context, name string, symbols []string) (market.Watchlist, error) {
	if c.store == nil {
		return market.Watchlist{}, ErrNoStore
	}

	existing, err := c.store.Watchlist(ctx, name)
	if err != nil {
		return market.Watchlist{}, err
	}

	now := c.now().UTC()
	wl := market.Watchlist{
		ID:        id.WithPrefix("wl"),
		Name:      name,
		CreatedAt: now,
	}
	var base []string
	if existing != nil {
		wl.ID = existing.ID
		wl.CreatedAt = existing.CreatedAt
		base = existing.Symbols
	}
	wl.Symbols = market.MergeSymbols(base, symbols)
	wl.UpdatedAt = now

	if err := c.store.SaveWatchlist(ctx, wl); err != nil {
		return market.Watchlist{}, fmt.Errorf("save watchlist %s: %w", name, err)
	}
	return wl, nil
}

// GetWatchlist returns nil, nil when no watchlist has that name.
func (c *Collector) GetWatchlist(ctx context.Context, name string) (*market.Watchlist, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.Watchlist(ctx, name)
}

// Start collects quotes for symbols every interval until Stop is called or
// ctx ends. Tick errors are logged and do not stop the loop.
func (c *Collector) Start(ctx context.Context, symbols []string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("collection interval must be positive, got %s", interval)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	syms := append([]string(nil), symbols...)

	go c.loop(ctx, syms, interval, done)

	c.logger.Info().Strs("symbols", syms).Dur("interval", interval).Msg("scheduled collection started")
	return nil
}

func (c *Collector) loop(ctx context.Context, symbols []string, interval time.Duration, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.done == done {
			c.cancel, c.done = nil, nil
		}
		c.mu.Unlock()
		close(done)
	}()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := c.CollectMany(ctx, symbols)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error().Err(err).Msg("scheduled collection error")
				continue
			}
			ev := c.logger.Debug()
			if len(res.Failed) > 0 {
				ev = c.logger.Warn().Interface("errors", res.Errors)
			}
			ev.Int("success", len(res.Success)).Int("failed", len(res.Failed)).Msg("collection tick")
		}
	}
}

// Stop ends scheduled collection and waits for the loop to exit. It is a
// no-op when nothing is running.
func (c *Collector) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.logger.Info().Msg("scheduled collection stopped")
}

func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
