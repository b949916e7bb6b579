package market

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Price is a point-in-time quote for a symbol.
type Price struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"timestamp"`
	Source Source    `json:"source"`
}

var ErrInvalidPrice = errors.New("invalid price")

func (p Price) Validate() error {
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidPrice)
	}
	if strings.TrimSpace(p.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidPrice)
	}
	if p.Time.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidPrice)
	}
	return nil
}

// OrderBookLevel is one price level of depth.
type OrderBookLevel struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

type OrderBook struct {
	Symbol string           `json:"symbol"`
	Time   time.Time        `json:"timestamp"`
	Bids   []OrderBookLevel `json:"bids"`
	Asks   []OrderBookLevel `json:"asks"`
}

// PriceStore keeps the latest price per symbol.
type PriceStore struct {
	mu     sync.RWMutex
	prices map[string]Price
}

func NewPriceStore() *PriceStore {
	return &PriceStore{prices: make(map[string]Price)}
}

func (ps *PriceStore) Set(p Price) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prices[p.Symbol] = p
}

func (ps *PriceStore) Get(symbol string) (Price, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.prices[symbol]
	if !ok {
		return Price{}, errors.New("price not found")
	}
	return p, nil
}
