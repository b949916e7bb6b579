package market

import "time"

type Exchange string

const (
	KOSPI  Exchange = "KOSPI"
	KOSDAQ Exchange = "KOSDAQ"
	KONEX  Exchange = "KONEX"
)

type Status string

const (
	Active    Status = "ACTIVE"
	Inactive  Status = "INACTIVE"
	Suspended Status = "SUSPENDED"
)

// SymbolInfo is listing metadata returned by symbol search.
type SymbolInfo struct {
	ID       string
	Symbol   string
	Name     string
	Exchange Exchange
	Status   Status
}

// Watchlist is a named, ordered set of symbols to monitor.
type Watchlist struct {
	ID        string    `json:"watchlistId"`
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MergeSymbols appends add to base, skipping blanks and duplicates while
// keeping first-seen order.
func MergeSymbols(base, add []string) []string {
	seen := make(map[string]bool, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
