package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

// SQLite stores bars, watchlists and the signal/decision audit log.
type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// UpsertBars inserts bars, replacing any stored bar with the same ID.
func (j *SQLite) UpsertBars(ctx context.Context, bars []market.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_bars
		(bar_id, symbol, time, open, high, low, close, volume, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bar_id) DO UPDATE SET
			symbol = excluded.symbol,
			time = excluded.time,
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			source = excluded.source`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.Symbol, b.Time.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume, string(b.Source),
		); err != nil {
			return 0, fmt.Errorf("upsert bar %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// SaveWatchlist inserts or replaces the watchlist with the same name.
func (j *SQLite) SaveWatchlist(ctx context.Context, wl market.Watchlist) error {
	symbols, err := json.Marshal(wl.Symbols)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO watchlists (watchlist_id, name, symbols, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			symbols = excluded.symbols,
			updated_at = excluded.updated_at`,
		wl.ID, wl.Name, string(symbols), utc(wl.CreatedAt), utc(wl.UpdatedAt),
	)
	return err
}

// Watchlist returns the named watchlist, or nil when none exists.
func (j *SQLite) Watchlist(ctx context.Context, name string) (*market.Watchlist, error) {
	var (
		wl      market.Watchlist
		symbols string
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT watchlist_id, name, symbols, created_at, updated_at
		FROM watchlists
		WHERE name = ?`, name,
	).Scan(&wl.ID, &wl.Name, &symbols, &wl.CreatedAt, &wl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(symbols), &wl.Symbols); err != nil {
		return nil, fmt.Errorf("watchlist %q symbols: %w", name, err)
	}
	return &wl, nil
}

func (j *SQLite) RecordSignal(ctx context.Context, s strategies.Signal) error {
	meta, err := encodeMeta(s.Metadata)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO signals
		(signal_id, correlation_id, strategy_id, symbol, direction, strength, reason, params_hash,
		 target_price, stop_loss, metadata, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CorrelationID, s.StrategyID, s.Symbol, string(s.Direction), s.Strength, s.Reason,
		s.ParamsHash, nullFloat(s.TargetPrice), nullFloat(s.StopLoss), meta, utc(s.Time),
	)
	return err
}

// RecordDecisions appends one row per decision, keyed by the signal's
// correlation ID and the decision's position in the chain.
func (j *SQLite) RecordDecisions(ctx context.Context, s strategies.Signal, decisions []risk.Decision) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, d := range decisions {
		meta, err := encodeMeta(d.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO risk_decisions
			(correlation_id, seq, signal_id, symbol, rule_id, rule_name, approved, reason, metadata, time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.CorrelationID, i, s.ID, s.Symbol, d.RuleID, d.RuleName, d.Approved, d.Reason, meta, utc(d.Time),
		); err != nil {
			return fmt.Errorf("record decision %s: %w", d.RuleID, err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func encodeMeta(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMeta(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

