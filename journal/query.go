package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/strategies"
)

// ListBars returns bars for symbol with time in [from, to], oldest first.
// A zero from or to leaves that side open.
func (j *SQLite) ListBars(ctx context.Context, symbol string, from, to time.Time) ([]market.Bar, error) {
	q := `
		SELECT bar_id, symbol, time, open, high, low, close, volume, source
		FROM market_bars
		WHERE symbol = ?`
	args := []any{symbol}
	if !from.IsZero() {
		q += ` AND time >= ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		q += ` AND time <= ?`
		args = append(args, to.UTC())
	}
	q += ` ORDER BY time ASC`

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Bar
	for rows.Next() {
		var (
			b      market.Bar
			source string
		)
		if err := rows.Scan(&b.ID, &b.Symbol, &b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &source); err != nil {
			return nil, err
		}
		b.Source = market.Source(source)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const signalColumns = `signal_id, correlation_id, strategy_id, symbol, direction, strength, reason,
	params_hash, target_price, stop_loss, metadata, time`

type scanner interface {
	Scan(dest ...any) error
}

func scanSignal(sc scanner) (strategies.Signal, error) {
	var (
		s            strategies.Signal
		dir, meta    string
		target, stop sql.NullFloat64
	)
	if err := sc.Scan(&s.ID, &s.CorrelationID, &s.StrategyID, &s.Symbol, &dir, &s.Strength, &s.Reason,
		&s.ParamsHash, &target, &stop, &meta, &s.Time); err != nil {
		return strategies.Signal{}, err
	}
	s.Direction = market.Direction(dir)
	s.TargetPrice = floatPtr(target)
	s.StopLoss = floatPtr(stop)

	m, err := decodeMeta(meta)
	if err != nil {
		return strategies.Signal{}, err
	}
	s.Metadata = m
	return s, nil
}

// GetSignal returns a single signal by ID.
func (j *SQLite) GetSignal(ctx context.Context, signalID string) (strategies.Signal, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+signalColumns+` FROM signals WHERE signal_id = ?`, signalID)
	s, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return strategies.Signal{}, fmt.Errorf("signal %q not found", signalID)
	}
	return s, err
}

// RecentSignals returns up to limit signals for symbol, newest first. An
// empty symbol matches all.
func (j *SQLite) RecentSignals(ctx context.Context, symbol string, limit int) ([]strategies.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+signalColumns+`
		FROM signals
		WHERE (? = '' OR symbol = ?)
		ORDER BY time DESC, signal_id DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []strategies.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecisionsByCorrelation returns the decisions recorded for one signal, in
// chain order.
func (j *SQLite) DecisionsByCorrelation(ctx context.Context, correlationID string) ([]DecisionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT correlation_id, seq, signal_id, symbol, rule_id, rule_name, approved, reason, metadata, time
		FROM risk_decisions
		WHERE correlation_id = ?
		ORDER BY seq ASC`, correlationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var (
			rec  DecisionRecord
			meta string
		)
		if err := rows.Scan(&rec.CorrelationID, &rec.Seq, &rec.SignalID, &rec.Symbol, &rec.RuleID,
			&rec.RuleName, &rec.Approved, &rec.Reason, &meta, &rec.Time); err != nil {
			return nil, err
		}
		if rec.Metadata, err = decodeMeta(meta); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
