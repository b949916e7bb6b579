package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/autotrader/risk"
	"github.com/rustyeddy/autotrader/strategies"
)

// CSVJournal appends signals and decisions to two CSV files.
type CSVJournal struct {
	signals   *csv.Writer
	decisions *csv.Writer
	sf, df    *os.File
}

var _ Journal = (*CSVJournal)(nil)

var (
	signalHeader   = []string{"signal_id", "correlation_id", "time", "strategy_id", "symbol", "direction", "strength", "target_price", "stop_loss", "params_hash", "reason"}
	decisionHeader = []string{"correlation_id", "signal_id", "seq", "time", "rule_id", "rule_name", "approved", "reason"}
)

func NewCSV(signalsPath, decisionsPath string) (*CSVJournal, error) {
	sf, err := os.Create(signalsPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(decisionsPath)
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	sw := csv.NewWriter(sf)
	dw := csv.NewWriter(df)

	if err := sw.Write(signalHeader); err != nil {
		return nil, err
	}
	if err := dw.Write(decisionHeader); err != nil {
		return nil, err
	}

	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}
	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{sw, dw, sf, df}, nil
}

func (j *CSVJournal) RecordSignal(_ context.Context, s strategies.Signal) error {
	err := j.signals.Write([]string{
		s.ID,
		s.CorrelationID,
		utc(s.Time).Format(time.RFC3339Nano),
		s.StrategyID,
		s.Symbol,
		string(s.Direction),
		strconv.FormatFloat(s.Strength, 'f', 4, 64),
		optF(s.TargetPrice),
		optF(s.StopLoss),
		s.ParamsHash,
		s.Reason,
	})
	if err != nil {
		return err
	}
	j.signals.Flush()
	return j.signals.Error()
}

func (j *CSVJournal) RecordDecisions(_ context.Context, s strategies.Signal, decisions []risk.Decision) error {
	for i, d := range decisions {
		if err := j.decisions.Write([]string{
			s.CorrelationID,
			s.ID,
			strconv.Itoa(i),
			utc(d.Time).Format(time.RFC3339Nano),
			d.RuleID,
			d.RuleName,
			strconv.FormatBool(d.Approved),
			d.Reason,
		}); err != nil {
			return err
		}
	}
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) Close() error {
	j.signals.Flush()
	if err := j.signals.Error(); err != nil {
		return err
	}
	j.decisions.Flush()
	if err := j.decisions.Error(); err != nil {
		return err
	}

	if err := j.sf.Close(); err != nil {
		return err
	}
	if err := j.df.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func optF(x *float64) string {
	if x == nil {
		return ""
	}
	return f(*x)
}
