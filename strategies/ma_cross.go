package strategies

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/autotrader/indicators"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/pkg/id"
)

const (
	maxStrength        = 0.95
	baseStrength       = 0.6
	lowVolumeStrength  = 0.3
	noCrossStrength    = 0.2
	maxVolumeBoost     = 1.5
	spreadStrengthRate = 0.01
)

// MACrossParams configures a moving-average crossover.
// VolumeThreshold of zero disables the volume gate.
type MACrossParams struct {
	ShortPeriod     int             `json:"shortPeriod" yaml:"short_period"`
	LongPeriod      int             `json:"longPeriod" yaml:"long_period"`
	MAType          indicators.Kind `json:"maType" yaml:"ma_type"`
	VolumeThreshold int64           `json:"volumeThreshold,omitempty" yaml:"volume_threshold"`
}

// DefaultMACrossParams is the 5/20 SMA crossover with no volume gate.
func DefaultMACrossParams() MACrossParams {
	return MACrossParams{ShortPeriod: 5, LongPeriod: 20, MAType: indicators.Simple}
}

func (p MACrossParams) validate() error {
	if p.ShortPeriod <= 0 || p.LongPeriod <= 0 {
		return fmt.Errorf("%w: periods must be positive", ErrInvalidParams)
	}
	if p.ShortPeriod >= p.LongPeriod {
		return fmt.Errorf("%w: short period must be less than long period", ErrInvalidParams)
	}
	if !p.MAType.Valid() {
		return fmt.Errorf("%w: unsupported moving average type %q", ErrInvalidParams, p.MAType)
	}
	if p.VolumeThreshold < 0 {
		return fmt.Errorf("%w: volume threshold cannot be negative", ErrInvalidParams)
	}
	return nil
}

// MACross emits BUY when the short average crosses above the long average
// and SELL on the reverse, gated on the last bar's volume.
type MACross struct {
	id     string
	params MACrossParams
	short  indicators.Series
	long   indicators.Series
	hash   string
}

var _ Strategy = (*MACross)(nil)

func NewMACross(params MACrossParams) (*MACross, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	short, err := indicators.NewMovingAverage(params.MAType, params.ShortPeriod)
	if err != nil {
		return nil, fmt.Errorf("short average: %w", err)
	}
	long, err := indicators.NewMovingAverage(params.MAType, params.LongPeriod)
	if err != nil {
		return nil, fmt.Errorf("long average: %w", err)
	}

	return &MACross{
		id:     fmt.Sprintf("ma-cross-%d-%d-%s", params.ShortPeriod, params.LongPeriod, id.New()),
		params: params,
		short:  short,
		long:   long,
		hash:   hashParams(params.hashFields()),
	}, nil
}

func (s *MACross) StrategyID() string { return s.id }
func (s *MACross) Name() string       { return "MA Cross Strategy" }

func (s *MACross) Description() string {
	return "Moving Average Crossover strategy - generates signals when short MA crosses long MA"
}

func (s *MACross) Params() MACrossParams { return s.params }
func (s *MACross) ParamsHash() string    { return s.hash }

// ValidateParams re-checks the parameters without returning an error.
func (s *MACross) ValidateParams() bool {
	return s.params.validate() == nil
}

func (s *MACross) Analyze(md market.MarketData) (Signal, error) {
	n := len(md.Bars)
	if n < s.params.LongPeriod {
		return Signal{}, fmt.Errorf("%w: need at least %d bars, got %d",
			ErrInsufficientData, s.params.LongPeriod, n)
	}

	closes := md.Closes()

	shortMA, err := s.short.Calculate(closes)
	if err != nil {
		return Signal{}, fmt.Errorf("%s: %w", s.short.Name(), err)
	}
	longMA, err := s.long.Calculate(closes)
	if err != nil {
		return Signal{}, fmt.Errorf("%s: %w", s.long.Name(), err)
	}

	if len(longMA) < 2 || len(shortMA) < 2 {
		return Signal{}, fmt.Errorf("%w for crossover detection: need at least %d bars",
			ErrInsufficientData, s.params.LongPeriod+1)
	}

	// Each series is read from its own tail; EMA output is full length
	// while SMA and WMA are shorter.
	curShort, prevShort := shortMA[len(shortMA)-1], shortMA[len(shortMA)-2]
	curLong, prevLong := longMA[len(longMA)-1], longMA[len(longMA)-2]

	bullish := prevShort <= prevLong && curShort > curLong
	bearish := prevShort >= prevLong && curShort < curLong

	volume := md.Bars[n-1].Volume
	volumeOK := volume >= s.params.VolumeThreshold

	var (
		direction = market.Hold
		strength  float64
		reason    string
	)

	switch {
	case bullish && volumeOK:
		direction = market.Buy
		strength = s.strength((curShort-curLong)/curLong*100, volume)
		reason = fmt.Sprintf("Short MA (%s=%.2f) crossed above Long MA (%s=%.2f) with volume %s",
			s.short.Name(), curShort, s.long.Name(), curLong, market.FormatCount(volume))

	case bearish && volumeOK:
		direction = market.Sell
		strength = s.strength((curLong-curShort)/curLong*100, volume)
		reason = fmt.Sprintf("Short MA (%s=%.2f) crossed below Long MA (%s=%.2f) with volume %s",
			s.short.Name(), curShort, s.long.Name(), curLong, market.FormatCount(volume))

	case bullish || bearish:
		strength = lowVolumeStrength
		reason = fmt.Sprintf("MA crossover detected but volume (%s) below threshold (%s)",
			market.FormatCount(volume), market.FormatCount(s.params.VolumeThreshold))

	default:
		strength = noCrossStrength
		reason = fmt.Sprintf("No clear crossover. Short MA=%.2f, Long MA=%.2f", curShort, curLong)
	}

	target, stop := curShort*0.95, curShort*1.02
	if direction == market.Buy {
		target, stop = curShort*1.05, curShort*0.98
	}

	return Signal{
		ID:            id.WithPrefix("signal"),
		Time:          time.Now().UTC(),
		StrategyID:    s.id,
		Symbol:        md.Symbol,
		Direction:     direction,
		Strength:      strength,
		Reason:        reason,
		ParamsHash:    s.hash,
		CorrelationID: id.Correlation(),
		TargetPrice:   ptr(target),
		StopLoss:      ptr(stop),
		Metadata: map[string]any{
			"shortMA": curShort,
			"longMA":  curLong,
			"volume":  volume,
			"bars":    n,
		},
	}, nil
}

func (s *MACross) strength(spreadPct float64, volume int64) float64 {
	boost := 1.0
	if s.params.VolumeThreshold > 0 {
		boost = math.Min(float64(volume)/float64(s.params.VolumeThreshold), maxVolumeBoost)
	}
	return math.Min(baseStrength+math.Abs(spreadPct)*spreadStrengthRate*boost, maxStrength)
}

func (p MACrossParams) hashFields() map[string]any {
	f := map[string]any{
		"shortPeriod": p.ShortPeriod,
		"longPeriod":  p.LongPeriod,
		"maType":      string(p.MAType),
	}
	if p.VolumeThreshold > 0 {
		f["volumeThreshold"] = p.VolumeThreshold
	}
	return f
}

// hashParams returns the SHA-256 hex digest of fields as JSON. encoding/json
// writes map keys in sorted order, so the digest is canonical.
func hashParams(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		// fields only ever holds ints and strings
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
