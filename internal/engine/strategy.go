package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

// PositionContext is the slice of portfolio state a signal generator may
// depend on (stop-loss rules need the entry price). It is passed in
// explicitly so generators stay pure: identical history, params and context
// always produce the identical signal.
type PositionContext struct {
	EntryPrice  decimal.Decimal
	EntryDate   time.Time
	HoldingDays int
}

// SignalGenerator maps a price-history window to one per-day Signal using
// only information up to and including the last bar of history.
//
// pos is nil when no position is open for the symbol.
type SignalGenerator interface {
	Name() string
	ComputeSignal(history []types.Candle, pos *PositionContext) types.Signal
}

// Params wraps the free-form strategy parameter map with typed, defaulted
// accessors.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		return v != 0
	}
	return def
}
