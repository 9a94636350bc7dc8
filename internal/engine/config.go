package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

// Config is the full parameter set of one backtest run. It is immutable once
// the run starts.
type Config struct {
	Symbol     string
	Tier       types.Tier
	StrategyID string
	Start      time.Time
	End        time.Time

	InitialCapital decimal.Decimal
	StrategyParams map[string]float64

	// Execution policy.
	MaxPositions         int
	BasePositionFraction decimal.Decimal

	// Cost rates, fractions of trade value.
	CommissionRate decimal.Decimal
	TaxRate        decimal.Decimal
	SlippageRate   decimal.Decimal

	// Annual risk-free rate used for the Sharpe ratio.
	RiskFreeRate float64

	ShowProgress bool
}

// NewConfig creates a Config with the canonical KRX execution defaults
// applied; callers override fields before Validate.
func NewConfig(symbol, strategyID string, start, end time.Time, initialCapital decimal.Decimal) Config {
	return Config{
		Symbol:               symbol,
		Tier:                 types.TierEquity,
		StrategyID:           strategyID,
		Start:                start,
		End:                  end,
		InitialCapital:       initialCapital,
		StrategyParams:       map[string]float64{},
		MaxPositions:         1,
		BasePositionFraction: decimal.RequireFromString("0.3"),
		CommissionRate:       decimal.RequireFromString("0.00015"),
		TaxRate:              decimal.RequireFromString("0.0020"),
		SlippageRate:         decimal.RequireFromString("0.0010"),
		RiskFreeRate:         0.03,
	}
}

// Validate checks the config for contradictions. All failures wrap
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidConfig)
	}
	if !c.Start.Before(c.End) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidConfig, c.Start.Format("2006-01-02"), c.End.Format("2006-01-02"))
	}
	if c.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: initial capital %s must be positive", ErrInvalidConfig, c.InitialCapital)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("%w: max positions %d must be at least 1", ErrInvalidConfig, c.MaxPositions)
	}
	if c.BasePositionFraction.LessThanOrEqual(decimal.Zero) || c.BasePositionFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: base position fraction %s must be in (0, 1]", ErrInvalidConfig, c.BasePositionFraction)
	}
	for name, rate := range map[string]decimal.Decimal{
		"commission": c.CommissionRate,
		"tax":        c.TaxRate,
		"slippage":   c.SlippageRate,
	} {
		if rate.IsNegative() {
			return fmt.Errorf("%w: %s rate %s is negative", ErrInvalidConfig, name, rate)
		}
	}
	return nil
}
