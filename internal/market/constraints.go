// Package market encodes KRX execution rules: the trading calendar, the
// daily price-limit bands with tick rounding, and the commission/tax/slippage
// cost model. It is independent of any strategy.
package market

import (
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

// Constraints bundles the three execution rules a backtest run needs. It is
// built once per run and injected into the engine.
type Constraints struct {
	calendar *Calendar
	limits   *PriceLimits
	costs    CostModel
}

// NewConstraints wires a calendar, price-limit table and cost model together.
func NewConstraints(calendar *Calendar, limits *PriceLimits, costs CostModel) *Constraints {
	return &Constraints{
		calendar: calendar,
		limits:   limits,
		costs:    costs,
	}
}

// DefaultConstraints builds Constraints with the KRX defaults and the given
// holiday set.
func DefaultConstraints(holidays []time.Time) *Constraints {
	return NewConstraints(NewCalendar(holidays), NewPriceLimits(), DefaultCostModel())
}

func (c *Constraints) IsTradingDay(date time.Time) bool {
	return c.calendar.IsTradingDay(date)
}

func (c *Constraints) PriceLimitBounds(prevClose decimal.Decimal, tier types.Tier) (decimal.Decimal, decimal.Decimal) {
	return c.limits.Bounds(prevClose, tier)
}

func (c *Constraints) ClampToLimits(price, prevClose decimal.Decimal, tier types.Tier) decimal.Decimal {
	return c.limits.Clamp(price, prevClose, tier)
}

func (c *Constraints) Costs() CostModel {
	return c.costs
}
