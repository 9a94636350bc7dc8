package market

import (
	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

// Daily price-limit rates by instrument tier. KOSPI/KOSDAQ equities and ETFs
// trade within +-30% of the previous close (the post-2015 KRX band); KONEX
// keeps the older +-15% band.
var defaultLimitRates = map[types.Tier]decimal.Decimal{
	types.TierEquity: decimal.RequireFromString("0.30"),
	types.TierETF:    decimal.RequireFromString("0.30"),
	types.TierKonex:  decimal.RequireFromString("0.15"),
}

// PriceLimits computes the daily upper/lower bound (상한가/하한가) around a
// previous close. Limit rates are injected at construction so a run can
// override the exchange defaults.
type PriceLimits struct {
	rates map[types.Tier]decimal.Decimal
}

// NewPriceLimits creates a PriceLimits using the KRX default band per tier.
func NewPriceLimits() *PriceLimits {
	return NewPriceLimitsWithRates(nil)
}

// NewPriceLimitsWithRates creates a PriceLimits with per-tier overrides.
// Tiers absent from the override map keep their defaults.
func NewPriceLimitsWithRates(overrides map[types.Tier]decimal.Decimal) *PriceLimits {
	rates := make(map[types.Tier]decimal.Decimal, len(defaultLimitRates))
	for tier, rate := range defaultLimitRates {
		rates[tier] = rate
	}
	for tier, rate := range overrides {
		rates[tier] = rate
	}
	return &PriceLimits{rates: rates}
}

// Bounds returns the (lower, upper) band for one day given the previous
// close. Both bounds are rounded inward to a valid KRX tick.
func (pl *PriceLimits) Bounds(prevClose decimal.Decimal, tier types.Tier) (decimal.Decimal, decimal.Decimal) {
	rate, ok := pl.rates[tier]
	if !ok {
		rate = defaultLimitRates[types.TierEquity]
	}

	move := prevClose.Mul(rate)
	lower := roundUpToTick(prevClose.Sub(move))
	upper := roundDownToTick(prevClose.Add(move))
	return lower, upper
}

// Clamp returns price constrained to the day's band.
func (pl *PriceLimits) Clamp(price, prevClose decimal.Decimal, tier types.Tier) decimal.Decimal {
	lower, upper := pl.Bounds(prevClose, tier)
	if price.LessThan(lower) {
		return lower
	}
	if price.GreaterThan(upper) {
		return upper
	}
	return price
}

// TickSize returns the KRX minimum price increment for the given price level
// (the 2023 unified tick table, in won).
func TickSize(price decimal.Decimal) decimal.Decimal {
	switch {
	case price.LessThan(decimal.NewFromInt(2000)):
		return decimal.NewFromInt(1)
	case price.LessThan(decimal.NewFromInt(5000)):
		return decimal.NewFromInt(5)
	case price.LessThan(decimal.NewFromInt(20000)):
		return decimal.NewFromInt(10)
	case price.LessThan(decimal.NewFromInt(50000)):
		return decimal.NewFromInt(50)
	case price.LessThan(decimal.NewFromInt(200000)):
		return decimal.NewFromInt(100)
	case price.LessThan(decimal.NewFromInt(500000)):
		return decimal.NewFromInt(500)
	default:
		return decimal.NewFromInt(1000)
	}
}

func roundDownToTick(price decimal.Decimal) decimal.Decimal {
	tick := TickSize(price)
	return price.Div(tick).Floor().Mul(tick)
}

func roundUpToTick(price decimal.Decimal) decimal.Decimal {
	tick := TickSize(price)
	return price.Div(tick).Ceil().Mul(tick)
}
