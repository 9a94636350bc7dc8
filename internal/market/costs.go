package market

import (
	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

// Canonical Korean-market cost rates. Commission matches the common online
// brokerage rate, tax the securities transaction tax on sales, slippage a
// flat market-impact estimate for daily bars.
var (
	DefaultCommissionRate = decimal.RequireFromString("0.00015")
	DefaultTaxRate        = decimal.RequireFromString("0.0020")
	DefaultSlippageRate   = decimal.RequireFromString("0.0010")
)

// Cost is the breakdown of transaction costs for one trade.
type Cost struct {
	Commission   decimal.Decimal
	Tax          decimal.Decimal
	MarketImpact decimal.Decimal
}

// Total is commission + tax + market impact.
func (c Cost) Total() decimal.Decimal {
	return c.Commission.Add(c.Tax).Add(c.MarketImpact)
}

// CostModel prices the costs of a fill: commission and slippage on both
// sides, securities transaction tax only on SELL. All outputs are
// deterministic functions of (value, side).
type CostModel struct {
	commissionRate decimal.Decimal
	taxRate        decimal.Decimal
	slippageRate   decimal.Decimal
}

// NewCostModel creates a CostModel with explicit rates. Rates must be
// non-negative fractions of trade value.
func NewCostModel(commissionRate, taxRate, slippageRate decimal.Decimal) CostModel {
	return CostModel{
		commissionRate: commissionRate,
		taxRate:        taxRate,
		slippageRate:   slippageRate,
	}
}

// DefaultCostModel creates a CostModel with the canonical KRX rates.
func DefaultCostModel() CostModel {
	return NewCostModel(DefaultCommissionRate, DefaultTaxRate, DefaultSlippageRate)
}

// TransactionCost computes the cost breakdown for a trade of the given value.
func (m CostModel) TransactionCost(value decimal.Decimal, side types.Side) Cost {
	if value.LessThanOrEqual(decimal.Zero) {
		return Cost{
			Commission:   decimal.Zero,
			Tax:          decimal.Zero,
			MarketImpact: decimal.Zero,
		}
	}

	cost := Cost{
		Commission:   value.Mul(m.commissionRate),
		Tax:          decimal.Zero,
		MarketImpact: value.Mul(m.slippageRate),
	}
	if side == types.SideTypeSell {
		cost.Tax = value.Mul(m.taxRate)
	}
	return cost
}

// BuyCostRate is the combined rate charged on top of a buy's trade value.
func (m CostModel) BuyCostRate() decimal.Decimal {
	return m.commissionRate.Add(m.slippageRate)
}

// SellCostRate is the combined rate deducted from a sell's trade value.
func (m CostModel) SellCostRate() decimal.Decimal {
	return m.commissionRate.Add(m.taxRate).Add(m.slippageRate)
}
