package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one executed order. The trade log is append-only and trades are
// immutable once recorded.
//
// Commission and Slippage are charged on both sides; Tax (securities
// transaction tax) only on SELL. ExitPrice, PnL and HoldingDays are set only
// on SELL trades, where the realized result of the round trip is known.
type Trade struct {
	ID          string
	Symbol      string
	Side        Side
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Value       decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Slippage    decimal.Decimal
	Date        time.Time
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	PnL         decimal.Decimal
	HoldingDays int
	Reason      string
}

// Costs is the total of commission, tax and slippage for this trade.
func (t *Trade) Costs() decimal.Decimal {
	return t.Commission.Add(t.Tax).Add(t.Slippage)
}

// NetProceeds is the cash credited on a SELL: value minus all costs.
func (t *Trade) NetProceeds() decimal.Decimal {
	return t.Value.Sub(t.Costs())
}
