package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an open long holding. It exists only while Quantity > 0; the
// portfolio deletes it on full exit.
type Position struct {
	Symbol    string
	Quantity  decimal.Decimal
	AvgPrice  decimal.Decimal
	EntryDate time.Time
	LastPrice decimal.Decimal
}

// MarketValue is Quantity * LastPrice.
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.LastPrice)
}
