package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one mark-to-market row of the equity curve, appended once
// per processed trading day.
type EquityPoint struct {
	Date           time.Time
	PortfolioValue decimal.Decimal
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
	DailyReturn    decimal.Decimal
	Drawdown       decimal.Decimal
}
