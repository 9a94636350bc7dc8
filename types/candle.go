package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one daily OHLCV bar for a single symbol. Bars are immutable once
// ingested; the engine only ever reads them.
type Candle struct {
	AssetId int             `json:"id"`
	Symbol  string          `json:"symbol"`
	Open    decimal.Decimal `json:"open"`
	High    decimal.Decimal `json:"high"`
	Low     decimal.Decimal `json:"low"`
	Close   decimal.Decimal `json:"close"`
	Volume  decimal.Decimal `json:"volume"`
	Date    time.Time       `json:"date"`
}
