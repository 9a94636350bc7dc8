package types

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// Tier selects which daily price-limit band applies to an instrument.
type Tier string

const (
	TierEquity Tier = "EQUITY" // KOSPI / KOSDAQ listed equity
	TierETF    Tier = "ETF"
	TierKonex  Tier = "KONEX"
)
