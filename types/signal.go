package types

// Signal is the per-day output of a signal generator. Buy and Sell may both
// be false (hold); Reason carries the human-readable trigger for the trade
// log.
type Signal struct {
	Buy    bool
	Sell   bool
	Reason string
}

func BuySignal(reason string) Signal {
	return Signal{Buy: true, Reason: reason}
}

func SellSignal(reason string) Signal {
	return Signal{Sell: true, Reason: reason}
}
