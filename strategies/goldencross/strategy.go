// Package goldencross trades the short/long moving-average crossover with an
// entry-price stop loss.
package goldencross

import (
	"fmt"

	"github.com/shopspring/decimal"

	"krxbacktest/internal/engine"
	"krxbacktest/types"
)

const ID = "goldencross"

type Strategy struct {
	shortPeriod int
	longPeriod  int
	stopLoss    float64
}

// New creates the strategy from its parameter map. Recognised keys:
// short_period (5), long_period (20), stop_loss (0.05, fraction below the
// entry price; 0 disables the stop).
func New(params engine.Params) (*Strategy, error) {
	s := &Strategy{
		shortPeriod: params.Int("short_period", 5),
		longPeriod:  params.Int("long_period", 20),
		stopLoss:    params.Float("stop_loss", 0.05),
	}
	if s.shortPeriod < 1 || s.longPeriod < 2 {
		return nil, fmt.Errorf("goldencross: periods must be positive, got short=%d long=%d", s.shortPeriod, s.longPeriod)
	}
	if s.shortPeriod >= s.longPeriod {
		return nil, fmt.Errorf("goldencross: short period %d must be less than long period %d", s.shortPeriod, s.longPeriod)
	}
	if s.stopLoss < 0 {
		return nil, fmt.Errorf("goldencross: stop loss %f must not be negative", s.stopLoss)
	}
	return s, nil
}

func (s *Strategy) Name() string { return ID }

// ComputeSignal buys when the short SMA crosses from at-or-below to above
// the long SMA, and sells on the death cross or when the close has fallen by
// the stop-loss fraction from the position's entry price. The stop depends
// on portfolio state, which arrives through pos.
func (s *Strategy) ComputeSignal(history []types.Candle, pos *engine.PositionContext) types.Signal {
	if len(history) == 0 {
		return types.Signal{}
	}
	lastClose := history[len(history)-1].Close

	if pos != nil && s.stopLoss > 0 {
		threshold := pos.EntryPrice.Mul(decimal.NewFromFloat(1 - s.stopLoss))
		if lastClose.LessThanOrEqual(threshold) {
			return types.SellSignal(fmt.Sprintf("stop loss: close %s below %.1f%% of entry %s",
				lastClose, s.stopLoss*100, pos.EntryPrice))
		}
	}

	if len(history) < s.longPeriod {
		return types.Signal{}
	}

	curShort := sma(history, s.shortPeriod)
	curLong := sma(history, s.longPeriod)

	// On the first day both averages exist there is no previous comparison;
	// the implied prior state is "not above", so a short SMA already above
	// the long one counts as a cross.
	prevShort := curLong
	prevLong := curLong
	if len(history) > s.longPeriod {
		prevShort = sma(history[:len(history)-1], s.shortPeriod)
		prevLong = sma(history[:len(history)-1], s.longPeriod)
	}

	switch {
	case prevShort.LessThanOrEqual(prevLong) && curShort.GreaterThan(curLong):
		return types.BuySignal(fmt.Sprintf("golden cross: SMA(%d) %s over SMA(%d) %s",
			s.shortPeriod, curShort.StringFixed(2), s.longPeriod, curLong.StringFixed(2)))
	case pos != nil && prevShort.GreaterThanOrEqual(prevLong) && curShort.LessThan(curLong):
		return types.SellSignal(fmt.Sprintf("death cross: SMA(%d) %s under SMA(%d) %s",
			s.shortPeriod, curShort.StringFixed(2), s.longPeriod, curLong.StringFixed(2)))
	}
	return types.Signal{}
}

// sma is the simple moving average of the last period closes.
func sma(history []types.Candle, period int) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range history[len(history)-period:] {
		sum = sum.Add(c.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(period)))
}
