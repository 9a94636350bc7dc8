// Package rsireversal trades mean reversion on Wilder's RSI: buy when the
// indicator climbs back out of oversold territory, sell when it drops back
// out of overbought.
package rsireversal

import (
	"fmt"

	"krxbacktest/internal/engine"
	"krxbacktest/types"
)

const ID = "rsireversal"

type Strategy struct {
	period     int
	oversold   float64
	overbought float64
}

// New creates the strategy from its parameter map. Recognised keys: period
// (14), oversold (30), overbought (70).
func New(params engine.Params) (*Strategy, error) {
	s := &Strategy{
		period:     params.Int("period", 14),
		oversold:   params.Float("oversold", 30),
		overbought: params.Float("overbought", 70),
	}
	if s.period < 2 {
		return nil, fmt.Errorf("rsireversal: period %d must be at least 2", s.period)
	}
	if s.oversold <= 0 || s.overbought >= 100 || s.oversold >= s.overbought {
		return nil, fmt.Errorf("rsireversal: thresholds oversold=%.1f overbought=%.1f must satisfy 0 < oversold < overbought < 100",
			s.oversold, s.overbought)
	}
	return s, nil
}

func (s *Strategy) Name() string { return ID }

// ComputeSignal fires a buy on the day RSI crosses upward through the
// oversold threshold and a sell on the day it crosses downward through the
// overbought threshold. No position state is needed.
func (s *Strategy) ComputeSignal(history []types.Candle, _ *engine.PositionContext) types.Signal {
	// Need period changes for the first RSI value plus one more day for the
	// previous/current comparison.
	if len(history) < s.period+2 {
		return types.Signal{}
	}

	prev, cur := lastTwoRSI(history, s.period)

	switch {
	case prev < s.oversold && cur >= s.oversold:
		return types.BuySignal(fmt.Sprintf("RSI(%d) recovered through oversold %.0f: %.1f -> %.1f",
			s.period, s.oversold, prev, cur))
	case prev > s.overbought && cur <= s.overbought:
		return types.SellSignal(fmt.Sprintf("RSI(%d) fell through overbought %.0f: %.1f -> %.1f",
			s.period, s.overbought, prev, cur))
	}
	return types.Signal{}
}

// lastTwoRSI runs Wilder's smoothing over the whole history and returns the
// RSI for the previous and the current day. Seeding from the start of the
// series keeps the value a pure function of the history.
func lastTwoRSI(history []types.Candle, period int) (prev, cur float64) {
	var avgGain, avgLoss float64

	for i := 1; i < len(history); i++ {
		change, _ := history[i].Close.Sub(history[i-1].Close).Float64()
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i <= period {
			avgGain += gain / float64(period)
			avgLoss += loss / float64(period)
		} else {
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}

		if i >= period {
			prev = cur
			cur = rsiValue(avgGain, avgLoss)
		}
	}
	return prev, cur
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
