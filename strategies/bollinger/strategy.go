// Package bollinger trades band breakouts: buy on a close breaking above the
// upper Bollinger band (optionally volume-confirmed), sell on a break below
// the lower band or a fall back under the middle band.
package bollinger

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"krxbacktest/internal/engine"
	"krxbacktest/types"
)

const ID = "bollinger"

const volumeConfirmFactor = 1.5

type Strategy struct {
	period        int
	stdDevMult    float64
	volumeConfirm bool
}

// New creates the strategy from its parameter map. Recognised keys: period
// (20), std_dev (2.0), volume_confirm (0/1, default off).
func New(params engine.Params) (*Strategy, error) {
	s := &Strategy{
		period:        params.Int("period", 20),
		stdDevMult:    params.Float("std_dev", 2.0),
		volumeConfirm: params.Bool("volume_confirm", false),
	}
	if s.period < 2 {
		return nil, fmt.Errorf("bollinger: period %d must be at least 2", s.period)
	}
	if s.stdDevMult <= 0 {
		return nil, fmt.Errorf("bollinger: std dev multiplier %f must be positive", s.stdDevMult)
	}
	return s, nil
}

func (s *Strategy) Name() string { return ID }

func (s *Strategy) ComputeSignal(history []types.Candle, _ *engine.PositionContext) types.Signal {
	// One extra bar so the crossing comparison has a previous day.
	if len(history) < s.period+1 {
		return types.Signal{}
	}

	curBands := bands(history, s.period, s.stdDevMult)
	prevBands := bands(history[:len(history)-1], s.period, s.stdDevMult)

	cur := history[len(history)-1]
	prevClose := history[len(history)-2].Close

	if prevClose.LessThanOrEqual(prevBands.upper) && cur.Close.GreaterThan(curBands.upper) {
		if !s.volumeConfirm || s.volumeConfirmed(history) {
			return types.BuySignal(fmt.Sprintf("close %s broke above upper band %s",
				cur.Close, curBands.upper.StringFixed(2)))
		}
		return types.Signal{}
	}

	switch {
	case prevClose.GreaterThanOrEqual(prevBands.lower) && cur.Close.LessThan(curBands.lower):
		return types.SellSignal(fmt.Sprintf("close %s broke below lower band %s",
			cur.Close, curBands.lower.StringFixed(2)))
	case prevClose.GreaterThanOrEqual(prevBands.middle) && cur.Close.LessThan(curBands.middle):
		return types.SellSignal(fmt.Sprintf("close %s fell back below middle band %s",
			cur.Close, curBands.middle.StringFixed(2)))
	}
	return types.Signal{}
}

// volumeConfirmed requires the day's volume to exceed 1.5x its moving
// average over the band period.
func (s *Strategy) volumeConfirmed(history []types.Candle) bool {
	sum := decimal.Zero
	for _, c := range history[len(history)-s.period:] {
		sum = sum.Add(c.Volume)
	}
	avg := sum.Div(decimal.NewFromInt(int64(s.period)))
	threshold := avg.Mul(decimal.NewFromFloat(volumeConfirmFactor))
	return history[len(history)-1].Volume.GreaterThan(threshold)
}

type bandSet struct {
	upper  decimal.Decimal
	middle decimal.Decimal
	lower  decimal.Decimal
}

// bands computes the Bollinger bands over the last period closes: middle is
// the SMA, the outer bands sit stdDevMult population standard deviations
// away.
func bands(history []types.Candle, period int, stdDevMult float64) bandSet {
	window := history[len(history)-period:]

	sum := decimal.Zero
	for _, c := range window {
		sum = sum.Add(c.Close)
	}
	middle := sum.Div(decimal.NewFromInt(int64(period)))

	mean, _ := middle.Float64()
	var varianceSum float64
	for _, c := range window {
		close, _ := c.Close.Float64()
		diff := close - mean
		varianceSum += diff * diff
	}
	std := math.Sqrt(varianceSum / float64(period))

	width := decimal.NewFromFloat(std * stdDevMult)
	return bandSet{
		upper:  middle.Add(width),
		middle: middle,
		lower:  middle.Sub(width),
	}
}
