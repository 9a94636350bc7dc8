package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

const tradingDaysPerYear = 252.0

// buildResult reduces the accumulated equity curve and trade log to the
// summary record. Ratio metrics are computed in float64; every undefined
// case (zero volatility, no losses, empty run) collapses to 0 rather than
// NaN or Inf.
func buildResult(runID, symbol string, status types.RunStatus, initialCapital decimal.Decimal, riskFreeRate float64, p *portfolio) *types.BacktestResult {
	res := &types.BacktestResult{
		RunID:          runID,
		Symbol:         symbol,
		Status:         status,
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		AvgWin:         decimal.Zero,
		AvgLoss:        decimal.Zero,
		Trades:         append([]types.Trade(nil), p.trades...),
		EquityCurve:    append([]types.EquityPoint(nil), p.equityCurve...),
	}

	if len(p.equityCurve) > 0 {
		res.FinalCapital = p.equityCurve[len(p.equityCurve)-1].PortfolioValue
	}

	res.TotalReturn = totalReturn(initialCapital, res.FinalCapital)
	res.AnnualReturn = annualReturn(res.TotalReturn, runSpan(p.equityCurve))
	res.Volatility = annualizedVolatility(p.equityCurve)
	res.SharpeRatio = sharpeRatio(res.AnnualReturn, riskFreeRate, res.Volatility)
	res.SortinoRatio = sortinoRatio(res.AnnualReturn, riskFreeRate, p.equityCurve)
	res.MaxDrawdown = maxDrawdown(p.equityCurve)
	res.CalmarRatio = calmarRatio(res.AnnualReturn, res.MaxDrawdown)

	fillTradeStats(res, p.trades)
	return res
}

func totalReturn(initial, final decimal.Decimal) float64 {
	if initial.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return final.Sub(initial).Div(initial).InexactFloat64()
}

// annualReturn is the CAGR over the run's calendar span, using 365.25 days
// per year.
func annualReturn(total float64, span time.Duration) float64 {
	days := span.Hours() / 24
	if days <= 0 {
		return 0
	}
	growth := 1 + total
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 365.25/days) - 1
}

func runSpan(curve []types.EquityPoint) time.Duration {
	if len(curve) < 2 {
		return 0
	}
	return curve[len(curve)-1].Date.Sub(curve[0].Date)
}

// annualizedVolatility is the sample standard deviation of daily returns
// scaled by sqrt(252). Needs at least 2 daily returns.
func annualizedVolatility(curve []types.EquityPoint) float64 {
	returns := dailyReturns(curve)
	if len(returns) < 2 {
		return 0
	}
	return stdev(returns) * math.Sqrt(tradingDaysPerYear)
}

func sharpeRatio(annual, riskFree, volatility float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (annual - riskFree) / volatility
}

// sortinoRatio uses only the dispersion of negative daily returns in the
// denominator; 0 when no negative return exists.
func sortinoRatio(annual, riskFree float64, curve []types.EquityPoint) float64 {
	var negatives []float64
	for _, r := range dailyReturns(curve) {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}

	var sumSq float64
	for _, r := range negatives {
		sumSq += r * r
	}
	downside := math.Sqrt(sumSq/float64(len(negatives))) * math.Sqrt(tradingDaysPerYear)
	if downside == 0 {
		return 0
	}
	return (annual - riskFree) / downside
}

// maxDrawdown is the minimum of the running drawdown series, <= 0.
func maxDrawdown(curve []types.EquityPoint) float64 {
	minDD := 0.0
	for _, point := range curve {
		if dd := point.Drawdown.InexactFloat64(); dd < minDD {
			minDD = dd
		}
	}
	return minDD
}

func calmarRatio(annual, maxDD float64) float64 {
	if maxDD == 0 {
		return 0
	}
	return annual / math.Abs(maxDD)
}

// fillTradeStats computes the realized-trade distribution. Only SELL trades
// carry a realized PnL, so they are the population for win rate, averages
// and profit factor.
func fillTradeStats(res *types.BacktestResult, trades []types.Trade) {
	sumWins := decimal.Zero
	sumLosses := decimal.Zero

	for _, t := range trades {
		if t.Side != types.SideTypeSell {
			continue
		}
		res.TotalTrades++
		switch {
		case t.PnL.GreaterThan(decimal.Zero):
			res.WinningTrades++
			sumWins = sumWins.Add(t.PnL)
		case t.PnL.LessThan(decimal.Zero):
			res.LosingTrades++
			sumLosses = sumLosses.Add(t.PnL.Abs())
		}
	}

	if res.TotalTrades > 0 {
		res.WinRate = float64(res.WinningTrades) / float64(res.TotalTrades)
	}
	if res.WinningTrades > 0 {
		res.AvgWin = sumWins.Div(decimal.NewFromInt(int64(res.WinningTrades)))
	}
	if res.LosingTrades > 0 {
		res.AvgLoss = sumLosses.Div(decimal.NewFromInt(int64(res.LosingTrades)))
	}
	if sumLosses.GreaterThan(decimal.Zero) {
		res.ProfitFactor = sumWins.Div(sumLosses).InexactFloat64()
	}
}

func dailyReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for _, point := range curve[1:] {
		out = append(out, point.DailyReturn.InexactFloat64())
	}
	return out
}

// stdev is the sample standard deviation.
func stdev(xs []float64) float64 {
	n := float64(len(xs))
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / n

	var varianceSum float64
	for _, x := range xs {
		diff := x - mean
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / (n - 1))
}

// PrintReport writes the result as the human-readable report table.
func PrintReport(res *types.BacktestResult) {
	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Run ID:               %s\n", res.RunID)
	fmt.Printf("Symbol:               %s\n", res.Symbol)
	fmt.Printf("Status:               %s\n", res.Status)

	fmt.Println("\n-- Capital --")
	fmt.Printf("Initial Capital:      %s\n", res.InitialCapital)
	fmt.Printf("Final Capital:        %s\n", res.FinalCapital.StringFixed(0))

	fmt.Println("\n-- Returns --")
	fmt.Printf("Total Return:         %.2f%%\n", res.TotalReturn*100)
	fmt.Printf("Annual Return (CAGR): %.2f%%\n", res.AnnualReturn*100)
	fmt.Printf("Volatility:           %.2f%%\n", res.Volatility*100)

	fmt.Println("\n-- Risk-Adjusted --")
	fmt.Printf("Sharpe Ratio:         %.3f\n", res.SharpeRatio)
	fmt.Printf("Sortino Ratio:        %.3f\n", res.SortinoRatio)
	fmt.Printf("Calmar Ratio:         %.3f\n", res.CalmarRatio)
	fmt.Printf("Max Drawdown:         %.2f%%\n", res.MaxDrawdown*100)

	fmt.Println("\n-- Trades --")
	fmt.Printf("Total Trades:         %d\n", res.TotalTrades)
	fmt.Printf("Win Rate:             %.2f%%\n", res.WinRate*100)
	fmt.Printf("Avg Win:              %s\n", res.AvgWin.StringFixed(0))
	fmt.Printf("Avg Loss:             %s\n", res.AvgLoss.StringFixed(0))
	fmt.Printf("Profit Factor:        %.3f\n", res.ProfitFactor)

	fmt.Println("===========================")
}
