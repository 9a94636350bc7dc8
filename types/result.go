package types

import (
	"github.com/shopspring/decimal"
)

// RunStatus is the terminal state of a backtest run.
type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunCancelled RunStatus = "CANCELLED"
	RunFailed    RunStatus = "FAILED"
)

// BacktestResult is built once, at run completion, from the final portfolio
// state. Ratio metrics are float64; money amounts stay decimal.
type BacktestResult struct {
	RunID  string
	Symbol string
	Status RunStatus

	TotalReturn  float64
	AnnualReturn float64
	Volatility   float64
	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64
	MaxDrawdown  float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        decimal.Decimal
	AvgLoss       decimal.Decimal
	ProfitFactor  float64

	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal

	Trades      []Trade
	EquityCurve []EquityPoint
}
