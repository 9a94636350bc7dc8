package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"krxbacktest/internal/market"
	"krxbacktest/types"
)

// State is the lifecycle state of one backtest run.
type State string

const (
	StateInitialized State = "INITIALIZED"
	StateRunning     State = "RUNNING"
	StateCompleted   State = "COMPLETED"
	StateFailed      State = "FAILED"
	StateCancelled   State = "CANCELLED"
)

const dateKeyLayout = "2006-01-02"

// backtester replays one daily price series through a signal generator and a
// portfolio. A backtester owns its portfolio exclusively and is used for
// exactly one run; independent runs get independent backtesters.
type backtester struct {
	runID       string
	cfg         Config
	constraints *market.Constraints
	generator   SignalGenerator
	bars        []types.Candle
	barIndex    map[string]int
	portfolio   *portfolio
	state       State
	log         *slog.Logger

	gapDays        int
	rejectedOrders int
}

func newBacktester(cfg Config, constraints *market.Constraints, generator SignalGenerator, bars []types.Candle, log *slog.Logger) *backtester {
	index := make(map[string]int, len(bars))
	for i, bar := range bars {
		index[bar.Date.Format(dateKeyLayout)] = i
	}
	return &backtester{
		runID:       uuid.NewString(),
		cfg:         cfg,
		constraints: constraints,
		generator:   generator,
		bars:        bars,
		barIndex:    index,
		portfolio:   newPortfolio(cfg.InitialCapital, cfg.MaxPositions, market.NewCostModel(cfg.CommissionRate, cfg.TaxRate, cfg.SlippageRate)),
		state:       StateInitialized,
		log:         log,
	}
}

// run drives the day-by-day replay. It returns ErrInvalidConfig or
// ErrDataUnavailable for fatal conditions; everything else (gaps, rejected
// orders) is absorbed into the run history. Cancellation is checked once per
// simulated day and yields a partial result tagged cancelled.
func (b *backtester) run(ctx context.Context) (*types.BacktestResult, error) {
	if b.state != StateInitialized {
		return nil, ErrNotRunnable
	}
	if err := b.cfg.Validate(); err != nil {
		b.state = StateFailed
		return nil, err
	}
	if len(b.bars) == 0 {
		b.state = StateFailed
		return nil, ErrDataUnavailable
	}
	b.state = StateRunning

	var bar *progressbar.ProgressBar
	if b.cfg.ShowProgress {
		bar = initProgressBar(int(b.cfg.End.Sub(b.cfg.Start).Hours()/24) + 1)
	}

	for day := b.cfg.Start; !day.After(b.cfg.End); day = day.AddDate(0, 0, 1) {
		if bar != nil {
			bar.Add(1)
		}
		if ctx.Err() != nil {
			b.state = StateCancelled
			b.log.Info("run cancelled", "run_id", b.runID, "date", day.Format(dateKeyLayout))
			return b.result(types.RunCancelled), nil
		}
		if !b.constraints.IsTradingDay(day) {
			continue
		}

		idx, ok := b.barIndex[day.Format(dateKeyLayout)]
		if !ok {
			// Data gap inside the range: skip the day, keep the run alive.
			b.gapDays++
			b.log.Debug("missing bar", "symbol", b.cfg.Symbol, "date", day.Format(dateKeyLayout))
			continue
		}

		b.processDay(idx, day)
	}

	b.state = StateCompleted
	b.log.Info("run completed",
		"run_id", b.runID,
		"symbol", b.cfg.Symbol,
		"gap_days", b.gapDays,
		"rejected_orders", b.rejectedOrders,
		"trades", len(b.portfolio.trades))
	return b.result(types.RunCompleted), nil
}

func (b *backtester) processDay(idx int, day time.Time) {
	cur := b.bars[idx]
	history := b.bars[:idx+1]

	signal := b.generator.ComputeSignal(history, b.positionContext(day))

	execPrice := cur.Close
	if idx > 0 {
		execPrice = b.constraints.ClampToLimits(cur.Close, b.bars[idx-1].Close, b.cfg.Tier)
	}

	if signal.Buy {
		qty := b.sizeBuy(execPrice)
		if trade := b.portfolio.executeBuy(b.cfg.Symbol, execPrice, qty, day, signal.Reason); trade == nil {
			b.rejectedOrders++
			b.log.Debug("buy rejected", "symbol", b.cfg.Symbol, "date", day.Format(dateKeyLayout), "reason", signal.Reason)
		} else {
			b.log.Info("buy", "symbol", trade.Symbol, "qty", trade.Quantity, "price", trade.Price, "reason", trade.Reason)
		}
	}

	if signal.Sell {
		if trade := b.portfolio.executeSell(b.cfg.Symbol, execPrice, decimal.Zero, day, signal.Reason); trade == nil {
			b.rejectedOrders++
			b.log.Debug("sell rejected", "symbol", b.cfg.Symbol, "date", day.Format(dateKeyLayout), "reason", signal.Reason)
		} else {
			b.log.Info("sell", "symbol", trade.Symbol, "qty", trade.Quantity, "price", trade.Price, "pnl", trade.PnL, "reason", trade.Reason)
		}
	}

	b.portfolio.markToMarket(map[string]decimal.Decimal{b.cfg.Symbol: cur.Close}, day)
}

// sizeBuy applies the equal-weight-with-cap policy: the target value is the
// base fraction of cash, capped by an equal split of cash across the
// remaining position slots.
func (b *backtester) sizeBuy(price decimal.Decimal) decimal.Decimal {
	cash := b.portfolio.cash
	slots := b.cfg.MaxPositions - b.portfolio.openPositions()
	if slots < 1 {
		slots = 1
	}

	target := decimal.Min(
		cash.Mul(b.cfg.BasePositionFraction),
		cash.Div(decimal.NewFromInt(int64(slots))),
	)
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return target.Div(price).Floor()
}

func (b *backtester) positionContext(day time.Time) *PositionContext {
	pos, held := b.portfolio.position(b.cfg.Symbol)
	if !held {
		return nil
	}
	return &PositionContext{
		EntryPrice:  pos.AvgPrice,
		EntryDate:   pos.EntryDate,
		HoldingDays: int(day.Sub(pos.EntryDate).Hours() / 24),
	}
}

func (b *backtester) result(status types.RunStatus) *types.BacktestResult {
	return buildResult(b.runID, b.cfg.Symbol, status, b.cfg.InitialCapital, b.cfg.RiskFreeRate, b.portfolio)
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
