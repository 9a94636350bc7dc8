package engine

import "errors"

var (
	// ErrInvalidConfig rejects a run before it starts; the backtester never
	// enters RUNNING on a bad config.
	ErrInvalidConfig = errors.New("invalid backtest config")

	// ErrDataUnavailable means no price data exists for the symbol at all.
	ErrDataUnavailable = errors.New("no price data available for symbol")

	// ErrUnknownStrategy means the configured strategy id has no registered
	// signal generator.
	ErrUnknownStrategy = errors.New("unknown strategy id")

	// ErrNotRunnable means Run was called on a backtester that already
	// reached a terminal state.
	ErrNotRunnable = errors.New("backtester already ran")
)
