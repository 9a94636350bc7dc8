// Package engine implements the backtesting core: the run state machine, the
// portfolio with its monetary invariants, and the performance statistics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"krxbacktest/internal/market"
	"krxbacktest/internal/repository"
	"krxbacktest/types"
)

// dataStore is the market-data collaborator. The production implementation
// is the pgx repository; tests inject synthetic series.
type dataStore interface {
	GetAssetBySymbol(ctx context.Context, symbol string) (*types.Asset, error)
	GetDailyBars(ctx context.Context, assetID int, symbol string, start, end time.Time) ([]types.Candle, error)
}

// Engine loads price data through the dataStore and drives backtest runs.
// All collaborators are constructor-injected; the Engine holds no mutable
// run state, so independent runs may be scheduled concurrently as long as
// each call gets its own Config.
type Engine struct {
	db          dataStore
	constraints *market.Constraints
	log         *slog.Logger
}

func NewEngine(db dataStore, constraints *market.Constraints, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		db:          db,
		constraints: constraints,
		log:         log,
	}
}

// Run executes one backtest: fetch the daily series for the configured
// symbol and replay it through the generator. A missing asset or an empty
// series surfaces as ErrDataUnavailable; the simulation loop itself performs
// no I/O.
func (e *Engine) Run(ctx context.Context, cfg Config, generator SignalGenerator) (*types.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bars, err := e.loadBars(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bt := newBacktester(cfg, e.constraints, generator, bars, e.log)
	return bt.run(ctx)
}

// RunSeries executes one backtest against a pre-fetched series, bypassing
// the data store.
func (e *Engine) RunSeries(ctx context.Context, cfg Config, generator SignalGenerator, bars []types.Candle) (*types.BacktestResult, error) {
	bt := newBacktester(cfg, e.constraints, generator, bars, e.log)
	return bt.run(ctx)
}

func (e *Engine) loadBars(ctx context.Context, cfg Config) ([]types.Candle, error) {
	asset, err := e.db.GetAssetBySymbol(ctx, cfg.Symbol)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, cfg.Symbol)
		}
		return nil, fmt.Errorf("load asset: %w", err)
	}

	bars, err := e.db.GetDailyBars(ctx, asset.Id, cfg.Symbol, cfg.Start, cfg.End)
	if err != nil {
		if errors.Is(err, repository.ErrNoBars) {
			return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, cfg.Symbol)
		}
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return bars, nil
}
