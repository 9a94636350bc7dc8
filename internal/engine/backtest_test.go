package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/internal/market"
	"krxbacktest/internal/repository"
	"krxbacktest/types"
)

// holdGenerator never trades.
type holdGenerator struct{}

func (holdGenerator) Name() string { return "hold" }
func (holdGenerator) ComputeSignal([]types.Candle, *PositionContext) types.Signal {
	return types.Signal{}
}

// enterOnceGenerator buys whenever no position is open.
type enterOnceGenerator struct{}

func (enterOnceGenerator) Name() string { return "enter-once" }
func (enterOnceGenerator) ComputeSignal(_ []types.Candle, pos *PositionContext) types.Signal {
	if pos == nil {
		return types.BuySignal("enter")
	}
	return types.Signal{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// weekdayBars lays the closes over consecutive weekdays starting at start.
func weekdayBars(symbol string, start time.Time, closes []string) []types.Candle {
	bars := make([]types.Candle, 0, len(closes))
	day := start
	for _, c := range closes {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		price := decimal.RequireFromString(c)
		bars = append(bars, types.Candle{
			Symbol: symbol,
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: decimal.NewFromInt(1000),
			Date:   day,
		})
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func testConfig(bars []types.Candle) Config {
	cfg := NewConfig("005930", "hold", bars[0].Date, bars[len(bars)-1].Date.AddDate(0, 0, 1), decimal.RequireFromString("10000000"))
	return cfg
}

func newTestBacktester(cfg Config, gen SignalGenerator, bars []types.Candle) *backtester {
	return newBacktester(cfg, market.DefaultConstraints(nil), gen, bars, discardLogger())
}

func TestRunInvalidConfig(t *testing.T) {
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "10000"})
	cfg := testConfig(bars)
	cfg.Symbol = ""

	bt := newTestBacktester(cfg, holdGenerator{}, bars)
	_, err := bt.run(context.Background())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if bt.state != StateFailed {
		t.Errorf("state = %s, want FAILED", bt.state)
	}
}

func TestRunEmptySeries(t *testing.T) {
	cfg := NewConfig("005930", "hold",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("10000000"))

	bt := newTestBacktester(cfg, holdGenerator{}, nil)
	_, err := bt.run(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
	if bt.state != StateFailed {
		t.Errorf("state = %s, want FAILED", bt.state)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "10000"})
	bt := newTestBacktester(testConfig(bars), holdGenerator{}, bars)

	if _, err := bt.run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := bt.run(context.Background()); !errors.Is(err, ErrNotRunnable) {
		t.Fatalf("second run err = %v, want ErrNotRunnable", err)
	}
}

func TestRunCancellation(t *testing.T) {
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "10000", "10000"})
	bt := newTestBacktester(testConfig(bars), enterOnceGenerator{}, bars)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := bt.run(ctx)
	if err != nil {
		t.Fatalf("cancelled run must not error, got %v", err)
	}
	if res.Status != types.RunCancelled {
		t.Errorf("status = %s, want CANCELLED", res.Status)
	}
	if bt.state != StateCancelled {
		t.Errorf("state = %s, want CANCELLED", bt.state)
	}
	if len(res.Trades) != 0 || len(res.EquityCurve) != 0 {
		t.Errorf("cancellation before day 1 must yield an empty partial result, got %d trades, %d equity points",
			len(res.Trades), len(res.EquityCurve))
	}
}

func TestRunSkipsClosedAndGapDays(t *testing.T) {
	// Tue Jan 2 .. Mon Jan 8 2024, with the Thursday bar missing. The span
	// contains 5 weekdays and the New Year holiday is outside it.
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := weekdayBars("005930", start, []string{"10000", "10000", "10000", "10000", "10000"})
	gapped := append(append([]types.Candle(nil), bars[:2]...), bars[3:]...)

	cfg := testConfig(bars)
	cfg.End = bars[len(bars)-1].Date
	bt := newTestBacktester(cfg, holdGenerator{}, gapped)

	res, err := bt.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != types.RunCompleted {
		t.Errorf("status = %s, want COMPLETED", res.Status)
	}
	if len(res.EquityCurve) != 4 {
		t.Errorf("equity points = %d, want 4 (one gap day skipped)", len(res.EquityCurve))
	}
	if bt.gapDays != 1 {
		t.Errorf("gap days = %d, want 1", bt.gapDays)
	}
	for _, point := range res.EquityCurve {
		wd := point.Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Errorf("equity point on a weekend: %s", point.Date)
		}
	}
}

func TestRunClampsExecutionPrice(t *testing.T) {
	// Day 2 closes +40%, beyond the 30% band. The fill must happen at the
	// upper limit while mark-to-market uses the raw close.
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "14000"})
	cfg := testConfig(bars)
	cfg.BasePositionFraction = decimal.RequireFromString("0.1")

	gen := scriptedBuy{onIdx: 1}
	bt := newTestBacktester(cfg, gen, bars)

	res, err := bt.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	if !res.Trades[0].Price.Equal(decimal.RequireFromString("13000")) {
		t.Errorf("fill price = %s, want 13000 (clamped to +30%%)", res.Trades[0].Price)
	}
	last := res.EquityCurve[len(res.EquityCurve)-1]
	wantPos := decimal.RequireFromString("14000").Mul(res.Trades[0].Quantity)
	if !last.PositionsValue.Equal(wantPos) {
		t.Errorf("marked positions value = %s, want %s (raw close)", last.PositionsValue, wantPos)
	}
}

// scriptedBuy emits a buy on exactly one bar index.
type scriptedBuy struct{ onIdx int }

func (scriptedBuy) Name() string { return "scripted" }
func (s scriptedBuy) ComputeSignal(history []types.Candle, _ *PositionContext) types.Signal {
	if len(history)-1 == s.onIdx {
		return types.BuySignal("scripted")
	}
	return types.Signal{}
}

func TestSizeBuy(t *testing.T) {
	tests := []struct {
		name         string
		cash         string
		fraction     string
		maxPositions int
		open         int
		price        string
		want         string
	}{
		{"fraction caps the target", "10000000", "0.1", 1, 0, "100000", "10"},
		{"slot split caps the target", "10000000", "0.8", 2, 0, "100000", "50"},
		{"last slot gets the fraction", "10000000", "0.5", 2, 1, "100000", "50"},
		{"fractional shares floored", "1000000", "0.3", 1, 0, "70000", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000"})
			cfg := testConfig(bars)
			cfg.MaxPositions = tt.maxPositions
			cfg.BasePositionFraction = decimal.RequireFromString(tt.fraction)

			bt := newTestBacktester(cfg, holdGenerator{}, bars)
			bt.portfolio.cash = decimal.RequireFromString(tt.cash)
			for i := 0; i < tt.open; i++ {
				openPosition(bt.portfolio, string(rune('A'+i)), "1", "1000")
			}

			got := bt.sizeBuy(decimal.RequireFromString(tt.price))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("sizeBuy = %s, want %s", got, tt.want)
			}
		})
	}
}

// mockStore implements dataStore for Engine tests.
type mockStore struct {
	asset    *types.Asset
	assetErr error
	bars     []types.Candle
	barsErr  error
}

func (m *mockStore) GetAssetBySymbol(context.Context, string) (*types.Asset, error) {
	return m.asset, m.assetErr
}

func (m *mockStore) GetDailyBars(context.Context, int, string, time.Time, time.Time) ([]types.Candle, error) {
	return m.bars, m.barsErr
}

func TestEngineRunDataErrors(t *testing.T) {
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "10000"})
	cfg := testConfig(bars)

	tests := []struct {
		name    string
		store   *mockStore
		wantErr error
	}{
		{
			name:    "unknown asset",
			store:   &mockStore{assetErr: repository.ErrAssetNotFound},
			wantErr: ErrDataUnavailable,
		},
		{
			name:    "no bars in range",
			store:   &mockStore{asset: &types.Asset{Id: 1, Symbol: "005930"}, barsErr: repository.ErrNoBars},
			wantErr: ErrDataUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(tt.store, market.DefaultConstraints(nil), discardLogger())
			_, err := eng.Run(context.Background(), cfg, holdGenerator{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineRunHappyPath(t *testing.T) {
	bars := weekdayBars("005930", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []string{"10000", "10000", "10000"})
	store := &mockStore{asset: &types.Asset{Id: 1, Symbol: "005930"}, bars: bars}

	eng := NewEngine(store, market.DefaultConstraints(nil), discardLogger())
	res, err := eng.Run(context.Background(), testConfig(bars), holdGenerator{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != types.RunCompleted {
		t.Errorf("status = %s, want COMPLETED", res.Status)
	}
	if res.RunID == "" {
		t.Error("run id must be set")
	}
	if len(res.EquityCurve) != 3 {
		t.Errorf("equity points = %d, want 3", len(res.EquityCurve))
	}
}
