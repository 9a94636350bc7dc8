package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"krxbacktest/types"
)

type stubAssets struct {
	row assetRow
	err error
}

func (s stubAssets) AssetBySymbol(context.Context, string) (assetRow, error) {
	return s.row, s.err
}

type stubBars struct {
	rows []barRow
	err  error
}

func (s stubBars) DailyBars(context.Context, int32, time.Time, time.Time) ([]barRow, error) {
	return s.rows, s.err
}

func TestGetAssetBySymbol(t *testing.T) {
	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		assets    stubAssets
		wantErr   error
		wantAsset *types.Asset
	}{
		{
			name: "found",
			assets: stubAssets{row: assetRow{
				ID: 7, Symbol: "005930", Name: "Samsung Electronics",
				Tier: "EQUITY", CreatedAt: &created,
			}},
			wantAsset: &types.Asset{
				Id: 7, Symbol: "005930", Name: "Samsung Electronics",
				Tier: types.TierEquity, CreatedAt: created,
			},
		},
		{
			name:    "no rows maps to not found",
			assets:  stubAssets{err: pgx.ErrNoRows},
			wantErr: ErrAssetNotFound,
		},
		{
			name:    "other errors pass through",
			assets:  stubAssets{err: errors.New("connection reset")},
			wantErr: nil, // checked separately below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := Database{assets: tt.assets}
			asset, err := db.GetAssetBySymbol(context.Background(), "005930")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantAsset == nil {
				if err == nil {
					t.Fatal("expected error")
				}
				if errors.Is(err, ErrAssetNotFound) {
					t.Fatalf("err = %v must not map to ErrAssetNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *asset != *tt.wantAsset {
				t.Errorf("asset = %+v, want %+v", asset, tt.wantAsset)
			}
		})
	}
}

func TestGetDailyBars(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	row := barRow{
		AssetID: 7,
		Date:    day,
		Open:    decimal.RequireFromString("70000"),
		High:    decimal.RequireFromString("71000"),
		Low:     decimal.RequireFromString("69500"),
		Close:   decimal.RequireFromString("70500"),
		Volume:  decimal.RequireFromString("1234567"),
	}

	t.Run("converts rows", func(t *testing.T) {
		db := Database{bars: stubBars{rows: []barRow{row}}}
		bars, err := db.GetDailyBars(context.Background(), 7, "005930", day, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bars) != 1 {
			t.Fatalf("bars = %d, want 1", len(bars))
		}
		got := bars[0]
		if got.AssetId != 7 || got.Symbol != "005930" || !got.Date.Equal(day) {
			t.Errorf("bar identity = %+v", got)
		}
		if !got.Close.Equal(row.Close) || !got.Volume.Equal(row.Volume) {
			t.Errorf("bar values = %+v, want %+v", got, row)
		}
	})

	t.Run("empty result maps to no bars", func(t *testing.T) {
		db := Database{bars: stubBars{}}
		_, err := db.GetDailyBars(context.Background(), 7, "005930", day, day)
		if !errors.Is(err, ErrNoBars) {
			t.Fatalf("err = %v, want ErrNoBars", err)
		}
	})

	t.Run("no rows maps to no bars", func(t *testing.T) {
		db := Database{bars: stubBars{err: pgx.ErrNoRows}}
		_, err := db.GetDailyBars(context.Background(), 7, "005930", day, day)
		if !errors.Is(err, ErrNoBars) {
			t.Fatalf("err = %v, want ErrNoBars", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		db := Database{bars: stubBars{err: errors.New("query timeout")}}
		_, err := db.GetDailyBars(context.Background(), 7, "005930", day, day)
		if err == nil || errors.Is(err, ErrNoBars) {
			t.Fatalf("err = %v, want the raw query error", err)
		}
	})
}
