package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"krxbacktest/types"
)

// GetDailyBars returns the ordered-by-date daily series for one asset over
// [start, end]. An empty result means the datasource has nothing for the
// range and maps to ErrNoBars.
func (db *Database) GetDailyBars(ctx context.Context, assetID int, symbol string, start, end time.Time) ([]types.Candle, error) {
	rows, err := db.bars.DailyBars(ctx, int32(assetID), start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoBars
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(rows, symbol), nil
}

func convertBars(rows []barRow, symbol string) []types.Candle {
	var candles []types.Candle
	for _, row := range rows {
		candles = append(candles, types.Candle{
			AssetId: int(row.AssetID),
			Symbol:  symbol,
			Open:    row.Open,
			High:    row.High,
			Low:     row.Low,
			Close:   row.Close,
			Volume:  row.Volume,
			Date:    row.Date,
		})
	}
	return candles
}
