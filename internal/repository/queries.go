package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const assetBySymbolSQL = `
SELECT id, symbol, name, tier, created_at, modified_at
FROM assets
WHERE symbol = $1`

const dailyBarsSQL = `
SELECT asset_id, date, open, high, low, close, volume
FROM daily_bars
WHERE asset_id = $1 AND date >= $2 AND date <= $3
ORDER BY date`

// queries runs the raw SQL against the pool.
type queries struct {
	pool *pgxpool.Pool
}

func (q *queries) AssetBySymbol(ctx context.Context, symbol string) (assetRow, error) {
	var row assetRow
	err := q.pool.QueryRow(ctx, assetBySymbolSQL, symbol).Scan(
		&row.ID, &row.Symbol, &row.Name, &row.Tier, &row.CreatedAt, &row.ModifiedAt,
	)
	return row, err
}

func (q *queries) DailyBars(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error) {
	rows, err := q.pool.Query(ctx, dailyBarsSQL, assetID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []barRow
	for rows.Next() {
		var row barRow
		if err := rows.Scan(&row.AssetID, &row.Date, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
