package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"krxbacktest/types"
)

// GetAssetBySymbol retrieves a types.Asset by its exchange symbol.
func (db *Database) GetAssetBySymbol(ctx context.Context, symbol string) (*types.Asset, error) {
	row, err := db.assets.AssetBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symbol %s: %w", symbol, ErrAssetNotFound)
		}
		return nil, err
	}
	return &types.Asset{
		Id:         int(row.ID),
		Symbol:     row.Symbol,
		Name:       row.Name,
		Tier:       types.Tier(row.Tier),
		CreatedAt:  derefTime(row.CreatedAt),
		ModifiedAt: derefTime(row.ModifiedAt),
	}, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
