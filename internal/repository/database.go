// Package repository is the pgx-backed market-data collaborator: it resolves
// assets and serves ordered daily bars for the engine to replay.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("asset not found in datasource")
	ErrNoBars        = errors.New("no daily bars found in datasource")
)

type assetRow struct {
	ID         int32
	Symbol     string
	Name       string
	Tier       string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

type barRow struct {
	AssetID int32
	Date    time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  decimal.Decimal
}

type assetQuerier interface {
	AssetBySymbol(ctx context.Context, symbol string) (assetRow, error)
}

type barQuerier interface {
	DailyBars(ctx context.Context, assetID int32, start, end time.Time) ([]barRow, error)
}

// Database holds the connection pool and the query layer.
type Database struct {
	assets assetQuerier
	bars   barQuerier
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	q := &queries{pool: conn}
	return Database{
		assets: q,
		bars:   q,
		conn:   conn,
	}, nil
}

// Close releases the connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
