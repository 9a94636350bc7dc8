package types

import (
	"time"
)

// Asset is a listed instrument as known to the market-data source.
type Asset struct {
	Id         int       `json:"id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Tier       Tier      `json:"tier"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
