package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is the JSON shape of one cost batch inside the batches column.
type Batch struct {
	BatchID      string          `json:"batchID"`
	Count        int64           `json:"count"`
	InitialCount int64           `json:"initialCount"`
	Cost         decimal.Decimal `json:"cost"`
	Date         time.Time       `json:"date"`
}

// InventoryItem represents a brand's stock row. Batches are stored as a
// JSONB array ordered the way they were appended.
type InventoryItem struct {
	Brand       string    `db:"brand"`
	Count       int64     `db:"count"`
	Batches     []Batch   `db:"batches"`
	LastUpdated time.Time `db:"last_updated"`
}

// Brand represents a row of the brand catalog.
type Brand struct {
	Name        string          `db:"name"`
	DefaultCost decimal.Decimal `db:"default_cost"`
	AuditFields
}
