package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a discrete lot of stock with its own acquisition cost and date.
// Batches shrink (or disappear) as sales consume them oldest-first; they are
// never re-ordered in place, only filtered and mutated by count.
type Batch struct {
	BatchID      string          `json:"batchID"`
	Count        int64           `json:"count"`        // remaining units
	InitialCount int64           `json:"initialCount"` // units originally added
	Cost         decimal.Decimal `json:"cost"`         // unit acquisition cost
	Date         time.Time       `json:"date"`         // acquisition timestamp
}

// InventoryItem tracks on-hand stock for one brand.
// Invariant: Count == sum of Batches[i].Count at every committed state.
// Batches carry no ordering guarantee in storage; FIFO consumption re-sorts by
// acquisition date before matching.
type InventoryItem struct {
	Brand       string    `json:"brand"`
	Count       int64     `json:"count"`
	Batches     []Batch   `json:"batches"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TotalBatchCount sums the remaining units across all batches.
func (i InventoryItem) TotalBatchCount() int64 {
	var total int64
	for _, b := range i.Batches {
		total += b.Count
	}
	return total
}

// Brand is a catalog entry for a sellable product. DefaultCost is the unit cost
// assumed for inventory that predates batch tracking.
type Brand struct {
	Name        string          `json:"name"`
	DefaultCost decimal.Decimal `json:"defaultCost"`
	AuditFields
}
