// Package fifo implements oldest-stock-first batch allocation for sales.
//
// Allocate is a pure function: it performs no I/O and is invoked by the
// sale recorder inside a ledger store atomic operation, so it may run more
// than once per logical sale.
package fifo

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
)

// Allocation is the outcome of consuming units from a batch list.
type Allocation struct {
	Consumed  []domain.BatchUsage
	Profit    decimal.Decimal
	Remaining []domain.Batch
}

// Allocate consumes requested units from batches oldest-first and computes the
// gross profit at sellPrice. Ties on acquisition date keep their original
// order. Fully consumed batches are dropped from Remaining; a partially
// consumed batch is kept with its count reduced; batches past the request pass
// through untouched.
//
// An item recorded before batch tracking existed has a non-zero count but no
// batches; the whole request is then treated as one implicit batch priced at
// defaultCost so profit reporting stays meaningful. The returned usage entry
// carries an empty batch id.
//
// Availability is validated by the recorder before allocation; the
// insufficiency guard here is a backstop, not the primary check.
func Allocate(requested int64, batches []domain.Batch, sellPrice, defaultCost decimal.Decimal) (Allocation, error) {
	alloc := Allocation{Profit: decimal.Zero, Remaining: batches}
	if requested == 0 {
		return alloc, nil
	}
	if requested < 0 {
		return Allocation{}, apperrors.ErrValidation
	}

	if len(batches) == 0 {
		alloc.Profit = sellPrice.Sub(defaultCost).Mul(decimal.NewFromInt(requested))
		alloc.Consumed = []domain.BatchUsage{{BatchID: "", Count: requested, Cost: defaultCost}}
		alloc.Remaining = nil
		return alloc, nil
	}

	sorted := make([]domain.Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	remaining := requested
	kept := make([]domain.Batch, 0, len(sorted))
	for _, b := range sorted {
		if remaining == 0 {
			kept = append(kept, b)
			continue
		}
		take := b.Count
		if take > remaining {
			take = remaining
		}
		if take > 0 {
			alloc.Consumed = append(alloc.Consumed, domain.BatchUsage{
				BatchID: b.BatchID,
				Count:   take,
				Cost:    b.Cost,
			})
			alloc.Profit = alloc.Profit.Add(sellPrice.Sub(b.Cost).Mul(decimal.NewFromInt(take)))
			remaining -= take
		}
		if b.Count > take {
			b.Count -= take
			kept = append(kept, b)
		}
	}

	if remaining > 0 {
		var available int64
		for _, b := range batches {
			available += b.Count
		}
		return Allocation{}, apperrors.NewInsufficientStockError("", available, requested)
	}

	alloc.Remaining = kept
	return alloc, nil
}
