package fifo_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/core/fifo"
)

func testBatch(id string, count int64, cost int64, date time.Time) domain.Batch {
	return domain.Batch{
		BatchID:      id,
		Count:        count,
		InitialCount: count,
		Cost:         decimal.NewFromInt(cost),
		Date:         date,
	}
}

func TestAllocateConsumesOldestFirst(t *testing.T) {
	t1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	batches := []domain.Batch{
		testBatch("b1", 5, 10, t1),
		testBatch("b2", 3, 12, t2),
	}

	alloc, err := fifo.Allocate(7, batches, decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)

	require.Len(t, alloc.Consumed, 2)
	assert.Equal(t, "b1", alloc.Consumed[0].BatchID)
	assert.Equal(t, int64(5), alloc.Consumed[0].Count)
	assert.Equal(t, "b2", alloc.Consumed[1].BatchID)
	assert.Equal(t, int64(2), alloc.Consumed[1].Count)

	// 5*(20-10) + 2*(20-12)
	assert.True(t, alloc.Profit.Equal(decimal.NewFromInt(66)), "profit was %s", alloc.Profit)

	require.Len(t, alloc.Remaining, 1)
	assert.Equal(t, "b2", alloc.Remaining[0].BatchID)
	assert.Equal(t, int64(1), alloc.Remaining[0].Count)
}

func TestAllocateSortsByDateNotStorageOrder(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	batches := []domain.Batch{
		testBatch("newer", 4, 15, t2),
		testBatch("older", 4, 11, t1),
	}

	alloc, err := fifo.Allocate(4, batches, decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)

	require.Len(t, alloc.Consumed, 1)
	assert.Equal(t, "older", alloc.Consumed[0].BatchID)
	require.Len(t, alloc.Remaining, 1)
	assert.Equal(t, "newer", alloc.Remaining[0].BatchID)
}

func TestAllocateStableOnEqualDates(t *testing.T) {
	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	batches := []domain.Batch{
		testBatch("first", 2, 10, d),
		testBatch("second", 2, 12, d),
	}

	alloc, err := fifo.Allocate(3, batches, decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)

	require.Len(t, alloc.Consumed, 2)
	assert.Equal(t, "first", alloc.Consumed[0].BatchID)
	assert.Equal(t, int64(2), alloc.Consumed[0].Count)
	assert.Equal(t, "second", alloc.Consumed[1].BatchID)
	assert.Equal(t, int64(1), alloc.Consumed[1].Count)
}

func TestAllocateZeroRequestIsNoOp(t *testing.T) {
	batches := []domain.Batch{
		testBatch("b1", 5, 10, time.Now().UTC()),
	}

	alloc, err := fifo.Allocate(0, batches, decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)

	assert.Empty(t, alloc.Consumed)
	assert.True(t, alloc.Profit.IsZero())
	assert.Equal(t, batches, alloc.Remaining)
}

func TestAllocateLegacyItemWithoutBatches(t *testing.T) {
	alloc, err := fifo.Allocate(6, nil, decimal.NewFromInt(25), decimal.NewFromInt(18))
	require.NoError(t, err)

	require.Len(t, alloc.Consumed, 1)
	assert.Equal(t, "", alloc.Consumed[0].BatchID)
	assert.Equal(t, int64(6), alloc.Consumed[0].Count)
	assert.True(t, alloc.Consumed[0].Cost.Equal(decimal.NewFromInt(18)))
	// 6*(25-18)
	assert.True(t, alloc.Profit.Equal(decimal.NewFromInt(42)))
	assert.Empty(t, alloc.Remaining)
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	t1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	batches := []domain.Batch{
		testBatch("b1", 5, 10, t1),
		testBatch("b2", 3, 12, t1.Add(time.Hour)),
	}

	_, err := fifo.Allocate(6, batches, decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, int64(5), batches[0].Count)
	assert.Equal(t, int64(3), batches[1].Count)
}

func TestAllocateInsufficientGuard(t *testing.T) {
	batches := []domain.Batch{
		testBatch("b1", 3, 10, time.Now().UTC()),
	}

	_, err := fifo.Allocate(5, batches, decimal.NewFromInt(20), decimal.Zero)
	require.Error(t, err)

	var insufficient *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(5), insufficient.Requested)
}
