package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	portssvc "github.com/shopkhata/shopkhata_backend/internal/core/ports/services"
	"github.com/shopkhata/shopkhata_backend/internal/core/services"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/platform/notify"
	"github.com/shopkhata/shopkhata_backend/internal/repositories/memory"
)

func newTestContainer(t *testing.T) (*memory.Store, *portssvc.ServiceContainer) {
	t.Helper()
	store := memory.NewStore()
	store.SeedBrand(domain.Brand{Name: "BrandA", DefaultCost: decimal.NewFromInt(18)})
	store.SeedBrand(domain.Brand{Name: "BrandB", DefaultCost: decimal.NewFromInt(11)})
	container := services.NewServiceContainer(
		portsrepo.RepositoryProvider{Ledger: store, Brands: store},
		notify.NewBroadcaster(),
	)
	return store, container
}

func seedCustomer(t *testing.T, c *portssvc.ServiceContainer, name string) string {
	t.Helper()
	customer, err := c.Customer.CreateCustomer(context.Background(), dto.CreateCustomerRequest{Name: name})
	require.NoError(t, err)
	return customer.CustomerID
}

func seedStock(t *testing.T, c *portssvc.ServiceContainer, brand string, bags int64, cost int64) {
	t.Helper()
	_, err := c.Inventory.AddStock(context.Background(), dto.AddStockRequest{
		Brand:      brand,
		Bags:       bags,
		CostPerBag: decimal.NewFromInt(cost),
	})
	require.NoError(t, err)
}

func TestRecordSaleConsumesOldestBatchesFirst(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 5, 10)
	seedStock(t, c, "BrandA", 3, 12)

	sale, partial, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID:  customerID,
		Brand:       "BrandA",
		Bags:        7,
		PricePerBag: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Nil(t, partial)

	// 5 bags at cost 10 and 2 at cost 12: profit 5*10 + 2*8 = 66.
	assert.True(t, sale.Sale.Profit.Equal(decimal.NewFromInt(66)), "profit was %s", sale.Sale.Profit)
	assert.True(t, sale.Amount.Equal(decimal.NewFromInt(140)))
	require.Len(t, sale.Sale.BatchesUsed, 2)
	assert.Equal(t, int64(5), sale.Sale.BatchesUsed[0].Count)
	assert.Equal(t, int64(2), sale.Sale.BatchesUsed[1].Count)

	item, err := c.Inventory.GetItemByBrand(ctx, "BrandA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Count)
	require.Len(t, item.Batches, 1)
	assert.Equal(t, int64(1), item.Batches[0].Count)
	assert.True(t, item.Batches[0].Cost.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, item.Count, item.TotalBatchCount())

	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(140)))
}

func TestRecordSaleWithCashDownCreatesLinkedPayment(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 10, 10)

	sale, partial, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID:  customerID,
		Brand:       "BrandA",
		Bags:        4,
		PricePerBag: decimal.NewFromInt(25),
		PaidNow:     decimal.NewFromInt(60),
		Notes:       "cash down",
	})
	require.NoError(t, err)
	require.NotNil(t, partial)

	assert.Equal(t, domain.Payment, partial.Type)
	assert.True(t, partial.Amount.Equal(decimal.NewFromInt(60)))
	assert.True(t, partial.Payment.IsPartialPayment)
	assert.Equal(t, sale.TransactionID, partial.Payment.LinkedSaleID)
	assert.Equal(t, "cash down", partial.Payment.Notes)

	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(40)))

	records, err := c.Ledger.ListTransactionsByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordSaleOverpaymentLeavesCredit(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 5, 10)

	_, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID:  customerID,
		Brand:       "BrandA",
		Bags:        1,
		PricePerBag: decimal.NewFromInt(20),
		PaidNow:     decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(-30)))
}

func TestRecordSaleValidation(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 5, 10)

	cases := []dto.RecordSaleRequest{
		{CustomerID: customerID, Brand: "BrandA", Bags: 0, PricePerBag: decimal.NewFromInt(20)},
		{CustomerID: customerID, Brand: "BrandA", Bags: -3, PricePerBag: decimal.NewFromInt(20)},
		{CustomerID: customerID, Brand: "BrandA", Bags: 1, PricePerBag: decimal.Zero},
		{CustomerID: customerID, Brand: "BrandA", Bags: 1, PricePerBag: decimal.NewFromInt(20), PaidNow: decimal.NewFromInt(-5)},
	}
	for _, req := range cases {
		_, _, err := c.Ledger.RecordSale(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestRecordSaleStockErrors(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")

	// No stock entry at all.
	_, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 1, PricePerBag: decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)

	// Some stock, but not enough.
	seedStock(t, c, "BrandA", 3, 10)
	_, _, err = c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 7, PricePerBag: decimal.NewFromInt(20),
	})
	var insufficient *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(7), insufficient.Requested)

	// The failed sale must not have touched anything.
	item, err := c.Inventory.GetItemByBrand(ctx, "BrandA")
	require.NoError(t, err)
	assert.Equal(t, int64(3), item.Count)
	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())
	records, err := c.Ledger.ListTransactionsByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordSaleSoldOutItemReportsShortfall(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 2, 10)

	_, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 2, PricePerBag: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	// The entry still exists at count zero: that is a shortfall, not an
	// unknown brand.
	_, _, err = c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 1, PricePerBag: decimal.NewFromInt(20),
	})
	var insufficient *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(0), insufficient.Available)
	assert.Equal(t, int64(1), insufficient.Requested)
	assert.NotErrorIs(t, err, apperrors.ErrOutOfStock)
}

func TestRecordSaleUnknownCustomer(t *testing.T) {
	_, c := newTestContainer(t)
	seedStock(t, c, "BrandA", 5, 10)

	_, _, err := c.Ledger.RecordSale(context.Background(), dto.RecordSaleRequest{
		CustomerID: "missing", Brand: "BrandA", Bags: 1, PricePerBag: decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
}

func TestRecordSaleLegacyItemUsesCatalogCost(t *testing.T) {
	store, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")

	// An item with stock but no batches, as written before batch tracking.
	require.NoError(t, store.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		return op.SaveInventoryItem(ctx, domain.InventoryItem{Brand: "BrandA", Count: 6})
	}))

	sale, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 6, PricePerBag: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	// Catalog default cost for BrandA is 18: profit 6 * (25 - 18) = 42.
	assert.True(t, sale.Sale.Profit.Equal(decimal.NewFromInt(42)), "profit was %s", sale.Sale.Profit)
	require.Len(t, sale.Sale.BatchesUsed, 1)
	assert.Empty(t, sale.Sale.BatchesUsed[0].BatchID)

	item, err := c.Inventory.GetItemByBrand(ctx, "BrandA")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Count)
	assert.Empty(t, item.Batches)
}

func TestRecordPayment(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 5, 10)

	_, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 5, PricePerBag: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	payment, err := c.Ledger.RecordPayment(ctx, dto.RecordPaymentRequest{
		CustomerID: customerID,
		Amount:     decimal.NewFromInt(60),
		Notes:      "weekly collection",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Payment, payment.Type)
	assert.False(t, payment.Payment.IsPartialPayment)

	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(40)))

	_, err = c.Ledger.RecordPayment(ctx, dto.RecordPaymentRequest{CustomerID: customerID, Amount: decimal.Zero})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = c.Ledger.RecordPayment(ctx, dto.RecordPaymentRequest{CustomerID: "missing", Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
}

func TestRecordAdjustment(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")

	adjustment, err := c.Ledger.RecordAdjustment(ctx, dto.RecordAdjustmentRequest{
		CustomerID: customerID,
		Amount:     decimal.NewFromInt(75),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Sale, adjustment.Type)
	require.NotNil(t, adjustment.Sale)
	assert.True(t, adjustment.Sale.IsBalanceAdjustment)
	assert.Equal(t, int64(0), adjustment.Sale.Bags)
	assert.Empty(t, adjustment.Sale.BatchesUsed)

	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(75)))

	_, err = c.Ledger.RecordAdjustment(ctx, dto.RecordAdjustmentRequest{CustomerID: customerID, Amount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBalanceMatchesSignedSumOfRecords(t *testing.T) {
	_, c := newTestContainer(t)
	ctx := context.Background()
	customerID := seedCustomer(t, c, "Rahim")
	seedStock(t, c, "BrandA", 20, 10)

	_, _, err := c.Ledger.RecordSale(ctx, dto.RecordSaleRequest{
		CustomerID: customerID, Brand: "BrandA", Bags: 8, PricePerBag: decimal.NewFromInt(15),
		PaidNow: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, err = c.Ledger.RecordPayment(ctx, dto.RecordPaymentRequest{CustomerID: customerID, Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	_, err = c.Ledger.RecordAdjustment(ctx, dto.RecordAdjustmentRequest{CustomerID: customerID, Amount: decimal.NewFromInt(12)})
	require.NoError(t, err)

	records, err := c.Ledger.ListTransactionsByCustomer(ctx, customerID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.SignedAmount())
	}
	customer, err := c.Customer.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(sum), "balance %s, record sum %s", customer.Balance, sum)
}
