package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/core/fifo"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/middleware"
	"github.com/shopkhata/shopkhata_backend/internal/platform/notify"
)

// LedgerService records sales and payments against customers and reverses
// previously recorded transactions. Every mutation runs inside a single
// store atomic operation so balances, inventory and records never drift.
type LedgerService struct {
	ledger   portsrepo.LedgerStore
	brands   portsrepo.BrandReader
	notifier notify.Notifier
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledger portsrepo.LedgerStore, brands portsrepo.BrandReader, notifier notify.Notifier) *LedgerService {
	return &LedgerService{ledger: ledger, brands: brands, notifier: notifier}
}

// RecordSale debits inventory oldest-batch-first, grows the customer's
// balance by bags x price and writes the SALE record. When the request
// carries cash down, a linked partial PAYMENT is written in the same
// atomic operation. Either everything commits or nothing does.
func (s *LedgerService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Bags <= 0 {
		return nil, nil, fmt.Errorf("bags must be positive: %w", apperrors.ErrValidation)
	}
	if !req.PricePerBag.IsPositive() {
		return nil, nil, fmt.Errorf("price per bag must be positive: %w", apperrors.ErrValidation)
	}
	if req.PaidNow.IsNegative() {
		return nil, nil, fmt.Errorf("paid now cannot be negative: %w", apperrors.ErrValidation)
	}

	// The implicit-batch cost for items that predate batch tracking comes
	// from the brand catalog. An uncataloged brand falls back to zero cost.
	defaultCost := decimal.Zero
	if brand, err := s.brands.FindBrandByName(ctx, req.Brand); err == nil {
		defaultCost = brand.DefaultCost
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, err
	}

	// IDs and timestamps are fixed before the atomic operation so a
	// store-level retry replays the identical write set.
	now := time.Now()
	saleID := uuid.NewString()
	paymentID := uuid.NewString()
	amount := req.PricePerBag.Mul(decimal.NewFromInt(req.Bags))

	var sale domain.TransactionRecord
	var partial *domain.TransactionRecord

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		partial = nil

		customer, err := op.FindCustomerByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("customer %s: %w", req.CustomerID, apperrors.ErrCustomerNotFound)
			}
			return err
		}

		item, err := op.FindInventoryItemByBrand(ctx, req.Brand)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("brand %s: %w", req.Brand, apperrors.ErrOutOfStock)
			}
			return err
		}
		// A sold-out entry still exists, so it reports a shortfall rather
		// than ErrOutOfStock, which is reserved for brands never stocked.
		if item.Count < req.Bags {
			return apperrors.NewInsufficientStockError(req.Brand, item.Count, req.Bags)
		}

		alloc, err := fifo.Allocate(req.Bags, item.Batches, req.PricePerBag, defaultCost)
		if err != nil {
			return err
		}

		sale = domain.TransactionRecord{
			TransactionID: saleID,
			CustomerID:    req.CustomerID,
			Type:          domain.Sale,
			Amount:        amount,
			Date:          now,
			Sale: &domain.SaleDetails{
				Brand:       req.Brand,
				Bags:        req.Bags,
				PricePerBag: req.PricePerBag,
				Profit:      alloc.Profit,
				BatchesUsed: alloc.Consumed,
			},
		}
		if err := op.SaveTransaction(ctx, sale); err != nil {
			return err
		}

		customer.Balance = customer.Balance.Add(amount)
		if req.PaidNow.IsPositive() {
			payment := domain.TransactionRecord{
				TransactionID: paymentID,
				CustomerID:    req.CustomerID,
				Type:          domain.Payment,
				Amount:        req.PaidNow,
				Date:          now,
				Payment: &domain.PaymentDetails{
					Notes:            req.Notes,
					IsPartialPayment: true,
					LinkedSaleID:     saleID,
				},
			}
			if err := op.SaveTransaction(ctx, payment); err != nil {
				return err
			}
			customer.Balance = customer.Balance.Sub(req.PaidNow)
			partial = &payment
		}
		customer.LastUpdatedAt = now
		if err := op.SaveCustomer(ctx, *customer); err != nil {
			return err
		}

		item.Count -= req.Bags
		item.Batches = alloc.Remaining
		item.LastUpdated = now
		return op.SaveInventoryItem(ctx, *item)
	})
	if err != nil {
		logger.Error("Failed to record sale", slog.String("error", err.Error()), slog.String("customer_id", req.CustomerID), slog.String("brand", req.Brand))
		return nil, nil, err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindTransaction, Key: saleID, Action: "created"})
	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: req.CustomerID, Action: "updated"})
	s.publish(ctx, notify.Event{Kind: notify.KindInventory, Key: req.Brand, Action: "updated"})
	logger.Info("Sale recorded", slog.String("transaction_id", saleID), slog.String("customer_id", req.CustomerID), slog.Int64("bags", req.Bags))
	return &sale, partial, nil
}

// RecordPayment shrinks the customer's balance and writes the PAYMENT
// record. A payment above the current balance is accepted and leaves the
// customer in credit.
func (s *LedgerService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	paymentID := uuid.NewString()

	payment := domain.TransactionRecord{
		TransactionID: paymentID,
		CustomerID:    req.CustomerID,
		Type:          domain.Payment,
		Amount:        req.Amount,
		Date:          now,
		Payment:       &domain.PaymentDetails{Notes: req.Notes},
	}

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		customer, err := op.FindCustomerByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("customer %s: %w", req.CustomerID, apperrors.ErrCustomerNotFound)
			}
			return err
		}
		if err := op.SaveTransaction(ctx, payment); err != nil {
			return err
		}
		customer.Balance = customer.Balance.Sub(req.Amount)
		customer.LastUpdatedAt = now
		return op.SaveCustomer(ctx, *customer)
	})
	if err != nil {
		logger.Error("Failed to record payment", slog.String("error", err.Error()), slog.String("customer_id", req.CustomerID))
		return nil, err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindTransaction, Key: paymentID, Action: "created"})
	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: req.CustomerID, Action: "updated"})
	logger.Info("Payment recorded", slog.String("transaction_id", paymentID), slog.String("customer_id", req.CustomerID))
	return &payment, nil
}

// RecordAdjustment grows the customer's balance by a manual correction,
// stored as a SALE flagged as a balance adjustment with no inventory
// movement.
func (s *LedgerService) RecordAdjustment(ctx context.Context, req dto.RecordAdjustmentRequest) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("adjustment amount must be positive: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	adjustmentID := uuid.NewString()

	adjustment := domain.TransactionRecord{
		TransactionID: adjustmentID,
		CustomerID:    req.CustomerID,
		Type:          domain.Sale,
		Amount:        req.Amount,
		Date:          now,
		Sale: &domain.SaleDetails{
			PricePerBag:         decimal.Zero,
			Profit:              decimal.Zero,
			IsBalanceAdjustment: true,
		},
	}

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		customer, err := op.FindCustomerByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("customer %s: %w", req.CustomerID, apperrors.ErrCustomerNotFound)
			}
			return err
		}
		if err := op.SaveTransaction(ctx, adjustment); err != nil {
			return err
		}
		customer.Balance = customer.Balance.Add(req.Amount)
		customer.LastUpdatedAt = now
		return op.SaveCustomer(ctx, *customer)
	})
	if err != nil {
		logger.Error("Failed to record adjustment", slog.String("error", err.Error()), slog.String("customer_id", req.CustomerID))
		return nil, err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindTransaction, Key: adjustmentID, Action: "created"})
	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: req.CustomerID, Action: "updated"})
	logger.Info("Adjustment recorded", slog.String("transaction_id", adjustmentID), slog.String("customer_id", req.CustomerID))
	return &adjustment, nil
}

// ReverseTransaction undoes a transaction: the customer's balance moves
// back by the record's signed amount, inventory consumed by a sale is
// restored and the record is deleted. Reversing a record of a deleted
// customer still restores inventory and deletes the record. A linked
// partial payment is left in place; it must be reversed on its own.
func (s *LedgerService) ReverseTransaction(ctx context.Context, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var customerID, restoredBrand string
	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		restoredBrand = ""

		// All reads complete before the first write: the store may replay
		// the whole callback on a conflicting commit.
		record, err := op.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if record.CustomerID == "" {
			return fmt.Errorf("transaction %s has no customer id: %w", transactionID, apperrors.ErrMalformedRecord)
		}
		if record.Type == domain.Sale && record.Sale == nil {
			return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrMalformedRecord)
		}
		if record.Type == domain.Payment && record.Payment == nil {
			return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrMalformedRecord)
		}
		customerID = record.CustomerID

		customer, err := op.FindCustomerByID(ctx, record.CustomerID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		// Customer already deleted: skip the balance step, still restore
		// stock and drop the record.

		restoresStock := record.Type == domain.Sale && record.Sale.Bags > 0 &&
			!record.Sale.IsOpeningBalance && !record.Sale.IsBalanceAdjustment
		var item *domain.InventoryItem
		if restoresStock {
			item, err = op.FindInventoryItemByBrand(ctx, record.Sale.Brand)
			if err != nil {
				if !errors.Is(err, apperrors.ErrNotFound) {
					return err
				}
				// The brand's stock entry was deleted after the sale; recreate it.
				item = &domain.InventoryItem{Brand: record.Sale.Brand}
			}
			if err := restoreInventory(item, record); err != nil {
				return err
			}
		}

		if customer != nil {
			customer.Balance = customer.Balance.Sub(record.SignedAmount())
			customer.LastUpdatedAt = time.Now()
			if err := op.SaveCustomer(ctx, *customer); err != nil {
				return err
			}
		}
		if restoresStock {
			if err := op.SaveInventoryItem(ctx, *item); err != nil {
				return err
			}
			restoredBrand = record.Sale.Brand
		}

		return op.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		logger.Error("Failed to reverse transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindTransaction, Key: transactionID, Action: "deleted"})
	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: customerID, Action: "updated"})
	if restoredBrand != "" {
		s.publish(ctx, notify.Event{Kind: notify.KindInventory, Key: restoredBrand, Action: "updated"})
	}
	logger.Info("Transaction reversed", slog.String("transaction_id", transactionID))
	return nil
}

// restoreInventory puts a reversed sale's units back into stock. Each usage
// goes to the batch it came from when that batch still exists, otherwise to
// any batch carrying the same unit cost, otherwise into a synthesized batch
// dated at reversal time. It only mutates the already-read item; staging the
// write is the caller's job.
func restoreInventory(item *domain.InventoryItem, record *domain.TransactionRecord) error {
	sale := record.Sale
	now := time.Now()

	if len(sale.BatchesUsed) == 0 {
		// Records from before usage tracking carry no trail: put the full
		// bag count into the most-recently-dated batch, or synthesize one
		// with the unit cost derived from price and profit.
		restoreWithoutTrail(item, sale, now)
		item.Count += sale.Bags
	} else {
		for _, usage := range sale.BatchesUsed {
			if usage.Count <= 0 {
				return fmt.Errorf("transaction %s has a non-positive batch usage: %w", record.TransactionID, apperrors.ErrMalformedRecord)
			}
			restoreUsage(item, usage, now)
			item.Count += usage.Count
		}
	}

	item.LastUpdated = now
	return nil
}

func restoreWithoutTrail(item *domain.InventoryItem, sale *domain.SaleDetails, now time.Time) {
	if len(item.Batches) > 0 {
		newest := 0
		for i := range item.Batches {
			if item.Batches[i].Date.After(item.Batches[newest].Date) {
				newest = i
			}
		}
		item.Batches[newest].Count += sale.Bags
		return
	}
	if item.Count > 0 {
		// A still-untracked item keeps its implicit batch implicit.
		return
	}
	unitCost := sale.PricePerBag.Sub(sale.Profit.Div(decimal.NewFromInt(sale.Bags)))
	item.Batches = append(item.Batches, domain.Batch{
		BatchID:      uuid.NewString(),
		Count:        sale.Bags,
		InitialCount: sale.Bags,
		Cost:         unitCost,
		Date:         now,
	})
}

func restoreUsage(item *domain.InventoryItem, usage domain.BatchUsage, now time.Time) {
	// Units drawn from the implicit legacy batch of an untracked item go
	// back as a plain count bump as long as the item is still untracked.
	if usage.BatchID == "" && len(item.Batches) == 0 && item.Count > 0 {
		return
	}

	if usage.BatchID != "" {
		for i := range item.Batches {
			if item.Batches[i].BatchID == usage.BatchID {
				item.Batches[i].Count += usage.Count
				return
			}
		}
	}

	for i := range item.Batches {
		if item.Batches[i].Cost.Equal(usage.Cost) {
			item.Batches[i].Count += usage.Count
			return
		}
	}

	item.Batches = append(item.Batches, domain.Batch{
		BatchID:      uuid.NewString(),
		Count:        usage.Count,
		InitialCount: usage.Count,
		Cost:         usage.Cost,
		Date:         now,
	})
}

// GetTransactionByID retrieves a single transaction record.
func (s *LedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	record, err := s.ledger.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return record, nil
}

// ListTransactionsByCustomer retrieves a customer's records, newest first.
func (s *LedgerService) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	if _, err := s.ledger.FindCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("customer %s: %w", customerID, apperrors.ErrCustomerNotFound)
		}
		return nil, err
	}
	records, err := s.ledger.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("customer_id", customerID))
		return nil, err
	}
	return records, nil
}

func (s *LedgerService) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish change event", slog.String("error", err.Error()))
	}
}
