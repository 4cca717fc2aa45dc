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
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/middleware"
	"github.com/shopkhata/shopkhata_backend/internal/platform/notify"
)

// CustomerService manages customers and their stored balances.
type CustomerService struct {
	ledger   portsrepo.LedgerStore
	notifier notify.Notifier
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(ledger portsrepo.LedgerStore, notifier notify.Notifier) *CustomerService {
	return &CustomerService{ledger: ledger, notifier: notifier}
}

// CreateCustomer persists a new customer. A positive opening balance is
// recorded as a flagged SALE in the same atomic operation, so the balance
// invariant holds from the first record onward.
func (s *CustomerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*domain.Customer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required: %w", apperrors.ErrValidation)
	}
	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("opening balance cannot be negative: %w", apperrors.ErrValidation)
	}

	// IDs and timestamps are fixed before the atomic operation so a
	// store-level retry replays the identical write set.
	now := time.Now()
	customerID := uuid.NewString()
	openingTxnID := uuid.NewString()

	customer := domain.Customer{
		CustomerID: customerID,
		Name:       req.Name,
		Phone:      req.Phone,
		Balance:    req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		if err := op.SaveCustomer(ctx, customer); err != nil {
			return err
		}
		if req.OpeningBalance.IsZero() {
			return nil
		}
		opening := domain.TransactionRecord{
			TransactionID: openingTxnID,
			CustomerID:    customerID,
			Type:          domain.Sale,
			Amount:        req.OpeningBalance,
			Date:          now,
			Sale: &domain.SaleDetails{
				PricePerBag:      decimal.Zero,
				Profit:           decimal.Zero,
				IsOpeningBalance: true,
			},
		}
		return op.SaveTransaction(ctx, opening)
	})
	if err != nil {
		logger.Error("Failed to create customer", slog.String("error", err.Error()))
		return nil, err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: customerID, Action: "created"})
	logger.Info("Customer created", slog.String("customer_id", customerID))
	return &customer, nil
}

// GetCustomerByID retrieves a customer.
func (s *CustomerService) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.ledger.FindCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("customer %s: %w", customerID, apperrors.ErrCustomerNotFound)
		}
		middleware.GetLoggerFromCtx(ctx).Error("Failed to find customer", slog.String("error", err.Error()), slog.String("customer_id", customerID))
		return nil, err
	}
	return customer, nil
}

// ListCustomers retrieves all customers.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.ledger.ListCustomers(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list customers", slog.String("error", err.Error()))
		return nil, err
	}
	return customers, nil
}

// DeleteCustomer removes a customer. Transaction records are kept so past
// sales can still be reversed to restore inventory.
func (s *CustomerService) DeleteCustomer(ctx context.Context, customerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		return op.DeleteCustomer(ctx, customerID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("customer %s: %w", customerID, apperrors.ErrCustomerNotFound)
		}
		logger.Error("Failed to delete customer", slog.String("error", err.Error()), slog.String("customer_id", customerID))
		return err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindCustomer, Key: customerID, Action: "deleted"})
	logger.Info("Customer deleted", slog.String("customer_id", customerID))
	return nil
}

// publish sends a change event; delivery is best effort and never fails
// the operation that triggered it.
func (s *CustomerService) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish change event", slog.String("error", err.Error()))
	}
}
