package services

import (
	"context"

	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
)

// LedgerReaderSvc defines read operations for ledger transactions
type LedgerReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction by its unique identifier.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)

	// ListTransactionsByCustomer retrieves a customer's transactions, newest first.
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error)
}

// LedgerWriterSvc defines write operations for ledger transactions
type LedgerWriterSvc interface {
	// RecordSale records a sale against a customer, consuming inventory
	// cost batches oldest-first. A positive PaidNow in the request also
	// records a linked partial PAYMENT in the same atomic operation; the
	// second return value is that payment record, or nil.
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error)

	// RecordPayment records a payment against a customer's balance.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.TransactionRecord, error)

	// RecordAdjustment records a manual balance adjustment as a flagged
	// SALE with no inventory movement.
	RecordAdjustment(ctx context.Context, req dto.RecordAdjustmentRequest) (*domain.TransactionRecord, error)

	// ReverseTransaction undoes a transaction's balance effect, restores
	// any inventory it consumed and deletes its record.
	ReverseTransaction(ctx context.Context, transactionID string) error
}

// LedgerSvcFacade combines all ledger service capabilities
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
