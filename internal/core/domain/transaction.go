package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates the two kinds of ledger records.
type TransactionType string

const (
	Sale    TransactionType = "SALE"
	Payment TransactionType = "PAYMENT"
)

// BatchUsage records how many units a sale drew from one batch and at what unit
// cost. The usage trail on a SALE record is the authoritative audit of which
// batches were debited and must sum to the sale's bag count. A usage with an
// empty BatchID denotes units drawn from the implicit legacy batch of an item
// that predates batch tracking.
type BatchUsage struct {
	BatchID string          `json:"batchID"`
	Count   int64           `json:"count"`
	Cost    decimal.Decimal `json:"cost"`
}

// SaleDetails is the payload of a SALE record.
type SaleDetails struct {
	Brand               string          `json:"brand"`
	Bags                int64           `json:"bags"`
	PricePerBag         decimal.Decimal `json:"pricePerBag"`
	Profit              decimal.Decimal `json:"profit"`
	BatchesUsed         []BatchUsage    `json:"batchesUsed,omitempty"`
	IsOpeningBalance    bool            `json:"isOpeningBalance,omitempty"`
	IsBalanceAdjustment bool            `json:"isBalanceAdjustment,omitempty"`
}

// PaymentDetails is the payload of a PAYMENT record.
type PaymentDetails struct {
	Notes string `json:"notes,omitempty"`
	// IsPartialPayment marks the auto-generated record created when a sale is
	// taken with cash down. LinkedSaleID points at the sale it accompanied.
	IsPartialPayment bool   `json:"isPartialPayment,omitempty"`
	LinkedSaleID     string `json:"linkedSaleID,omitempty"`
}

// TransactionRecord is one committed ledger entry. Records are immutable once
// written; the only permitted mutation is full deletion by the reversal engine.
// Exactly one of Sale/Payment is set, selected by Type.
type TransactionRecord struct {
	TransactionID string          `json:"transactionID"`
	CustomerID    string          `json:"customerID"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // always positive
	Date          time.Time       `json:"date"`
	Sale          *SaleDetails    `json:"sale,omitempty"`
	Payment       *PaymentDetails `json:"payment,omitempty"`
}

// SignedAmount returns the record's effect on the customer balance: positive
// for sales (debt grows), negative for payments.
func (t TransactionRecord) SignedAmount() decimal.Decimal {
	if t.Type == Payment {
		return t.Amount.Neg()
	}
	return t.Amount
}
