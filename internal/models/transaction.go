package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the direction of a ledger transaction.
type TransactionType string

const (
	Sale    TransactionType = "SALE"
	Payment TransactionType = "PAYMENT"
)

// BatchUsage is the JSON shape of one batch consumption inside the
// sale details payload.
type BatchUsage struct {
	BatchID string          `json:"batchID,omitempty"`
	Count   int64           `json:"count"`
	Cost    decimal.Decimal `json:"cost"`
}

// SaleDetails is the JSON payload stored for SALE transactions.
type SaleDetails struct {
	Brand               string          `json:"brand,omitempty"`
	Bags                int64           `json:"bags,omitempty"`
	PricePerBag         decimal.Decimal `json:"pricePerBag"`
	Profit              decimal.Decimal `json:"profit"`
	BatchesUsed         []BatchUsage    `json:"batchesUsed,omitempty"`
	IsOpeningBalance    bool            `json:"isOpeningBalance,omitempty"`
	IsBalanceAdjustment bool            `json:"isBalanceAdjustment,omitempty"`
}

// PaymentDetails is the JSON payload stored for PAYMENT transactions.
type PaymentDetails struct {
	Notes            string `json:"notes,omitempty"`
	IsPartialPayment bool   `json:"isPartialPayment,omitempty"`
	LinkedSaleID     string `json:"linkedSaleID,omitempty"`
}

// TransactionRecord represents a ledger transaction row. The type-specific
// payload lives in a JSONB details column; exactly one of Sale or Payment
// is set, matching the Type column.
type TransactionRecord struct {
	TransactionID string          `db:"transaction_id"`
	CustomerID    string          `db:"customer_id"`
	Type          TransactionType `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	Date          time.Time       `db:"date"`
	Sale          *SaleDetails    `db:"-"`
	Payment       *PaymentDetails `db:"-"`
}
