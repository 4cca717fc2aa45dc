package domain

import (
	"github.com/shopspring/decimal"
)

// Customer represents a shop customer and their running khata balance.
// Balance is a derived-but-stored total: it must always equal the sum of SALE
// amounts minus the sum of PAYMENT amounts recorded against this customer
// (opening-balance and adjustment pseudo-sales included). It is mutated only
// inside ledger store atomic operations, never directly by callers.
type Customer struct {
	CustomerID string          `json:"customerID"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Balance    decimal.Decimal `json:"balance"` // positive = customer owes the shop
	AuditFields
}
