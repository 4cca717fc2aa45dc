package models

import (
	"github.com/shopspring/decimal"
)

// Customer represents a customer row in the database.
// Balance is stored denormalized; it always equals the sum of the
// customer's transaction records.
type Customer struct {
	CustomerID string          `db:"customer_id"`
	Name       string          `db:"name"`
	Phone      string          `db:"phone"`
	Balance    decimal.Decimal `db:"balance"`
	AuditFields
}
