package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
)

// RecordSaleRequest defines the data needed to record a sale.
// PaidNow, when positive, additionally records a partial PAYMENT
// in the same atomic operation.
type RecordSaleRequest struct {
	CustomerID  string          `json:"customerID" binding:"required"`
	Brand       string          `json:"brand" binding:"required"`
	Bags        int64           `json:"bags" binding:"required,gt=0"`
	PricePerBag decimal.Decimal `json:"pricePerBag"`
	PaidNow     decimal.Decimal `json:"paidNow"`
	Notes       string          `json:"notes"`
}

// RecordPaymentRequest defines the data needed to record a payment.
type RecordPaymentRequest struct {
	CustomerID string          `json:"customerID" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
}

// RecordAdjustmentRequest defines a manual balance adjustment. It is
// persisted as a flagged SALE record with no inventory movement.
type RecordAdjustmentRequest struct {
	CustomerID string          `json:"customerID" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

// BatchUsageResponse describes one batch consumed by a sale.
type BatchUsageResponse struct {
	BatchID string          `json:"batchID,omitempty"`
	Count   int64           `json:"count"`
	Cost    decimal.Decimal `json:"cost"`
}

// SaleDetailsResponse carries the sale-specific payload of a transaction.
type SaleDetailsResponse struct {
	Brand               string               `json:"brand"`
	Bags                int64                `json:"bags"`
	PricePerBag         decimal.Decimal      `json:"pricePerBag"`
	Profit              decimal.Decimal      `json:"profit"`
	BatchesUsed         []BatchUsageResponse `json:"batchesUsed,omitempty"`
	IsOpeningBalance    bool                 `json:"isOpeningBalance,omitempty"`
	IsBalanceAdjustment bool                 `json:"isBalanceAdjustment,omitempty"`
}

// PaymentDetailsResponse carries the payment-specific payload of a transaction.
type PaymentDetailsResponse struct {
	Notes            string `json:"notes,omitempty"`
	IsPartialPayment bool   `json:"isPartialPayment,omitempty"`
	LinkedSaleID     string `json:"linkedSaleID,omitempty"`
}

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID string                  `json:"transactionID"`
	CustomerID    string                  `json:"customerID"`
	Type          string                  `json:"type"`
	Amount        decimal.Decimal         `json:"amount"`
	Date          time.Time               `json:"date"`
	Sale          *SaleDetailsResponse    `json:"sale,omitempty"`
	Payment       *PaymentDetailsResponse `json:"payment,omitempty"`
}

// RecordSaleResponse bundles the sale record with the partial payment
// record created alongside it, if any.
type RecordSaleResponse struct {
	Sale           TransactionResponse  `json:"sale"`
	PartialPayment *TransactionResponse `json:"partialPayment,omitempty"`
}

// ToTransactionResponse converts a domain.TransactionRecord to TransactionResponse.
func ToTransactionResponse(t *domain.TransactionRecord) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: t.TransactionID,
		CustomerID:    t.CustomerID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Date:          t.Date,
	}
	if t.Sale != nil {
		sale := SaleDetailsResponse{
			Brand:               t.Sale.Brand,
			Bags:                t.Sale.Bags,
			PricePerBag:         t.Sale.PricePerBag,
			Profit:              t.Sale.Profit,
			IsOpeningBalance:    t.Sale.IsOpeningBalance,
			IsBalanceAdjustment: t.Sale.IsBalanceAdjustment,
		}
		for _, u := range t.Sale.BatchesUsed {
			sale.BatchesUsed = append(sale.BatchesUsed, BatchUsageResponse{
				BatchID: u.BatchID,
				Count:   u.Count,
				Cost:    u.Cost,
			})
		}
		resp.Sale = &sale
	}
	if t.Payment != nil {
		resp.Payment = &PaymentDetailsResponse{
			Notes:            t.Payment.Notes,
			IsPartialPayment: t.Payment.IsPartialPayment,
			LinkedSaleID:     t.Payment.LinkedSaleID,
		}
	}
	return resp
}

// ToTransactionResponses converts a slice of domain.TransactionRecord to
// []TransactionResponse.
func ToTransactionResponses(records []domain.TransactionRecord) []TransactionResponse {
	responses := make([]TransactionResponse, len(records))
	for i := range records {
		responses[i] = ToTransactionResponse(&records[i])
	}
	return responses
}
