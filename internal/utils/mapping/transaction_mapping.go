package mapping

import (
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/models"
)

// ToModelTransaction converts a domain TransactionRecord to a model TransactionRecord
func ToModelTransaction(d domain.TransactionRecord) models.TransactionRecord {
	m := models.TransactionRecord{
		TransactionID: d.TransactionID,
		CustomerID:    d.CustomerID,
		Type:          models.TransactionType(d.Type),
		Amount:        d.Amount,
		Date:          d.Date,
	}
	if d.Sale != nil {
		sale := models.SaleDetails{
			Brand:               d.Sale.Brand,
			Bags:                d.Sale.Bags,
			PricePerBag:         d.Sale.PricePerBag,
			Profit:              d.Sale.Profit,
			IsOpeningBalance:    d.Sale.IsOpeningBalance,
			IsBalanceAdjustment: d.Sale.IsBalanceAdjustment,
		}
		for _, u := range d.Sale.BatchesUsed {
			sale.BatchesUsed = append(sale.BatchesUsed, models.BatchUsage{
				BatchID: u.BatchID,
				Count:   u.Count,
				Cost:    u.Cost,
			})
		}
		m.Sale = &sale
	}
	if d.Payment != nil {
		m.Payment = &models.PaymentDetails{
			Notes:            d.Payment.Notes,
			IsPartialPayment: d.Payment.IsPartialPayment,
			LinkedSaleID:     d.Payment.LinkedSaleID,
		}
	}
	return m
}

// ToDomainTransaction converts a model TransactionRecord to a domain TransactionRecord
func ToDomainTransaction(m models.TransactionRecord) domain.TransactionRecord {
	d := domain.TransactionRecord{
		TransactionID: m.TransactionID,
		CustomerID:    m.CustomerID,
		Type:          domain.TransactionType(m.Type),
		Amount:        m.Amount,
		Date:          m.Date,
	}
	if m.Sale != nil {
		sale := domain.SaleDetails{
			Brand:               m.Sale.Brand,
			Bags:                m.Sale.Bags,
			PricePerBag:         m.Sale.PricePerBag,
			Profit:              m.Sale.Profit,
			IsOpeningBalance:    m.Sale.IsOpeningBalance,
			IsBalanceAdjustment: m.Sale.IsBalanceAdjustment,
		}
		for _, u := range m.Sale.BatchesUsed {
			sale.BatchesUsed = append(sale.BatchesUsed, domain.BatchUsage{
				BatchID: u.BatchID,
				Count:   u.Count,
				Cost:    u.Cost,
			})
		}
		d.Sale = &sale
	}
	if m.Payment != nil {
		d.Payment = &domain.PaymentDetails{
			Notes:            m.Payment.Notes,
			IsPartialPayment: m.Payment.IsPartialPayment,
			LinkedSaleID:     m.Payment.LinkedSaleID,
		}
	}
	return d
}
