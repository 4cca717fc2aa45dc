package mapping

import (
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/models"
)

// ToModelInventoryItem converts a domain InventoryItem to a model InventoryItem
func ToModelInventoryItem(d domain.InventoryItem) models.InventoryItem {
	m := models.InventoryItem{
		Brand:       d.Brand,
		Count:       d.Count,
		LastUpdated: d.LastUpdated,
	}
	for _, b := range d.Batches {
		m.Batches = append(m.Batches, models.Batch{
			BatchID:      b.BatchID,
			Count:        b.Count,
			InitialCount: b.InitialCount,
			Cost:         b.Cost,
			Date:         b.Date,
		})
	}
	return m
}

// ToDomainInventoryItem converts a model InventoryItem to a domain InventoryItem
func ToDomainInventoryItem(m models.InventoryItem) domain.InventoryItem {
	d := domain.InventoryItem{
		Brand:       m.Brand,
		Count:       m.Count,
		LastUpdated: m.LastUpdated,
	}
	for _, b := range m.Batches {
		d.Batches = append(d.Batches, domain.Batch{
			BatchID:      b.BatchID,
			Count:        b.Count,
			InitialCount: b.InitialCount,
			Cost:         b.Cost,
			Date:         b.Date,
		})
	}
	return d
}

// ToModelBrand converts a domain Brand to a model Brand
func ToModelBrand(d domain.Brand) models.Brand {
	return models.Brand{
		Name:        d.Name,
		DefaultCost: d.DefaultCost,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBrand converts a model Brand to a domain Brand
func ToDomainBrand(m models.Brand) domain.Brand {
	return domain.Brand{
		Name:        m.Name,
		DefaultCost: m.DefaultCost,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
