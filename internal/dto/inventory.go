package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
)

// AddStockRequest defines the data needed to add purchased stock.
// Each call opens a new cost batch for the brand.
type AddStockRequest struct {
	Brand      string          `json:"brand" binding:"required"`
	Bags       int64           `json:"bags" binding:"required,gt=0"`
	CostPerBag decimal.Decimal `json:"costPerBag"`
}

// BatchResponse defines the data returned for a cost batch.
type BatchResponse struct {
	BatchID      string          `json:"batchID"`
	Count        int64           `json:"count"`
	InitialCount int64           `json:"initialCount"`
	Cost         decimal.Decimal `json:"cost"`
	Date         time.Time       `json:"date"`
}

// InventoryItemResponse defines the data returned for a brand's stock.
type InventoryItemResponse struct {
	Brand       string          `json:"brand"`
	Count       int64           `json:"count"`
	Batches     []BatchResponse `json:"batches"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// BrandResponse defines the data returned for a catalog brand.
type BrandResponse struct {
	Name        string          `json:"name"`
	DefaultCost decimal.Decimal `json:"defaultCost"`
}

// ToInventoryItemResponse converts a domain.InventoryItem to InventoryItemResponse.
func ToInventoryItemResponse(item *domain.InventoryItem) InventoryItemResponse {
	resp := InventoryItemResponse{
		Brand:       item.Brand,
		Count:       item.Count,
		LastUpdated: item.LastUpdated,
	}
	for _, b := range item.Batches {
		resp.Batches = append(resp.Batches, BatchResponse{
			BatchID:      b.BatchID,
			Count:        b.Count,
			InitialCount: b.InitialCount,
			Cost:         b.Cost,
			Date:         b.Date,
		})
	}
	return resp
}

// ToInventoryItemResponses converts a slice of domain.InventoryItem to
// []InventoryItemResponse.
func ToInventoryItemResponses(items []domain.InventoryItem) []InventoryItemResponse {
	responses := make([]InventoryItemResponse, len(items))
	for i := range items {
		responses[i] = ToInventoryItemResponse(&items[i])
	}
	return responses
}

// ToBrandResponses converts a slice of domain.Brand to []BrandResponse.
func ToBrandResponses(brands []domain.Brand) []BrandResponse {
	responses := make([]BrandResponse, len(brands))
	for i, b := range brands {
		responses[i] = BrandResponse{Name: b.Name, DefaultCost: b.DefaultCost}
	}
	return responses
}
