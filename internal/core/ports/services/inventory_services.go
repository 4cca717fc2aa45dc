package services

import (
	"context"

	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
)

// InventoryReaderSvc defines read operations for inventory data
type InventoryReaderSvc interface {
	// GetItemByBrand retrieves the stock held for a brand.
	GetItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error)

	// ListItems retrieves all stocked brands.
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)

	// ListBrands retrieves the brand catalog.
	ListBrands(ctx context.Context) ([]domain.Brand, error)
}

// InventoryWriterSvc defines write operations for inventory data
type InventoryWriterSvc interface {
	// AddStock records purchased stock as a new cost batch for the brand.
	AddStock(ctx context.Context, req dto.AddStockRequest) (*domain.InventoryItem, error)

	// DeleteItem removes a brand's stock entirely.
	DeleteItem(ctx context.Context, brand string) error
}

// InventorySvcFacade combines all inventory service capabilities
type InventorySvcFacade interface {
	InventoryReaderSvc
	InventoryWriterSvc
}
