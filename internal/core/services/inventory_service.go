package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/middleware"
	"github.com/shopkhata/shopkhata_backend/internal/platform/notify"
)

// InventoryService manages per-brand stock and its cost batches.
type InventoryService struct {
	ledger   portsrepo.LedgerStore
	brands   portsrepo.BrandReader
	notifier notify.Notifier
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(ledger portsrepo.LedgerStore, brands portsrepo.BrandReader, notifier notify.Notifier) *InventoryService {
	return &InventoryService{ledger: ledger, brands: brands, notifier: notifier}
}

// AddStock appends a new cost batch to the brand's stock, creating the
// stock entry on first purchase. The brand must exist in the catalog.
func (s *InventoryService) AddStock(ctx context.Context, req dto.AddStockRequest) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Bags <= 0 {
		return nil, fmt.Errorf("bags must be positive: %w", apperrors.ErrValidation)
	}
	if req.CostPerBag.IsNegative() {
		return nil, fmt.Errorf("cost per bag cannot be negative: %w", apperrors.ErrValidation)
	}
	if _, err := s.brands.FindBrandByName(ctx, req.Brand); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("brand %s is not in the catalog: %w", req.Brand, apperrors.ErrValidation)
		}
		return nil, err
	}

	// IDs and timestamps are fixed before the atomic operation so a
	// store-level retry replays the identical write set.
	now := time.Now()
	batchID := uuid.NewString()

	var updated domain.InventoryItem
	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		item, err := op.FindInventoryItemByBrand(ctx, req.Brand)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			item = &domain.InventoryItem{Brand: req.Brand}
		}
		item.Batches = append(item.Batches, domain.Batch{
			BatchID:      batchID,
			Count:        req.Bags,
			InitialCount: req.Bags,
			Cost:         req.CostPerBag,
			Date:         now,
		})
		item.Count += req.Bags
		item.LastUpdated = now
		updated = *item
		return op.SaveInventoryItem(ctx, *item)
	})
	if err != nil {
		logger.Error("Failed to add stock", slog.String("error", err.Error()), slog.String("brand", req.Brand))
		return nil, err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindInventory, Key: req.Brand, Action: "updated"})
	logger.Info("Stock added", slog.String("brand", req.Brand), slog.Int64("bags", req.Bags))
	return &updated, nil
}

// GetItemByBrand retrieves the stock held for a brand.
func (s *InventoryService) GetItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	item, err := s.ledger.FindInventoryItemByBrand(ctx, brand)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find inventory item", slog.String("error", err.Error()), slog.String("brand", brand))
		}
		return nil, err
	}
	return item, nil
}

// ListItems retrieves all stocked brands.
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.ledger.ListInventoryItems(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list inventory items", slog.String("error", err.Error()))
		return nil, err
	}
	return items, nil
}

// ListBrands retrieves the brand catalog.
func (s *InventoryService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.brands.ListBrands(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list brands", slog.String("error", err.Error()))
		return nil, err
	}
	return brands, nil
}

// DeleteItem removes a brand's stock entirely, batches included.
func (s *InventoryService) DeleteItem(ctx context.Context, brand string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.ledger.RunAtomic(ctx, func(ctx context.Context, op portsrepo.AtomicOperation) error {
		return op.DeleteInventoryItem(ctx, brand)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete inventory item", slog.String("error", err.Error()), slog.String("brand", brand))
		}
		return err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindInventory, Key: brand, Action: "deleted"})
	logger.Info("Inventory item deleted", slog.String("brand", brand))
	return nil
}

func (s *InventoryService) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish change event", slog.String("error", err.Error()))
	}
}
