package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/model"
	"github.com/yourorg/inventory-dashboard/internal/store"
)

// inventoryAPI is the slice of the REST surface this service needs
type inventoryAPI interface {
	LowStock(ctx context.Context) ([]model.LowStockItem, error)
	UpdateThreshold(ctx context.Context, id string, threshold int) (*model.LowStockItem, error)
}

// InventoryService coordinates the inventory REST API with the
// reconciliation store's low-stock collection.
type InventoryService struct {
	api    inventoryAPI
	store  *store.Store
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(api inventoryAPI, st *store.Store, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		api:    api,
		store:  st,
		logger: logger,
	}
}

// Refresh replaces the store's low-stock collection from a full fetch.
// Items missing from the fetch disappear; the notification collection
// and unread count are not touched.
func (s *InventoryService) Refresh(ctx context.Context) error {
	items, err := s.api.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch low-stock items: %w", err)
	}
	s.store.ReplaceLowStock(items)
	s.logger.Debug("low-stock items refreshed", zap.Int("count", len(items)))
	return nil
}

// UpdateThreshold changes an item's trigger point on the server and
// reconciles the store with the returned item: still-low items are
// upserted, items the new threshold lifted out of low stock are
// removed.
func (s *InventoryService) UpdateThreshold(ctx context.Context, id string, threshold int) (*model.LowStockItem, error) {
	item, err := s.api.UpdateThreshold(ctx, id, threshold)
	if err != nil {
		return nil, err
	}

	if item.Quantity < item.Threshold {
		s.store.UpsertLowStockItem(*item)
	} else {
		s.store.RemoveLowStockItem(item.ID)
	}
	return item, nil
}

// Snapshot returns the current low-stock read model
func (s *InventoryService) Snapshot() model.LowStockSnapshot {
	return s.store.LowStockSnapshot()
}
