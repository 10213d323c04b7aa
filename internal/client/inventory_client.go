package client

import (
	"context"
	"net/http"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// InventoryClient consumes the platform inventory endpoints
type InventoryClient struct {
	rest *REST
}

// NewInventoryClient creates an inventory API client
func NewInventoryClient(rest *REST) *InventoryClient {
	return &InventoryClient{rest: rest}
}

// LowStock retrieves the full current low-stock collection
func (c *InventoryClient) LowStock(ctx context.Context) ([]model.LowStockItem, error) {
	var resp model.LowStockListResponse
	if err := c.rest.do(ctx, http.MethodGet, "/inventory/low-stock", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UpdateThreshold sets an item's low-stock trigger point and returns
// the updated item.
func (c *InventoryClient) UpdateThreshold(ctx context.Context, id string, threshold int) (*model.LowStockItem, error) {
	body := map[string]int{"threshold": threshold}
	var item model.LowStockItem
	if err := c.rest.do(ctx, http.MethodPut, "/inventory/"+id, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
