package model

// LowStockItem represents an inventory record currently below its
// owner-configured threshold. An item is only present in the low-stock
// collection while quantity < threshold.
type LowStockItem struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Threshold int    `json:"threshold" validate:"gte=0"`
}

// Critical reports whether the item is fully depleted.
func (i LowStockItem) Critical() bool {
	return i.Quantity == 0
}

// Warning reports whether the item is low but not depleted.
func (i LowStockItem) Warning() bool {
	return i.Quantity > 0
}

// LowStockListResponse represents the full low-stock fetch payload
type LowStockListResponse struct {
	Items []LowStockItem `json:"items"`
}

// LowStockSnapshot is the store's read model for the low-stock list,
// with the critical/warning split computed at read time.
type LowStockSnapshot struct {
	Items    []LowStockItem `json:"items"`
	Critical []LowStockItem `json:"critical"`
	Warning  []LowStockItem `json:"warning"`
}
