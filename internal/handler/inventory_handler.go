package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/service"
)

// InventoryHandler serves the low-stock snapshot and threshold edits
type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// GetLowStock returns the low-stock snapshot with the critical/warning
// split
// GET /api/v1/state/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	c.JSON(http.StatusOK, h.inventoryService.Snapshot())
}

// Refresh re-fetches the low-stock collection from the platform
// POST /api/v1/inventory/refresh
func (h *InventoryHandler) Refresh(c *gin.Context) {
	if err := h.inventoryService.Refresh(c.Request.Context()); err != nil {
		h.logger.Error("Failed to refresh low-stock items", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh low-stock items"})
		return
	}
	c.JSON(http.StatusOK, h.inventoryService.Snapshot())
}

// UpdateThreshold changes an item's low-stock trigger point
// PUT /api/v1/inventory/:id/threshold
func (h *InventoryHandler) UpdateThreshold(c *gin.Context) {
	id := c.Param("id")

	var body struct {
		Threshold int `json:"threshold" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
		return
	}

	item, err := h.inventoryService.UpdateThreshold(c.Request.Context(), id, body.Threshold)
	if err != nil {
		h.logger.Error("Failed to update threshold",
			zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update threshold"})
		return
	}
	c.JSON(http.StatusOK, item)
}
