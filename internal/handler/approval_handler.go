package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/approval"
)

// ApprovalHandler exposes the file review workflow. Gated actions that
// arrive while the file is terminal come back as no-ops with the
// current snapshot, mirroring how the dashboard disables those
// controls.
type ApprovalHandler struct {
	controller *approval.Controller
	logger     *zap.Logger
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(controller *approval.Controller, logger *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		controller: controller,
		logger:     logger,
	}
}

// Load fetches a file and its reviewable records
// POST /api/v1/files/:id/load
func (h *ApprovalHandler) Load(c *gin.Context) {
	fileID := c.Param("id")

	if err := h.controller.Load(c.Request.Context(), fileID); err != nil {
		h.logger.Error("Failed to load file for review",
			zap.String("file_id", fileID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load file"})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// GetReview returns the current review snapshot
// GET /api/v1/files/review
func (h *ApprovalHandler) GetReview(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// SelectAll selects every record
// POST /api/v1/files/review/select-all
func (h *ApprovalHandler) SelectAll(c *gin.Context) {
	h.controller.SelectAll()
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// DeselectAll clears the selection
// POST /api/v1/files/review/deselect-all
func (h *ApprovalHandler) DeselectAll(c *gin.Context) {
	h.controller.DeselectAll()
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// ToggleRow flips one record's selection
// POST /api/v1/files/review/rows/:recordID/toggle
func (h *ApprovalHandler) ToggleRow(c *gin.Context) {
	h.controller.ToggleRow(c.Param("recordID"))
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// ApproveRecord approves one record
// POST /api/v1/files/review/rows/:recordID/approve
func (h *ApprovalHandler) ApproveRecord(c *gin.Context) {
	recordID := c.Param("recordID")

	if err := h.controller.ApproveRecord(c.Request.Context(), recordID); err != nil {
		h.logger.Error("Failed to approve record",
			zap.String("record_id", recordID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to approve record"})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// RejectRecord rejects one record
// POST /api/v1/files/review/rows/:recordID/reject
func (h *ApprovalHandler) RejectRecord(c *gin.Context) {
	recordID := c.Param("recordID")

	if err := h.controller.RejectRecord(c.Request.Context(), recordID); err != nil {
		h.logger.Error("Failed to reject record",
			zap.String("record_id", recordID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reject record"})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// ApproveFile performs the bulk approve
// POST /api/v1/files/review/approve
func (h *ApprovalHandler) ApproveFile(c *gin.Context) {
	if err := h.controller.ApproveFile(c.Request.Context()); err != nil {
		h.logger.Error("Failed to approve file", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to approve file"})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// RejectFile performs the bulk reject
// POST /api/v1/files/review/reject
func (h *ApprovalHandler) RejectFile(c *gin.Context) {
	if err := h.controller.RejectFile(c.Request.Context()); err != nil {
		h.logger.Error("Failed to reject file", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reject file"})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}
