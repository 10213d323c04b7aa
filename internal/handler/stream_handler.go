package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/dispatch"
	"github.com/yourorg/inventory-dashboard/internal/model"
	"github.com/yourorg/inventory-dashboard/internal/transport"
)

// StreamHandler exposes the stream connection status, the event
// simulation path and the fire-and-forget broadcast send.
type StreamHandler struct {
	client     transport.Client
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(client transport.Client, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Status returns the observable connection state
// GET /api/v1/stream/status
func (h *StreamHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.client.State()})
}

// Simulate injects an event through the live dispatch path
// POST /api/v1/simulate
func (h *StreamHandler) Simulate(c *gin.Context) {
	var frame model.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid frame"})
		return
	}
	if frame.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Frame has no event"})
		return
	}

	h.dispatcher.Simulate(frame)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Broadcast emits a client-originated message to other admin sessions.
// Fire and forget: while disconnected the message is dropped.
// POST /api/v1/broadcast
func (h *StreamHandler) Broadcast(c *gin.Context) {
	var body struct {
		Event   string          `json:"event" binding:"required"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid broadcast body"})
		return
	}

	if err := h.client.Send(body.Event, body.Payload); err != nil {
		h.logger.Warn("Broadcast send failed",
			zap.String("event", body.Event), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Broadcast failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
