package model

import (
	"encoding/json"
	"time"
)

// Push event kinds delivered over the notification stream
const (
	EventLowStockAlert   = "low-stock-alert"
	EventNewNotification = "new_notification"
	EventUHFLowStock     = "uhf-low-stock"
	EventConnect         = "connect"
	EventDisconnect      = "disconnect"
)

// Frame is the raw envelope exchanged on the notification stream.
// Data is left undecoded until the dispatcher classifies the event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// LowStockAlertPayload is the payload of a low-stock-alert event
type LowStockAlertPayload struct {
	Item      LowStockItem `json:"item" validate:"required"`
	CompanyID string       `json:"company_id"`
	Timestamp time.Time    `json:"timestamp"`
}

// UHFLowStockPayload is the payload of a uhf-low-stock event emitted
// by an RFID reader. It normalizes into the same handling as
// low-stock-alert with a source tag.
type UHFLowStockPayload struct {
	Item      LowStockItem `json:"item" validate:"required"`
	ReaderID  string       `json:"reader_id"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewNotificationPayload is the payload of a new_notification event
type NewNotificationPayload struct {
	Notification Notification `json:"notification"`
}
