package model

import (
	"time"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Well-known notification types; the set is open, servers may send others
const (
	TypeStock    = "Stock"
	TypeShipment = "Shipment"
	TypeSystem   = "System"
)

// RelatedRef is an optional back-reference from a notification to a
// domain entity. It is informational only, never an ownership link.
type RelatedRef struct {
	Model string `json:"model"`
	ID    string `json:"id"`
}

// Notification represents a single dashboard notification
type Notification struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Priority  string      `json:"priority"`
	Type      string      `json:"type"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
	RelatedTo *RelatedRef `json:"related_to,omitempty"`
	Source    string      `json:"source,omitempty"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

// NotificationSnapshot is the store's read model for the notification list
type NotificationSnapshot struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
