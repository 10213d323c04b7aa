package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// Store is the single source of truth for notifications and low-stock
// items on the client side. Every mutation keeps the unread aggregate
// equal to the number of unread notifications in the live collection,
// regardless of whether the mutation came from a push event, a REST
// fetch, or a local action.
type Store struct {
	mu            sync.RWMutex
	notifications []model.Notification
	lowStock      []model.LowStockItem
	unread        int
	logger        *zap.Logger
}

// New creates an empty store
func New(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// InsertNotification prepends a notification (most-recent-first) and
// bumps the unread aggregate if it arrives unread.
func (s *Store) InsertNotification(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append([]model.Notification{n}, s.notifications...)
	if !n.Read {
		s.unread++
	}
}

// MarkRead marks the matching notification as read. Marking an already
// read or absent notification is a benign no-op and never decrements
// the aggregate twice.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Read {
			return false
		}
		s.notifications[i].Read = true
		s.unread--
		return true
	}
	s.logger.Debug("mark read ignored, unknown notification", zap.String("id", id))
	return false
}

// MarkAllRead marks every notification as read and resets the unread
// aggregate unconditionally.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.unread = 0
}

// RemoveNotification removes a notification by id, decrementing the
// unread aggregate only if the removed notification was unread.
func (s *Store) RemoveNotification(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if !s.notifications[i].Read {
			s.unread--
		}
		s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
		return true
	}
	return false
}

// ReplaceNotifications swaps in a freshly fetched notification list and
// recomputes the unread aggregate from scratch. This is the
// reconciliation point that corrects drift from missed push events, so
// it never trusts the pre-existing counter. The low-stock collection is
// untouched.
func (s *Store) ReplaceNotifications(notifications []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = make([]model.Notification, len(notifications))
	copy(s.notifications, notifications)

	unread := 0
	for _, n := range s.notifications {
		if !n.Read {
			unread++
		}
	}
	s.unread = unread
}

// UpsertLowStockItem replaces the item with a matching id or appends it.
// Upserting an identical payload twice leaves the collection unchanged.
func (s *Store) UpsertLowStockItem(item model.LowStockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lowStock {
		if s.lowStock[i].ID == item.ID {
			s.lowStock[i] = item
			return
		}
	}
	s.lowStock = append(s.lowStock, item)
}

// RemoveLowStockItem removes an item by id; absent ids are a no-op.
func (s *Store) RemoveLowStockItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lowStock {
		if s.lowStock[i].ID == id {
			s.lowStock = append(s.lowStock[:i], s.lowStock[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceLowStock swaps in a freshly fetched low-stock list. The
// notification collection and unread aggregate are untouched.
func (s *Store) ReplaceLowStock(items []model.LowStockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lowStock = make([]model.LowStockItem, len(items))
	copy(s.lowStock, items)
}

// UnreadCount returns the unread aggregate
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// NotificationSnapshot returns a copy of the notification list plus the
// unread aggregate.
func (s *Store) NotificationSnapshot() model.NotificationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]model.Notification, len(s.notifications))
	copy(notifications, s.notifications)

	return model.NotificationSnapshot{
		Notifications: notifications,
		UnreadCount:   s.unread,
	}
}

// LowStockSnapshot returns a copy of the low-stock list with the
// critical/warning split computed at read time.
func (s *Store) LowStockSnapshot() model.LowStockSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := model.LowStockSnapshot{
		Items:    make([]model.LowStockItem, len(s.lowStock)),
		Critical: []model.LowStockItem{},
		Warning:  []model.LowStockItem{},
	}
	copy(snapshot.Items, s.lowStock)

	for _, item := range s.lowStock {
		if item.Critical() {
			snapshot.Critical = append(snapshot.Critical, item)
		} else {
			snapshot.Warning = append(snapshot.Warning, item)
		}
	}
	return snapshot
}
