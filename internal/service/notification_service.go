package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/model"
	"github.com/yourorg/inventory-dashboard/internal/store"
)

// notificationAPI is the slice of the REST surface this service needs
type notificationAPI interface {
	List(ctx context.Context, page, limit int) (*model.NotificationListResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	SendTest(ctx context.Context) error
}

// NotificationService coordinates the notification REST API with the
// reconciliation store. Every mutation goes to the server first; the
// store is only touched after the server accepted the change, so a
// failed call leaves local state exactly as it was.
type NotificationService struct {
	api    notificationAPI
	store  *store.Store
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(api notificationAPI, st *store.Store, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		api:    api,
		store:  st,
		logger: logger,
	}
}

// Refresh replaces the store's notification collection from a full
// fetch. This is the authoritative correction point for any drift from
// missed push events; the unread count is recomputed from the fetched
// list. The low-stock collection is not touched.
func (s *NotificationService) Refresh(ctx context.Context, page, limit int) error {
	resp, err := s.api.List(ctx, page, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}
	s.store.ReplaceNotifications(resp.Notifications)
	s.logger.Debug("notifications refreshed",
		zap.Int("count", len(resp.Notifications)),
		zap.Int("total", resp.Total))
	return nil
}

// MarkRead marks one notification read on the server, then in the store
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.api.MarkRead(ctx, id); err != nil {
		return err
	}
	s.store.MarkRead(id)
	return nil
}

// MarkAllRead marks everything read on the server, then in the store
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllRead(ctx); err != nil {
		return err
	}
	s.store.MarkAllRead()
	return nil
}

// Delete removes a notification on the server, then from the store
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemoveNotification(id)
	return nil
}

// SendTest asks the server to emit a test push event. The resulting
// notification arrives over the stream like any other.
func (s *NotificationService) SendTest(ctx context.Context) error {
	return s.api.SendTest(ctx)
}

// Snapshot returns the current notification read model
func (s *NotificationService) Snapshot() model.NotificationSnapshot {
	return s.store.NotificationSnapshot()
}
