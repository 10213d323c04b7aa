package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// NotificationClient consumes the platform notification endpoints
type NotificationClient struct {
	rest *REST
}

// NewNotificationClient creates a notification API client
func NewNotificationClient(rest *REST) *NotificationClient {
	return &NotificationClient{rest: rest}
}

// List retrieves one page of notifications
func (c *NotificationClient) List(ctx context.Context, page, limit int) (*model.NotificationListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	var resp model.NotificationListResponse
	path := fmt.Sprintf("/notifications?page=%d&limit=%d", page, limit)
	if err := c.rest.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead marks a single notification as read on the server
func (c *NotificationClient) MarkRead(ctx context.Context, id string) error {
	return c.rest.ack(ctx, http.MethodPut, "/notifications/"+id+"/read", nil)
}

// MarkAllRead marks every notification as read on the server
func (c *NotificationClient) MarkAllRead(ctx context.Context) error {
	return c.rest.ack(ctx, http.MethodPut, "/notifications/mark-all-read", nil)
}

// Delete removes a notification on the server
func (c *NotificationClient) Delete(ctx context.Context, id string) error {
	return c.rest.ack(ctx, http.MethodDelete, "/notifications/"+id, nil)
}

// SendTest asks the server to generate a test push event
func (c *NotificationClient) SendTest(ctx context.Context) error {
	return c.rest.ack(ctx, http.MethodPost, "/notifications/test", nil)
}
