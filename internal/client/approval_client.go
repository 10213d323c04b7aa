package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// ApprovalClient consumes the file-approval endpoints
type ApprovalClient struct {
	rest *REST
}

// NewApprovalClient creates a file-approval API client
func NewApprovalClient(rest *REST) *ApprovalClient {
	return &ApprovalClient{rest: rest}
}

// FileRecords retrieves the file and its current reviewable records
func (c *ApprovalClient) FileRecords(ctx context.Context, fileID string) (*model.FileRecordsResponse, error) {
	var resp model.FileRecordsResponse
	path := fmt.Sprintf("/files/%s/records", fileID)
	if err := c.rest.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ApproveRecord approves one record of a file
func (c *ApprovalClient) ApproveRecord(ctx context.Context, fileID, recordID string) error {
	path := fmt.Sprintf("/files/%s/records/%s/approve", fileID, recordID)
	return c.rest.ack(ctx, http.MethodPost, path, nil)
}

// RejectRecord rejects one record of a file
func (c *ApprovalClient) RejectRecord(ctx context.Context, fileID, recordID string) error {
	path := fmt.Sprintf("/files/%s/records/%s/reject", fileID, recordID)
	return c.rest.ack(ctx, http.MethodPost, path, nil)
}

// SetFileStatus performs the bulk file-level action. The request is
// keyed by file id only; row selection never parameterizes it.
func (c *ApprovalClient) SetFileStatus(ctx context.Context, fileID, status string) error {
	body := map[string]string{"status": status}
	return c.rest.ack(ctx, http.MethodPut, "/files/"+fileID+"/status", body)
}
