package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/config"
)

// REST is the shared plumbing for the platform API clients: base URL,
// bearer token and a bounded http.Client.
type REST struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewREST creates the shared API transport
func NewREST(cfg config.APIConfig, token string, logger *zap.Logger) *REST {
	return &REST{
		baseURL: cfg.BaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// successResponse is the common ack body for mutation endpoints
type successResponse struct {
	Success bool `json:"success"`
}

// do issues one request and decodes a JSON response into out when out
// is non-nil. Non-2xx statuses are returned as errors; local state is
// never mutated on the error path.
func (r *REST) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.Warn("API returned non-2xx status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("api returned status code %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ack issues a mutation request that answers {"success": bool}
func (r *REST) ack(ctx context.Context, method, path string, body any) error {
	var resp successResponse
	if err := r.do(ctx, method, path, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("api reported failure for %s %s", method, path)
	}
	return nil
}
