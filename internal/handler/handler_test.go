package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/approval"
	"github.com/yourorg/inventory-dashboard/internal/dispatch"
	"github.com/yourorg/inventory-dashboard/internal/model"
	"github.com/yourorg/inventory-dashboard/internal/service"
	"github.com/yourorg/inventory-dashboard/internal/store"
	"github.com/yourorg/inventory-dashboard/internal/transport"
)

type approvalAPIStub struct {
	file    model.InventoryFile
	records []model.ReviewableRecord
}

func (s *approvalAPIStub) FileRecords(ctx context.Context, fileID string) (*model.FileRecordsResponse, error) {
	return &model.FileRecordsResponse{File: s.file, Records: s.records}, nil
}

func (s *approvalAPIStub) ApproveRecord(ctx context.Context, fileID, recordID string) error {
	return nil
}

func (s *approvalAPIStub) RejectRecord(ctx context.Context, fileID, recordID string) error {
	return nil
}

func (s *approvalAPIStub) SetFileStatus(ctx context.Context, fileID, status string) error {
	s.file.Status = status
	return nil
}

func TestNotificationHandlerSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(zap.NewNop())
	st.InsertNotification(model.Notification{ID: "n1", Title: "hello", Read: false})
	svc := service.NewNotificationService(nil, st, zap.NewNop())
	h := NewNotificationHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/state/notifications", nil)

	h.GetNotifications(c)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot model.NotificationSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Notifications, 1)
	assert.Equal(t, 1, snapshot.UnreadCount)
}

func TestStreamHandlerSimulateMutatesStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(zap.NewNop())
	d := dispatch.New(validator.New(), nil, zap.NewNop())
	dispatch.BindStore(d, st)
	h := NewStreamHandler(transport.NewFakeClient(), d, zap.NewNop())

	body, _ := json.Marshal(model.Frame{
		Event: model.EventLowStockAlert,
		Data:  json.RawMessage(`{"item":{"id":"x1","name":"Widget","sku":"W-1","quantity":0,"threshold":5}}`),
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/simulate", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Simulate(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, st.LowStockSnapshot().Critical, 1)
	assert.Equal(t, 1, st.NotificationSnapshot().UnreadCount)
}

func TestStreamHandlerSimulateRejectsEmptyEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := dispatch.New(validator.New(), nil, zap.NewNop())
	h := NewStreamHandler(transport.NewFakeClient(), d, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/simulate", bytes.NewReader([]byte(`{"data":{}}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Simulate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := transport.NewFakeClient()
	h := NewStreamHandler(client, nil, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/stream/status", nil)

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"disconnected"}`, w.Body.String())
}

func TestApprovalHandlerGatedActionReturnsSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := &approvalAPIStub{
		file:    model.InventoryFile{ID: "f1", Status: model.FileApproved},
		records: []model.ReviewableRecord{{ID: "rec1", FileID: "f1", Status: model.RecordApproved}},
	}
	controller := approval.NewController(api, zap.NewNop())
	require.NoError(t, controller.Load(context.Background(), "f1"))
	h := NewApprovalHandler(controller, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/files/review/rows/rec1/toggle", nil)
	c.Params = gin.Params{{Key: "recordID", Value: "rec1"}}

	h.ToggleRow(c)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot model.ReviewSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Empty(t, snapshot.Selected, "gated toggle must not select")
	assert.Equal(t, model.FileApproved, snapshot.File.Status)
}

func TestApprovalHandlerBulkApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := &approvalAPIStub{
		file:    model.InventoryFile{ID: "f1", Status: model.FileConfirmationPending},
		records: []model.ReviewableRecord{{ID: "rec1", FileID: "f1", Status: model.RecordPending}},
	}
	controller := approval.NewController(api, zap.NewNop())
	require.NoError(t, controller.Load(context.Background(), "f1"))
	h := NewApprovalHandler(controller, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/files/review/approve", nil)

	h.ApproveFile(c)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot model.ReviewSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, model.FileApproved, snapshot.File.Status)
}
