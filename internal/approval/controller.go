package approval

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// API is the file-approval surface the controller drives. The REST
// client satisfies it; tests substitute a stub.
type API interface {
	FileRecords(ctx context.Context, fileID string) (*model.FileRecordsResponse, error)
	ApproveRecord(ctx context.Context, fileID, recordID string) error
	RejectRecord(ctx context.Context, fileID, recordID string) error
	SetFileStatus(ctx context.Context, fileID, status string) error
}

// Controller drives the approve-reject workflow for one uploaded
// file's reviewable records. All selection and mutation is gated on the
// file being in confirmation_pending; once the file reaches a terminal
// status every action is a benign no-op. A processing flag blocks
// concurrent duplicate submissions and is always reset, success or
// failure.
type Controller struct {
	api    API
	logger *zap.Logger

	mu         sync.Mutex
	file       model.InventoryFile
	records    []model.ReviewableRecord
	selection  map[string]struct{}
	processing bool
}

// NewController creates a controller with no file loaded
func NewController(api API, logger *zap.Logger) *Controller {
	return &Controller{
		api:       api,
		logger:    logger,
		selection: make(map[string]struct{}),
	}
}

// Load fetches the file and its records, replacing any previously
// loaded state and clearing the selection.
func (c *Controller) Load(ctx context.Context, fileID string) error {
	resp, err := c.api.FileRecords(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(resp)
	c.selection = make(map[string]struct{})
	return nil
}

// SelectAll selects every record. No-op while the gate is closed.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gateOpenLocked() {
		return
	}
	for _, rec := range c.records {
		c.selection[rec.ID] = struct{}{}
	}
}

// DeselectAll clears the selection. No-op while the gate is closed.
func (c *Controller) DeselectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gateOpenLocked() {
		return
	}
	c.selection = make(map[string]struct{})
}

// ToggleRow flips one record's membership in the selection. Unknown ids
// and closed gates are no-ops.
func (c *Controller) ToggleRow(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gateOpenLocked() || !c.hasRecordLocked(id) {
		return
	}
	if _, ok := c.selection[id]; ok {
		delete(c.selection, id)
	} else {
		c.selection[id] = struct{}{}
	}
}

// ApproveRecord approves a single record via the API, then reloads the
// file's records so local state matches the server.
func (c *Controller) ApproveRecord(ctx context.Context, recordID string) error {
	return c.mutateRecord(ctx, recordID, model.RecordApproved, c.api.ApproveRecord)
}

// RejectRecord rejects a single record via the API, then reloads the
// file's records so local state matches the server.
func (c *Controller) RejectRecord(ctx context.Context, recordID string) error {
	return c.mutateRecord(ctx, recordID, model.RecordRejected, c.api.RejectRecord)
}

// ApproveFile performs the bulk approve, keyed by the file id alone.
// On success the file status is terminal and further mutation is shut
// off.
func (c *Controller) ApproveFile(ctx context.Context) error {
	return c.mutateFile(ctx, model.FileApproved)
}

// RejectFile performs the bulk reject, keyed by the file id alone.
func (c *Controller) RejectFile(ctx context.Context) error {
	return c.mutateFile(ctx, model.FileRejected)
}

// Processing reports whether an approve/reject request is in flight
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Snapshot returns a copy of the controller state for rendering.
// AllSelected is derived from the selection and record count, never
// tracked separately, so it cannot drift.
func (c *Controller) Snapshot() model.ReviewSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]model.ReviewableRecord, len(c.records))
	copy(records, c.records)

	selected := make([]string, 0, len(c.selection))
	for _, rec := range c.records {
		if _, ok := c.selection[rec.ID]; ok {
			selected = append(selected, rec.ID)
		}
	}

	return model.ReviewSnapshot{
		File:        c.file,
		Records:     records,
		Selected:    selected,
		AllSelected: len(c.records) > 0 && len(c.selection) == len(c.records),
		Processing:  c.processing,
	}
}

func (c *Controller) mutateRecord(ctx context.Context, recordID, status string, call func(context.Context, string, string) error) error {
	c.mu.Lock()
	if !c.gateOpenLocked() {
		c.mu.Unlock()
		return nil
	}
	if !c.hasRecordLocked(recordID) {
		c.mu.Unlock()
		return fmt.Errorf("unknown record %s", recordID)
	}
	if c.processing {
		c.mu.Unlock()
		return fmt.Errorf("another approval action is in flight")
	}
	c.processing = true
	fileID := c.file.ID
	c.mu.Unlock()

	defer c.resetProcessing()

	if err := call(ctx, fileID, recordID); err != nil {
		return fmt.Errorf("failed to update record %s: %w", recordID, err)
	}

	c.mu.Lock()
	for i := range c.records {
		if c.records[i].ID == recordID {
			c.records[i].Status = status
		}
	}
	c.mu.Unlock()

	// The reload is best-effort: the mutation itself already succeeded
	// server-side.
	resp, err := c.api.FileRecords(ctx, fileID)
	if err != nil {
		c.logger.Warn("failed to reload records after mutation",
			zap.String("file_id", fileID),
			zap.Error(err))
		return nil
	}

	c.mu.Lock()
	c.applyLocked(resp)
	c.mu.Unlock()
	return nil
}

func (c *Controller) mutateFile(ctx context.Context, status string) error {
	c.mu.Lock()
	if !c.gateOpenLocked() {
		c.mu.Unlock()
		return nil
	}
	if c.processing {
		c.mu.Unlock()
		return fmt.Errorf("another approval action is in flight")
	}
	c.processing = true
	fileID := c.file.ID
	c.mu.Unlock()

	defer c.resetProcessing()

	if err := c.api.SetFileStatus(ctx, fileID, status); err != nil {
		return fmt.Errorf("failed to set file %s to %s: %w", fileID, status, err)
	}

	c.mu.Lock()
	c.file.Status = status
	c.mu.Unlock()
	return nil
}

// applyLocked replaces the file and record set and prunes the selection
// down to ids that still exist. Caller holds the lock.
func (c *Controller) applyLocked(resp *model.FileRecordsResponse) {
	c.file = resp.File
	c.records = make([]model.ReviewableRecord, len(resp.Records))
	copy(c.records, resp.Records)

	for id := range c.selection {
		if !c.hasRecordLocked(id) {
			delete(c.selection, id)
		}
	}
}

func (c *Controller) resetProcessing() {
	c.mu.Lock()
	c.processing = false
	c.mu.Unlock()
}

func (c *Controller) gateOpenLocked() bool {
	return c.file.Status == model.FileConfirmationPending
}

func (c *Controller) hasRecordLocked(id string) bool {
	for _, rec := range c.records {
		if rec.ID == id {
			return true
		}
	}
	return false
}
