package model

// Per-record review statuses
const (
	RecordPending    = "pending"
	RecordApproved   = "approved"
	RecordRejected   = "rejected"
	RecordProcessing = "processing"
)

// File-level statuses. Only confirmation_pending permits per-record
// mutation; approved and rejected are terminal.
const (
	FileConfirmationPending = "confirmation_pending"
	FileApproved            = "approved"
	FileRejected            = "rejected"
)

// ReviewableRecord represents one inventory row produced from an
// uploaded file, awaiting review.
type ReviewableRecord struct {
	ID     string `json:"id"`
	FileID string `json:"file_id"`
	Name   string `json:"name,omitempty"`
	SKU    string `json:"sku,omitempty"`
	Status string `json:"status"`
}

// InventoryFile represents the uploaded file that owns a batch of
// reviewable records.
type InventoryFile struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// FileRecordsResponse represents the file plus its current record set
type FileRecordsResponse struct {
	File    InventoryFile      `json:"file"`
	Records []ReviewableRecord `json:"records"`
}

// ReviewSnapshot is the approval controller's read model
type ReviewSnapshot struct {
	File        InventoryFile      `json:"file"`
	Records     []ReviewableRecord `json:"records"`
	Selected    []string           `json:"selected"`
	AllSelected bool               `json:"all_selected"`
	Processing  bool               `json:"processing"`
}
