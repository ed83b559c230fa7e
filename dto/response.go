package dto

import "errors"

// Sentinel errors surfaced at the document or batch level. Per-field and
// per-row failures are absorbed into absent values and row warnings instead.
var (
	ErrTextExtractionFailed = errors.New("could not read document")
	ErrTextTooLarge         = errors.New("document text exceeds size limit")
	ErrNoUsableRows         = errors.New("no valid rows found in pasted data")
	ErrSessionNotFound      = errors.New("session not found")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeResponse is returned by the document analysis endpoint. Records
// holds the full session collection after the upload, in billing-period
// order, with derived fields recomputed.
type AnalyzeResponse struct {
	SessionID   string           `json:"session_id"`
	Documents   []DocumentResult `json:"documents"`
	Records     []BillRecord     `json:"records"`
	Summary     SummaryStats     `json:"summary"`
	ProcessedAt string           `json:"processed_at"`
}

// PasteResponse is returned by the pasted-data endpoint.
type PasteResponse struct {
	SessionID   string       `json:"session_id"`
	Inserted    int          `json:"inserted"`
	RowWarnings []RowWarning `json:"row_warnings,omitempty"`
	Records     []BillRecord `json:"records"`
	Summary     SummaryStats `json:"summary"`
	ProcessedAt string       `json:"processed_at"`
}

// CollectionResponse is the current state of a session's bill collection.
type CollectionResponse struct {
	SessionID string       `json:"session_id"`
	Records   []BillRecord `json:"records"`
	Summary   SummaryStats `json:"summary"`
}
