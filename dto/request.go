package dto

import (
	"errors"
	"mime/multipart"
)

// AnalyzeRequest represents a multipart upload of one or more bill PDFs.
type AnalyzeRequest struct {
	Files     []*multipart.FileHeader `form:"files[]" binding:"required"`
	SessionID string                  `form:"session_id"`
}

// Validate performs basic validation on the request
func (r *AnalyzeRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("at least one bill document is required")
	}
	return nil
}

// PasteRequest carries pasted tabular bill data, one row per line with
// columns (startDate, endDate, days, usage, cost, blendedRate) separated
// by tab or comma.
type PasteRequest struct {
	SessionID string `json:"session_id"`
	Data      string `json:"data" binding:"required"`
}

// EmailRequest asks for the session summary to be emailed.
type EmailRequest struct {
	To string `json:"to" binding:"required,email"`
}
