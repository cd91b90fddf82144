package dto

import (
	"strings"
	"time"

	apierrors "transcribe-beautifier/internal/api/errors"
	"transcribe-beautifier/internal/app/events"
	"transcribe-beautifier/internal/app/repository"
)

// EventResponse is returned by the notification endpoints.
type EventResponse struct {
	Handled  int              `json:"handled"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Outcomes []events.Outcome `json:"outcomes"`
}

// ObjectRequest triggers a handler for a single object.
type ObjectRequest struct {
	Action string `json:"action" binding:"required,oneof=start beautify"`
	Bucket string `json:"bucket" binding:"required"`
	Key    string `json:"key" binding:"required"`
}

// Validate rejects folder placeholders, which no handler can act on.
func (r *ObjectRequest) Validate() error {
	if strings.HasSuffix(r.Key, "/") {
		return apierrors.NewValidationError("Validation failed", map[string]string{
			"key": "must name an object, not a folder",
		})
	}
	return nil
}

// HistoryRequest pages through the processing ledger.
type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// HistoryEntry is one ledger row.
type HistoryEntry struct {
	Kind        string    `json:"kind"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Result      string    `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// HistoryResponse lists ledger rows, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// NewEventResponse summarizes dispatch outcomes.
func NewEventResponse(outcomes []events.Outcome) EventResponse {
	resp := EventResponse{Outcomes: outcomes}
	if resp.Outcomes == nil {
		resp.Outcomes = []events.Outcome{}
	}
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			resp.Failed++
		case o.Skipped:
			resp.Skipped++
		default:
			resp.Handled++
		}
	}
	return resp
}

// NewHistoryEntry converts a ledger entry.
func NewHistoryEntry(e repository.Entry) HistoryEntry {
	return HistoryEntry{
		Kind:        string(e.Kind),
		Bucket:      e.Bucket,
		Key:         e.Key,
		Result:      e.Result,
		Error:       e.ErrorMessage,
		ProcessedAt: e.ProcessedAt,
	}
}
