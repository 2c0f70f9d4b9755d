// Package history provides the upload history domain: one record per
// uploaded document, tracking its processing lifecycle from pending
// through processing to a terminal success or failed state.
package history

import (
	"fmt"
	"time"
)

// Status is the processing state of an uploaded document.
type Status string

// Lifecycle states. A record starts at StatusPending (or directly at
// StatusProcessing on the immediate-OCR path) and ends at StatusSuccess
// or StatusFailed; re-running a terminal record restarts the cycle from
// StatusProcessing.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the processing cycle.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Record represents one uploaded document and its processing lifecycle.
// Result is set only when a processing run succeeds; PageCount is present
// only for PDF uploads whose page count could be extracted.
type Record struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	FileType  string    `json:"fileType"`
	Status    Status    `json:"status"`
	Result    *string   `json:"result,omitempty"`
	PageCount *int      `json:"pageCount,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StorageKey returns the blob key owned by this record.
func (r *Record) StorageKey() string {
	return StorageKey(r.ID, r.FileName)
}

// StorageKey derives the blob key for a record id and original file name.
// The id prefix keeps uploads sharing a name from colliding.
func StorageKey(id int64, fileName string) string {
	return fmt.Sprintf("%d-%s", id, fileName)
}

// CreateCommand contains the data required to create a new history record.
// Data holds the raw file bytes to be stored after the record exists.
type CreateCommand struct {
	FileName  string
	FileSize  int64
	FileType  string
	Status    Status
	PageCount *int
	Data      []byte
}

// UpdateCommand contains the fields that can be modified on an existing
// record. Only provided fields are written; ClearResult resets Result to
// NULL and takes precedence over Result.
type UpdateCommand struct {
	Status      *Status
	Result      *string
	ClearResult bool
}
