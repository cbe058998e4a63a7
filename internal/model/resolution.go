package model

import (
	"time"

	"github.com/google/uuid"
)

type ResolutionStatus string

const (
	ResolutionStatusPendingApproval ResolutionStatus = "pending_approval"
	ResolutionStatusApproved        ResolutionStatus = "approved"
	ResolutionStatusRejected        ResolutionStatus = "rejected"
)

// Resolution is a field worker's claim of completed work against a
// complaint. A complaint accumulates resolutions over repeated cycles but
// has at most one in pending_approval at a time.
type Resolution struct {
	ID              uuid.UUID        `json:"id"`
	ComplaintID     uuid.UUID        `json:"complaint_id"`
	FieldWorker     uuid.UUID        `json:"fieldworker_id"`
	Description     string           `json:"description"`
	Images          []string         `json:"images"`
	Status          ResolutionStatus `json:"status"`
	CitizenFeedback string           `json:"citizen_feedback,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

func (r Resolution) IsPending() bool {
	return r.Status == ResolutionStatusPendingApproval
}
