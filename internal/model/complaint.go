package model

import (
	"time"

	"github.com/google/uuid"
)

type ComplaintStatus string

const (
	ComplaintStatusUnsolved        ComplaintStatus = "unsolved"
	ComplaintStatusInProgress      ComplaintStatus = "in_progress"
	ComplaintStatusPendingApproval ComplaintStatus = "pending_approval"
	ComplaintStatusSolved          ComplaintStatus = "solved"
	ComplaintStatusEscalated       ComplaintStatus = "escalated"
)

type SortKey string

const (
	SortLatest       SortKey = "latest"
	SortOldest       SortKey = "oldest"
	SortMostUpvoted  SortKey = "most-upvoted"
	SortLeastUpvoted SortKey = "least-upvoted"
)

type SortOrder string

const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// MaxComplaintImages bounds the image list on a complaint at creation.
const MaxComplaintImages = 4

// Location is either a GPS coordinate pair or a manually entered address.
// The two forms are mutually exclusive at creation time.
type Location struct {
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	ManualAddress string   `json:"manual_address,omitempty"`
}

func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

func (l Location) HasManualAddress() bool {
	return l.ManualAddress != ""
}

type Complaint struct {
	ID                     uuid.UUID       `json:"id"`
	Content                string          `json:"content"`
	Address                string          `json:"address"`
	Pincode                string          `json:"pincode"`
	Location               Location        `json:"location"`
	Department             string          `json:"department"`
	PostedBy               *uuid.UUID      `json:"posted_by"`
	PostedAt               time.Time       `json:"posted_at"`
	Status                 ComplaintStatus `json:"status"`
	UpvoteCount            int             `json:"upvote_count"`
	ViewerHasUpvoted       bool            `json:"viewer_has_upvoted"`
	FakeReportCount        int             `json:"fake_report_count"`
	AssignedFieldWorker    *uuid.UUID      `json:"assigned_fieldworker"`
	ExpectedResolutionTime *time.Time      `json:"expected_resolution_time,omitempty"`
	Images                 []string        `json:"images"`
}

// IsAnonymous reports whether the complaint was posted without an
// identified author.
func (c Complaint) IsAnonymous() bool {
	return c.PostedBy == nil
}

// AuthoredBy reports whether userID is the complaint's author.
func (c Complaint) AuthoredBy(userID uuid.UUID) bool {
	return c.PostedBy != nil && *c.PostedBy == userID
}
