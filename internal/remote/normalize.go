package remote

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"complaint-engine/internal/model"
)

// The upstream service has historically served the same fields under several
// aliases depending on deployment (upvotes_count / upvote_count /
// likes_count, is_upvoted / has_upvoted / is_liked, and a mix of display and
// machine status names). Alias resolution happens here, once, and nowhere
// else.

type complaintPayload struct {
	ID            string   `json:"id"`
	Content       string   `json:"content"`
	Address       string   `json:"address"`
	Pincode       string   `json:"pincode"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ManualAddress string   `json:"manual_address"`
	Department    string   `json:"department"`
	PostedBy      *string  `json:"posted_by"`
	PostedAt      string   `json:"posted_at"`
	Status        string   `json:"status"`

	UpvotesCount *int `json:"upvotes_count"`
	UpvoteCount  *int `json:"upvote_count"`
	LikesCount   *int `json:"likes_count"`

	IsUpvoted  *bool `json:"is_upvoted"`
	HasUpvoted *bool `json:"has_upvoted"`
	IsLiked    *bool `json:"is_liked"`

	FakeReportCount        int      `json:"fake_report_count"`
	AssignedFieldWorker    *string  `json:"assigned_fieldworker"`
	ExpectedResolutionTime *string  `json:"expected_resolution_time"`
	Images                 []string `json:"images"`
}

type resolutionPayload struct {
	ID              string   `json:"id"`
	ComplaintID     string   `json:"complaint_id"`
	FieldWorkerID   string   `json:"fieldworker_id"`
	Description     string   `json:"description"`
	Images          []string `json:"images"`
	Status          string   `json:"status"`
	CitizenFeedback string   `json:"citizen_feedback"`
	SubmittedAt     string   `json:"submitted_at"`
}

type votePayload struct {
	UpvotesCount *int `json:"upvotes_count"`
	UpvoteCount  *int `json:"upvote_count"`
	LikesCount   *int `json:"likes_count"`

	IsUpvoted  *bool `json:"is_upvoted"`
	HasUpvoted *bool `json:"has_upvoted"`
	IsLiked    *bool `json:"is_liked"`
}

// listPayload accepts both the bare-array and enveloped list shapes.
type listPayload struct {
	Items      []complaintPayload `json:"items"`
	Complaints []complaintPayload `json:"complaints"`
	Results    []complaintPayload `json:"results"`
}

func (p *listPayload) UnmarshalJSON(data []byte) error {
	var bare []complaintPayload
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Items = bare
		return nil
	}

	// Shadow type sheds this method so the envelope decodes normally.
	type envelope listPayload
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = listPayload(env)
	return nil
}

func (p listPayload) records() []complaintPayload {
	switch {
	case len(p.Items) > 0:
		return p.Items
	case len(p.Complaints) > 0:
		return p.Complaints
	default:
		return p.Results
	}
}

func normalizeComplaints(payloads []complaintPayload) ([]model.Complaint, error) {
	complaints := make([]model.Complaint, 0, len(payloads))
	for _, p := range payloads {
		complaint, err := normalizeComplaint(p)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}
	return complaints, nil
}

func normalizeComplaint(p complaintPayload) (model.Complaint, error) {
	id, err := uuid.Parse(strings.TrimSpace(p.ID))
	if err != nil {
		return model.Complaint{}, fmt.Errorf("normalize complaint id %q: %w", p.ID, err)
	}

	complaint := model.Complaint{
		ID:      id,
		Content: p.Content,
		Address: p.Address,
		Pincode: p.Pincode,
		Location: model.Location{
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			ManualAddress: p.ManualAddress,
		},
		Department:       p.Department,
		Status:           normalizeStatus(p.Status),
		UpvoteCount:      firstInt(p.UpvotesCount, p.UpvoteCount, p.LikesCount),
		ViewerHasUpvoted: firstBool(p.IsUpvoted, p.HasUpvoted, p.IsLiked),
		FakeReportCount:  p.FakeReportCount,
		Images:           p.Images,
	}

	if complaint.UpvoteCount < 0 {
		complaint.UpvoteCount = 0
	}

	if p.PostedBy != nil {
		author, err := uuid.Parse(strings.TrimSpace(*p.PostedBy))
		if err != nil {
			return model.Complaint{}, fmt.Errorf("normalize complaint author %q: %w", *p.PostedBy, err)
		}
		complaint.PostedBy = &author
	}
	if p.AssignedFieldWorker != nil && strings.TrimSpace(*p.AssignedFieldWorker) != "" {
		worker, err := uuid.Parse(strings.TrimSpace(*p.AssignedFieldWorker))
		if err != nil {
			return model.Complaint{}, fmt.Errorf("normalize fieldworker %q: %w", *p.AssignedFieldWorker, err)
		}
		complaint.AssignedFieldWorker = &worker
	}

	if ts, err := parseTime(p.PostedAt); err == nil {
		complaint.PostedAt = ts
	}
	if p.ExpectedResolutionTime != nil {
		if ts, err := parseTime(*p.ExpectedResolutionTime); err == nil {
			complaint.ExpectedResolutionTime = &ts
		}
	}

	return complaint, nil
}

func normalizeResolution(p resolutionPayload) (model.Resolution, error) {
	id, err := uuid.Parse(strings.TrimSpace(p.ID))
	if err != nil {
		return model.Resolution{}, fmt.Errorf("normalize resolution id %q: %w", p.ID, err)
	}

	resolution := model.Resolution{
		ID:              id,
		Description:     p.Description,
		Images:          p.Images,
		Status:          normalizeResolutionStatus(p.Status),
		CitizenFeedback: p.CitizenFeedback,
	}

	if complaintID, err := uuid.Parse(strings.TrimSpace(p.ComplaintID)); err == nil {
		resolution.ComplaintID = complaintID
	}
	if worker, err := uuid.Parse(strings.TrimSpace(p.FieldWorkerID)); err == nil {
		resolution.FieldWorker = worker
	}
	if ts, err := parseTime(p.SubmittedAt); err == nil {
		resolution.SubmittedAt = ts
	}

	return resolution, nil
}

func normalizeVote(p votePayload) (VoteResult, error) {
	count := firstIntPtr(p.UpvotesCount, p.UpvoteCount, p.LikesCount)
	voted := firstBoolPtr(p.IsUpvoted, p.HasUpvoted, p.IsLiked)
	if count == nil || voted == nil {
		return VoteResult{}, fmt.Errorf("normalize vote: response carries no recognizable vote fields")
	}

	result := VoteResult{UpvoteCount: *count, HasUpvoted: *voted}
	if result.UpvoteCount < 0 {
		result.UpvoteCount = 0
	}
	return result, nil
}

func normalizeStatus(raw string) model.ComplaintStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unsolved", "pending":
		return model.ComplaintStatusUnsolved
	case "in_progress", "in progress", "assigned":
		return model.ComplaintStatusInProgress
	case "pending_approval", "pending approval":
		return model.ComplaintStatusPendingApproval
	case "solved", "resolved":
		return model.ComplaintStatusSolved
	case "escalated":
		return model.ComplaintStatusEscalated
	default:
		return model.ComplaintStatusUnsolved
	}
}

func normalizeResolutionStatus(raw string) model.ResolutionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return model.ResolutionStatusApproved
	case "rejected":
		return model.ResolutionStatusRejected
	default:
		return model.ResolutionStatusPendingApproval
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

func firstInt(candidates ...*int) int {
	if v := firstIntPtr(candidates...); v != nil {
		return *v
	}
	return 0
}

func firstIntPtr(candidates ...*int) *int {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func firstBool(candidates ...*bool) bool {
	if v := firstBoolPtr(candidates...); v != nil {
		return *v
	}
	return false
}

func firstBoolPtr(candidates ...*bool) *bool {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
