// Package remote is the only gateway to the authoritative complaint
// service. Responses are normalized into canonical model records exactly
// once here; nothing outside this package sees wire aliases.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"complaint-engine/internal/model"
)

type ListQuery struct {
	Department string
	Pincode    string
	SortBy     model.SortKey
	Order      model.SortOrder
}

type CreateComplaintInput struct {
	Content    string
	Address    string
	Pincode    string
	Location   model.Location
	Department string
	Images     []string
}

type AssignInput struct {
	FieldWorkerID           uuid.UUID
	ExpectedResolutionTime  *time.Time
	PredictedResolutionDays *int
}

type SubmitResolutionInput struct {
	Description string
	Images      []string
}

// VoteResult carries the authoritative vote state returned by the upvote
// endpoint. It wins over any optimistic local guess.
type VoteResult struct {
	UpvoteCount int
	HasUpvoted  bool
}

type Client interface {
	ListComplaints(ctx context.Context, q ListQuery) ([]model.Complaint, error)
	SearchComplaints(ctx context.Context, query string) ([]model.Complaint, error)
	GetComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	CreateComplaint(ctx context.Context, input CreateComplaintInput) (*model.Complaint, error)
	ToggleUpvote(ctx context.Context, id uuid.UUID) (VoteResult, error)
	ReportFake(ctx context.Context, id uuid.UUID) error
	AssignComplaint(ctx context.Context, id uuid.UUID, input AssignInput) error
	SubmitResolution(ctx context.Context, id uuid.UUID, input SubmitResolutionInput) (*model.Resolution, error)
	ListResolutions(ctx context.Context, id uuid.UUID) ([]model.Resolution, error)
	RespondResolution(ctx context.Context, complaintID, resolutionID uuid.UUID, approved bool, feedback string) error
	DeleteComplaint(ctx context.Context, id uuid.UUID) error
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *HTTPClient) ListComplaints(ctx context.Context, q ListQuery) ([]model.Complaint, error) {
	params := url.Values{}
	if q.Department != "" {
		params.Set("department", q.Department)
	}
	if q.Pincode != "" {
		params.Set("pincode", q.Pincode)
	}
	if q.SortBy != "" {
		params.Set("sort_by", string(q.SortBy))
	}
	if q.Order != "" {
		params.Set("order", string(q.Order))
	}

	var payload listPayload
	if err := c.doJSON(ctx, http.MethodGet, "/complaints/?"+params.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return normalizeComplaints(payload.records())
}

func (c *HTTPClient) SearchComplaints(ctx context.Context, query string) ([]model.Complaint, error) {
	params := url.Values{}
	params.Set("q", query)

	var payload listPayload
	if err := c.doJSON(ctx, http.MethodGet, "/complaints/search/?"+params.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return normalizeComplaints(payload.records())
}

func (c *HTTPClient) GetComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	var payload complaintPayload
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/complaints/%s/", id), nil, &payload); err != nil {
		return nil, err
	}
	complaint, err := normalizeComplaint(payload)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (c *HTTPClient) CreateComplaint(ctx context.Context, input CreateComplaintInput) (*model.Complaint, error) {
	fields := map[string]string{
		"content":    input.Content,
		"address":    input.Address,
		"pincode":    input.Pincode,
		"department": input.Department,
	}
	if input.Location.HasCoordinates() {
		fields["latitude"] = strconv.FormatFloat(*input.Location.Latitude, 'f', -1, 64)
		fields["longitude"] = strconv.FormatFloat(*input.Location.Longitude, 'f', -1, 64)
	} else {
		fields["manual_address"] = input.Location.ManualAddress
	}

	var payload complaintPayload
	if err := c.doMultipart(ctx, "/complaints/create/", fields, input.Images, &payload); err != nil {
		return nil, err
	}
	complaint, err := normalizeComplaint(payload)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (c *HTTPClient) ToggleUpvote(ctx context.Context, id uuid.UUID) (VoteResult, error) {
	var payload votePayload
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/complaints/%s/upvote/", id), nil, &payload); err != nil {
		return VoteResult{}, err
	}
	return normalizeVote(payload)
}

func (c *HTTPClient) ReportFake(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/complaints/%s/fake-confidence/", id), nil, nil)
}

func (c *HTTPClient) AssignComplaint(ctx context.Context, id uuid.UUID, input AssignInput) error {
	body := map[string]interface{}{
		"fieldworker_id": input.FieldWorkerID.String(),
	}
	if input.ExpectedResolutionTime != nil {
		body["expected_resolution_time"] = input.ExpectedResolutionTime.Format(time.RFC3339)
	}
	if input.PredictedResolutionDays != nil {
		body["predicted_resolution_days"] = *input.PredictedResolutionDays
	}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/complaints/assign/%s/", id), body, nil)
}

func (c *HTTPClient) SubmitResolution(ctx context.Context, id uuid.UUID, input SubmitResolutionInput) (*model.Resolution, error) {
	fields := map[string]string{"description": input.Description}

	var payload resolutionPayload
	if err := c.doMultipart(ctx, fmt.Sprintf("/complaints/%s/submit-resolution/", id), fields, input.Images, &payload); err != nil {
		return nil, err
	}
	resolution, err := normalizeResolution(payload)
	if err != nil {
		return nil, err
	}
	return &resolution, nil
}

func (c *HTTPClient) ListResolutions(ctx context.Context, id uuid.UUID) ([]model.Resolution, error) {
	var payload struct {
		Resolutions []resolutionPayload `json:"resolutions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/complaints/%s/resolution/", id), nil, &payload); err != nil {
		return nil, err
	}

	resolutions := make([]model.Resolution, 0, len(payload.Resolutions))
	for _, p := range payload.Resolutions {
		resolution, err := normalizeResolution(p)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, resolution)
	}
	return resolutions, nil
}

func (c *HTTPClient) RespondResolution(ctx context.Context, complaintID, resolutionID uuid.UUID, approved bool, feedback string) error {
	body := map[string]interface{}{"approved": approved}
	if feedback != "" {
		body["feedback"] = feedback
	}
	path := fmt.Sprintf("/complaints/%s/resolution/%s/respond/", complaintID, resolutionID)
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *HTTPClient) DeleteComplaint(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/complaints/%s/delete/", id), nil, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// doMultipart posts fields plus repeated "images" parts, matching the
// upstream submit-resolution and create contracts.
func (c *HTTPClient) doMultipart(ctx context.Context, path string, fields map[string]string, images []string, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	for _, image := range images {
		if err := writer.WriteField("images", image); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out interface{}) error {
	if token, ok := TokenFromContext(req.Context()); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
