package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"complaint-engine/internal/lifecycle"
	"complaint-engine/internal/model"
	"complaint-engine/internal/remote"
)

type ResolutionService struct {
	remote remote.Client
	guard  *inflightGuard
	log    zerolog.Logger
}

func NewResolutionService(client remote.Client, log zerolog.Logger) *ResolutionService {
	return &ResolutionService{
		remote: client,
		guard:  newInflightGuard(),
		log:    log,
	}
}

type AssignInput struct {
	FieldWorkerID           uuid.UUID
	ExpectedResolutionTime  *time.Time
	PredictedResolutionDays *int
}

// Assign moves an unsolved or escalated complaint into in_progress. The
// authority must match the complaint's department and name a target field
// worker.
func (s *ResolutionService) Assign(ctx context.Context, principal model.Principal, complaintID uuid.UUID, input AssignInput) (*model.Complaint, error) {
	if err := requireRole(principal, lifecycle.ActionAssign); err != nil {
		return nil, err
	}

	complaint, err := s.remote.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, mapRemoteError(err)
	}

	if err := s.checkTransition(complaint.Status, lifecycle.ActionAssign, principal.Role); err != nil {
		return nil, err
	}
	if !strings.EqualFold(principal.Department, complaint.Department) {
		return nil, fmt.Errorf("%w: complaint belongs to department %q", ErrPermissionDenied, complaint.Department)
	}
	if input.FieldWorkerID == uuid.Nil {
		return nil, fmt.Errorf("%w: fieldworker is required", ErrInvalidInput)
	}

	err = s.remote.AssignComplaint(ctx, complaintID, remote.AssignInput{
		FieldWorkerID:           input.FieldWorkerID,
		ExpectedResolutionTime:  input.ExpectedResolutionTime,
		PredictedResolutionDays: input.PredictedResolutionDays,
	})
	if err != nil {
		return nil, mapRemoteError(err)
	}

	next, err := lifecycle.Next(complaint.Status, lifecycle.ActionAssign)
	if err != nil {
		return nil, ErrInvalidStatus
	}
	complaint.Status = next
	worker := input.FieldWorkerID
	complaint.AssignedFieldWorker = &worker
	complaint.ExpectedResolutionTime = input.ExpectedResolutionTime
	return complaint, nil
}

type SubmitResolutionInput struct {
	Description string
	Images      []string
}

// SubmitResolution records a field worker's completed-work claim, creating
// a pending_approval resolution. It requires a non-empty description or at
// least one image.
func (s *ResolutionService) SubmitResolution(ctx context.Context, principal model.Principal, complaintID uuid.UUID, input SubmitResolutionInput) (*model.Resolution, error) {
	if err := requireRole(principal, lifecycle.ActionSubmitResolution); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" && len(input.Images) == 0 {
		return nil, fmt.Errorf("%w: resolution needs a description or at least one image", ErrInvalidInput)
	}

	complaint, err := s.remote.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	if err := s.checkTransition(complaint.Status, lifecycle.ActionSubmitResolution, principal.Role); err != nil {
		return nil, err
	}
	if complaint.AssignedFieldWorker == nil || *complaint.AssignedFieldWorker != principal.UserID {
		return nil, fmt.Errorf("%w: complaint is not assigned to this field worker", ErrPermissionDenied)
	}

	resolution, err := s.remote.SubmitResolution(ctx, complaintID, remote.SubmitResolutionInput{
		Description: input.Description,
		Images:      input.Images,
	})
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return resolution, nil
}

// RespondOutcome tells the caller which branch a resolution response took,
// so an escalation acknowledgment renders distinctly from plain success.
type RespondOutcome string

const (
	OutcomeResolved  RespondOutcome = "resolved"
	OutcomeEscalated RespondOutcome = "escalated"
)

// Respond approves or rejects the pending resolution of a complaint.
// Rejection requires non-blank feedback, checked before any network call.
func (s *ResolutionService) Respond(ctx context.Context, principal model.Principal, complaintID uuid.UUID, approved bool, feedback string) (RespondOutcome, error) {
	action := lifecycle.ActionApprove
	if !approved {
		action = lifecycle.ActionReject
		if strings.TrimSpace(feedback) == "" {
			return "", fmt.Errorf("%w: rejection feedback must not be blank", ErrInvalidInput)
		}
	}
	if err := requireRole(principal, action); err != nil {
		return "", err
	}

	complaint, err := s.remote.GetComplaint(ctx, complaintID)
	if err != nil {
		return "", mapRemoteError(err)
	}
	if err := s.checkTransition(complaint.Status, action, principal.Role); err != nil {
		return "", err
	}
	if !complaint.AuthoredBy(principal.UserID) {
		return "", fmt.Errorf("%w: only the complaint author may respond", ErrPermissionDenied)
	}

	pending, err := s.pendingResolution(ctx, complaintID)
	if err != nil {
		return "", err
	}

	if !s.guard.begin(complaintID, KindRespond) {
		return "", ErrActionInFlight
	}
	defer s.guard.end(complaintID, KindRespond)

	if err := s.remote.RespondResolution(ctx, complaintID, pending.ID, approved, strings.TrimSpace(feedback)); err != nil {
		return "", mapRemoteError(err)
	}

	if approved {
		return OutcomeResolved, nil
	}
	return OutcomeEscalated, nil
}

// PendingResolution returns the complaint's resolution awaiting citizen
// response, or ErrNoPendingResolution.
func (s *ResolutionService) PendingResolution(ctx context.Context, complaintID uuid.UUID) (*model.Resolution, error) {
	return s.pendingResolution(ctx, complaintID)
}

// Resolutions lists the complaint's full resolution history.
func (s *ResolutionService) Resolutions(ctx context.Context, complaintID uuid.UUID) ([]model.Resolution, error) {
	resolutions, err := s.remote.ListResolutions(ctx, complaintID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return resolutions, nil
}

func (s *ResolutionService) pendingResolution(ctx context.Context, complaintID uuid.UUID) (*model.Resolution, error) {
	resolutions, err := s.remote.ListResolutions(ctx, complaintID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	for i := range resolutions {
		if resolutions[i].IsPending() {
			return &resolutions[i], nil
		}
	}
	return nil, ErrNoPendingResolution
}

// requireRole rejects a caller whose role cannot ever trigger the action,
// before any remote fetch happens.
func requireRole(principal model.Principal, action lifecycle.Action) error {
	role, err := lifecycle.RoleFor(action)
	if err != nil {
		return ErrInvalidInput
	}
	if principal.Role != role {
		return fmt.Errorf("%w: action %s requires role %s", ErrPermissionDenied, action, role)
	}
	return nil
}

func (s *ResolutionService) checkTransition(status model.ComplaintStatus, action lifecycle.Action, role model.Role) error {
	err := lifecycle.Check(status, action, role)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lifecycle.ErrRoleNotAllowed):
		return fmt.Errorf("%w: action %s requires a different role", ErrPermissionDenied, action)
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		if action == lifecycle.ActionApprove || action == lifecycle.ActionReject {
			return ErrNoPendingResolution
		}
		return fmt.Errorf("%w: %s not allowed from status %s", ErrInvalidStatus, action, status)
	default:
		return ErrInvalidInput
	}
}
