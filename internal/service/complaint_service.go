package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"complaint-engine/internal/ledger"
	"complaint-engine/internal/model"
	"complaint-engine/internal/remote"
	"complaint-engine/internal/view"
)

type ComplaintService struct {
	remote remote.Client
	ledger *ledger.Ledger
	votes  *voteCache
	guard  *inflightGuard
	log    zerolog.Logger
}

func NewComplaintService(client remote.Client, reportLedger *ledger.Ledger, log zerolog.Logger) *ComplaintService {
	return &ComplaintService{
		remote: client,
		ledger: reportLedger,
		votes:  newVoteCache(),
		guard:  newInflightGuard(),
		log:    log,
	}
}

// List fetches the collection and derives the principal's projection. A
// non-empty search text routes to the search endpoint and fully replaces
// the structural filters; that is the upstream system's behavior, preserved
// deliberately rather than composed away.
func (s *ComplaintService) List(ctx context.Context, principal model.Principal, q view.Query) ([]view.ComplaintView, error) {
	var (
		complaints []model.Complaint
		err        error
	)

	if strings.TrimSpace(q.Search) != "" {
		if q.Department != "" || q.Pincode != "" {
			s.log.Debug().
				Str("department", q.Department).
				Str("pincode", q.Pincode).
				Msg("search text supersedes structural filters")
		}
		complaints, err = s.remote.SearchComplaints(ctx, strings.TrimSpace(q.Search))
	} else {
		complaints, err = s.remote.ListComplaints(ctx, remote.ListQuery{
			Department: q.Department,
			Pincode:    q.Pincode,
			SortBy:     q.Sort,
			Order:      q.Order,
		})
	}
	if err != nil {
		return nil, mapRemoteError(err)
	}

	complaints = s.votes.overlay(principal.UserID, complaints)

	reported, err := s.reportedSet(ctx, principal)
	if err != nil {
		return nil, err
	}
	return view.Derive(complaints, principal, q, reported), nil
}

// Feed derives the principal's projection of a prefetched snapshot. The
// viewer's in-flight vote overlay and report ledger apply exactly as on
// List, so the feed never re-offers a consumed report action.
func (s *ComplaintService) Feed(ctx context.Context, principal model.Principal, complaints []model.Complaint, q view.Query) ([]view.ComplaintView, error) {
	complaints = s.votes.overlay(principal.UserID, complaints)

	reported, err := s.reportedSet(ctx, principal)
	if err != nil {
		return nil, err
	}
	return view.Derive(complaints, principal, q, reported), nil
}

// Get returns a single complaint with the viewer's optimistic vote state
// applied.
func (s *ComplaintService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.remote.GetComplaint(ctx, id)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	if state, ok := s.votes.get(principal.UserID, id); ok {
		complaint.UpvoteCount = state.UpvoteCount
		complaint.ViewerHasUpvoted = state.HasUpvoted
	}
	return complaint, nil
}

type CreateComplaintInput struct {
	Content    string
	Address    string
	Pincode    string
	Location   model.Location
	Department string
	Images     []string
}

// Create validates and forwards a new complaint. Location must be either a
// coordinate pair or a manual address, never both and never neither.
func (s *ComplaintService) Create(ctx context.Context, principal model.Principal, input CreateComplaintInput) (*model.Complaint, error) {
	if !principal.IsCitizen() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Department) == "" {
		return nil, fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	if input.Location.HasCoordinates() == input.Location.HasManualAddress() {
		return nil, fmt.Errorf("%w: location must be exactly one of coordinates or manual address", ErrInvalidInput)
	}
	if len(input.Images) > model.MaxComplaintImages {
		return nil, fmt.Errorf("%w: at most %d images", ErrInvalidInput, model.MaxComplaintImages)
	}

	complaint, err := s.remote.CreateComplaint(ctx, remote.CreateComplaintInput{
		Content:    input.Content,
		Address:    input.Address,
		Pincode:    input.Pincode,
		Location:   input.Location,
		Department: input.Department,
		Images:     input.Images,
	})
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return complaint, nil
}

// ToggleUpvote applies the optimistic toggle, issues the remote mutation,
// and reconciles with the authoritative result. On failure the exact
// pre-toggle snapshot is restored. A second toggle for the same complaint
// while one is in flight is ignored and issues no network call.
func (s *ComplaintService) ToggleUpvote(ctx context.Context, principal model.Principal, complaintID uuid.UUID, current VoteState) (VoteState, error) {
	if !principal.IsAuthenticated() {
		return current, ErrPermissionDenied
	}
	if !s.guard.begin(complaintID, KindUpvote) {
		return current, ErrActionInFlight
	}
	defer s.guard.end(complaintID, KindUpvote)

	optimistic, token := applyToggle(complaintID, current)
	s.votes.put(principal.UserID, complaintID, optimistic)

	result, err := s.remote.ToggleUpvote(ctx, complaintID)
	if err != nil {
		// The toggle never landed, so the remote's records still match the
		// pre-toggle snapshot; nothing to overlay.
		s.votes.drop(principal.UserID, complaintID)
		return token.Prev, mapRemoteError(err)
	}

	// Remote wins over the optimistic guess to absorb concurrent votes.
	// The cache entry is dropped, not rewritten: the authoritative record
	// carries the vote from here on, and a kept copy would mask later
	// votes from other viewers.
	s.votes.drop(principal.UserID, complaintID)
	return VoteState{UpvoteCount: result.UpvoteCount, HasUpvoted: result.HasUpvoted}, nil
}

// ReportFake registers a fake report. The ledger check runs before any
// network call, so an already-reported complaint never issues a second
// request. The visible count is re-derived from a remote refresh rather
// than incremented locally, because fake confidence may be computed
// server-side from multiple signals.
func (s *ComplaintService) ReportFake(ctx context.Context, principal model.Principal, complaintID uuid.UUID) (*model.Complaint, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrPermissionDenied
	}

	reported, err := s.ledger.Contains(ctx, principal.UserID, complaintID)
	if err != nil {
		return nil, err
	}
	if reported {
		return nil, ErrAlreadyReported
	}

	if !s.guard.begin(complaintID, KindReport) {
		return nil, ErrActionInFlight
	}
	defer s.guard.end(complaintID, KindReport)

	if err := s.remote.ReportFake(ctx, complaintID); err != nil {
		return nil, mapRemoteError(err)
	}
	if err := s.ledger.Add(ctx, principal.UserID, complaintID); err != nil {
		// The remote report landed; losing the ledger write would re-offer
		// the action, so surface it.
		return nil, err
	}

	fresh, err := s.remote.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return fresh, nil
}

// Delete is confirmed-then-applied: the author check and the remote call
// both precede any local cleanup, so a permission failure leaves the
// complaint visible.
func (s *ComplaintService) Delete(ctx context.Context, principal model.Principal, complaintID uuid.UUID) error {
	complaint, err := s.remote.GetComplaint(ctx, complaintID)
	if err != nil {
		return mapRemoteError(err)
	}
	if !complaint.AuthoredBy(principal.UserID) {
		return ErrPermissionDenied
	}

	if !s.guard.begin(complaintID, KindDelete) {
		return ErrActionInFlight
	}
	defer s.guard.end(complaintID, KindDelete)

	if err := s.remote.DeleteComplaint(ctx, complaintID); err != nil {
		return mapRemoteError(err)
	}
	s.votes.drop(principal.UserID, complaintID)
	return nil
}

func (s *ComplaintService) reportedSet(ctx context.Context, principal model.Principal) (map[uuid.UUID]bool, error) {
	if !principal.IsAuthenticated() {
		return nil, nil
	}
	ids, err := s.ledger.Reported(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// mapRemoteError folds remote transport errors into the service taxonomy.
func mapRemoteError(err error) error {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, remote.ErrForbidden):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, remote.ErrBadRequest):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrRemoteFailure, err)
	}
}
