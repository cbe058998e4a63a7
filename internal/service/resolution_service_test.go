package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"complaint-engine/internal/model"
	"complaint-engine/internal/remote"
	"complaint-engine/internal/service"
)

func newResolutionService(client remote.Client) *service.ResolutionService {
	return service.NewResolutionService(client, zerolog.Nop())
}

func TestAssign_MovesUnsolvedToInProgress(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Roads"}
	worker := uuid.New()
	id := uuid.New()
	eta := time.Now().Add(72 * time.Hour)

	client.On("GetComplaint", mock.Anything, id).
		Return(&model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusUnsolved}, nil).Once()
	client.On("AssignComplaint", mock.Anything, id, mock.Anything).Return(nil).Once()

	got, err := svc.Assign(context.Background(), authority, id, service.AssignInput{
		FieldWorkerID:          worker,
		ExpectedResolutionTime: &eta,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusInProgress, got.Status)
	require.NotNil(t, got.AssignedFieldWorker)
	assert.Equal(t, worker, *got.AssignedFieldWorker)
	require.NotNil(t, got.ExpectedResolutionTime)
	client.AssertExpectations(t)
}

func TestAssign_EscalatedReentersAssignment(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Roads"}
	id := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(&model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusEscalated}, nil).Once()
	client.On("AssignComplaint", mock.Anything, id, mock.Anything).Return(nil).Once()

	got, err := svc.Assign(context.Background(), authority, id, service.AssignInput{FieldWorkerID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusInProgress, got.Status)
}

func TestAssign_Rejections(t *testing.T) {
	id := uuid.New()

	t.Run("wrong role fails before any fetch", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)
		citizen := model.Principal{UserID: uuid.New(), Role: model.RoleCitizen}

		_, err := svc.Assign(context.Background(), citizen, id, service.AssignInput{FieldWorkerID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		client.AssertNotCalled(t, "GetComplaint", mock.Anything, mock.Anything)
	})

	t.Run("department mismatch", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)
		authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Water"}

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusUnsolved}, nil).Once()

		_, err := svc.Assign(context.Background(), authority, id, service.AssignInput{FieldWorkerID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		client.AssertNotCalled(t, "AssignComplaint", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already in progress", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)
		authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Roads"}

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusInProgress}, nil).Once()

		_, err := svc.Assign(context.Background(), authority, id, service.AssignInput{FieldWorkerID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("missing fieldworker", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)
		authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Roads"}

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusUnsolved}, nil).Once()

		_, err := svc.Assign(context.Background(), authority, id, service.AssignInput{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestSubmitResolution_CreatesPendingApproval(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	worker := model.Principal{UserID: uuid.New(), Role: model.RoleFieldWorker, Department: "Roads"}
	id := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(&model.Complaint{
			ID:                  id,
			Status:              model.ComplaintStatusInProgress,
			AssignedFieldWorker: &worker.UserID,
		}, nil).Once()
	client.On("SubmitResolution", mock.Anything, id, remote.SubmitResolutionInput{Description: "Fixed pothole"}).
		Return(&model.Resolution{
			ID:          uuid.New(),
			ComplaintID: id,
			Description: "Fixed pothole",
			Status:      model.ResolutionStatusPendingApproval,
		}, nil).Once()

	got, err := svc.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "Fixed pothole"})
	require.NoError(t, err)
	assert.True(t, got.IsPending())
	client.AssertExpectations(t)
}

func TestSubmitResolution_Rejections(t *testing.T) {
	id := uuid.New()
	worker := model.Principal{UserID: uuid.New(), Role: model.RoleFieldWorker}

	t.Run("needs description or image", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)

		_, err := svc.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "   "})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		client.AssertNotCalled(t, "GetComplaint", mock.Anything, mock.Anything)
	})

	t.Run("image alone suffices", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Status: model.ComplaintStatusInProgress, AssignedFieldWorker: &worker.UserID}, nil).Once()
		client.On("SubmitResolution", mock.Anything, id, mock.Anything).
			Return(&model.Resolution{ID: uuid.New(), Status: model.ResolutionStatusPendingApproval}, nil).Once()

		_, err := svc.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Images: []string{"after.jpg"}})
		assert.NoError(t, err)
	})

	t.Run("not the assigned worker", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)
		other := uuid.New()

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Status: model.ComplaintStatusInProgress, AssignedFieldWorker: &other}, nil).Once()

		_, err := svc.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "done"})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		client.AssertNotCalled(t, "SubmitResolution", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("complaint not in progress", func(t *testing.T) {
		client := new(mockRemote)
		svc := newResolutionService(client)

		client.On("GetComplaint", mock.Anything, id).
			Return(&model.Complaint{ID: id, Status: model.ComplaintStatusUnsolved, AssignedFieldWorker: &worker.UserID}, nil).Once()

		_, err := svc.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "done"})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})
}

func pendingApprovalComplaint(id uuid.UUID, author uuid.UUID) *model.Complaint {
	return &model.Complaint{ID: id, Status: model.ComplaintStatusPendingApproval, PostedBy: &author}
}

func TestRespond_ApproveResolves(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	author := citizenPrincipal()
	id := uuid.New()
	resolutionID := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(pendingApprovalComplaint(id, author.UserID), nil).Once()
	client.On("ListResolutions", mock.Anything, id).
		Return([]model.Resolution{{ID: resolutionID, Status: model.ResolutionStatusPendingApproval}}, nil).Once()
	client.On("RespondResolution", mock.Anything, id, resolutionID, true, "").Return(nil).Once()

	outcome, err := svc.Respond(context.Background(), author, id, true, "")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeResolved, outcome)
	client.AssertExpectations(t)
}

func TestRespond_RejectEscalates(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	author := citizenPrincipal()
	id := uuid.New()
	resolutionID := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(pendingApprovalComplaint(id, author.UserID), nil).Once()
	client.On("ListResolutions", mock.Anything, id).
		Return([]model.Resolution{{ID: resolutionID, Status: model.ResolutionStatusPendingApproval}}, nil).Once()
	client.On("RespondResolution", mock.Anything, id, resolutionID, false, "Not fixed").Return(nil).Once()

	outcome, err := svc.Respond(context.Background(), author, id, false, "Not fixed")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeEscalated, outcome)
	client.AssertExpectations(t)
}

func TestRespond_BlankFeedbackRejectedBeforeNetwork(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	author := citizenPrincipal()

	for _, feedback := range []string{"", "   ", "\t\n"} {
		_, err := svc.Respond(context.Background(), author, uuid.New(), false, feedback)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}
	client.AssertNotCalled(t, "GetComplaint", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "RespondResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_NoPendingResolution(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	author := citizenPrincipal()
	id := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(pendingApprovalComplaint(id, author.UserID), nil).Once()
	client.On("ListResolutions", mock.Anything, id).
		Return([]model.Resolution{{ID: uuid.New(), Status: model.ResolutionStatusApproved}}, nil).Once()

	_, err := svc.Respond(context.Background(), author, id, true, "")
	assert.ErrorIs(t, err, service.ErrNoPendingResolution)
}

func TestRespond_ComplaintNotAwaitingApproval(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	author := citizenPrincipal()
	id := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(&model.Complaint{ID: id, Status: model.ComplaintStatusInProgress, PostedBy: &author.UserID}, nil).Once()

	_, err := svc.Respond(context.Background(), author, id, true, "")
	assert.ErrorIs(t, err, service.ErrNoPendingResolution)
}

func TestRespond_OnlyAuthorMayRespond(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	stranger := citizenPrincipal()
	id := uuid.New()

	client.On("GetComplaint", mock.Anything, id).
		Return(pendingApprovalComplaint(id, uuid.New()), nil).Once()

	_, err := svc.Respond(context.Background(), stranger, id, true, "")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	client.AssertNotCalled(t, "RespondResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_WrongRoleFailsBeforeFetch(t *testing.T) {
	client := new(mockRemote)
	svc := newResolutionService(client)
	authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority}

	_, err := svc.Respond(context.Background(), authority, uuid.New(), true, "")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	client.AssertNotCalled(t, "GetComplaint", mock.Anything, mock.Anything)
}

func TestFullLifecycleWalk(t *testing.T) {
	// One complaint through assign, submit, reject, reassign, resubmit,
	// approve, with the remote confirming each step.
	client := new(mockRemote)
	resolutions := newResolutionService(client)
	authority := model.Principal{UserID: uuid.New(), Role: model.RoleAuthority, Department: "Roads"}
	worker := model.Principal{UserID: uuid.New(), Role: model.RoleFieldWorker, Department: "Roads"}
	author := citizenPrincipal()
	id := uuid.New()

	current := &model.Complaint{ID: id, Department: "Roads", Status: model.ComplaintStatusUnsolved, PostedBy: &author.UserID}
	client.On("GetComplaint", mock.Anything, id).Return(current, nil)
	client.On("AssignComplaint", mock.Anything, id, mock.Anything).Return(nil)
	client.On("SubmitResolution", mock.Anything, id, mock.Anything).
		Return(&model.Resolution{ID: uuid.New(), ComplaintID: id, Status: model.ResolutionStatusPendingApproval}, nil)
	client.On("ListResolutions", mock.Anything, id).
		Return([]model.Resolution{{ID: uuid.New(), Status: model.ResolutionStatusPendingApproval}}, nil)
	client.On("RespondResolution", mock.Anything, id, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	assigned, err := resolutions.Assign(context.Background(), authority, id, service.AssignInput{FieldWorkerID: worker.UserID})
	require.NoError(t, err)
	current.Status = assigned.Status
	current.AssignedFieldWorker = assigned.AssignedFieldWorker

	_, err = resolutions.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "Patched"})
	require.NoError(t, err)
	current.Status = model.ComplaintStatusPendingApproval

	outcome, err := resolutions.Respond(context.Background(), author, id, false, "Still broken")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeEscalated, outcome)
	current.Status = model.ComplaintStatusEscalated

	_, err = resolutions.Assign(context.Background(), authority, id, service.AssignInput{FieldWorkerID: worker.UserID})
	require.NoError(t, err)
	current.Status = model.ComplaintStatusInProgress

	_, err = resolutions.SubmitResolution(context.Background(), worker, id, service.SubmitResolutionInput{Description: "Repatched properly"})
	require.NoError(t, err)
	current.Status = model.ComplaintStatusPendingApproval

	outcome, err = resolutions.Respond(context.Background(), author, id, true, "")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeResolved, outcome)
}
