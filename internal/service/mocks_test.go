package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"complaint-engine/internal/model"
	"complaint-engine/internal/remote"
)

type mockRemote struct {
	mock.Mock
}

var _ remote.Client = (*mockRemote)(nil)

func (m *mockRemote) ListComplaints(ctx context.Context, q remote.ListQuery) ([]model.Complaint, error) {
	args := m.Called(ctx, q)
	complaints, _ := args.Get(0).([]model.Complaint)
	return complaints, args.Error(1)
}

func (m *mockRemote) SearchComplaints(ctx context.Context, query string) ([]model.Complaint, error) {
	args := m.Called(ctx, query)
	complaints, _ := args.Get(0).([]model.Complaint)
	return complaints, args.Error(1)
}

func (m *mockRemote) GetComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	args := m.Called(ctx, id)
	complaint, _ := args.Get(0).(*model.Complaint)
	return complaint, args.Error(1)
}

func (m *mockRemote) CreateComplaint(ctx context.Context, input remote.CreateComplaintInput) (*model.Complaint, error) {
	args := m.Called(ctx, input)
	complaint, _ := args.Get(0).(*model.Complaint)
	return complaint, args.Error(1)
}

func (m *mockRemote) ToggleUpvote(ctx context.Context, id uuid.UUID) (remote.VoteResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(remote.VoteResult)
	return result, args.Error(1)
}

func (m *mockRemote) ReportFake(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRemote) AssignComplaint(ctx context.Context, id uuid.UUID, input remote.AssignInput) error {
	return m.Called(ctx, id, input).Error(0)
}

func (m *mockRemote) SubmitResolution(ctx context.Context, id uuid.UUID, input remote.SubmitResolutionInput) (*model.Resolution, error) {
	args := m.Called(ctx, id, input)
	resolution, _ := args.Get(0).(*model.Resolution)
	return resolution, args.Error(1)
}

func (m *mockRemote) ListResolutions(ctx context.Context, id uuid.UUID) ([]model.Resolution, error) {
	args := m.Called(ctx, id)
	resolutions, _ := args.Get(0).([]model.Resolution)
	return resolutions, args.Error(1)
}

func (m *mockRemote) RespondResolution(ctx context.Context, complaintID, resolutionID uuid.UUID, approved bool, feedback string) error {
	return m.Called(ctx, complaintID, resolutionID, approved, feedback).Error(0)
}

func (m *mockRemote) DeleteComplaint(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// memStore is an in-memory ledger.Store for service tests.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}
