package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// MockShiftService mocks shift.Service
type MockShiftService struct {
	mock.Mock
}

func (m *MockShiftService) StartShift(ctx context.Context, staffID string, openingCash domain.Amount) (*domain.ShiftMutationResult, error) {
	args := m.Called(ctx, staffID, openingCash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftMutationResult), args.Error(1)
}

func (m *MockShiftService) PauseShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftMutationResult), args.Error(1)
}

func (m *MockShiftService) ResumeShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftMutationResult), args.Error(1)
}

func (m *MockShiftService) EndShift(ctx context.Context, input domain.EndShiftInput) (*domain.EndShiftResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EndShiftResult), args.Error(1)
}

func (m *MockShiftService) ActiveShift(ctx context.Context, staffID string) (*domain.StaffShift, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffShift), args.Error(1)
}

// MockSyncEngine mocks SyncEngine
type MockSyncEngine struct {
	mock.Mock
}

func (m *MockSyncEngine) Sync(ctx context.Context) (domain.SyncSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SyncSummary), args.Error(1)
}

func (m *MockSyncEngine) Status(ctx context.Context) domain.SyncStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.SyncStatus)
}

func (m *MockSyncEngine) Conflicts() []domain.SyncConflict {
	args := m.Called()
	return args.Get(0).([]domain.SyncConflict)
}

func (m *MockSyncEngine) ResolveConflict(ctx context.Context, conflictID string, resolution domain.Resolution, mergedData domain.Record) error {
	args := m.Called(ctx, conflictID, resolution, mergedData)
	return args.Error(0)
}

func (m *MockSyncEngine) ResumeAfterLogin(ctx context.Context) {
	m.Called(ctx)
}

// MockPinger mocks Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMutationService mocks MutationApplier
type MockMutationService struct {
	mock.Mock
}

func (m *MockMutationService) Apply(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}
