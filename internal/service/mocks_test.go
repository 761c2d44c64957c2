package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/exobase-inc/exo-api/internal/builder"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/view"
)

// MockWorkspaceRepository mocks domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Insert(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) FindByID(ctx context.Context, id domain.ID) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) FindByPlatformID(ctx context.Context, platformID domain.ID) (*domain.Workspace, error) {
	args := m.Called(ctx, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListForUser(ctx context.Context, userID domain.ID) ([]domain.Workspace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) Replace(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

// MockViewCache mocks ViewCache
type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) Get(ctx context.Context, id domain.ID) (*view.WorkspaceView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*view.WorkspaceView), args.Error(1)
}

func (m *MockViewCache) Set(ctx context.Context, id domain.ID, ws *view.WorkspaceView) error {
	args := m.Called(ctx, id, ws)
	return args.Error(0)
}

func (m *MockViewCache) Invalidate(ctx context.Context, id domain.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBuilder mocks builder.Trigger
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) TriggerBuild(ctx context.Context, req builder.BuildRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
