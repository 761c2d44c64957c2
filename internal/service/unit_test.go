package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func newUnitService(repo *MockWorkspaceRepository, cache *MockViewCache) *UnitService {
	svc := NewUnitService(repo, cache, zerolog.Nop())
	svc.now = func() time.Time { return time.UnixMilli(5000) }
	return svc
}

func TestUnitCreate_RecordsCreationEvent(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newUnitService(repo, cache)
	ctx := context.Background()

	repo.On("FindByPlatformID", ctx, platformID).Return(fixtureWorkspace(), nil)

	var persisted *domain.Workspace
	repo.On("Replace", ctx, mock.AnythingOfType("*domain.Workspace")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Workspace)
		}).
		Return(nil)
	cache.On("Invalidate", ctx, workspaceID).Return(nil)

	unit, err := svc.Create(ctx, testActor, platformID, UnitCreate{
		Name: "worker",
		Type: "api",
		Pack: domain.PackRef{Name: "aws-lambda", Provider: domain.ProviderAWS},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindUnit, unit.ID.Kind())
	require.Len(t, unit.Events, 1)
	assert.Equal(t, "unit-created", unit.Events[0].Event)
	assert.Equal(t, testActor.ID, unit.Events[0].User.ID)

	require.NotNil(t, persisted)
	assert.Len(t, persisted.Platforms[0].Units, 2)
}

func TestUnitMarkDeleted_SoftDeletes(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newUnitService(repo, cache)
	ctx := context.Background()

	repo.On("FindByPlatformID", ctx, platformID).Return(fixtureWorkspace(), nil)

	var persisted *domain.Workspace
	repo.On("Replace", ctx, mock.AnythingOfType("*domain.Workspace")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Workspace)
		}).
		Return(nil)
	cache.On("Invalidate", ctx, workspaceID).Return(nil)

	err := svc.MarkDeleted(ctx, testActor, platformID, unitID)
	require.NoError(t, err)

	unit := persisted.Platforms[0].Units[0]
	assert.True(t, unit.Deleted)
	require.NotNil(t, unit.DeleteEvent)
	assert.Equal(t, "unit-deleted", unit.DeleteEvent.Event)
	// The unit document stays in the aggregate for audit.
	assert.Len(t, persisted.Platforms[0].Units, 1)
}

func TestUnitMarkDeleted_BlockedWhileDeploying(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newUnitService(repo, cache)
	ctx := context.Background()

	repo.On("FindByPlatformID", ctx, platformID).Return(fixtureWorkspace(queuedDeployment()), nil)

	err := svc.MarkDeleted(ctx, testActor, platformID, unitID)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestUnitUpdateConfig_AppendsEventNewestFirst(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newUnitService(repo, cache)
	ctx := context.Background()

	ws := fixtureWorkspace()
	ws.Platforms[0].Units[0].Events = []domain.UnitEvent{
		{Timestamp: 1000, Event: "unit-created", User: testActor},
	}
	repo.On("FindByPlatformID", ctx, platformID).Return(ws, nil)
	repo.On("Replace", ctx, mock.AnythingOfType("*domain.Workspace")).Return(nil)
	cache.On("Invalidate", ctx, workspaceID).Return(nil)

	unit, err := svc.UpdateConfig(ctx, testActor, platformID, unitID, domain.UnitConfig{Stack: "aws:s3-static-site"})
	require.NoError(t, err)

	assert.Equal(t, "aws:s3-static-site", unit.Config.Stack)
	require.Len(t, unit.Events, 2)
	assert.Equal(t, "unit-config-updated", unit.Events[0].Event)
	assert.Equal(t, "unit-created", unit.Events[1].Event)
}
