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
	"github.com/exobase-inc/exo-api/internal/view"
)

func newWorkspaceService(repo *MockWorkspaceRepository, cache *MockViewCache) *WorkspaceService {
	svc := NewWorkspaceService(repo, cache, zerolog.Nop())
	svc.now = func() time.Time { return time.UnixMilli(5000) }
	return svc
}

func TestWorkspaceCreate_ActorBecomesOwner(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	var inserted *domain.Workspace
	repo.On("Insert", ctx, mock.AnythingOfType("*domain.Workspace")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*domain.Workspace)
		}).
		Return(nil)

	ws, err := svc.Create(ctx, testActor, WorkspaceCreate{Name: "acme"})
	require.NoError(t, err)

	assert.Equal(t, "acme", ws.Name)
	assert.Equal(t, "free", ws.Subscription.Plan)
	require.Len(t, ws.Members, 1)
	assert.Equal(t, domain.RoleOwner, ws.Members[0].Role)

	require.NotNil(t, inserted)
	assert.Equal(t, domain.KindWorkspace, inserted.ID.Kind())
	assert.Equal(t, int64(5000), inserted.CreatedAt)
}

func TestWorkspaceFind_ServedFromCache(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	cached := &view.WorkspaceView{
		ID:      workspaceID,
		Name:    "acme",
		Members: []view.MemberView{{User: testActor, Role: domain.RoleOwner}},
	}
	cache.On("Get", ctx, workspaceID).Return(cached, nil)

	ws, err := svc.Find(ctx, testActor, workspaceID)

	require.NoError(t, err)
	assert.Equal(t, cached, ws)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestWorkspaceFind_CacheMissFillsCache(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	cache.On("Get", ctx, workspaceID).Return(nil, nil)
	repo.On("FindByID", ctx, workspaceID).Return(fixtureWorkspace(), nil)
	cache.On("Set", ctx, workspaceID, mock.AnythingOfType("*view.WorkspaceView")).Return(nil)

	ws, err := svc.Find(ctx, testActor, workspaceID)

	require.NoError(t, err)
	assert.Equal(t, workspaceID, ws.ID)
	cache.AssertExpectations(t)
}

func TestWorkspaceFind_NonMemberDenied(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	cache.On("Get", ctx, workspaceID).Return(nil, nil)
	repo.On("FindByID", ctx, workspaceID).Return(fixtureWorkspace(), nil)

	stranger := domain.UserRef{ID: "exo.user.ffffffffffffffffffffffff"}
	_, err := svc.Find(ctx, stranger, workspaceID)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestWorkspaceFind_NotFound(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	cache.On("Get", ctx, workspaceID).Return(nil, nil)
	repo.On("FindByID", ctx, workspaceID).Return(nil, nil)

	_, err := svc.Find(ctx, testActor, workspaceID)

	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestAddMember_RequiresOwner(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	ws := fixtureWorkspace()
	ws.Members[0].Role = domain.RoleDeveloper
	repo.On("FindByID", ctx, workspaceID).Return(ws, nil)

	newUser := domain.UserRef{ID: "exo.user.000000000000000000000002", Username: "new"}
	_, err := svc.AddMember(ctx, testActor, workspaceID, newUser, domain.RoleDeveloper)

	assert.ErrorIs(t, err, ErrAccessDenied)
	repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestAddMember_InvalidatesCache(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	cache := new(MockViewCache)
	svc := newWorkspaceService(repo, cache)
	ctx := context.Background()

	repo.On("FindByID", ctx, workspaceID).Return(fixtureWorkspace(), nil)
	repo.On("Replace", ctx, mock.AnythingOfType("*domain.Workspace")).Return(nil)
	cache.On("Invalidate", ctx, workspaceID).Return(nil)

	newUser := domain.UserRef{ID: "exo.user.000000000000000000000002", Username: "new"}
	ws, err := svc.AddMember(ctx, testActor, workspaceID, newUser, domain.RoleAuditor)

	require.NoError(t, err)
	assert.Len(t, ws.Members, 2)
	cache.AssertExpectations(t)
}
