package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/view"
)

// WorkspaceService handles workspace operations.
type WorkspaceService struct {
	repo  domain.WorkspaceRepository
	cache ViewCache
	log   zerolog.Logger
	now   func() time.Time
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(repo domain.WorkspaceRepository, cache ViewCache, log zerolog.Logger) *WorkspaceService {
	return &WorkspaceService{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "workspace-service").Logger(),
		now:   time.Now,
	}
}

// WorkspaceCreate is the input for creating a workspace.
type WorkspaceCreate struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Plan string `json:"plan" validate:"omitempty,oneof=free team enterprise"`
}

// Create creates a new workspace with the creator as owner.
func (s *WorkspaceService) Create(ctx context.Context, actor domain.UserRef, input WorkspaceCreate) (*view.WorkspaceView, error) {
	plan := input.Plan
	if plan == "" {
		plan = "free"
	}

	workspace := &domain.Workspace{
		ID:           domain.NewID(domain.KindWorkspace),
		Name:         input.Name,
		Subscription: domain.Subscription{Plan: plan},
		Members:      []domain.Member{{User: actor, Role: domain.RoleOwner}},
		Platforms:    []domain.Platform{},
		CreatedAt:    s.now().UnixMilli(),
	}

	if err := s.repo.Insert(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	v := view.NewWorkspaceView(workspace)
	return &v, nil
}

// Find returns the workspace view, served from cache when possible.
// Access is checked against the membership list.
func (s *WorkspaceService) Find(ctx context.Context, actor domain.UserRef, id domain.ID) (*view.WorkspaceView, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
		if memberOfView(cached, actor.ID) {
			return cached, nil
		}
		return nil, ErrAccessDenied
	}

	workspace, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, &domain.ElementNotFoundError{Kind: domain.KindWorkspace, ID: id}
	}
	if !workspace.HasMember(actor.ID) {
		return nil, ErrAccessDenied
	}

	v := view.NewWorkspaceView(workspace)
	if err := s.cache.Set(ctx, id, &v); err != nil {
		s.log.Warn().Err(err).Str("workspace_id", string(id)).Msg("failed to cache workspace view")
	}
	return &v, nil
}

// ListForUser returns views of every workspace the user belongs to.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID domain.ID) ([]view.WorkspaceView, error) {
	workspaces, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	views := make([]view.WorkspaceView, 0, len(workspaces))
	for i := range workspaces {
		views = append(views, view.NewWorkspaceView(&workspaces[i]))
	}
	return views, nil
}

// AddMember adds a user to the workspace. Only owners may manage
// membership.
func (s *WorkspaceService) AddMember(ctx context.Context, actor domain.UserRef, workspaceID domain.ID, user domain.UserRef, role domain.MemberRole) (*view.WorkspaceView, error) {
	workspace, err := updateWorkspace(ctx, s.repo, loadByID(s.repo, workspaceID), func(ws *domain.Workspace) error {
		if err := requireRole(ws, actor.ID, domain.RoleOwner); err != nil {
			return err
		}
		for _, m := range ws.Members {
			if m.User.ID == user.ID {
				return fmt.Errorf("user %s is already a member", user.ID)
			}
		}
		ws.Members = append(ws.Members, domain.Member{User: user, Role: role})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspaceID)
	v := view.NewWorkspaceView(workspace)
	return &v, nil
}

func (s *WorkspaceService) invalidate(ctx context.Context, id domain.ID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("workspace_id", string(id)).Msg("failed to invalidate workspace view")
	}
}

// requireRole checks that the user is a member holding exactly the
// given role.
func requireRole(ws *domain.Workspace, userID domain.ID, role domain.MemberRole) error {
	for _, m := range ws.Members {
		if m.User.ID == userID {
			if m.Role == role {
				return nil
			}
			return ErrAccessDenied
		}
	}
	return ErrAccessDenied
}

// requireMember checks plain membership.
func requireMember(ws *domain.Workspace, userID domain.ID) error {
	if !ws.HasMember(userID) {
		return ErrAccessDenied
	}
	return nil
}

func memberOfView(ws *view.WorkspaceView, userID domain.ID) bool {
	for _, m := range ws.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}
