package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/exobase-inc/exo-api/internal/aggregate"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/view"
)

// PlatformService handles platform operations within a workspace.
type PlatformService struct {
	repo  domain.WorkspaceRepository
	cache ViewCache
	log   zerolog.Logger
	now   func() time.Time
}

// NewPlatformService creates a new platform service.
func NewPlatformService(repo domain.WorkspaceRepository, cache ViewCache, log zerolog.Logger) *PlatformService {
	return &PlatformService{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "platform-service").Logger(),
		now:   time.Now,
	}
}

// PlatformCreate is the input for creating a platform.
type PlatformCreate struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Create adds a platform to the workspace.
func (s *PlatformService) Create(ctx context.Context, actor domain.UserRef, workspaceID domain.ID, input PlatformCreate) (*view.PlatformView, error) {
	platform := domain.Platform{
		ID:          domain.NewID(domain.KindPlatform),
		WorkspaceID: workspaceID,
		Name:        input.Name,
		Sources:     []domain.Source{},
		Units:       []domain.Unit{},
		CreatedAt:   s.now().UnixMilli(),
		CreatedBy:   actor,
	}

	_, err := updateWorkspace(ctx, s.repo, loadByID(s.repo, workspaceID), func(ws *domain.Workspace) error {
		if err := requireMember(ws, actor.ID); err != nil {
			return err
		}
		ws.Platforms = append(ws.Platforms, platform)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspaceID)
	v := view.NewPlatformView(&platform)
	return &v, nil
}

// Find returns the platform view.
func (s *PlatformService) Find(ctx context.Context, actor domain.UserRef, platformID domain.ID) (*view.PlatformView, error) {
	workspace, err := s.repo.FindByPlatformID(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, &domain.ElementNotFoundError{Kind: domain.KindPlatform, ID: platformID}
	}
	if err := requireMember(workspace, actor.ID); err != nil {
		return nil, err
	}

	platform, err := workspace.FindPlatform(platformID)
	if err != nil {
		return nil, err
	}
	v := view.NewPlatformView(platform)
	return &v, nil
}

// ProviderUpdate carries the credential set for one provider. Exactly
// one credential block must be present, matching Provider.
type ProviderUpdate struct {
	Provider domain.CloudProvider `json:"provider" validate:"required,oneof=aws gcp vercel"`
	AWS      *domain.AWSAuth      `json:"aws,omitempty"`
	GCP      *domain.GCPAuth      `json:"gcp,omitempty"`
	Vercel   *domain.VercelAuth   `json:"vercel,omitempty"`
}

// UpdateProvider stores provider credentials on a platform.
func (s *PlatformService) UpdateProvider(ctx context.Context, actor domain.UserRef, platformID domain.ID, input ProviderUpdate) (*view.PlatformView, error) {
	var updated domain.Platform

	_, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		if err := requireMember(ws, actor.ID); err != nil {
			return err
		}
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}

		next := *platform
		switch input.Provider {
		case domain.ProviderAWS:
			if input.AWS == nil {
				return fmt.Errorf("aws credentials missing")
			}
			next.Providers.AWS.Auth = input.AWS
		case domain.ProviderGCP:
			if input.GCP == nil {
				return fmt.Errorf("gcp credentials missing")
			}
			next.Providers.GCP.Auth = input.GCP
		case domain.ProviderVercel:
			if input.Vercel == nil {
				return fmt.Errorf("vercel credentials missing")
			}
			next.Providers.Vercel.Auth = input.Vercel
		default:
			return fmt.Errorf("unknown provider %q", input.Provider)
		}

		platforms, err := aggregate.Replace(ws.Platforms, func(p domain.Platform) bool {
			return p.ID == platformID
		}, next)
		if err != nil {
			return err
		}
		ws.Platforms = platforms
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated.WorkspaceID)
	v := view.NewPlatformView(&updated)
	return &v, nil
}

// SourceAdd is the input for connecting a repository.
type SourceAdd struct {
	InstallationID string `json:"installation_id" validate:"required"`
	Private        bool   `json:"private"`
	RepoID         string `json:"repo_id" validate:"required"`
	Owner          string `json:"owner" validate:"required"`
	Repo           string `json:"repo" validate:"required"`
	Provider       string `json:"provider" validate:"required,oneof=github"`
}

// AddSource connects a source repository to the platform. Connecting
// the same repository twice is a no-op.
func (s *PlatformService) AddSource(ctx context.Context, actor domain.UserRef, platformID domain.ID, input SourceAdd) (*view.PlatformView, error) {
	var updated domain.Platform

	_, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		if err := requireMember(ws, actor.ID); err != nil {
			return err
		}
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}

		next := *platform
		if !next.HasSource(input.RepoID) {
			next.Sources = append(append([]domain.Source{}, next.Sources...), domain.Source{
				InstallationID: input.InstallationID,
				Private:        input.Private,
				RepoID:         input.RepoID,
				Owner:          input.Owner,
				Repo:           input.Repo,
				Provider:       input.Provider,
			})
		}

		platforms, err := aggregate.Replace(ws.Platforms, func(p domain.Platform) bool {
			return p.ID == platformID
		}, next)
		if err != nil {
			return err
		}
		ws.Platforms = platforms
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated.WorkspaceID)
	v := view.NewPlatformView(&updated)
	return &v, nil
}

func (s *PlatformService) invalidate(ctx context.Context, workspaceID domain.ID) {
	if err := s.cache.Invalidate(ctx, workspaceID); err != nil {
		s.log.Warn().Err(err).Str("workspace_id", string(workspaceID)).Msg("failed to invalidate workspace view")
	}
}
