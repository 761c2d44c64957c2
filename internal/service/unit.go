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

// Unit audit event names.
const (
	eventUnitCreated       = "unit-created"
	eventUnitConfigUpdated = "unit-config-updated"
	eventUnitDeleted       = "unit-deleted"
)

// UnitService handles unit operations within a platform.
type UnitService struct {
	repo  domain.WorkspaceRepository
	cache ViewCache
	log   zerolog.Logger
	now   func() time.Time
}

// NewUnitService creates a new unit service.
func NewUnitService(repo domain.WorkspaceRepository, cache ViewCache, log zerolog.Logger) *UnitService {
	return &UnitService{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "unit-service").Logger(),
		now:   time.Now,
	}
}

// UnitCreate is the input for creating a unit.
type UnitCreate struct {
	Name   string            `json:"name" validate:"required,min=1,max=100"`
	Type   string            `json:"type" validate:"required"`
	Tags   []domain.Tag      `json:"tags"`
	Pack   domain.PackRef    `json:"pack" validate:"required"`
	Config domain.UnitConfig `json:"config"`
	Source *domain.Source    `json:"source,omitempty"`
}

// Create adds a unit to the platform with a creation audit event.
func (s *UnitService) Create(ctx context.Context, actor domain.UserRef, platformID domain.ID, input UnitCreate) (*view.UnitView, error) {
	var created domain.Unit

	workspace, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		if err := requireMember(ws, actor.ID); err != nil {
			return err
		}
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}

		now := s.now().UnixMilli()
		unit := domain.Unit{
			ID:          domain.NewID(domain.KindUnit),
			PlatformID:  platformID,
			WorkspaceID: ws.ID,
			Name:        input.Name,
			Type:        input.Type,
			Tags:        input.Tags,
			Pack:        input.Pack,
			Config:      input.Config,
			Source:      input.Source,
			Deployments: []domain.Deployment{},
			Events: []domain.UnitEvent{
				{Timestamp: now, Event: eventUnitCreated, User: actor},
			},
			CreatedAt: now,
			CreatedBy: actor,
		}

		next := *platform
		next.Units = append(append([]domain.Unit{}, next.Units...), unit)

		platforms, err := aggregate.Replace(ws.Platforms, func(p domain.Platform) bool {
			return p.ID == platformID
		}, next)
		if err != nil {
			return err
		}
		ws.Platforms = platforms
		created = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspace.ID)
	v := view.NewUnitView(&created)
	return &v, nil
}

// Find returns the unit view.
func (s *UnitService) Find(ctx context.Context, actor domain.UserRef, platformID, unitID domain.ID) (*view.UnitView, error) {
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
	unit, err := platform.FindUnit(unitID)
	if err != nil {
		return nil, err
	}

	v := view.NewUnitView(unit)
	return &v, nil
}

// UpdateConfig replaces the unit's provisioning config and records an
// audit event. The config snapshot of existing deployments is not
// touched; the new config applies to future deployments.
func (s *UnitService) UpdateConfig(ctx context.Context, actor domain.UserRef, platformID, unitID domain.ID, cfg domain.UnitConfig) (*view.UnitView, error) {
	updated, err := s.updateUnit(ctx, actor, platformID, unitID, func(unit domain.Unit) (domain.Unit, error) {
		next := unit
		next.Config = cfg
		next.Events = appendEvent(next.Events, domain.UnitEvent{
			Timestamp: s.now().UnixMilli(),
			Event:     eventUnitConfigUpdated,
			User:      actor,
		})
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	v := view.NewUnitView(updated)
	return &v, nil
}

// MarkDeleted soft-deletes the unit. The document stays in the
// aggregate for audit; views filter it out. A unit with a deployment
// in flight cannot be deleted.
func (s *UnitService) MarkDeleted(ctx context.Context, actor domain.UserRef, platformID, unitID domain.ID) error {
	_, err := s.updateUnit(ctx, actor, platformID, unitID, func(unit domain.Unit) (domain.Unit, error) {
		if aggregate.HasDeploymentInProgress(unit) {
			return domain.Unit{}, fmt.Errorf("unit %s has a deployment in progress", unitID)
		}

		event := domain.UnitEvent{
			Timestamp: s.now().UnixMilli(),
			Event:     eventUnitDeleted,
			User:      actor,
		}
		next := unit
		next.Deleted = true
		next.DeleteEvent = &event
		next.Events = appendEvent(next.Events, event)
		return next, nil
	})
	return err
}

// updateUnit rebuilds one unit inside its platform and workspace and
// persists the whole aggregate.
func (s *UnitService) updateUnit(
	ctx context.Context,
	actor domain.UserRef,
	platformID, unitID domain.ID,
	apply func(domain.Unit) (domain.Unit, error),
) (*domain.Unit, error) {
	var updated domain.Unit

	workspace, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		if err := requireMember(ws, actor.ID); err != nil {
			return err
		}
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}
		unit, err := platform.FindUnit(unitID)
		if err != nil {
			return err
		}

		next, err := apply(*unit)
		if err != nil {
			return err
		}

		if err := swapUnit(ws, platformID, unitID, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspace.ID)
	return &updated, nil
}

func (s *UnitService) invalidate(ctx context.Context, workspaceID domain.ID) {
	if err := s.cache.Invalidate(ctx, workspaceID); err != nil {
		s.log.Warn().Err(err).Str("workspace_id", string(workspaceID)).Msg("failed to invalidate workspace view")
	}
}

// appendEvent prepends the newest event so views page from the top.
func appendEvent(events []domain.UnitEvent, event domain.UnitEvent) []domain.UnitEvent {
	next := make([]domain.UnitEvent, 0, len(events)+1)
	next = append(next, event)
	return append(next, events...)
}
