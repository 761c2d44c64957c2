package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/exobase-inc/exo-api/internal/aggregate"
	"github.com/exobase-inc/exo-api/internal/builder"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/ledger"
	"github.com/exobase-inc/exo-api/internal/security"
	"github.com/exobase-inc/exo-api/internal/view"
)

// Ledger entry sources.
const (
	sourceAPI     = "exo.api"
	sourceBuilder = "exo.builder"
)

// DeploymentService handles the deployment lifecycle: creating
// deployments, appending ledger entries as the builder reports
// progress, and keeping the unit's denormalized pointers in line.
type DeploymentService struct {
	repo    domain.WorkspaceRepository
	cache   ViewCache
	builder builder.Trigger
	tokens  *security.TokenManager
	log     zerolog.Logger
	now     func() time.Time
}

// NewDeploymentService creates a new deployment service.
func NewDeploymentService(
	repo domain.WorkspaceRepository,
	cache ViewCache,
	trigger builder.Trigger,
	tokens *security.TokenManager,
	log zerolog.Logger,
) *DeploymentService {
	return &DeploymentService{
		repo:    repo,
		cache:   cache,
		builder: trigger,
		tokens:  tokens,
		log:     log.With().Str("component", "deployment-service").Logger(),
		now:     time.Now,
	}
}

// DeployInput is the input for starting a deployment.
type DeployInput struct {
	Type    domain.DeploymentType `json:"type" validate:"required,oneof=create destroy"`
	Trigger domain.Trigger        `json:"trigger"`
}

// Deploy creates a queued deployment for the unit and asks the
// builder to pick it up. The deployment is persisted before the
// builder is contacted; if the trigger fails it stays queued and can
// be retried.
func (s *DeploymentService) Deploy(ctx context.Context, actor domain.UserRef, platformID, unitID domain.ID, input DeployInput) (*view.DeploymentView, error) {
	var created domain.Deployment
	var workspaceID domain.ID

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
		if aggregate.HasDeploymentInProgress(*unit) {
			return fmt.Errorf("unit %s already has a deployment in progress", unitID)
		}

		trigger := input.Trigger
		if trigger.Type == "" {
			trigger.Type = domain.TriggerUserUI
		}
		if trigger.Type == domain.TriggerUserUI && trigger.User == nil {
			trigger.User = &actor
		}

		dep := domain.Deployment{
			ID:          domain.NewID(domain.KindDeployment),
			WorkspaceID: ws.ID,
			PlatformID:  platformID,
			UnitID:      unitID,
			LogID:       domain.NewID(domain.KindLog),
			Type:        input.Type,
			Trigger:     trigger,
			Vars:        unit.Config,
			Ledger: []domain.LedgerEntry{
				{Status: domain.StatusQueued, Timestamp: s.now().UnixMilli(), Source: sourceAPI},
			},
		}

		next := *unit
		next.Deployments = append(append([]domain.Deployment{}, next.Deployments...), dep)
		latest := dep
		next.LatestDeployment = &latest

		if err := swapUnit(ws, platformID, unitID, next); err != nil {
			return err
		}
		created = dep
		workspaceID = ws.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspace.ID)

	if err := s.triggerBuild(ctx, created); err != nil {
		// The deployment is already durable; report the trigger
		// failure without rolling anything back.
		s.log.Error().Err(err).
			Str("deployment_id", string(created.ID)).
			Str("workspace_id", string(workspaceID)).
			Msg("builder trigger failed, deployment left queued")
	}

	v := view.NewDeploymentView(&created)
	return &v, nil
}

func (s *DeploymentService) triggerBuild(ctx context.Context, dep domain.Deployment) error {
	token, err := s.tokens.IssuePlatformToken(dep.WorkspaceID, dep.PlatformID, []string{
		security.ScopeDeploymentUpdate,
		security.ScopeLogWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to issue platform token: %w", err)
	}

	return s.builder.TriggerBuild(ctx, builder.BuildRequest{
		DeploymentID:  dep.ID,
		WorkspaceID:   dep.WorkspaceID,
		PlatformID:    dep.PlatformID,
		UnitID:        dep.UnitID,
		LogID:         dep.LogID,
		PlatformToken: token,
	})
}

// StatusUpdate is a ledger entry reported by the builder.
type StatusUpdate struct {
	Status    domain.DeploymentStatus `json:"status" validate:"required"`
	Timestamp int64                   `json:"timestamp" validate:"required,gt=0"`
}

// UpdateStatus appends a ledger entry to the deployment and refreshes
// the unit's denormalized pointers in the same document replace.
func (s *DeploymentService) UpdateStatus(ctx context.Context, platformID, unitID, deploymentID domain.ID, input StatusUpdate) (*view.DeploymentView, error) {
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("unknown deployment status %q", input.Status)
	}

	var updated domain.Deployment

	workspace, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}
		unit, err := platform.FindUnit(unitID)
		if err != nil {
			return err
		}
		dep, err := unit.FindDeployment(deploymentID)
		if err != nil {
			return err
		}

		entries, err := ledger.Append(dep.Ledger, domain.LedgerEntry{
			Status:    input.Status,
			Timestamp: input.Timestamp,
			Source:    sourceBuilder,
		})
		if err != nil {
			return err
		}

		next := *dep
		next.Ledger = entries

		nextUnit, err := aggregate.OnLedgerAppended(*unit, next)
		if err != nil {
			return err
		}
		if err := swapUnit(ws, platformID, unitID, nextUnit); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspace.ID)
	v := view.NewDeploymentView(&updated)
	return &v, nil
}

// Cancel appends a canceled entry on behalf of a user. Only
// non-terminal deployments can be canceled; anything else fails the
// transition check.
func (s *DeploymentService) Cancel(ctx context.Context, actor domain.UserRef, platformID, unitID, deploymentID domain.ID) (*view.DeploymentView, error) {
	var updated domain.Deployment

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
		dep, err := unit.FindDeployment(deploymentID)
		if err != nil {
			return err
		}

		entries, err := ledger.Append(dep.Ledger, domain.LedgerEntry{
			Status:    domain.StatusCanceled,
			Timestamp: s.now().UnixMilli(),
			Source:    sourceAPI,
		})
		if err != nil {
			return err
		}

		next := *dep
		next.Ledger = entries

		nextUnit, err := aggregate.OnLedgerAppended(*unit, next)
		if err != nil {
			return err
		}
		if err := swapUnit(ws, platformID, unitID, nextUnit); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, workspace.ID)
	v := view.NewDeploymentView(&updated)
	return &v, nil
}

// RecordOutput stores the build output on the deployment and mirrors
// it onto the unit's attributes. Output is the one field a terminal
// deployment still accepts.
func (s *DeploymentService) RecordOutput(ctx context.Context, platformID, unitID, deploymentID domain.ID, output map[string]any) error {
	workspace, err := updateWorkspace(ctx, s.repo, loadByPlatformID(s.repo, platformID), func(ws *domain.Workspace) error {
		platform, err := ws.FindPlatform(platformID)
		if err != nil {
			return err
		}
		unit, err := platform.FindUnit(unitID)
		if err != nil {
			return err
		}
		dep, err := unit.FindDeployment(deploymentID)
		if err != nil {
			return err
		}

		next := *dep
		next.Output = output

		nextUnit, err := aggregate.OnOutputRecorded(*unit, next)
		if err != nil {
			return err
		}
		nextUnit.Attributes = output

		return swapUnit(ws, platformID, unitID, nextUnit)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, workspace.ID)
	return nil
}

// ListForUnit returns views of every deployment of the unit, newest
// first by creation order.
func (s *DeploymentService) ListForUnit(ctx context.Context, actor domain.UserRef, platformID, unitID domain.ID) ([]view.DeploymentView, error) {
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

	views := make([]view.DeploymentView, 0, len(unit.Deployments))
	for i := len(unit.Deployments) - 1; i >= 0; i-- {
		views = append(views, view.NewDeploymentView(&unit.Deployments[i]))
	}
	return views, nil
}

// GetContext returns the full provisioning bundle for one deployment.
// Builder-facing; the caller must hold a platform token for the
// deployment's platform.
func (s *DeploymentService) GetContext(ctx context.Context, platformID, unitID, deploymentID domain.ID) (*view.DeploymentContextView, error) {
	workspace, err := s.repo.FindByPlatformID(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, &domain.ElementNotFoundError{Kind: domain.KindPlatform, ID: platformID}
	}

	platform, err := workspace.FindPlatform(platformID)
	if err != nil {
		return nil, err
	}
	unit, err := platform.FindUnit(unitID)
	if err != nil {
		return nil, err
	}
	dep, err := unit.FindDeployment(deploymentID)
	if err != nil {
		return nil, err
	}

	contextView, err := view.NewDeploymentContextView(workspace, platform, unit, dep)
	if err != nil {
		return nil, err
	}
	return &contextView, nil
}

func (s *DeploymentService) invalidate(ctx context.Context, workspaceID domain.ID) {
	if err := s.cache.Invalidate(ctx, workspaceID); err != nil {
		s.log.Warn().Err(err).Str("workspace_id", string(workspaceID)).Msg("failed to invalidate workspace view")
	}
}
