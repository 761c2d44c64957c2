// Package service implements the application operations over the
// workspace aggregate. Every mutation follows the same shape: load
// the aggregate, rebuild the nested levels immutably, replace the
// whole document once, and retry the read-modify-replace cycle when
// the revision guard reports a concurrent writer.
package service

import (
	"context"
	"errors"

	"github.com/exobase-inc/exo-api/internal/aggregate"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/view"
)

// ErrAccessDenied is returned when the acting user is not a member of
// the workspace, or the member role does not permit the operation.
var ErrAccessDenied = errors.New("access denied")

// ViewCache caches rendered workspace views.
type ViewCache interface {
	Get(ctx context.Context, id domain.ID) (*view.WorkspaceView, error)
	Set(ctx context.Context, id domain.ID, ws *view.WorkspaceView) error
	Invalidate(ctx context.Context, id domain.ID) error
}

// Replace retries bounded by this; a workspace hot enough to lose the
// race three times in a row surfaces the conflict to the caller.
const maxReplaceAttempts = 3

// updateWorkspace runs the read-modify-replace cycle. load fetches a
// fresh aggregate, apply mutates it in place; the cycle restarts from
// a fresh read when the replace loses the revision race.
func updateWorkspace(
	ctx context.Context,
	repo domain.WorkspaceRepository,
	load func(context.Context) (*domain.Workspace, error),
	apply func(*domain.Workspace) error,
) (*domain.Workspace, error) {
	for attempt := 1; ; attempt++ {
		workspace, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := apply(workspace); err != nil {
			return nil, err
		}

		err = repo.Replace(ctx, workspace)
		if err == nil {
			return workspace, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) || attempt >= maxReplaceAttempts {
			return nil, err
		}
	}
}

// loadByID adapts FindByID into an updateWorkspace loader, converting
// a missing document into ElementNotFoundError.
func loadByID(repo domain.WorkspaceRepository, id domain.ID) func(context.Context) (*domain.Workspace, error) {
	return func(ctx context.Context) (*domain.Workspace, error) {
		workspace, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if workspace == nil {
			return nil, &domain.ElementNotFoundError{Kind: domain.KindWorkspace, ID: id}
		}
		return workspace, nil
	}
}

// swapUnit rebuilds the platform and workspace levels around an
// updated unit, bottom-up.
func swapUnit(ws *domain.Workspace, platformID, unitID domain.ID, next domain.Unit) error {
	platform, err := ws.FindPlatform(platformID)
	if err != nil {
		return err
	}

	units, err := aggregate.Replace(platform.Units, func(u domain.Unit) bool {
		return u.ID == unitID
	}, next)
	if err != nil {
		return err
	}

	nextPlatform := *platform
	nextPlatform.Units = units
	platforms, err := aggregate.Replace(ws.Platforms, func(p domain.Platform) bool {
		return p.ID == platformID
	}, nextPlatform)
	if err != nil {
		return err
	}

	ws.Platforms = platforms
	return nil
}

// loadByPlatformID adapts FindByPlatformID the same way.
func loadByPlatformID(repo domain.WorkspaceRepository, platformID domain.ID) func(context.Context) (*domain.Workspace, error) {
	return func(ctx context.Context) (*domain.Workspace, error) {
		workspace, err := repo.FindByPlatformID(ctx, platformID)
		if err != nil {
			return nil, err
		}
		if workspace == nil {
			return nil, &domain.ElementNotFoundError{Kind: domain.KindPlatform, ID: platformID}
		}
		return workspace, nil
	}
}
