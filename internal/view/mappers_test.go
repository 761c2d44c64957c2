package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func le(status domain.DeploymentStatus, ts int64) domain.LedgerEntry {
	return domain.LedgerEntry{Status: status, Timestamp: ts, Source: "exo.builder"}
}

func TestNewDeploymentView_DerivesLifecycleFields(t *testing.T) {
	dep := domain.Deployment{
		ID:   "exo.deploy.d1",
		Type: domain.DeploymentTypeCreate,
		Ledger: []domain.LedgerEntry{
			le(domain.StatusQueued, 100),
			le(domain.StatusInProgress, 150),
			le(domain.StatusSuccess, 300),
		},
	}

	v := NewDeploymentView(&dep)

	assert.Equal(t, "exo.deployment", v.View)
	assert.Equal(t, domain.StatusSuccess, v.Status)
	require.NotNil(t, v.StartedAt)
	assert.Equal(t, int64(100), *v.StartedAt)
	require.NotNil(t, v.FinishedAt)
	assert.Equal(t, int64(300), *v.FinishedAt)
}

func TestNewPlatformView_FiltersDeletedUnits(t *testing.T) {
	platform := domain.Platform{
		ID: "exo.platform.p1",
		Units: []domain.Unit{
			{ID: "exo.unit.live"},
			{ID: "exo.unit.gone", Deleted: true},
		},
	}

	v := NewPlatformView(&platform)

	require.Len(t, v.Units, 1)
	assert.Equal(t, domain.ID("exo.unit.live"), v.Units[0].ID)
}

func TestNewPlatformView_ProviderFlags(t *testing.T) {
	platform := domain.Platform{
		Providers: domain.Providers{
			AWS: domain.AWSProvider{
				Auth: &domain.AWSAuth{AccessKeyID: "k", AccessKeySecret: "s", Region: "eu-west-1"},
			},
		},
		Sources: []domain.Source{{RepoID: "1", Owner: "o", Repo: "r", Provider: "github"}},
	}

	v := NewPlatformView(&platform)

	assert.True(t, v.Providers.AWS.Configured)
	assert.Equal(t, "eu-west-1", v.Providers.AWS.Region)
	assert.False(t, v.Providers.GCP.Configured)
	assert.True(t, v.HasConnectedGithubApp)
	assert.NotNil(t, v.Providers.AWS.Domains)
}

func TestNewUnitView_EventsCapped(t *testing.T) {
	unit := domain.Unit{ID: "exo.unit.u1"}
	for i := 0; i < 30; i++ {
		unit.Events = append(unit.Events, domain.UnitEvent{Timestamp: int64(i)})
	}

	v := NewUnitView(&unit)

	assert.Len(t, v.Events, maxUnitEvents)
}

func TestNewDeploymentContextView_ResolvesCredentialsAndTrimsTree(t *testing.T) {
	dep := domain.Deployment{
		ID:     "exo.deploy.d1",
		Type:   domain.DeploymentTypeCreate,
		Ledger: []domain.LedgerEntry{le(domain.StatusQueued, 100)},
	}
	unit := domain.Unit{
		ID:          "exo.unit.u1",
		Pack:        domain.PackRef{Provider: domain.ProviderAWS},
		Deployments: []domain.Deployment{dep},
	}
	platform := domain.Platform{
		ID: "exo.platform.p1",
		Providers: domain.Providers{
			AWS: domain.AWSProvider{
				Auth: &domain.AWSAuth{AccessKeyID: "key", AccessKeySecret: "secret", Region: "us-east-1"},
			},
		},
		Units: []domain.Unit{unit},
	}
	ws := domain.Workspace{
		ID:        "exo.workspace.w1",
		Platforms: []domain.Platform{platform},
	}

	v, err := NewDeploymentContextView(&ws, &platform, &unit, &dep)
	require.NoError(t, err)

	require.NotNil(t, v.Provider.AWS)
	assert.Equal(t, "key", v.Provider.AWS.AccessKeyID)
	assert.Equal(t, "secret", v.Provider.AWS.AccessKeySecret)
	assert.Nil(t, v.Provider.GCP)

	// Ancestors are carried without their children.
	assert.Nil(t, v.Workspace.Platforms)
	assert.Nil(t, v.Platform.Units)
	assert.Equal(t, domain.ID("exo.deploy.d1"), v.Deployment.ID)
}

func TestNewDeploymentContextView_UnconfiguredProviderFails(t *testing.T) {
	dep := domain.Deployment{ID: "exo.deploy.d1"}
	unit := domain.Unit{Pack: domain.PackRef{Provider: domain.ProviderGCP}}
	platform := domain.Platform{ID: "exo.platform.p1"}
	ws := domain.Workspace{ID: "exo.workspace.w1"}

	_, err := NewDeploymentContextView(&ws, &platform, &unit, &dep)
	assert.Error(t, err)
}
