package view

import (
	"fmt"

	"github.com/exobase-inc/exo-api/internal/aggregate"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/ledger"
)

// Unit event trails can grow for the life of a unit; views only carry
// the first page.
const maxUnitEvents = 20

// NewWorkspaceView renders a workspace aggregate.
func NewWorkspaceView(ws *domain.Workspace) WorkspaceView {
	platforms := make([]PlatformView, 0, len(ws.Platforms))
	for i := range ws.Platforms {
		platforms = append(platforms, NewPlatformView(&ws.Platforms[i]))
	}
	members := make([]MemberView, 0, len(ws.Members))
	for _, m := range ws.Members {
		members = append(members, MemberView{User: m.User, Role: m.Role})
	}
	return WorkspaceView{
		View:         "exo.workspace",
		ID:           ws.ID,
		Name:         ws.Name,
		Subscription: SubscriptionView{Plan: ws.Subscription.Plan},
		Members:      members,
		Platforms:    platforms,
		CreatedAt:    ws.CreatedAt,
	}
}

// NewPlatformView renders a platform; deleted units are dropped.
func NewPlatformView(p *domain.Platform) PlatformView {
	units := make([]UnitView, 0, len(p.Units))
	for i := range p.Units {
		if p.Units[i].Deleted {
			continue
		}
		units = append(units, NewUnitView(&p.Units[i]))
	}

	sources := make([]SourceView, 0, len(p.Sources))
	for _, s := range p.Sources {
		sources = append(sources, newSourceView(s))
	}

	var awsRegion string
	if p.Providers.AWS.Auth != nil {
		awsRegion = p.Providers.AWS.Auth.Region
	}

	return PlatformView{
		View:        "exo.platform",
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Units:       units,
		Providers: ProvidersView{
			AWS: AWSProviderView{
				Region:     awsRegion,
				Configured: p.Providers.AWS.Configured(),
				Domains:    domainsOrEmpty(p.Providers.AWS.Domains),
			},
			GCP: SimpleProviderView{
				Configured: p.Providers.GCP.Configured(),
				Domains:    domainsOrEmpty(p.Providers.GCP.Domains),
			},
			Vercel: SimpleProviderView{
				Configured: p.Providers.Vercel.Configured(),
				Domains:    domainsOrEmpty(p.Providers.Vercel.Domains),
			},
		},
		Sources:               sources,
		HasConnectedGithubApp: len(p.Sources) > 0,
		CreatedAt:             p.CreatedAt,
		CreatedBy:             p.CreatedBy,
	}
}

// NewUnitView renders a unit with its derived deployment summary.
func NewUnitView(u *domain.Unit) UnitView {
	deployments := make([]DeploymentView, 0, len(u.Deployments))
	for i := range u.Deployments {
		deployments = append(deployments, NewDeploymentView(&u.Deployments[i]))
	}

	var latest, active *DeploymentView
	if u.LatestDeployment != nil {
		v := NewDeploymentView(u.LatestDeployment)
		latest = &v
	}
	if u.ActiveDeployment != nil {
		v := NewDeploymentView(u.ActiveDeployment)
		active = &v
	}

	var source *SourceView
	if u.Source != nil {
		v := newSourceView(*u.Source)
		source = &v
	}

	events := u.Events
	if len(events) > maxUnitEvents {
		events = events[:maxUnitEvents]
	}

	return UnitView{
		View:                      "exo.unit",
		ID:                        u.ID,
		Name:                      u.Name,
		Type:                      u.Type,
		PlatformID:                u.PlatformID,
		WorkspaceID:               u.WorkspaceID,
		Source:                    source,
		Tags:                      u.Tags,
		Deployments:               deployments,
		LatestDeployment:          latest,
		ActiveDeployment:          active,
		HasDeploymentInProgress:   aggregate.HasDeploymentInProgress(*u),
		HasDeployedInfrastructure: aggregate.HasDeployedInfrastructure(*u),
		Domain:                    u.Domain,
		Attributes:                u.Attributes,
		Config:                    u.Config,
		Events:                    events,
		Deleted:                   u.Deleted,
		CreatedAt:                 u.CreatedAt,
		CreatedBy:                 u.CreatedBy,
		Pack:                      u.Pack,
	}
}

// NewDeploymentView renders a deployment, deriving status and
// timestamps from its ledger.
func NewDeploymentView(d *domain.Deployment) DeploymentView {
	proj := ledger.Derive(d.Ledger)
	return DeploymentView{
		View:        "exo.deployment",
		ID:          d.ID,
		WorkspaceID: d.WorkspaceID,
		PlatformID:  d.PlatformID,
		UnitID:      d.UnitID,
		LogID:       d.LogID,
		Type:        d.Type,
		Status:      proj.Status,
		StartedAt:   proj.StartedAt,
		FinishedAt:  proj.FinishedAt,
		Output:      d.Output,
		Vars:        d.Vars,
		Trigger:     d.Trigger,
	}
}

// NewDeploymentContextView bundles everything the builder needs to
// run one deployment. The workspace and platform are carried without
// their children to keep the payload bounded.
func NewDeploymentContextView(
	ws *domain.Workspace,
	p *domain.Platform,
	u *domain.Unit,
	d *domain.Deployment,
) (DeploymentContextView, error) {
	creds, err := providerCredentials(p, u.Pack.Provider)
	if err != nil {
		return DeploymentContextView{}, err
	}

	wsView := NewWorkspaceView(ws)
	wsView.Platforms = nil
	pView := NewPlatformView(p)
	pView.Units = nil

	return DeploymentContextView{
		View:       "exo.deployment.context",
		Workspace:  wsView,
		Platform:   pView,
		Unit:       NewUnitView(u),
		Deployment: NewDeploymentView(d),
		Provider:   creds,
	}, nil
}

func providerCredentials(p *domain.Platform, provider domain.CloudProvider) (ProviderCredentialsView, error) {
	out := ProviderCredentialsView{Provider: provider}
	switch provider {
	case domain.ProviderAWS:
		if !p.Providers.AWS.Configured() {
			return out, fmt.Errorf("aws provider is not configured on platform %s", p.ID)
		}
		out.AWS = &AWSCredentials{
			AccessKeyID:     p.Providers.AWS.Auth.AccessKeyID,
			AccessKeySecret: p.Providers.AWS.Auth.AccessKeySecret,
			Region:          p.Providers.AWS.Auth.Region,
		}
	case domain.ProviderGCP:
		if !p.Providers.GCP.Configured() {
			return out, fmt.Errorf("gcp provider is not configured on platform %s", p.ID)
		}
		out.GCP = &GCPCredentials{JSONCredentials: p.Providers.GCP.Auth.JSONCredentials}
	case domain.ProviderVercel:
		if !p.Providers.Vercel.Configured() {
			return out, fmt.Errorf("vercel provider is not configured on platform %s", p.ID)
		}
		out.Vercel = &VercelCredentials{Token: p.Providers.Vercel.Auth.Token}
	default:
		return out, fmt.Errorf("unknown provider %q", provider)
	}
	return out, nil
}

func newSourceView(s domain.Source) SourceView {
	return SourceView{
		Private:  s.Private,
		RepoID:   s.RepoID,
		Owner:    s.Owner,
		Repo:     s.Repo,
		Provider: s.Provider,
	}
}

func domainsOrEmpty(domains []domain.DomainEntry) []domain.DomainEntry {
	if domains == nil {
		return []domain.DomainEntry{}
	}
	return domains
}
