// Package view renders persistence entities into the shapes handed
// to request handlers: derived fields are computed, denormalized
// state is summarized and internal-only fields are stripped. Raw
// documents never leave the core.
package view

import "github.com/exobase-inc/exo-api/internal/domain"

// WorkspaceView is the client-facing workspace projection.
type WorkspaceView struct {
	View         string           `json:"_view"`
	ID           domain.ID        `json:"id"`
	Name         string           `json:"name"`
	Subscription SubscriptionView `json:"subscription"`
	Members      []MemberView     `json:"members"`
	Platforms    []PlatformView   `json:"platforms"`
	CreatedAt    int64            `json:"created_at"`
}

// SubscriptionView exposes the billing plan without internal ids.
type SubscriptionView struct {
	Plan string `json:"plan"`
}

// MemberView is a workspace member.
type MemberView struct {
	User domain.UserRef    `json:"user"`
	Role domain.MemberRole `json:"role"`
}

// PlatformView is the client-facing platform projection. Deleted
// units are filtered out.
type PlatformView struct {
	View                  string         `json:"_view"`
	ID                    domain.ID      `json:"id"`
	WorkspaceID           domain.ID      `json:"workspace_id"`
	Name                  string         `json:"name"`
	Units                 []UnitView     `json:"units"`
	Providers             ProvidersView  `json:"providers"`
	Sources               []SourceView   `json:"sources"`
	HasConnectedGithubApp bool           `json:"has_connected_github_app"`
	CreatedAt             int64          `json:"created_at"`
	CreatedBy             domain.UserRef `json:"created_by"`
}

// ProvidersView reduces provider credentials to a configured flag.
type ProvidersView struct {
	AWS    AWSProviderView    `json:"aws"`
	GCP    SimpleProviderView `json:"gcp"`
	Vercel SimpleProviderView `json:"vercel"`
}

// AWSProviderView additionally surfaces the configured region.
type AWSProviderView struct {
	Region     string               `json:"region,omitempty"`
	Configured bool                 `json:"configured"`
	Domains    []domain.DomainEntry `json:"domains"`
}

// SimpleProviderView is the shape shared by non-AWS providers.
type SimpleProviderView struct {
	Configured bool                 `json:"configured"`
	Domains    []domain.DomainEntry `json:"domains"`
}

// SourceView is a connected repository without its installation id.
type SourceView struct {
	Private  bool   `json:"private"`
	RepoID   string `json:"repo_id"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Branch   string `json:"branch,omitempty"`
	Provider string `json:"provider"`
}

// UnitView is the client-facing unit projection with its derived
// deployment summary flags.
type UnitView struct {
	View                      string             `json:"_view"`
	ID                        domain.ID          `json:"id"`
	Name                      string             `json:"name"`
	Type                      string             `json:"type"`
	PlatformID                domain.ID          `json:"platform_id"`
	WorkspaceID               domain.ID          `json:"workspace_id"`
	Source                    *SourceView        `json:"source,omitempty"`
	Tags                      []domain.Tag       `json:"tags"`
	Deployments               []DeploymentView   `json:"deployments"`
	LatestDeployment          *DeploymentView    `json:"latest_deployment,omitempty"`
	ActiveDeployment          *DeploymentView    `json:"active_deployment,omitempty"`
	HasDeploymentInProgress   bool               `json:"has_deployment_in_progress"`
	HasDeployedInfrastructure bool               `json:"has_deployed_infrastructure"`
	Domain                    *domain.DomainRef  `json:"domain,omitempty"`
	Attributes                map[string]any     `json:"attributes,omitempty"`
	Config                    domain.UnitConfig  `json:"config"`
	Events                    []domain.UnitEvent `json:"events"`
	Deleted                   bool               `json:"deleted"`
	CreatedAt                 int64              `json:"created_at"`
	CreatedBy                 domain.UserRef     `json:"created_by"`
	Pack                      domain.PackRef     `json:"pack"`
}

// DeploymentView is the client-facing deployment projection; status
// and timestamps are derived from the ledger at render time.
type DeploymentView struct {
	View        string                  `json:"_view"`
	ID          domain.ID               `json:"id"`
	WorkspaceID domain.ID               `json:"workspace_id"`
	PlatformID  domain.ID               `json:"platform_id"`
	UnitID      domain.ID               `json:"unit_id"`
	LogID       domain.ID               `json:"log_id"`
	Type        domain.DeploymentType   `json:"type"`
	Status      domain.DeploymentStatus `json:"status"`
	StartedAt   *int64                  `json:"started_at"`
	FinishedAt  *int64                  `json:"finished_at"`
	Output      map[string]any          `json:"output,omitempty"`
	Vars        domain.UnitConfig       `json:"vars"`
	Trigger     domain.Trigger          `json:"trigger"`
}

// DeploymentContextView is the bundle handed to the builder: the
// deployment plus its ancestors and, unlike every other view, the
// resolved provider credentials it provisions with.
type DeploymentContextView struct {
	View       string                  `json:"_view"`
	Workspace  WorkspaceView           `json:"workspace"`
	Platform   PlatformView            `json:"platform"`
	Unit       UnitView                `json:"unit"`
	Deployment DeploymentView          `json:"deployment"`
	Provider   ProviderCredentialsView `json:"provider"`
}

// ProviderCredentialsView carries provisioning credentials for the
// builder. Builder-facing only; never returned to end users. The
// domain credential types hide themselves from JSON, so the fields
// are re-declared here with explicit tags.
type ProviderCredentialsView struct {
	Provider domain.CloudProvider `json:"provider"`
	AWS      *AWSCredentials      `json:"aws,omitempty"`
	GCP      *GCPCredentials      `json:"gcp,omitempty"`
	Vercel   *VercelCredentials   `json:"vercel,omitempty"`
}

// AWSCredentials is the builder-facing AWS credential set.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	Region          string `json:"region"`
}

// GCPCredentials is the builder-facing GCP credential set.
type GCPCredentials struct {
	JSONCredentials string `json:"json_credentials"`
}

// VercelCredentials is the builder-facing Vercel credential set.
type VercelCredentials struct {
	Token string `json:"token"`
}
