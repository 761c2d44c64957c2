package domain

// Platform is a deployable environment embedded in exactly one
// workspace.
type Platform struct {
	ID          ID        `bson:"id" json:"id"`
	WorkspaceID ID        `bson:"workspaceId" json:"workspace_id"`
	Name        string    `bson:"name" json:"name"`
	Providers   Providers `bson:"providers" json:"providers"`
	Sources     []Source  `bson:"sources" json:"sources"`
	Units       []Unit    `bson:"units" json:"units"`
	CreatedAt   int64     `bson:"createdAt" json:"created_at"`
	CreatedBy   UserRef   `bson:"createdBy" json:"created_by"`
}

// CloudProvider identifies a provisioning target.
type CloudProvider string

const (
	ProviderAWS    CloudProvider = "aws"
	ProviderGCP    CloudProvider = "gcp"
	ProviderVercel CloudProvider = "vercel"
)

// Providers holds the per-provider configuration of a platform.
// Credentials are internal-only and never serialized to clients.
type Providers struct {
	AWS    AWSProvider    `bson:"aws" json:"aws"`
	GCP    GCPProvider    `bson:"gcp" json:"gcp"`
	Vercel VercelProvider `bson:"vercel" json:"vercel"`
}

// AWSProvider carries AWS credentials and connected domains.
type AWSProvider struct {
	Auth    *AWSAuth      `bson:"_auth,omitempty" json:"-"`
	Domains []DomainEntry `bson:"domains" json:"domains"`
}

// AWSAuth is the credential set for an AWS provider.
type AWSAuth struct {
	AccessKeyID     string `bson:"accessKeyId" json:"-"`
	AccessKeySecret string `bson:"accessKeySecret" json:"-"`
	Region          string `bson:"region" json:"region"`
}

// Configured reports whether the provider has a complete credential set.
func (p AWSProvider) Configured() bool {
	return p.Auth != nil &&
		p.Auth.AccessKeyID != "" &&
		p.Auth.AccessKeySecret != "" &&
		p.Auth.Region != ""
}

// GCPProvider carries GCP credentials and connected domains.
type GCPProvider struct {
	Auth    *GCPAuth      `bson:"_auth,omitempty" json:"-"`
	Domains []DomainEntry `bson:"domains" json:"domains"`
}

// GCPAuth is the credential set for a GCP provider.
type GCPAuth struct {
	JSONCredentials string `bson:"jsonCredentials" json:"-"`
}

// Configured reports whether the provider has credentials.
func (p GCPProvider) Configured() bool {
	return p.Auth != nil && p.Auth.JSONCredentials != ""
}

// VercelProvider carries a Vercel token and connected domains.
type VercelProvider struct {
	Auth    *VercelAuth   `bson:"_auth,omitempty" json:"-"`
	Domains []DomainEntry `bson:"domains" json:"domains"`
}

// VercelAuth is the credential set for a Vercel provider.
type VercelAuth struct {
	Token string `bson:"token" json:"-"`
}

// Configured reports whether the provider has a token.
func (p VercelProvider) Configured() bool {
	return p.Auth != nil && p.Auth.Token != ""
}

// DomainStatus is the provisioning state of a connected domain.
type DomainStatus string

const (
	DomainReady        DomainStatus = "ready"
	DomainProvisioning DomainStatus = "provisioning"
	DomainError        DomainStatus = "error"
)

// DomainEntry is a DNS domain connected to a provider on a platform.
type DomainEntry struct {
	ID          ID            `bson:"id" json:"id"`
	WorkspaceID ID            `bson:"workspaceId" json:"workspace_id"`
	PlatformID  ID            `bson:"platformId" json:"platform_id"`
	Domain      string        `bson:"domain" json:"domain"`
	Provider    CloudProvider `bson:"provider" json:"provider"`
	Status      DomainStatus  `bson:"status" json:"status"`
}

// Source is a connected source repository. The installation id is an
// internal GitHub App reference and never leaves the document.
type Source struct {
	InstallationID string `bson:"_installationId" json:"-"`
	Private        bool   `bson:"private" json:"private"`
	RepoID         string `bson:"repoId" json:"repo_id"`
	Owner          string `bson:"owner" json:"owner"`
	Repo           string `bson:"repo" json:"repo"`
	Provider       string `bson:"provider" json:"provider"`
}

// FindUnit returns the embedded unit with the given id.
func (p *Platform) FindUnit(id ID) (*Unit, error) {
	for i := range p.Units {
		if p.Units[i].ID == id {
			return &p.Units[i], nil
		}
	}
	return nil, &ElementNotFoundError{Kind: KindUnit, ID: id}
}

// HasSource reports whether a repository is already connected.
func (p *Platform) HasSource(repoID string) bool {
	for _, s := range p.Sources {
		if s.RepoID == repoID {
			return true
		}
	}
	return false
}
