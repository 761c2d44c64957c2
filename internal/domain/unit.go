package domain

// Unit is a deployable artifact embedded in a platform. Its
// latestDeployment and activeDeployment pointers are denormalized
// caches and must always be recomputable from the deployments list.
type Unit struct {
	ID          ID         `bson:"id" json:"id"`
	PlatformID  ID         `bson:"platformId" json:"platform_id"`
	WorkspaceID ID         `bson:"workspaceId" json:"workspace_id"`
	Name        string     `bson:"name" json:"name"`
	Type        string     `bson:"type" json:"type"`
	Tags        []Tag      `bson:"tags" json:"tags"`
	Pack        PackRef    `bson:"pack" json:"pack"`
	Config      UnitConfig `bson:"config" json:"config"`
	Source      *Source    `bson:"source,omitempty" json:"source,omitempty"`
	Domain      *DomainRef `bson:"domain,omitempty" json:"domain,omitempty"`

	Deployments      []Deployment `bson:"deployments" json:"deployments"`
	LatestDeployment *Deployment  `bson:"latestDeployment,omitempty" json:"latest_deployment,omitempty"`
	ActiveDeployment *Deployment  `bson:"activeDeployment,omitempty" json:"active_deployment,omitempty"`

	// Attributes are set by the deployment-completion callback and
	// mirror the latest deployment output.
	Attributes map[string]any `bson:"attributes,omitempty" json:"attributes,omitempty"`

	Events []UnitEvent `bson:"events" json:"events"`

	Deleted     bool       `bson:"deleted" json:"deleted"`
	DeleteEvent *UnitEvent `bson:"deleteEvent,omitempty" json:"delete_event,omitempty"`

	CreatedAt int64   `bson:"createdAt" json:"created_at"`
	CreatedBy UserRef `bson:"createdBy" json:"created_by"`
}

// Tag is a free-form name/value label on a unit.
type Tag struct {
	Name  string `bson:"name" json:"name"`
	Value string `bson:"value" json:"value"`
}

// UnitEvent is an audit entry recorded on a unit (creation, deletion,
// config changes) with the acting user.
type UnitEvent struct {
	Timestamp int64   `bson:"timestamp" json:"timestamp"`
	Event     string  `bson:"event" json:"event"`
	User      UserRef `bson:"user" json:"user"`
}

// PackRef pins the build package a unit deploys with.
type PackRef struct {
	ID       ID            `bson:"id" json:"id"`
	Name     string        `bson:"name" json:"name"`
	Version  string        `bson:"version" json:"version"`
	Type     string        `bson:"type" json:"type"`
	Provider CloudProvider `bson:"provider" json:"provider"`
	Service  string        `bson:"service" json:"service"`
	Language string        `bson:"language" json:"language"`
}

// UnitConfig is the provisioning input for a unit. Stack selects the
// variant; unknown stacks round-trip through Raw untouched so newer
// documents survive older readers.
type UnitConfig struct {
	Stack                string               `bson:"stack" json:"stack"`
	EnvironmentVariables []EnvVar             `bson:"environmentVariables,omitempty" json:"environment_variables,omitempty"`
	AWSLambda            *AWSLambdaConfig     `bson:"awsLambda,omitempty" json:"aws_lambda,omitempty"`
	AWSStaticSite        *AWSStaticSiteConfig `bson:"awsStaticSite,omitempty" json:"aws_static_site,omitempty"`
	Raw                  map[string]any       `bson:"raw,omitempty" json:"raw,omitempty"`
}

// EnvVar is a single environment variable passed to the build.
type EnvVar struct {
	Name   string `bson:"name" json:"name"`
	Value  string `bson:"value" json:"value"`
	Secret bool   `bson:"secret" json:"secret"`
}

// AWSLambdaConfig configures an aws:lambda stack.
type AWSLambdaConfig struct {
	Timeout int    `bson:"timeout" json:"timeout"`
	Memory  int    `bson:"memory" json:"memory"`
	Runtime string `bson:"runtime" json:"runtime"`
}

// AWSStaticSiteConfig configures an aws:s3-static-site stack.
type AWSStaticSiteConfig struct {
	DistDirectory string `bson:"distDirectory" json:"dist_directory"`
	PreBuildCmd   string `bson:"preBuildCommand" json:"pre_build_command"`
}

// DomainRef attaches a connected domain (plus optional subdomain) to
// a unit.
type DomainRef struct {
	ID        ID     `bson:"id" json:"id"`
	Domain    string `bson:"domain" json:"domain"`
	Subdomain string `bson:"subdomain,omitempty" json:"subdomain,omitempty"`
	FQD       string `bson:"fqd,omitempty" json:"fqd,omitempty"`
}

// FindDeployment returns the embedded deployment with the given id.
func (u *Unit) FindDeployment(id ID) (*Deployment, error) {
	for i := range u.Deployments {
		if u.Deployments[i].ID == id {
			return &u.Deployments[i], nil
		}
	}
	return nil, &ElementNotFoundError{Kind: KindDeployment, ID: id}
}
