package domain

// Deployment is an immutable record of provisioning intent plus an
// append-only ledger of status events. Its observable status and
// timestamps are derived from the ledger on every read, never stored.
type Deployment struct {
	ID          ID             `bson:"id" json:"id"`
	WorkspaceID ID             `bson:"workspaceId" json:"workspace_id"`
	PlatformID  ID             `bson:"platformId" json:"platform_id"`
	UnitID      ID             `bson:"unitId" json:"unit_id"`
	LogID       ID             `bson:"logId" json:"log_id"`
	Type        DeploymentType `bson:"type" json:"type"`
	Trigger     Trigger        `bson:"trigger" json:"trigger"`

	// Vars is the unit config snapshot the build runs against.
	Vars UnitConfig `bson:"vars" json:"vars"`

	// Output is written once by the completion callback; it is the
	// only field a terminal deployment still accepts.
	Output map[string]any `bson:"output,omitempty" json:"output,omitempty"`

	Ledger []LedgerEntry `bson:"ledger" json:"ledger"`
}

// LedgerEntry is one status event in a deployment's history. Entries
// are never edited, reordered or removed.
type LedgerEntry struct {
	Status    DeploymentStatus `bson:"status" json:"status"`
	Timestamp int64            `bson:"timestamp" json:"timestamp"`
	Source    string           `bson:"source" json:"source"`
}

// TriggerType records what initiated a deployment.
type TriggerType string

const (
	TriggerUserUI   TriggerType = "user-ui"
	TriggerGitPush  TriggerType = "github-push"
	TriggerPipeline TriggerType = "pipeline"
)

// Trigger captures the source of a deployment.
type Trigger struct {
	Type TriggerType `bson:"type" json:"type"`
	User *UserRef    `bson:"user,omitempty" json:"user,omitempty"`
	Git  *GitTrigger `bson:"git,omitempty" json:"git,omitempty"`
}

// GitTrigger identifies the commit behind a push-triggered deployment.
type GitTrigger struct {
	CommitID string `bson:"commitId" json:"commit_id"`
	Branch   string `bson:"branch" json:"branch"`
	Owner    string `bson:"owner" json:"owner"`
	Repo     string `bson:"repo" json:"repo"`
}

// CreatedAt is the timestamp of the first ledger entry, which is the
// deployment's creation order. Zero for an empty ledger.
func (d *Deployment) CreatedAt() int64 {
	if len(d.Ledger) == 0 {
		return 0
	}
	return d.Ledger[0].Timestamp
}
