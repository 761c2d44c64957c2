package domain

import "context"

// Workspace is the top-level tenant aggregate. Platforms, units and
// deployments are embedded by value; the whole tree is read and
// replaced as a single document.
type Workspace struct {
	ID           ID           `bson:"id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Subscription Subscription `bson:"subscription" json:"subscription"`
	Members      []Member     `bson:"members" json:"members"`
	Platforms    []Platform   `bson:"platforms" json:"platforms"`
	CreatedAt    int64        `bson:"createdAt" json:"created_at"`

	// Revision is the optimistic concurrency token, incremented on
	// every whole-document replace. Never exposed to callers.
	Revision int64 `bson:"_revision" json:"-"`
}

// Subscription is the billing state attached to a workspace.
type Subscription struct {
	Plan             string `bson:"plan" json:"plan"`
	StripeCustomerID string `bson:"_stripeCustomerId" json:"-"`
}

// MemberRole is the access level of a workspace member.
type MemberRole string

const (
	RoleOwner     MemberRole = "owner"
	RoleDeveloper MemberRole = "developer"
	RoleAuditor   MemberRole = "auditor"
)

// UserRef is a compressed copy of a user embedded wherever an acting
// user is recorded.
type UserRef struct {
	ID           ID     `bson:"id" json:"id"`
	Username     string `bson:"username" json:"username"`
	ThumbnailURL string `bson:"thumbnailUrl" json:"thumbnail_url"`
}

// Member ties a user to a workspace with a role.
type Member struct {
	User UserRef    `bson:"user" json:"user"`
	Role MemberRole `bson:"role" json:"role"`
}

// FindPlatform returns the embedded platform with the given id.
func (w *Workspace) FindPlatform(id ID) (*Platform, error) {
	for i := range w.Platforms {
		if w.Platforms[i].ID == id {
			return &w.Platforms[i], nil
		}
	}
	return nil, &ElementNotFoundError{Kind: KindPlatform, ID: id}
}

// HasMember reports whether the user belongs to the workspace.
func (w *Workspace) HasMember(userID ID) bool {
	for _, m := range w.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}

// WorkspaceRepository is the persistence contract for workspace
// aggregates. FindByID returns documents already migrated to the
// current schema version.
type WorkspaceRepository interface {
	Insert(ctx context.Context, workspace *Workspace) error
	FindByID(ctx context.Context, id ID) (*Workspace, error)
	FindByPlatformID(ctx context.Context, platformID ID) (*Workspace, error)
	ListForUser(ctx context.Context, userID ID) ([]Workspace, error)
	// Replace rewrites the whole aggregate. The stored revision must
	// match workspace.Revision or ErrConcurrentModification is
	// returned and nothing is written.
	Replace(ctx context.Context, workspace *Workspace) error
}
