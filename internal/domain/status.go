package domain

// DeploymentStatus is the lifecycle state of a deployment, derived
// from its ledger rather than stored directly.
type DeploymentStatus string

const (
	StatusQueued         DeploymentStatus = "queued"
	StatusInProgress     DeploymentStatus = "in_progress"
	StatusCanceled       DeploymentStatus = "canceled"
	StatusSuccess        DeploymentStatus = "success"
	StatusPartialSuccess DeploymentStatus = "partial_success"
	StatusFailed         DeploymentStatus = "failed"
)

// Statuses lists every valid deployment status.
var Statuses = []DeploymentStatus{
	StatusQueued,
	StatusInProgress,
	StatusCanceled,
	StatusSuccess,
	StatusPartialSuccess,
	StatusFailed,
}

// IsTerminal reports whether the status ends a deployment's lifecycle.
// The ledger of a deployment in a terminal status no longer accepts
// status entries.
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case StatusCanceled, StatusSuccess, StatusPartialSuccess, StatusFailed:
		return true
	}
	return false
}

// IsValid reports whether s is a known deployment status.
func (s DeploymentStatus) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// DeploymentType records the intent of a deployment.
type DeploymentType string

const (
	DeploymentTypeCreate  DeploymentType = "create"
	DeploymentTypeDestroy DeploymentType = "destroy"
)
