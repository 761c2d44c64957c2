// Package ledger derives a deployment's observable lifecycle state
// from its append-only list of status events and guards the two
// integrity rules of that list: timestamps never move backwards and
// status changes follow the deployment state machine.
package ledger

import "github.com/exobase-inc/exo-api/internal/domain"

// Projection is the view-facing state derived from a ledger. The
// timestamp pointers are nil until the corresponding event exists.
type Projection struct {
	Status     domain.DeploymentStatus
	StartedAt  *int64
	FinishedAt *int64
}

// Derive computes the canonical projection of a ledger.
//
// Status is the status of the entry with the greatest timestamp;
// exact ties go to the last-appended entry. StartedAt is the earliest
// queued entry, FinishedAt the latest terminal entry. Historical
// documents alternated between max-timestamp and array-order rules;
// max-timestamp is canonical here.
func Derive(entries []domain.LedgerEntry) Projection {
	var p Projection
	if len(entries) == 0 {
		return p
	}

	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Timestamp >= latest.Timestamp {
			latest = e
		}
	}
	p.Status = latest.Status

	for _, e := range entries {
		if e.Status == domain.StatusQueued {
			if p.StartedAt == nil || e.Timestamp < *p.StartedAt {
				ts := e.Timestamp
				p.StartedAt = &ts
			}
		}
		if e.Status.IsTerminal() {
			if p.FinishedAt == nil || e.Timestamp > *p.FinishedAt {
				ts := e.Timestamp
				p.FinishedAt = &ts
			}
		}
	}
	return p
}
