package ledger

import "github.com/exobase-inc/exo-api/internal/domain"

// Append validates entry against the current ledger and returns a new
// ledger with the entry added. The input slice is never mutated.
//
// Rejections happen before any write: an entry whose timestamp is
// strictly less than the last committed entry fails with
// OutOfOrderLedgerEntryError, and a status the state machine does not
// permit from the current derived status fails with
// InvalidStatusTransitionError.
func Append(entries []domain.LedgerEntry, entry domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		if entry.Timestamp < last.Timestamp {
			return nil, &domain.OutOfOrderLedgerEntryError{Last: last.Timestamp, Next: entry.Timestamp}
		}
	}

	if err := checkTransition(Derive(entries).Status, entry.Status); err != nil {
		return nil, err
	}

	next := make([]domain.LedgerEntry, len(entries), len(entries)+1)
	copy(next, entries)
	return append(next, entry), nil
}
