package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func entry(status domain.DeploymentStatus, ts int64) domain.LedgerEntry {
	return domain.LedgerEntry{Status: status, Timestamp: ts, Source: "exo.builder"}
}

func TestDerive_EmptyLedger(t *testing.T) {
	p := Derive(nil)

	assert.Equal(t, domain.DeploymentStatus(""), p.Status)
	assert.Nil(t, p.StartedAt)
	assert.Nil(t, p.FinishedAt)
}

func TestDerive_QueuedOnly(t *testing.T) {
	p := Derive([]domain.LedgerEntry{entry(domain.StatusQueued, 100)})

	assert.Equal(t, domain.StatusQueued, p.Status)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, int64(100), *p.StartedAt)
	assert.Nil(t, p.FinishedAt)
}

func TestDerive_FullLifecycle(t *testing.T) {
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 150),
		entry(domain.StatusSuccess, 300),
	})

	assert.Equal(t, domain.StatusSuccess, p.Status)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, int64(100), *p.StartedAt)
	require.NotNil(t, p.FinishedAt)
	assert.Equal(t, int64(300), *p.FinishedAt)
}

func TestDerive_StatusIsMaxTimestamp(t *testing.T) {
	// The entry with the greatest timestamp wins regardless of its
	// position in the list.
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusFailed, 500),
		entry(domain.StatusInProgress, 200),
	})

	assert.Equal(t, domain.StatusFailed, p.Status)
}

func TestDerive_TimestampTieGoesToLastAppended(t *testing.T) {
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 200),
		entry(domain.StatusSuccess, 200),
	})

	assert.Equal(t, domain.StatusSuccess, p.Status)
}

func TestDerive_StartedAtIsEarliestQueued(t *testing.T) {
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 300),
		entry(domain.StatusQueued, 100),
	})

	require.NotNil(t, p.StartedAt)
	assert.Equal(t, int64(100), *p.StartedAt)
}

func TestDerive_FinishedAtIsLatestTerminal(t *testing.T) {
	// Backfilled ledgers can carry more than one terminal entry.
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 150),
		entry(domain.StatusCanceled, 200),
		entry(domain.StatusFailed, 400),
	})

	require.NotNil(t, p.FinishedAt)
	assert.Equal(t, int64(400), *p.FinishedAt)
}

func TestDerive_NoFinishedAtWhileRunning(t *testing.T) {
	p := Derive([]domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 150),
	})

	assert.Equal(t, domain.StatusInProgress, p.Status)
	assert.Nil(t, p.FinishedAt)
}
