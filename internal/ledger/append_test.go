package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func TestAppend_FirstEntryMustBeQueued(t *testing.T) {
	out, err := Append(nil, entry(domain.StatusQueued, 100))
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = Append(nil, entry(domain.StatusInProgress, 100))
	var transition *domain.InvalidStatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.DeploymentStatus(""), transition.From)
	assert.Equal(t, domain.StatusInProgress, transition.To)
}

func TestAppend_ValidLifecycle(t *testing.T) {
	ledger, err := Append(nil, entry(domain.StatusQueued, 100))
	require.NoError(t, err)

	ledger, err = Append(ledger, entry(domain.StatusInProgress, 150))
	require.NoError(t, err)

	ledger, err = Append(ledger, entry(domain.StatusSuccess, 300))
	require.NoError(t, err)

	assert.Len(t, ledger, 3)
	assert.Equal(t, domain.StatusSuccess, Derive(ledger).Status)
}

func TestAppend_RejectsOutOfOrderTimestamp(t *testing.T) {
	ledger := []domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 200),
	}

	_, err := Append(ledger, entry(domain.StatusSuccess, 150))

	var outOfOrder *domain.OutOfOrderLedgerEntryError
	require.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, int64(200), outOfOrder.Last)
	assert.Equal(t, int64(150), outOfOrder.Next)
}

func TestAppend_AllowsEqualTimestamp(t *testing.T) {
	ledger := []domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 200),
	}

	out, err := Append(ledger, entry(domain.StatusSuccess, 200))
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestAppend_RejectsTerminalLedger(t *testing.T) {
	for _, terminal := range []domain.DeploymentStatus{
		domain.StatusSuccess,
		domain.StatusPartialSuccess,
		domain.StatusFailed,
		domain.StatusCanceled,
	} {
		t.Run(string(terminal), func(t *testing.T) {
			ledger := []domain.LedgerEntry{
				entry(domain.StatusQueued, 100),
				entry(domain.StatusInProgress, 150),
			}
			if terminal == domain.StatusCanceled {
				ledger = ledger[:1]
			}
			ledger, err := Append(ledger, entry(terminal, 200))
			require.NoError(t, err)

			_, err = Append(ledger, entry(domain.StatusInProgress, 300))
			var transition *domain.InvalidStatusTransitionError
			assert.ErrorAs(t, err, &transition)
		})
	}
}

func TestAppend_CanceledFromNonTerminal(t *testing.T) {
	queued := []domain.LedgerEntry{entry(domain.StatusQueued, 100)}
	out, err := Append(queued, entry(domain.StatusCanceled, 200))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, Derive(out).Status)

	running := []domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
		entry(domain.StatusInProgress, 150),
	}
	out, err = Append(running, entry(domain.StatusCanceled, 200))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, Derive(out).Status)
}

func TestAppend_SkippingInProgressIsInvalid(t *testing.T) {
	ledger := []domain.LedgerEntry{entry(domain.StatusQueued, 100)}

	_, err := Append(ledger, entry(domain.StatusSuccess, 200))

	var transition *domain.InvalidStatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.StatusQueued, transition.From)
	assert.Equal(t, domain.StatusSuccess, transition.To)
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	ledger := []domain.LedgerEntry{
		entry(domain.StatusQueued, 100),
	}

	out, err := Append(ledger, entry(domain.StatusInProgress, 150))
	require.NoError(t, err)

	assert.Len(t, ledger, 1)
	assert.Len(t, out, 2)

	// A failed append leaves the input untouched too.
	_, err = Append(ledger, entry(domain.StatusFailed, 200))
	require.Error(t, err)
	assert.Len(t, ledger, 1)
}

func TestAppend_ErrorsMatchSentinels(t *testing.T) {
	_, err := Append([]domain.LedgerEntry{entry(domain.StatusQueued, 100)}, entry(domain.StatusQueued, 50))
	assert.False(t, errors.Is(err, domain.ErrElementNotFound))

	var outOfOrder *domain.OutOfOrderLedgerEntryError
	assert.ErrorAs(t, err, &outOfOrder)
}
