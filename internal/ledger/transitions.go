package ledger

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/exobase-inc/exo-api/internal/domain"
)

// statusNone is the synthetic state of a deployment with an empty
// ledger; only queued is reachable from it.
const statusNone = "none"

// events encodes the deployment state machine:
// queued -> in_progress -> {success, partial_success, failed},
// canceled reachable from either non-terminal state. Event names are
// the target statuses.
var events = []loopfsm.EventDesc{
	{Name: string(domain.StatusQueued), Src: []string{statusNone}, Dst: string(domain.StatusQueued)},
	{Name: string(domain.StatusInProgress), Src: []string{string(domain.StatusQueued)}, Dst: string(domain.StatusInProgress)},
	{Name: string(domain.StatusSuccess), Src: []string{string(domain.StatusInProgress)}, Dst: string(domain.StatusSuccess)},
	{Name: string(domain.StatusPartialSuccess), Src: []string{string(domain.StatusInProgress)}, Dst: string(domain.StatusPartialSuccess)},
	{Name: string(domain.StatusFailed), Src: []string{string(domain.StatusInProgress)}, Dst: string(domain.StatusFailed)},
	{Name: string(domain.StatusCanceled), Src: []string{string(domain.StatusQueued), string(domain.StatusInProgress)}, Dst: string(domain.StatusCanceled)},
}

// checkTransition validates moving from current to next. looplab/fsm
// tracks state internally, so a short-lived machine is built per call,
// initialized with the current derived status.
func checkTransition(current, next domain.DeploymentStatus) error {
	from := statusNone
	if current != "" {
		from = string(current)
	}

	machine := loopfsm.NewFSM(from, events, nil)
	if err := machine.Event(context.Background(), string(next)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) {
			return &domain.InvalidStatusTransitionError{From: current, To: next}
		}
		return err
	}
	return nil
}
