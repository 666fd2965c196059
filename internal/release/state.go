package release

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/polyship/polyship/internal/platform"
)

// Lifecycle state of a run.
type State string

const (
	StateDispatched         State = "dispatched"          // Jobs are being launched.
	StateBuilding           State = "building"            // Jobs are in flight.
	StateAllSucceeded       State = "all-succeeded"       // Every job produced a digest.
	StateAnyFailed          State = "any-failed"          // At least one job failed. Terminal.
	StateMerging            State = "merging"             // Digest set is being reconciled and published.
	StatePublished          State = "published"           // Manifest list visible under all tags.
	StateMergeFailed        State = "merge-failed"        // Reconciliation or publish failed. Terminal.
	StateVerified           State = "verified"            // Readback confirmed the published reference. Terminal.
	StateVerificationFailed State = "verification-failed" // Readback failed; the publish itself may have succeeded. Terminal.
)

// One coordinated execution correlating all build jobs, the collected
// digest set, and the manifest list they produce.
type run struct {
	ID         uuid.UUID         // Correlates all log records of this run.
	Repository string            // Repository coordinate the run publishes to.
	Targets    []platform.Target // Ordered configured targets.

	state State
}

// Creates a run in the dispatched state.
func newRun(repository string, targets []platform.Target) *run {
	r := &run{
		ID:         uuid.New(),
		Repository: repository,
		Targets:    targets,
		state:      StateDispatched,
	}
	slog.Debug("run state", "run", r.ID, "state", r.state)
	return r
}

// Current lifecycle state.
func (r *run) State() State {
	return r.state
}

// Advances the run to the given state.
//
// Transitions are driven by the single coordinating goroutine; build jobs
// never touch run state.
func (r *run) to(s State) {
	r.state = s
	slog.Debug("run state", "run", r.ID, "state", s)
}
