package collapse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/branch-engine/pkg/branch"
)

var (
	// ErrStaleState is matched by *StaleStateError.
	ErrStaleState = errors.New("branch is stale")
	// ErrApplyFailed is matched by *ApplyError.
	ErrApplyFailed = errors.New("state delta application failed")
	// ErrNoStateReader is returned when validation is needed but no reader
	// is configured.
	ErrNoStateReader = errors.New("no state reader configured")
	// ErrNoStateWriter is returned when application is needed but no writer
	// is configured.
	ErrNoStateWriter = errors.New("no state writer configured")
)

// StaleStateError reports a delta whose expected prior state no longer
// matches the world. Nothing was written. The branch should be discarded
// and regenerated.
type StaleStateError struct {
	BranchID uuid.UUID
	Category branch.Category
	Index    int
	Delta    branch.StateDelta
	Expected branch.Snapshot
	Actual   branch.Snapshot
	Fields   []string
}

func (e *StaleStateError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		got, ok := e.Actual[f]
		if !ok {
			got = "<missing>"
		}
		parts = append(parts, fmt.Sprintf("%s: expected %q, found %q", f, e.Expected[f], got))
	}
	return fmt.Sprintf("branch %s is stale: %s delta %d on %q changed (%s)",
		e.BranchID, e.Category, e.Index, e.Delta.Target, strings.Join(parts, "; "))
}

func (e *StaleStateError) Is(target error) bool {
	return target == ErrStaleState
}

// ApplyError reports a delta that failed mid-application. Applied counts the
// deltas of the same variant that succeeded before it. RolledBack is true
// when the writer's transaction undid those writes.
type ApplyError struct {
	BranchID   uuid.UUID
	Category   branch.Category
	Index      int
	Delta      branch.StateDelta
	Applied    int
	RolledBack bool
	Err        error
}

func (e *ApplyError) Error() string {
	state := "not rolled back"
	if e.RolledBack {
		state = "rolled back"
	}
	return fmt.Sprintf("branch %s: applying %s delta %d (%s %q) failed after %d applied, %s: %v",
		e.BranchID, e.Category, e.Index, e.Delta.Tag(), e.Delta.Target, e.Applied, state, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func (e *ApplyError) Is(target error) bool {
	return target == ErrApplyFailed
}
