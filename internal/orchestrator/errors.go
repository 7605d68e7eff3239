package orchestrator

import (
	"errors"
	"fmt"

	"github.com/cmorante/poaplan/internal/planservice"
)

// ErrSubmissionInFlight indicates Submit was called while another
// submission against the same orchestrator is still running.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Stage names one of the five fixed creation stages.
type Stage string

const (
	StagePeriods      Stage = "periods"
	StagePOAs         Stage = "poas"
	StageActivities   Stage = "activities"
	StageTasks        Stage = "tasks"
	StageProgrammings Stage = "programmings"
)

// StageError wraps a remote failure with the stage and the identifying
// code of the entity that failed, so the operator can manually complete
// or correct the remainder.
type StageError struct {
	Stage  Stage
	Entity string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Entity, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ReconciliationError reports that the activity batch response did not
// positionally match the request: a server contract violation.
type ReconciliationError struct {
	POACode   string
	Requested int
	Received  int
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("activity batch for %s: requested %d activities, server returned %d",
		e.POACode, e.Requested, e.Received)
}

// ConflictError reports a duplicate monthly programming for one
// (task, month) pair, distinct from a generic remote failure.
type ConflictError struct {
	TaskName string
	Month    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a programming for task %q in month %s already exists", e.TaskName, e.Month)
}

func (e *ConflictError) Unwrap() error { return planservice.ErrConflict }

// IntegrityError reports an activity that has no resolvable real id when
// its tasks are about to be created. Its tasks are skipped; the rest of
// the plan proceeds.
type IntegrityError struct {
	POACode string
	Ordinal int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("activity %d of %s has no server-assigned id; its tasks were skipped",
		e.Ordinal, e.POACode)
}
