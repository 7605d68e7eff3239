package orchestrator

import (
	"fmt"
	"strings"
)

// Count tracks attempted vs succeeded creations for one entity class.
type Count struct {
	Attempted int
	Succeeded int
}

func (c Count) String() string {
	return fmt.Sprintf("%d/%d", c.Succeeded, c.Attempted)
}

// Report is the single aggregated outcome of one submission: per-class
// counts, the skipped activities, and the first fatal error encountered.
// Entities committed before a failure stay persisted; the report tells
// the operator exactly how far the plan got.
type Report struct {
	Periods      Count
	POAs         Count
	Activities   Count
	Tasks        Count
	Programmings Count

	// Skipped lists non-fatal integrity misses (activities whose tasks
	// were not attempted).
	Skipped []*IntegrityError

	// FirstError is the first fatal error encountered, nil on success.
	FirstError error
}

// Complete reports full success: no fatal error and nothing skipped.
func (r *Report) Complete() bool {
	return r.FirstError == nil && len(r.Skipped) == 0
}

// Partial reports that some entities committed but the plan did not
// finish cleanly.
func (r *Report) Partial() bool {
	return !r.Complete()
}

// fail records the first fatal error; later errors are ignored.
func (r *Report) fail(err error) {
	if r.FirstError == nil {
		r.FirstError = err
	}
}

// Summary renders the report for the operator.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "periods %s, poas %s, activities %s, tasks %s, programmings %s",
		r.Periods, r.POAs, r.Activities, r.Tasks, r.Programmings)
	for _, skip := range r.Skipped {
		fmt.Fprintf(&b, "\nskipped: %s", skip.Error())
	}
	if r.FirstError != nil {
		fmt.Fprintf(&b, "\nfailed: %s", r.FirstError.Error())
	}
	return b.String()
}
