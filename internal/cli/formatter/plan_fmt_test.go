package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/cmorante/poaplan/internal/testutil"
)

func TestFormatPlan(t *testing.T) {
	out := FormatPlan(testutil.SamplePlan())

	assert.Contains(t, out, "INFRASTRUCTURE 2025")
	assert.Contains(t, out, "PER-2025")
	assert.Contains(t, out, "POA-INFR-024-2025")
	assert.Contains(t, out, "Office supplies")
	assert.Contains(t, out, "Mar 250.00", "non-zero months are listed by short name")
	assert.NotContains(t, out, "Feb 0.00", "zero months are omitted")
	// 5000 budget minus 250 + 1000 of task totals.
	assert.Contains(t, out, "3,750.00")
}

func TestFormatPlanList(t *testing.T) {
	plan := testutil.SamplePlan()
	out := FormatPlanList([]*domain.Plan{plan})

	assert.Contains(t, out, "infrastructure 2025")
	assert.Contains(t, out, "INFR-024")
	assert.Contains(t, out, "Draft")
}

func TestFormatReport(t *testing.T) {
	report := &orchestrator.Report{
		Periods:      orchestrator.Count{Attempted: 1, Succeeded: 1},
		POAs:         orchestrator.Count{Attempted: 1, Succeeded: 1},
		Activities:   orchestrator.Count{Attempted: 2, Succeeded: 2},
		Tasks:        orchestrator.Count{Attempted: 2, Succeeded: 1},
		Programmings: orchestrator.Count{Attempted: 1, Succeeded: 1},
		FirstError:   &orchestrator.StageError{Stage: orchestrator.StageTasks, Entity: "Consulting", Err: planservice.ErrUnavailable},
	}

	out := FormatReport(report)
	assert.Contains(t, out, "incomplete")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "Consulting")
}
