package service

import (
	"fmt"
	"strings"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/ledger"
	"github.com/cmorante/poaplan/internal/planservice"
)

// Issue is one local validation finding. Issues block submission; no
// remote call is made while any exist.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// ValidationError aggregates the issues that blocked an operation.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return "plan validation failed: " + strings.Join(msgs, "; ")
}

// validatePlan checks every envelope level of the plan: POA budgets
// against the project's approved budget (counting POAs already persisted
// remotely), monthly values against each task's total, and structural
// rules. Existing sibling allocations are never mutated; an already
// overspent budget surfaces as an issue.
func validatePlan(plan *domain.Plan, project *domain.Project, existing []planservice.POARecord) []Issue {
	var issues []Issue

	if len(plan.POAs) == 0 {
		issues = append(issues, Issue{Field: "plan", Message: "at least one POA is required"})
	}

	// Project-level envelope: existing remote POAs plus this plan's.
	projectAllocs := make(ledger.Allocations, len(existing)+len(plan.POAs))
	for _, poa := range existing {
		projectAllocs["existing:"+poa.ID] = poa.Budget
	}
	for _, poa := range plan.POAs {
		field := "poa " + poa.Code

		if !poa.Budget.IsPositive() {
			issues = append(issues, Issue{Field: field, Message: ledger.ErrNotPositive.Error()})
		}
		if ledger.WouldOverflow(project.ApprovedBudget, projectAllocs, poa.TempID, poa.Budget) {
			issues = append(issues, Issue{
				Field: field,
				Message: fmt.Sprintf("budget %s exceeds the project's remaining approved budget %s",
					poa.Budget, ledger.Remaining(project.ApprovedBudget, projectAllocs)),
			})
		}
		projectAllocs[poa.TempID] = poa.Budget

		issues = append(issues, validatePOA(&poa, plan)...)
	}

	remaining := ledger.Remaining(project.ApprovedBudget, projectAllocs)
	if remaining.IsNegative() {
		issues = append(issues, Issue{
			Field:   "project " + project.Code,
			Message: fmt.Sprintf("approved budget overspent by %s", remaining.Neg()),
		})
	}

	return issues
}

func validatePOA(poa *domain.DraftPOA, plan *domain.Plan) []Issue {
	var issues []Issue
	field := "poa " + poa.Code

	if !domain.ValidPOATypes[string(poa.Type)] {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("unknown POA type %q", poa.Type)})
	}
	if _, ok := plan.PeriodByTempID(poa.PeriodTempID); !ok {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("no period for year %d", poa.PeriodYear)})
	}

	seen := make(map[int]bool, len(poa.Activities))
	for _, act := range poa.Activities {
		actField := fmt.Sprintf("%s activity %d", field, act.Ordinal)
		if seen[act.Ordinal] {
			issues = append(issues, Issue{Field: actField, Message: "duplicate activity ordinal"})
		}
		seen[act.Ordinal] = true

		for _, task := range act.Tasks {
			issues = append(issues, validateTask(&task, actField)...)
		}
	}
	return issues
}

func validateTask(task *domain.DraftTask, actField string) []Issue {
	var issues []Issue
	field := fmt.Sprintf("%s task %q", actField, task.Name)

	if task.DetailID == "" {
		issues = append(issues, Issue{Field: field, Message: "a task-detail selection is required"})
	}
	if task.Quantity <= 0 {
		issues = append(issues, Issue{Field: field, Message: "quantity must be a positive integer"})
	}
	if !task.UnitPrice.IsPositive() {
		issues = append(issues, Issue{Field: field, Message: "unit price " + ledger.ErrNotPositive.Error()})
	}
	if !task.HasProgramming() {
		issues = append(issues, Issue{Field: field, Message: "at least one non-zero monthly value is required"})
	}

	// Month-level envelope: monthly values against the task total.
	total := task.Total()
	monthAllocs := make(ledger.Allocations, 12)
	for slot, value := range task.Months {
		if value.IsNegative() {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("%s month %d", field, slot+1),
				Message: "monthly value must not be negative",
			})
		}
		monthAllocs[fmt.Sprintf("month-%d", slot+1)] = value
	}
	if ledger.Remaining(total, monthAllocs).IsNegative() {
		issues = append(issues, Issue{
			Field: field,
			Message: fmt.Sprintf("programmed total %s exceeds the task total %s",
				task.MonthSum(), total),
		})
	}
	return issues
}
