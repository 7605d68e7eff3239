package formatter

import (
	"fmt"
	"strings"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/ledger"
)

// FormatPlanList renders plan headers as a table.
func FormatPlanList(plans []*domain.Plan) string {
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Name),
			p.ProjectCode,
			StatusPill(p.Status),
			Date(p.UpdatedAt),
		})
	}
	return RenderTable([]string{"ID", "Name", "Project", "Status", "Updated"}, rows)
}

// FormatPlan renders the full draft tree of one plan: periods, POAs with
// their budget consumption, activities, tasks and monthly programmings.
func FormatPlan(plan *domain.Plan) string {
	var b strings.Builder

	b.WriteString(Header(plan.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s    %s %s    %s %s\n\n",
		Dim("Project:"), Bold(plan.ProjectCode),
		Dim("Status:"), StatusPill(plan.Status),
		Dim("Total:"), Money(plan.BudgetTotal()))

	for i := range plan.Periods {
		period := &plan.Periods[i]
		fmt.Fprintf(&b, "%s %s %s\n",
			StyleHeader.Render(period.Code),
			Dim(fmt.Sprintf("(%s)", period.MonthLabel)),
			Dim(Date(period.StartDate)+" – "+Date(period.EndDate)))

		for _, poa := range plan.POAs {
			if poa.PeriodTempID != period.TempID {
				continue
			}
			b.WriteString(formatPOA(&poa))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatPOA(poa *domain.DraftPOA) string {
	var b strings.Builder

	allocs := make(ledger.Allocations)
	for _, act := range poa.Activities {
		for _, task := range act.Tasks {
			allocs[task.TempID] = task.Total()
		}
	}
	remaining := ledger.Remaining(poa.Budget, allocs)

	fmt.Fprintf(&b, "  %s %s  %s %s  %s %s\n",
		Bold(poa.Code), TypeBadge(poa.Type),
		Dim("budget"), Money(poa.Budget),
		Dim("unallocated"), MoneyStyled(remaining))

	for _, act := range poa.Activities {
		fmt.Fprintf(&b, "    %s %s\n", StylePurple.Render(fmt.Sprintf("%d.", act.Ordinal)), act.Description)
		for _, task := range act.Tasks {
			fmt.Fprintf(&b, "      %s  %s %s × %s = %s\n",
				task.Name, Dim("qty"), fmt.Sprint(task.Quantity),
				Money(task.UnitPrice), Bold(Money(task.Total())))
			if months := formatMonths(&task); months != "" {
				fmt.Fprintf(&b, "        %s\n", months)
			}
		}
	}
	return b.String()
}

func formatMonths(task *domain.DraftTask) string {
	var parts []string
	for slot, value := range task.Months {
		if value.IsZero() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", Dim(MonthName(slot+1)), Money(value)))
	}
	return strings.Join(parts, "  ")
}

// FormatPeriods renders a project's computed fiscal periods.
func FormatPeriods(periods []domain.Period) string {
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, []string{
			p.Code,
			fmt.Sprint(p.Year),
			Date(p.StartDate),
			Date(p.EndDate),
			Dim(p.MonthLabel),
		})
	}
	return RenderTable([]string{"Code", "Year", "Start", "End", "Months"}, rows)
}
