package formatter

import (
	"fmt"
	"strings"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/orchestrator"
)

// FormatReport renders the aggregated outcome of one submission.
func FormatReport(report *orchestrator.Report) string {
	var b strings.Builder

	if report.Partial() {
		b.WriteString(StyleYellow.Render("◐ Submission incomplete"))
	} else {
		b.WriteString(StyleGreen.Render("✔ Submission complete"))
	}
	b.WriteString("\n\n")

	rows := [][]string{
		{"Periods", countCell(report.Periods)},
		{"POAs", countCell(report.POAs)},
		{"Activities", countCell(report.Activities)},
		{"Tasks", countCell(report.Tasks)},
		{"Programmings", countCell(report.Programmings)},
	}
	b.WriteString(RenderTable([]string{"Stage", "Committed"}, rows))

	for _, skip := range report.Skipped {
		fmt.Fprintf(&b, "\n%s %s", StyleYellow.Render("skipped:"), skip.Error())
	}
	if report.FirstError != nil {
		fmt.Fprintf(&b, "\n%s %s", StyleRed.Render("failed:"), report.FirstError.Error())
	}

	return b.String()
}

func countCell(c orchestrator.Count) string {
	cell := fmt.Sprintf("%d/%d", c.Succeeded, c.Attempted)
	switch {
	case c.Attempted == 0:
		return Dim(cell)
	case c.Succeeded == c.Attempted:
		return StyleGreen.Render(cell)
	default:
		return StyleYellow.Render(cell)
	}
}

// FormatHistory renders the journaled submission attempts of a plan.
func FormatHistory(subs []*domain.Submission) string {
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		outcome := StyleGreen.Render("complete")
		if !sub.Complete() {
			outcome = StyleYellow.Render("incomplete")
		}
		firstError := Dim("--")
		if sub.FirstError != "" {
			firstError = StyleRed.Render(sub.FirstError)
		}
		rows = append(rows, []string{
			Date(sub.SubmittedAt),
			outcome,
			fmt.Sprintf("%d/%d", sub.TasksSucceeded, sub.TasksAttempted),
			fmt.Sprintf("%d/%d", sub.ProgrammingsSucceeded, sub.ProgrammingsAttempted),
			firstError,
		})
	}
	return RenderTable([]string{"Submitted", "Outcome", "Tasks", "Programmings", "First error"}, rows)
}
