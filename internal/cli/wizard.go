package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/fiscal"
	"github.com/cmorante/poaplan/internal/ledger"
	"github.com/cmorante/poaplan/internal/service"
	"github.com/shopspring/decimal"
)

// poaplanHuhTheme returns a custom huh theme using the Gruvbox palette.
func poaplanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func runForm(form *huh.Form) error {
	return form.WithTheme(poaplanHuhTheme()).WithShowHelp(false).Run()
}

// validateAmount rejects anything ledger.ParseAmount would reject, so the
// user sees the problem while typing rather than at save time.
func validateAmount(s string) error {
	_, err := ledger.ParseAmount(s)
	return err
}

// amountWithin builds a validator that additionally checks the amount
// against an envelope, reporting the remaining balance in the error.
func amountWithin(envelope *ledger.Envelope, key, what string) func(string) error {
	return func(s string) error {
		amount, err := ledger.ParseAmount(s)
		if err != nil {
			return err
		}
		if envelope.WouldOverflow(key, amount) {
			return fmt.Errorf("exceeds the %s: %s remaining", what,
				ledger.Remaining(envelope.Ceiling, envelope.Allocs).StringFixed(2))
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

// runPlanWizard drives the interactive plan builder. A nil request with a
// nil error means the user backed out at the confirmation step.
func runPlanWizard(ctx context.Context, app *App, name, projectCode string) (*service.CreatePlanRequest, error) {
	if name == "" {
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Plan name").Placeholder("infrastructure 2026").Value(&name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("a name is required")
					}
					return nil
				}),
		))); err != nil {
			return nil, err
		}
	}

	if projectCode == "" {
		code, err := wizardSelectProject(ctx, app)
		if err != nil {
			return nil, err
		}
		projectCode = code
	}

	project, err := app.RefData.ProjectByCode(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	periods, err := fiscal.ProjectPeriods(project)
	if err != nil {
		return nil, err
	}

	req := &service.CreatePlanRequest{Name: name, ProjectCode: project.Code}
	budgetEnvelope := ledger.NewEnvelope(project.ApprovedBudget)

	for {
		poa, err := wizardCollectPOA(ctx, app, periods, budgetEnvelope, len(req.POAs))
		if err != nil {
			return nil, err
		}
		req.POAs = append(req.POAs, *poa)

		more := false
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add another POA?").Value(&more),
		))); err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	confirmed := false
	summary := fmt.Sprintf("%d POA(s) for %s, %s of %s approved budget allocated",
		len(req.POAs), project.Code,
		ledger.ProposedTotal(budgetEnvelope.Allocs, "").StringFixed(2),
		project.ApprovedBudget.StringFixed(2))
	if err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Save this plan?").Description(summary).Value(&confirmed),
	))); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, nil
	}
	return req, nil
}

func wizardSelectProject(ctx context.Context, app *App) (string, error) {
	data, err := app.RefData.LoadInitial(ctx)
	if err != nil {
		return "", err
	}
	if len(data.Projects) == 0 {
		return "", fmt.Errorf("no projects available for planning")
	}

	options := make([]huh.Option[string], 0, len(data.Projects))
	for _, p := range data.Projects {
		label := fmt.Sprintf("%s — %s (%s)", p.Code, p.Title, formatter.Money(p.ApprovedBudget))
		options = append(options, huh.NewOption(label, p.Code))
	}

	var code string
	err = runForm(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Which project?").Options(options...).Value(&code),
	)))
	return code, err
}

func wizardCollectPOA(ctx context.Context, app *App, periods []domain.Period, budgetEnvelope *ledger.Envelope, index int) (*service.POAInput, error) {
	yearOptions := make([]huh.Option[int], 0, len(periods))
	for _, p := range periods {
		yearOptions = append(yearOptions, huh.NewOption(fmt.Sprintf("%d (%s)", p.Year, p.MonthLabel), p.Year))
	}

	typeOptions := []huh.Option[domain.POAType]{
		huh.NewOption("Operational", domain.POAOperational),
		huh.NewOption("Investment", domain.POAInvestment),
		huh.NewOption("Research", domain.POAResearch),
	}

	poa := service.POAInput{}
	budgetKey := fmt.Sprintf("poa-%d", index)

	err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().Title("Fiscal year").Options(yearOptions...).Value(&poa.Year),
		huh.NewSelect[domain.POAType]().Title("POA type").Options(typeOptions...).Value(&poa.Type),
		huh.NewInput().Title("Assigned budget").Placeholder("5000.00").Value(&poa.Budget).
			Validate(amountWithin(budgetEnvelope, budgetKey, "project's approved budget")),
	)))
	if err != nil {
		return nil, err
	}

	budget, err := ledger.ParseAmount(poa.Budget)
	if err != nil {
		return nil, err
	}
	budgetEnvelope.Set(budgetKey, budget)

	poaEnvelope := ledger.NewEnvelope(budget)
	for {
		activity, err := wizardCollectActivity(ctx, app, poa.Type, poaEnvelope)
		if err != nil {
			return nil, err
		}
		poa.Activities = append(poa.Activities, *activity)

		more := false
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add another activity?").
				Description(fmt.Sprintf("%s unallocated", poaEnvelope.Remaining().StringFixed(2))).
				Value(&more),
		))); err != nil {
			return nil, err
		}
		if !more {
			return &poa, nil
		}
	}
}

func wizardCollectActivity(ctx context.Context, app *App, poaType domain.POAType, poaEnvelope *ledger.Envelope) (*service.ActivityInput, error) {
	catalog := domain.ActivityCatalog(poaType)
	options := make([]huh.Option[int], 0, len(catalog))
	for _, tmpl := range catalog {
		options = append(options, huh.NewOption(fmt.Sprintf("%d. %s", tmpl.Ordinal, tmpl.Description), tmpl.Ordinal))
	}

	activity := service.ActivityInput{}
	if err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().Title("Activity").Options(options...).Value(&activity.Ordinal),
	))); err != nil {
		return nil, err
	}

	for {
		task, err := wizardCollectTask(ctx, app, poaType, activity.Ordinal, poaEnvelope)
		if err != nil {
			return nil, err
		}
		activity.Tasks = append(activity.Tasks, *task)

		more := false
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add another task to this activity?").Value(&more),
		))); err != nil {
			return nil, err
		}
		if !more {
			return &activity, nil
		}
	}
}

func wizardCollectTask(ctx context.Context, app *App, poaType domain.POAType, ordinal int, poaEnvelope *ledger.Envelope) (*service.TaskInput, error) {
	task := service.TaskInput{Months: make(map[int]string)}

	detail, err := wizardSelectDetail(ctx, app, poaType, ordinal)
	if err != nil {
		return nil, err
	}
	task.DetailID = detail

	var quantityStr string
	if err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Task name").Placeholder("Office supplies").Value(&task.Name).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("a task name is required")
				}
				return nil
			}),
		huh.NewInput().Title("Quantity").Placeholder("10").Value(&quantityStr).
			Validate(validatePositiveInt),
		huh.NewInput().Title("Unit price").Placeholder("25.00").Value(&task.UnitPrice).
			Validate(validateAmount),
	))); err != nil {
		return nil, err
	}
	task.Quantity, _ = strconv.Atoi(quantityStr)

	price, err := ledger.ParseAmount(task.UnitPrice)
	if err != nil {
		return nil, err
	}
	total := price.Mul(decimal.NewFromInt(int64(task.Quantity)))
	if poaEnvelope.WouldOverflow(task.Name, total) {
		return nil, fmt.Errorf("task total %s exceeds the POA's unallocated budget %s",
			total.StringFixed(2), poaEnvelope.Remaining().StringFixed(2))
	}
	poaEnvelope.Set(task.Name, total)

	// Monthly programming against the task total.
	monthEnvelope := ledger.NewEnvelope(total)
	for {
		var monthStr string
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Programming month (1-12, blank to finish)").
				Description(fmt.Sprintf("%s left to program", monthEnvelope.Remaining().StringFixed(2))).
				Value(&monthStr).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 12 {
						return fmt.Errorf("enter a month between 1 and 12")
					}
					return nil
				}),
		))); err != nil {
			return nil, err
		}
		if monthStr == "" {
			return &task, nil
		}
		month, _ := strconv.Atoi(monthStr)

		var amount string
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewInput().Title(fmt.Sprintf("Amount for month %d", month)).Value(&amount).
				Validate(amountWithin(monthEnvelope, monthStr, "task total")),
		))); err != nil {
			return nil, err
		}
		value, err := ledger.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		monthEnvelope.Set(monthStr, value)
		task.Months[month] = amount
	}
}

func wizardSelectDetail(ctx context.Context, app *App, poaType domain.POAType, ordinal int) (string, error) {
	details, err := app.RefData.TaskDetailsForActivity(ctx, poaType, ordinal)
	if err != nil {
		return "", err
	}
	if len(details) == 0 {
		var id string
		err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Task detail id").Description("No catalog entries matched this activity").Value(&id),
		)))
		return id, err
	}

	options := make([]huh.Option[string], 0, len(details))
	for _, d := range details {
		options = append(options, huh.NewOption(d.Name, d.ID))
	}
	var id string
	err = runForm(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Task detail").Options(options...).Value(&id),
	)))
	return id, err
}
