package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/service"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage draft plans",
	}

	cmd.AddCommand(
		newPlanNewCmd(app),
		newPlanImportCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanValidateCmd(app),
		newPlanHistoryCmd(app),
		newPlanDeleteCmd(app),
	)

	return cmd
}

func newPlanNewCmd(app *App) *cobra.Command {
	var name, projectCode string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Draft a new plan interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("plan new requires a terminal; use `plan import` in scripts")
			}

			req, err := runPlanWizard(context.Background(), app, name, projectCode)
			if err != nil {
				return err
			}
			if req == nil {
				fmt.Println("Aborted.")
				return nil
			}

			plan, err := app.Plans.Create(context.Background(), *req)
			if err != nil {
				return renderValidationError(err)
			}

			fmt.Printf("Created plan %s\n\n%s\n", formatter.Bold(plan.Name), formatter.FormatPlan(plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plan name")
	cmd.Flags().StringVar(&projectCode, "project", "", "Project code (e.g. INFR-024)")

	return cmd
}

func newPlanImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a plan from a JSON request file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var req service.CreatePlanRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			plan, err := app.Plans.Create(context.Background(), req)
			if err != nil {
				return renderValidationError(err)
			}

			fmt.Printf("Created plan %s [%s]\n", plan.Name, plan.ID)
			return nil
		},
	}
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(context.Background())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Println("No plans found.")
				return nil
			}
			fmt.Println(formatter.FormatPlanList(plans))
			return nil
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show REF",
		Short: "Show a plan's full draft tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.GetByRef(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatPlan(plan))
			return nil
		},
	}
}

func newPlanValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate REF",
		Short: "Check a plan against current remote state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			plan, err := app.Plans.GetByRef(ctx, args[0])
			if err != nil {
				return err
			}
			issues, err := app.Plans.Validate(ctx, plan)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Println(formatter.StyleGreen.Render("✔ Plan is ready to submit"))
				return nil
			}
			for _, issue := range issues {
				fmt.Printf("%s %s\n", formatter.StyleRed.Render("✖"), issue)
			}
			return fmt.Errorf("%d issue(s) block submission", len(issues))
		},
	}
}

func newPlanHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history REF",
		Short: "Show a plan's journaled submission attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := app.Submits.History(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No submissions recorded.")
				return nil
			}
			fmt.Println(formatter.FormatHistory(subs))
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete REF",
		Short: "Delete a stored plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Plans.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted plan %s\n", args[0])
			return nil
		},
	}
}

// renderValidationError expands a ValidationError into one line per issue;
// other errors pass through untouched.
func renderValidationError(err error) error {
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	for _, issue := range vErr.Issues {
		fmt.Printf("%s %s\n", formatter.StyleRed.Render("✖"), issue)
	}
	return fmt.Errorf("%d issue(s) found", len(vErr.Issues))
}
