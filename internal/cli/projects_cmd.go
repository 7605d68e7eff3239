package cli

import (
	"context"
	"fmt"

	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/fiscal"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse remote projects and reference data",
	}

	cmd.AddCommand(
		newProjectsListCmd(app),
		newProjectsShowCmd(app),
		newProjectsPeriodsCmd(app),
	)

	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects available for planning",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.RefData.LoadInitial(context.Background())
			if err != nil {
				return err
			}
			if len(data.Projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			rows := make([][]string, 0, len(data.Projects))
			for _, p := range data.Projects {
				rows = append(rows, []string{
					formatter.Bold(p.Code),
					p.Title,
					formatter.Money(p.ApprovedBudget),
					formatter.Dim(p.StartDate + " – " + p.EndDate),
				})
			}
			fmt.Println(formatter.RenderTable([]string{"Code", "Title", "Approved budget", "Range"}, rows))
			return nil
		},
	}
}

func newProjectsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show one project's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := app.RefData.ProjectByCode(context.Background(), args[0])
			if err != nil {
				return err
			}

			content := fmt.Sprintf("%s %s\n%s %s\n%s %s – %s",
				formatter.Dim("Code:"), formatter.Bold(project.Code),
				formatter.Dim("Budget:"), formatter.Money(project.ApprovedBudget),
				formatter.Dim("Range:"), formatter.Date(project.StartDate), formatter.Date(project.EndDate))
			if project.Extension != nil {
				content += fmt.Sprintf("\n%s %s – %s",
					formatter.Dim("Extension:"),
					formatter.Date(project.Extension.Start), formatter.Date(project.Extension.End))
			}
			fmt.Println(formatter.RenderBox(project.Title, content))
			return nil
		},
	}
}

func newProjectsPeriodsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "periods CODE",
		Short: "Show the fiscal periods a plan for this project would cover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := app.RefData.ProjectByCode(context.Background(), args[0])
			if err != nil {
				return err
			}
			periods, err := fiscal.ProjectPeriods(project)
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatPeriods(periods))
			return nil
		},
	}
}
