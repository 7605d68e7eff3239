package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/spf13/cobra"
)

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse activity and task-detail catalogs",
	}

	cmd.AddCommand(
		newCatalogActivitiesCmd(app),
		newCatalogDetailsCmd(app),
	)

	return cmd
}

func parsePOAType(s string) (domain.POAType, error) {
	if !domain.ValidPOATypes[s] {
		return "", fmt.Errorf("unknown POA type %q (operational|investment|research)", s)
	}
	return domain.POAType(s), nil
}

func newCatalogActivitiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activities TYPE",
		Short: "List the fixed activity catalog for a POA type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poaType, err := parsePOAType(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, tmpl := range domain.ActivityCatalog(poaType) {
				rows = append(rows, []string{strconv.Itoa(tmpl.Ordinal), tmpl.Description})
			}
			fmt.Println(formatter.RenderTable([]string{"#", "Activity"}, rows))
			return nil
		},
	}
}

func newCatalogDetailsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "details TYPE ORDINAL",
		Short: "List the task details applicable to one activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poaType, err := parsePOAType(args[0])
			if err != nil {
				return err
			}
			ordinal, err := strconv.Atoi(args[1])
			if err != nil || ordinal < 1 {
				return fmt.Errorf("ordinal must be a positive integer")
			}

			details, err := app.RefData.TaskDetailsForActivity(context.Background(), poaType, ordinal)
			if err != nil {
				return err
			}
			if len(details) == 0 {
				fmt.Println("No task details match this activity.")
				return nil
			}

			rows := make([][]string, 0, len(details))
			for _, d := range details {
				rows = append(rows, []string{formatter.TruncID(d.ID), d.Name, formatter.Dim(d.BudgetLineID)})
			}
			fmt.Println(formatter.RenderTable([]string{"ID", "Detail", "Budget line"}, rows))
			return nil
		},
	}
}
