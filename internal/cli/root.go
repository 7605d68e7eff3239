package cli

import (
	"github.com/cmorante/poaplan/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans   service.PlanService
	Submits service.SubmitService
	RefData service.RefDataService

	// Progress receives orchestrator events during a submission.
	Progress *ProgressSink

	// IsInteractive reports whether stdin is a terminal; interactive
	// commands fall back to flag-driven behavior when it is not.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "poaplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "poaplan",
		Short: "Draft and submit institutional annual operating plans",
	}

	root.AddCommand(
		newProjectsCmd(app),
		newPlanCmd(app),
		newSubmitCmd(app),
		newCatalogCmd(app),
	)

	return root
}
