package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit REF",
		Short: "Submit a plan to the planning service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return submitWithTUI(app, args[0])
			}
			return submitPlain(app, args[0])
		},
	}
}

// submitPlain streams one line per entity outcome, for scripts and logs.
func submitPlain(app *App, ref string) error {
	var detach func()
	if app.Progress != nil {
		detach = app.Progress.Listen(func(ev orchestrator.ProgressEvent) {
			if ev.Err != nil {
				fmt.Printf("%s %s: %v\n", ev.Stage, ev.Entity, ev.Err)
				return
			}
			fmt.Printf("%s %s: ok\n", ev.Stage, ev.Entity)
		})
		defer detach()
	}

	result, err := app.Submits.Submit(context.Background(), ref)
	if err != nil {
		return renderValidationError(err)
	}
	fmt.Println("\n" + formatter.FormatReport(result.Report))
	return nil
}

// submitWithTUI runs the submission behind an animated progress view.
func submitWithTUI(app *App, ref string) error {
	model := newSubmitModel(ref)
	program := tea.NewProgram(model)

	var detach func()
	if app.Progress != nil {
		detach = app.Progress.Listen(func(ev orchestrator.ProgressEvent) {
			program.Send(progressMsg(ev))
		})
		defer detach()
	}

	go func() {
		result, err := app.Submits.Submit(context.Background(), ref)
		program.Send(submitDoneMsg{result: result, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}

	m := final.(submitModel)
	if m.err != nil {
		return renderValidationError(m.err)
	}
	if m.result != nil {
		fmt.Println(formatter.FormatReport(m.result.Report))
	}
	return nil
}
