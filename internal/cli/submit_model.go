package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cmorante/poaplan/internal/cli/formatter"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/service"
)

// progressMsg wraps one orchestrator event for the tea event loop.
type progressMsg orchestrator.ProgressEvent

// submitDoneMsg carries the final outcome of the submission goroutine.
type submitDoneMsg struct {
	result *service.SubmitResult
	err    error
}

// submitModel animates a running submission: a spinner, the stage
// currently executing, and a running tally per stage.
type submitModel struct {
	ref     string
	spinner spinner.Model

	stage  orchestrator.Stage
	counts map[orchestrator.Stage]int
	failed []string

	done   bool
	result *service.SubmitResult
	err    error
}

func newSubmitModel(ref string) submitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(formatter.ColorPurple)
	return submitModel{
		ref:     ref,
		spinner: s,
		counts:  make(map[orchestrator.Stage]int),
	}
}

func (m submitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m submitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.stage = msg.Stage
		if msg.Err != nil {
			m.failed = append(m.failed, fmt.Sprintf("%s: %v", msg.Entity, msg.Err))
		} else {
			m.counts[msg.Stage]++
		}
		return m, nil

	case submitDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		// A submission in flight cannot be aborted: killing the process
		// between remote calls would strand committed entities with no
		// journal entry. Keys are swallowed until the outcome arrives.
		return m, nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

var submitStages = []orchestrator.Stage{
	orchestrator.StagePeriods,
	orchestrator.StagePOAs,
	orchestrator.StageActivities,
	orchestrator.StageTasks,
	orchestrator.StageProgrammings,
}

func (m submitModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Submitting %s\n\n", m.spinner.View(), formatter.Bold(m.ref))

	for _, stage := range submitStages {
		marker := formatter.Dim("·")
		if stage == m.stage {
			marker = formatter.StyleHeader.Render("▶")
		}
		fmt.Fprintf(&b, "  %s %-13s %d\n", marker, stage, m.counts[stage])
	}

	for _, failure := range m.failed {
		fmt.Fprintf(&b, "\n  %s %s", formatter.StyleRed.Render("✖"), failure)
	}
	return b.String()
}
