package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Key presses must never stop the view while the submission goroutine is
// still driving remote calls: quitting would kill the pipeline mid-stage
// and skip the journal write.
func TestSubmitModel_KeysDoNotQuitWhileRunning(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}

	var model tea.Model = newSubmitModel("infra plan")
	for _, key := range keys {
		var cmd tea.Cmd
		model, cmd = model.Update(key)
		assert.Nil(t, cmd, "key %q must not produce a command", key.String())
	}
	assert.False(t, model.(submitModel).done)
}

func TestSubmitModel_QuitsOnlyOnOutcome(t *testing.T) {
	var model tea.Model = newSubmitModel("infra plan")

	model, cmd := model.Update(progressMsg{Stage: orchestrator.StagePeriods, Entity: "PER-2025"})
	assert.Nil(t, cmd)

	model, cmd = model.Update(submitDoneMsg{result: &service.SubmitResult{}})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.True(t, model.(submitModel).done)
}

func TestSubmitModel_CarriesFailureToCaller(t *testing.T) {
	var model tea.Model = newSubmitModel("infra plan")

	model, cmd := model.Update(submitDoneMsg{err: errors.New("plan not found")})
	require.NotNil(t, cmd)

	m := model.(submitModel)
	require.Error(t, m.err)
	assert.Nil(t, m.result)
}
