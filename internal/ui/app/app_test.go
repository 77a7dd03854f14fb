package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/ui"
	"github.com/rovshanmuradov/montecarlo/internal/ui/screen"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Seed = 11

	m := New(cfg, nil)
	t.Cleanup(m.Close)
	return m
}

func TestModelNavigatesToScenario(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "Monte Carlo Explorer")
	assert.Contains(t, m.View(), "seed 11")

	m.Update(ui.RouterMsg{To: ui.RouteIntegral})
	require.Equal(t, 2, m.Router().Depth())
	_, ok := m.Router().Current().(*screen.ScenarioScreen)
	assert.True(t, ok)
	assert.Contains(t, m.View(), "Integral")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, m.Router().Depth())
}

func TestModelQuits(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelRearmsBusListener(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(ui.ProgressMsg{RunID: 1})
	assert.NotNil(t, cmd)
}
