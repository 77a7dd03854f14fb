package screen

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/ui"
)

var (
	keyRun    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	keyCancel = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
)

func fixedScenario(report ui.Report, err error) Scenario {
	return Scenario{
		Route:         ui.RoutePi,
		Title:         "fixed",
		ProgressLabel: "tests",
		Run: func(_ context.Context, progress estimate.Progress) (ui.Report, error) {
			progress(1, 1)
			return report, err
		},
	}
}

func TestScenarioScreenRun(t *testing.T) {
	bus := ui.NewBus(4, nil)
	defer bus.Close()

	report := ui.Report{
		Stats:       []ui.Stat{{Label: "Mean estimate", Value: "3.14"}},
		Series:      []float64{1, 2, 3},
		SeriesLabel: "running estimate",
	}
	s := NewScenarioScreen(fixedScenario(report, nil), bus)
	s.SetSize(80, 24)
	assert.Contains(t, s.View(), "Press r to run.")
	assert.Contains(t, s.View(), "idle")
	assert.NotContains(t, s.View(), "c cancel")

	_, cmd := s.Update(keyRun)
	require.NotNil(t, cmd)
	assert.True(t, s.Running())
	assert.Contains(t, s.View(), "c cancel")
	assert.NotContains(t, s.View(), "r run")

	done := cmd()
	progress := bus.Listen()()
	s.Update(progress)
	assert.Contains(t, s.View(), "1/1 tests")
	assert.Contains(t, s.View(), "running 100%")

	s.Update(done)
	assert.False(t, s.Running())
	require.NotNil(t, s.Report())
	view := s.View()
	assert.Contains(t, view, "Mean estimate")
	assert.Contains(t, view, "running estimate")
	assert.Contains(t, view, "Finished")
	assert.Contains(t, view, "done")
	assert.Contains(t, view, "r run")
}

func TestScenarioScreenIgnoresStaleRuns(t *testing.T) {
	s := NewScenarioScreen(fixedScenario(ui.Report{}, nil), nil)
	_, cmd := s.Update(keyRun)
	require.NotNil(t, cmd)

	s.Update(ui.ScenarioDoneMsg{RunID: -1})
	assert.True(t, s.Running())

	_, again := s.Update(keyRun)
	assert.Nil(t, again, "a running scenario is not started twice")
}

func TestScenarioScreenFailure(t *testing.T) {
	s := NewScenarioScreen(fixedScenario(ui.Report{}, errors.New("boom")), nil)
	_, cmd := s.Update(keyRun)
	s.Update(cmd())

	assert.Nil(t, s.Report())
	assert.Contains(t, s.View(), "Failed: boom")
	assert.Contains(t, s.View(), "failed")
}

func TestScenarioScreenCancel(t *testing.T) {
	started := make(chan struct{})
	sc := Scenario{
		Route: ui.RouteIntegral,
		Title: "blocking",
		Run: func(ctx context.Context, _ estimate.Progress) (ui.Report, error) {
			close(started)
			<-ctx.Done()
			return ui.Report{}, ctx.Err()
		},
	}
	s := NewScenarioScreen(sc, nil)
	_, cmd := s.Update(keyRun)

	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	<-started

	s.Update(keyCancel)
	msg := <-result
	s.Update(msg)

	assert.False(t, s.Running())
	assert.ErrorIs(t, msg.(ui.ScenarioDoneMsg).Err, context.Canceled)
	assert.Contains(t, s.View(), "Cancelled. Press r to run again.")
	assert.NotContains(t, s.View(), "Failed")
}

func TestMainMenuNavigation(t *testing.T) {
	scenarios := []Scenario{
		{Route: ui.RoutePi, Title: "π"},
		{Route: ui.RouteIntegral, Title: "integral"},
	}
	m := NewMainMenuScreen(scenarios, "seed 1")
	m.SetSize(60, 20)
	assert.Contains(t, m.View(), "seed 1")

	assert.Equal(t, ui.RoutePi, m.SelectedRoute())
	m.Update(keyDown)
	assert.Equal(t, ui.RouteIntegral, m.SelectedRoute())
	m.Update(keyDown)
	assert.Equal(t, ui.RoutePi, m.SelectedRoute(), "selection wraps")

	m.Update(keyDown)
	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, ui.RouterMsg{To: ui.RouteIntegral}, cmd())
}

func TestCatalogue(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	scenarios := Catalogue(cfg, nil)
	require.Len(t, scenarios, 7)

	routes := map[ui.Route]bool{}
	for _, sc := range scenarios {
		routes[sc.Route] = true
		assert.NotEmpty(t, sc.Title)
		assert.NotNil(t, sc.Run)
	}
	assert.Len(t, routes, 7)
}

func TestCatalogueGamblingScenarioRuns(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Seed = 3
	cfg.Gambling.Actors = 20
	cfg.Gambling.Periods = 10

	for _, sc := range Catalogue(cfg, nil) {
		if sc.Route != ui.RouteGamblingDoublingAbsorbing {
			continue
		}
		report, err := sc.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, report.Series, 11)
		assert.Len(t, report.Trend, 11)
		assert.Equal(t, "Actors", report.Stats[0].Label)
	}
}

func TestCatalogueSweepScenarioRuns(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Seed = 3
	cfg.Sweep = config.SweepConfig{Iterations: 6, Tests: 2, PointsFirst: 200, PointsIncrement: 100, FitModel: "poly2"}

	var last int
	for _, sc := range Catalogue(cfg, nil) {
		if sc.Route != ui.RoutePiSweep {
			continue
		}
		report, err := sc.Run(context.Background(), func(done, total int) { last = done })
		require.NoError(t, err)
		assert.Len(t, report.Series, 6)
		assert.Len(t, report.Trend, 6)
		assert.Equal(t, "fitted poly2", report.TrendLabel)
	}
	assert.Equal(t, 6, last)
}
