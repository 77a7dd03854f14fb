// Package app wires the explorer screens into a bubbletea program.
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/ui"
	"github.com/rovshanmuradov/montecarlo/internal/ui/router"
	"github.com/rovshanmuradov/montecarlo/internal/ui/screen"
)

const busSize = 256

// Model is the root model of the explorer
type Model struct {
	router *router.Router
	bus    *ui.Bus
	width  int
	height int
}

// New creates the explorer model for cfg.
func New(cfg *config.Config, logger *zap.Logger) *Model {
	bus := ui.NewBus(busSize, logger)
	scenarios := screen.Catalogue(cfg, logger)

	byRoute := make(map[ui.Route]screen.Scenario, len(scenarios))
	for _, sc := range scenarios {
		byRoute[sc.Route] = sc
	}
	resolve := func(route ui.Route) router.Screen {
		sc, ok := byRoute[route]
		if !ok {
			return nil
		}
		return screen.NewScenarioScreen(sc, bus)
	}

	status := fmt.Sprintf("seed %d • workers %d", cfg.Seed, cfg.Workers)
	if cfg.Seed == 0 {
		status = fmt.Sprintf("random seed • workers %d", cfg.Workers)
	}

	return &Model{
		router: router.New(screen.NewMainMenuScreen(scenarios, status), resolve),
		bus:    bus,
	}
}

// Init initializes the application
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.bus.Listen())
}

// Update handles application-level updates
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ui.ProgressMsg:
		// Bus messages re-arm the listener.
		_, cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.bus.Listen())
	}

	_, cmd := m.router.Update(msg)
	return m, cmd
}

// View renders the application
func (m *Model) View() string {
	return m.router.View()
}

// Router returns the navigation stack.
func (m *Model) Router() *router.Router {
	return m.router
}

// Close cancels running scenarios and stops the bus.
func (m *Model) Close() {
	m.router.CloseAll()
	m.bus.Close()
}

// Run starts the explorer and blocks until it exits or ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	model := New(cfg, logger)
	defer model.Close()

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}
