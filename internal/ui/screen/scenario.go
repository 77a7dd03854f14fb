package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/montecarlo/internal/ui"
	"github.com/rovshanmuradov/montecarlo/internal/ui/component"
	"github.com/rovshanmuradov/montecarlo/internal/ui/router"
	"github.com/rovshanmuradov/montecarlo/internal/ui/style"
)

// runIDs numbers runs across screens so late messages of a closed screen are ignored.
var runIDs atomic.Int64

// ScenarioScreen runs one scenario and shows its report
type ScenarioScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	scenario Scenario
	bus      *ui.Bus

	// UI components
	helpBar *component.HelpBar
	series  *component.Sparkline
	trend   *component.Sparkline

	// State
	runID    int
	running  bool
	cancel   context.CancelFunc
	started  time.Time
	elapsed  time.Duration
	progress ui.ProgressMsg
	report   *ui.Report
	err      error

	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewScenarioScreen creates a screen for sc. Progress travels over bus.
func NewScenarioScreen(sc Scenario, bus *ui.Bus) *ScenarioScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	s := &ScenarioScreen{
		keyMap:   keyMap,
		scenario: sc,
		bus:      bus,
		helpBar:  component.NewHelpBar().SetState(component.StateIdle),
		series:   component.NewSparkline(60).SetColor(palette.Estimate),
		trend:    component.NewSparkline(60).SetColor(palette.Trend),

		statusStyle: lipgloss.NewStyle().Foreground(palette.TextSecondary).Italic(true),
		errorStyle:  lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
	}
	s.syncKeys()
	return s
}

// syncKeys enables run or cancel depending on whether a run is in flight.
func (s *ScenarioScreen) syncKeys() {
	s.keyMap.Run.SetEnabled(!s.running)
	s.keyMap.Cancel.SetEnabled(s.running)
	s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(s.scenario.Route))
}

// Init initializes the scenario screen
func (s *ScenarioScreen) Init() tea.Cmd {
	return nil
}

// Update handles screen updates
func (s *ScenarioScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Run):
			if !s.running {
				return s, s.start()
			}
		case key.Matches(msg, s.keyMap.Cancel):
			s.Close()
		}

	case ui.ProgressMsg:
		if s.running && msg.RunID == s.runID {
			s.progress = msg
			s.helpBar.SetProgress(msg.Done, msg.Total)
		}

	case ui.ScenarioDoneMsg:
		if msg.RunID != s.runID {
			return s, nil
		}
		s.running = false
		s.elapsed = time.Since(s.started)
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.err = msg.Err
		switch {
		case msg.Err == nil:
			s.helpBar.SetState(component.StateDone)
		case errors.Is(msg.Err, context.Canceled):
			s.helpBar.SetState(component.StateCancelled)
		default:
			s.helpBar.SetState(component.StateFailed)
		}
		s.syncKeys()
		if msg.Err == nil {
			report := msg.Report
			s.report = &report
			s.series.SetData(report.Series)
			s.trend.SetData(report.Trend)
		}
	}

	return s, nil
}

// start launches the scenario off the update loop.
func (s *ScenarioScreen) start() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	id := int(runIDs.Add(1))

	s.runID = id
	s.running = true
	s.cancel = cancel
	s.started = time.Now()
	s.progress = ui.ProgressMsg{}
	s.err = nil
	s.helpBar.SetState(component.StateRunning)
	s.syncKeys()

	bus, label, run := s.bus, s.scenario.ProgressLabel, s.scenario.Run
	progress := func(done, total int) {
		bus.Send(ui.ProgressMsg{RunID: id, Done: done, Total: total, Label: label})
	}

	return func() tea.Msg {
		report, err := run(ctx, progress)
		return ui.ScenarioDoneMsg{RunID: id, Report: report, Err: err}
	}
}

// Close cancels a running scenario.
func (s *ScenarioScreen) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Running reports whether a run is in flight.
func (s *ScenarioScreen) Running() bool {
	return s.running
}

// Report returns the report of the last successful run.
func (s *ScenarioScreen) Report() *ui.Report {
	return s.report
}

// View renders the scenario screen
func (s *ScenarioScreen) View() string {
	var content strings.Builder

	content.WriteString(style.Title().Render(s.scenario.Title))
	content.WriteString("\n")
	content.WriteString(s.statusStyle.Render(s.scenario.Description))
	content.WriteString("\n\n")

	content.WriteString(s.renderStatus())
	content.WriteString("\n\n")

	if s.report != nil {
		content.WriteString(s.renderStats())
		content.WriteString("\n")
		content.WriteString(s.renderSeries())
	}

	content.WriteString(s.helpBar.View())
	return content.String()
}

func (s *ScenarioScreen) renderStatus() string {
	switch {
	case s.running && s.progress.Total > 0:
		return s.statusStyle.Render(fmt.Sprintf("Running… %d/%d %s", s.progress.Done, s.progress.Total, s.progress.Label))
	case s.running:
		return s.statusStyle.Render("Running…")
	case errors.Is(s.err, context.Canceled):
		return s.statusStyle.Render("Cancelled. Press r to run again.")
	case s.err != nil:
		return s.errorStyle.Render("Failed: " + s.err.Error())
	case s.report != nil:
		return s.statusStyle.Render(fmt.Sprintf("Finished in %s. Press r to run again.", s.elapsed.Round(time.Millisecond)))
	default:
		return s.statusStyle.Render("Press r to run.")
	}
}

func (s *ScenarioScreen) renderStats() string {
	rows := make([]string, 0, len(s.report.Stats))
	for _, st := range s.report.Stats {
		rows = append(rows, style.Label().Render(st.Label)+style.Value().Render(st.Value))
	}
	return strings.Join(rows, "\n") + "\n"
}

func (s *ScenarioScreen) renderSeries() string {
	var out strings.Builder
	if len(s.report.Series) > 0 {
		out.WriteString(s.statusStyle.Render(s.report.SeriesLabel))
		out.WriteString("\n")
		out.WriteString(s.series.View())
		out.WriteString("\n")
	}
	if len(s.report.Trend) > 0 {
		out.WriteString(s.statusStyle.Render(s.report.TrendLabel))
		out.WriteString("\n")
		out.WriteString(s.trend.View())
		out.WriteString("\n")
	}
	return out.String()
}

// SetSize sets the screen dimensions
func (s *ScenarioScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)

	sparkWidth := width - 4
	if sparkWidth < 10 {
		sparkWidth = 60
	}
	s.series.SetWidth(sparkWidth)
	s.trend.SetWidth(sparkWidth)
	if s.report != nil {
		s.series.SetData(s.report.Series)
		s.trend.SetData(s.report.Trend)
	}
}
