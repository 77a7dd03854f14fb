package component

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/montecarlo/internal/ui/style"
)

// RunState is the lifecycle of a scenario run as shown in the help bar.
type RunState int

const (
	// StateNone hides the state badge.
	StateNone RunState = iota
	StateIdle
	StateRunning
	StateDone
	StateCancelled
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return ""
}

// HelpBar renders a run state badge followed by the short help of the
// bindings that currently apply. Disabled bindings are skipped.
type HelpBar struct {
	help     help.Model
	bindings []key.Binding
	width    int

	state       RunState
	done, total int

	badges    map[RunState]lipgloss.Style
	container lipgloss.Style
}

// NewHelpBar creates a help bar for bindings.
func NewHelpBar(bindings ...key.Binding) *HelpBar {
	palette := style.DefaultPalette()

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(palette.Primary).Bold(true)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(palette.TextMuted)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(palette.TextMuted)
	h.Styles.Ellipsis = lipgloss.NewStyle().Foreground(palette.TextMuted)

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(palette.Background)

	return &HelpBar{
		help:     h,
		bindings: bindings,
		width:    80,
		badges: map[RunState]lipgloss.Style{
			StateIdle:      badge.Background(palette.TextMuted),
			StateRunning:   badge.Background(palette.Primary),
			StateDone:      badge.Background(palette.Success),
			StateCancelled: badge.Background(palette.Warning),
			StateFailed:    badge.Background(palette.Error),
		},
		container: lipgloss.NewStyle().Padding(0, 1).Margin(1, 0, 0, 0),
	}
}

// SetKeyBindings replaces the bindings shown.
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

// SetWidth sets the total width, padding included.
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// SetState sets the run state badge. Progress is reset when leaving StateRunning.
func (h *HelpBar) SetState(state RunState) *HelpBar {
	h.state = state
	if state != StateRunning {
		h.done, h.total = 0, 0
	}
	return h
}

// SetProgress records trial progress for the running badge.
func (h *HelpBar) SetProgress(done, total int) *HelpBar {
	h.done, h.total = done, total
	return h
}

// State returns the current run state.
func (h *HelpBar) State() RunState {
	return h.state
}

func (h *HelpBar) badge() string {
	if h.state == StateNone {
		return ""
	}
	label := h.state.String()
	if h.state == StateRunning && h.total > 0 {
		label = fmt.Sprintf("%s %d%%", label, 100*h.done/h.total)
	}
	return h.badges[h.state].Render(label)
}

// View renders the help bar.
func (h *HelpBar) View() string {
	badge := h.badge()

	h.help.Width = h.width - 2
	if badge != "" {
		h.help.Width -= lipgloss.Width(badge) + 1
	}
	keys := h.help.ShortHelpView(h.bindings)

	var content string
	switch {
	case badge == "" && keys == "":
		return ""
	case badge == "":
		content = keys
	case keys == "":
		content = badge
	default:
		content = badge + " " + keys
	}
	return h.container.Render(content)
}
