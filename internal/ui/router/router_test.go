package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/montecarlo/internal/ui"
)

type fakeScreen struct {
	name          string
	width, height int
	inits         int
	closed        bool
	updates       []tea.Msg
}

func (f *fakeScreen) Init() tea.Cmd {
	f.inits++
	return nil
}

func (f *fakeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	f.updates = append(f.updates, msg)
	return f, nil
}

func (f *fakeScreen) View() string { return f.name }

func (f *fakeScreen) SetSize(width, height int) {
	f.width, f.height = width, height
}

func (f *fakeScreen) Close() { f.closed = true }

func newTestRouter() (*Router, *fakeScreen, map[ui.Route]*fakeScreen) {
	root := &fakeScreen{name: "menu"}
	built := map[ui.Route]*fakeScreen{}
	r := New(root, func(route ui.Route) Screen {
		if route != ui.RoutePi && route != ui.RouteIntegral {
			return nil
		}
		s := &fakeScreen{name: route.String()}
		built[route] = s
		return s
	})
	return r, root, built
}

func TestRouterNavigation(t *testing.T) {
	r, root, built := newTestRouter()
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, root.width)

	r.Update(ui.RouterMsg{To: ui.RoutePi})
	require.Equal(t, 2, r.Depth())
	assert.Equal(t, "pi", r.View())
	assert.Equal(t, 100, built[ui.RoutePi].width)
	assert.Equal(t, 1, built[ui.RoutePi].inits)

	r.Update(ui.RouterMsg{To: ui.RouteGamblingFlat})
	assert.Equal(t, 2, r.Depth(), "unknown routes are ignored")

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.True(t, built[ui.RoutePi].closed)
	assert.Equal(t, "menu", r.View())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth(), "the root screen stays")
}

func TestRouterForwardsToCurrentScreen(t *testing.T) {
	r, root, built := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteIntegral})

	msg := ui.ProgressMsg{Done: 1, Total: 2}
	r.Update(msg)
	assert.Equal(t, []tea.Msg{msg}, built[ui.RouteIntegral].updates)
	assert.Empty(t, root.updates)
}

func TestRouterClear(t *testing.T) {
	r, _, built := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RoutePi})
	r.Push(&fakeScreen{name: "extra"})
	require.Equal(t, 3, r.Depth())

	r.Update(ui.RouterMsg{To: ui.RouteMainMenu})
	assert.Equal(t, 1, r.Depth())
	assert.True(t, built[ui.RoutePi].closed)

	r.CloseAll()
	assert.True(t, r.Current().(*fakeScreen).closed)
}
