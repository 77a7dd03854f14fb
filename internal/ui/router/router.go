package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/montecarlo/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Closer is implemented by screens that hold work to stop when they leave the stack.
type Closer interface {
	Close()
}

// Resolver builds the screen for a route. It returns nil for unknown routes.
type Resolver func(route ui.Route) Screen

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack   []Screen
	resolve Resolver
	width   int
	height  int
}

// New creates a new router with the initial screen
func New(initialScreen Screen, resolve Resolver) *Router {
	return &Router{
		stack:   []Screen{initialScreen},
		resolve: resolve,
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		if msg.To == ui.RouteMainMenu {
			return r, r.Clear()
		}
		if r.resolve == nil {
			return r, nil
		}
		if screen := r.resolve(msg.To); screen != nil {
			return r, r.Push(screen)
		}
		return r, nil

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Back()
		}
	}

	if len(r.stack) == 0 {
		return r, nil
	}
	current := r.stack[len(r.stack)-1]
	updated, cmd := current.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return r, cmd
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil // Can't pop the last screen
	}

	closeScreen(r.stack[len(r.stack)-1])
	r.stack = r.stack[:len(r.stack)-1]

	current := r.stack[len(r.stack)-1]
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Back navigates back to the previous screen
func (r *Router) Back() tea.Cmd {
	return r.Pop()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// Clear removes all screens except the first one
func (r *Router) Clear() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	for _, screen := range r.stack[1:] {
		closeScreen(screen)
	}
	r.stack = r.stack[:1]

	root := r.stack[0]
	root.SetSize(r.width, r.height)
	return root.Init()
}

// CloseAll closes every screen on the stack.
func (r *Router) CloseAll() {
	for _, screen := range r.stack {
		closeScreen(screen)
	}
}

func closeScreen(screen Screen) {
	if c, ok := screen.(Closer); ok {
		c.Close()
	}
}
