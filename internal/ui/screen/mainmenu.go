package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/montecarlo/internal/ui"
	"github.com/rovshanmuradov/montecarlo/internal/ui/component"
	"github.com/rovshanmuradov/montecarlo/internal/ui/router"
	"github.com/rovshanmuradov/montecarlo/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MainMenuScreen represents the main menu screen
type MainMenuScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	helpBar *component.HelpBar

	// State
	selectedIndex int
	menuItems     []MenuItem
	status        string

	// Styling
	titleStyle       lipgloss.Style
	menuItemStyle    lipgloss.Style
	selectedStyle    lipgloss.Style
	descriptionStyle lipgloss.Style
	headerStyle      lipgloss.Style
}

// NewMainMenuScreen creates a menu listing scenarios. status is shown under the title.
func NewMainMenuScreen(scenarios []Scenario, status string) *MainMenuScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	menuItems := make([]MenuItem, len(scenarios))
	for i, sc := range scenarios {
		menuItems[i] = MenuItem{
			Label:       "▶ " + sc.Title,
			Description: sc.Description,
			Route:       sc.Route,
		}
	}

	helpBar := component.NewHelpBar(keyMap.ContextualHelp(ui.RouteMainMenu)...)

	return &MainMenuScreen{
		keyMap:    keyMap,
		menuItems: menuItems,
		helpBar:   helpBar,
		status:    status,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0).
			Align(lipgloss.Center),

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		descriptionStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 4).
			Italic(true),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 2),
	}
}

// Init initializes the main menu screen
func (m *MainMenuScreen) Init() tea.Cmd {
	return nil
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msgKey, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msgKey, m.keyMap.Up):
		m.moveUp()

	case key.Matches(msgKey, m.keyMap.Down):
		m.moveDown()

	case key.Matches(msgKey, m.keyMap.Enter):
		if len(m.menuItems) == 0 {
			return m, nil
		}
		route := m.menuItems[m.selectedIndex].Route
		return m, func() tea.Msg {
			return ui.RouterMsg{To: route}
		}
	}

	return m, nil
}

// View renders the main menu screen
func (m *MainMenuScreen) View() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")
	content.WriteString(m.renderMenu())
	content.WriteString("\n")
	content.WriteString(m.helpBar.View())

	result := content.String()
	if m.width > 80 && m.height > 0 {
		result = lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			result)
	}

	return result
}

// SetSize sets the screen dimensions
func (m *MainMenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.helpBar.SetWidth(width)
}

// renderHeader renders the screen header
func (m *MainMenuScreen) renderHeader() string {
	title := m.titleStyle.Render("Monte Carlo Explorer")
	if m.status == "" {
		return title
	}
	status := m.headerStyle.Render(m.status)
	return lipgloss.JoinVertical(lipgloss.Center, title, status)
}

// renderMenu renders the menu items
func (m *MainMenuScreen) renderMenu() string {
	var menuItems []string

	for i, item := range m.menuItems {
		itemStyle := m.menuItemStyle
		if i == m.selectedIndex {
			itemStyle = m.selectedStyle
		}
		menuItems = append(menuItems, itemStyle.Render(fmt.Sprintf("%d. %s", i+1, item.Label)))

		// Add description for selected item
		if i == m.selectedIndex {
			menuItems = append(menuItems, m.descriptionStyle.Render(item.Description))
		}
	}

	menuStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.DefaultPalette().Primary).
		Padding(1, 2)

	return menuStyle.Render(strings.Join(menuItems, "\n"))
}

// moveUp moves selection up
func (m *MainMenuScreen) moveUp() {
	if len(m.menuItems) == 0 {
		return
	}
	if m.selectedIndex > 0 {
		m.selectedIndex--
	} else {
		m.selectedIndex = len(m.menuItems) - 1
	}
}

// moveDown moves selection down
func (m *MainMenuScreen) moveDown() {
	if len(m.menuItems) == 0 {
		return
	}
	if m.selectedIndex < len(m.menuItems)-1 {
		m.selectedIndex++
	} else {
		m.selectedIndex = 0
	}
}

// SelectedRoute returns the currently selected route
func (m *MainMenuScreen) SelectedRoute() ui.Route {
	if m.selectedIndex < len(m.menuItems) {
		return m.menuItems[m.selectedIndex].Route
	}
	return ui.RouteMainMenu
}
