// ABOUTME: Main menu for the console as a bubbletea model
// ABOUTME: Offers sign-in and registration when signed out, client management when signed in

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/centralauth-console/internal/tui/icons"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// Action is a menu entry
type Action int

const (
	ActionLogin Action = iota
	ActionRegister
	ActionClients
	ActionCreateClient
	ActionRefresh
	ActionLogout
	ActionQuit
)

// ActionSelectedMsg is sent when the user picks an entry
type ActionSelectedMsg struct {
	Action Action
}

// CancelledMsg is sent when the user leaves the menu
type CancelledMsg struct{}

type option struct {
	icon  icons.Icon
	label string
	value Action
}

// Menu is the action picker shown between screens
type Menu struct {
	options  []option
	selected Action
	form     *huh.Form
}

// New builds the menu for the current auth state
func New(authenticated bool) *Menu {
	m := &Menu{}
	if authenticated {
		m.options = []option{
			{icons.Client, "OAuth clients", ActionClients},
			{icons.Key, "Create client", ActionCreateClient},
			{icons.Refresh, "Refresh session", ActionRefresh},
			{icons.Back, "Log out", ActionLogout},
			{icons.Quit, "Quit", ActionQuit},
		}
	} else {
		m.options = []option{
			{icons.User, "Log in", ActionLogin},
			{icons.Wizard, "Create an account", ActionRegister},
			{icons.Quit, "Quit", ActionQuit},
		}
	}
	m.selected = m.options[0].value
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	var options []huh.Option[Action]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.icon.String()+" "+opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("What would you like to do?").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		action := m.selected
		// Rebuild so the menu is usable again when the app returns to it
		m.form = m.buildForm()
		return m, tea.Batch(m.form.Init(), func() tea.Msg { return ActionSelectedMsg{Action: action} })
	}

	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns a short name for the action
func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionRegister:
		return "register"
	case ActionClients:
		return "clients"
	case ActionCreateClient:
		return "create-client"
	case ActionRefresh:
		return "refresh"
	case ActionLogout:
		return "logout"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}
