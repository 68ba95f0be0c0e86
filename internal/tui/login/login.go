// ABOUTME: Login screen as a bubbletea model
// ABOUTME: huh email and password form; the sign-in call runs in a command

package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/signin"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// Func performs the sign-in
type Func func(ctx context.Context, req client.LoginRequest) error

// LoggedInMsg is sent after a successful sign-in
type LoggedInMsg struct{}

// CancelledMsg is sent when the user leaves the screen
type CancelledMsg struct{}

type resultMsg struct {
	err error
}

// Login is the sign-in screen
type Login struct {
	login      Func
	values     signin.Values
	form       *huh.Form
	spinner    spinner.Model
	submitting bool
	err        string

	suggestions []string
}

// New creates the login screen. email pre-fills the form.
func New(fn Func, email string) *Login {
	l := &Login{
		login:   fn,
		values:  signin.Values{Email: email},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	l.form = l.buildForm()
	return l
}

// WithSuggestions offers emails for autocomplete in the email field
func (l *Login) WithSuggestions(emails []string) *Login {
	l.suggestions = emails
	l.form = l.buildForm()
	return l
}

func (l *Login) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("m@example.com").
				Suggestions(l.suggestions).
				Value(&l.values.Email),
			huh.NewInput().
				Title("Password").
				Placeholder("********").
				EchoMode(huh.EchoModePassword).
				Value(&l.values.Password),
		).Title("Sign in").
			Description("Use the email and password you registered with"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		l.submitting = false
		if msg.err != nil {
			l.err = signin.ErrorMessage(msg.err)
			l.values.Password = ""
			l.form = l.buildForm()
			return l, l.form.Init()
		}
		return l, func() tea.Msg { return LoggedInMsg{} }

	case spinner.TickMsg:
		if !l.submitting {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		if l.submitting {
			return l, nil
		}
		if msg.String() == "esc" {
			return l, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		return l.submit()
	}
	return l, cmd
}

func (l *Login) submit() (tea.Model, tea.Cmd) {
	if err := l.values.Validate(); err != nil {
		l.err = signin.ErrorMessage(err)
		l.form = l.buildForm()
		return l, l.form.Init()
	}

	l.err = ""
	l.submitting = true
	req := l.values.Request()
	return l, tea.Batch(l.spinner.Tick, func() tea.Msg {
		return resultMsg{err: l.login(context.Background(), req)}
	})
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	if l.err != "" {
		sb.WriteString(styles.Banner.Render(l.err))
		sb.WriteString("\n")
	}
	if l.submitting {
		sb.WriteString(l.spinner.View() + " Signing in...")
		return sb.String()
	}
	sb.WriteString(l.form.View())
	return sb.String()
}
