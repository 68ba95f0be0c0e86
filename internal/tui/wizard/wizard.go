// ABOUTME: Registration wizard screen as a bubbletea model
// ABOUTME: One huh form per step over registration.Wizard, with progress, banner and field errors

package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/registration"
	"github.com/markalston/centralauth-console/internal/tui/icons"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// RegisteredMsg is sent when the account was created
type RegisteredMsg struct{}

// CancelledMsg is sent when the user leaves the wizard
type CancelledMsg struct{}

// submittedMsg carries the result of the registration call
type submittedMsg struct {
	err error
}

var stepDescriptions = map[registration.Step]string{
	registration.StepPersonal:    "Tell us about yourself",
	registration.StepAccount:     "Choose how you will sign in",
	registration.StepCredentials: "Secure your account",
}

// inputs holds the huh-bound values of every field
type inputs struct {
	firstName, lastName, phone string
	username, email            string
	password, confirm          string
}

func (in *inputs) ptr(f registration.Field) *string {
	switch f {
	case registration.FirstName:
		return &in.firstName
	case registration.LastName:
		return &in.lastName
	case registration.PhoneNumber:
		return &in.phone
	case registration.Username:
		return &in.username
	case registration.Email:
		return &in.email
	case registration.Password:
		return &in.password
	case registration.ConfirmPassword:
		return &in.confirm
	}
	return new(string)
}

// Wizard is the registration screen
type Wizard struct {
	state     *registration.Wizard
	registrar registration.Registrar
	form      *huh.Form
	spinner   spinner.Model
	width     int

	in inputs
	// seeded is the value each field had when its server error was shown.
	// The error blocks submission until the value changes.
	seeded map[registration.Field]string
}

// New creates a wizard on the first step
func New(r registration.Registrar, n notify.Notifier, logger *slog.Logger) *Wizard {
	w := &Wizard{
		state:     registration.NewWizard(r, n, logger),
		registrar: r,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
		seeded:    map[registration.Field]string{},
	}
	w.reseed()
	return w
}

// State exposes the underlying wizard state
func (w *Wizard) State() *registration.Wizard {
	return w.state
}

// reseed loads the current step's inputs from the draft and rebuilds the form
func (w *Wizard) reseed() {
	for _, f := range w.state.Step.Fields() {
		*w.in.ptr(f) = w.state.Draft[f]
	}
	w.rebuild()
}

// rebuild recreates the form for the current step, keeping typed values
func (w *Wizard) rebuild() {
	clear(w.seeded)
	for _, f := range w.state.Step.Fields() {
		w.seeded[f] = *w.in.ptr(f)
	}
	w.form = w.buildForm()
}

func (w *Wizard) buildForm() *huh.Form {
	var fields []huh.Field
	switch w.state.Step {
	case registration.StepPersonal:
		fields = []huh.Field{
			w.input(registration.FirstName, "First Name", "Enter your first name"),
			w.input(registration.LastName, "Last Name", "Enter your last name"),
			w.input(registration.PhoneNumber, "Phone Number (Optional)", "Enter your phone number"),
		}
	case registration.StepAccount:
		fields = []huh.Field{
			w.input(registration.Username, "Username", "Enter your username"),
			w.input(registration.Email, "Email", "m@example.com"),
		}
	case registration.StepCredentials:
		fields = []huh.Field{
			w.input(registration.Password, "Password", "********").EchoMode(huh.EchoModePassword),
			w.input(registration.ConfirmPassword, "Confirm Password", "********").EchoMode(huh.EchoModePassword),
		}
	}

	step := w.state.Step
	return huh.NewForm(
		huh.NewGroup(fields...).
			Title(fmt.Sprintf("Step %d: %s", int(step)+1, step)).
			Description(stepDescriptions[step]),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (w *Wizard) input(f registration.Field, title, placeholder string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		CharLimit(255).
		Value(w.in.ptr(f)).
		Validate(w.serverError(f))
}

// serverError keeps a field's stored error until its value is edited
func (w *Wizard) serverError(f registration.Field) func(string) error {
	return func(s string) error {
		msg := w.state.Errors[f]
		if msg == "" {
			return nil
		}
		if s == w.seeded[f] {
			return errors.New(msg)
		}
		w.state.ClearFieldError(f)
		return nil
	}
}

// stepValues collects the current form into the step's typed values
func (w *Wizard) stepValues() registration.StepValues {
	switch w.state.Step {
	case registration.StepAccount:
		return registration.AccountInfo{Username: w.in.username, Email: w.in.email}
	case registration.StepCredentials:
		return registration.Credentials{Password: w.in.password, ConfirmPassword: w.in.confirm}
	default:
		return registration.PersonalInfo{FirstName: w.in.firstName, LastName: w.in.lastName, PhoneNumber: w.in.phone}
	}
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		form, cmd := w.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			w.form = f
		}
		return w, cmd

	case submittedMsg:
		return w.finish(msg.err)

	case spinner.TickMsg:
		if !w.state.Submitting {
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case tea.KeyMsg:
		if w.state.Submitting {
			return w, nil
		}
		switch msg.String() {
		case "esc":
			return w, func() tea.Msg { return CancelledMsg{} }
		case "ctrl+b":
			if w.state.Step > registration.StepPersonal {
				w.state.Back()
				w.reseed()
				return w, w.form.Init()
			}
			return w, nil
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.submit()
	}

	return w, cmd
}

// submit hands the completed step to the wizard state. The registration
// call runs in a command; its result comes back as submittedMsg.
func (w *Wizard) submit() (tea.Model, tea.Cmd) {
	before := w.state.Step
	req, _ := w.state.Begin(w.stepValues())

	if req != nil {
		r := *req
		return w, tea.Batch(w.spinner.Tick, w.send(r))
	}

	if w.state.Step != before {
		w.reseed()
	} else {
		w.rebuild()
	}
	return w, w.form.Init()
}

func (w *Wizard) send(req client.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: w.registrar.Register(context.Background(), req)}
	}
}

func (w *Wizard) finish(err error) (tea.Model, tea.Cmd) {
	w.state.Finish(err)
	if w.state.Done {
		return w, func() tea.Msg { return RegisteredMsg{} }
	}
	w.reseed()
	return w, w.form.Init()
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")

	if msg := w.state.Errors[registration.General]; msg != "" {
		sb.WriteString(styles.Banner.Render(msg))
		sb.WriteString("\n")
	}

	if w.state.Submitting {
		sb.WriteString(w.spinner.View() + " Creating your account...")
		return sb.String()
	}

	if errs := w.renderFieldErrors(); errs != "" {
		sb.WriteString(errs)
		sb.WriteString("\n\n")
	}

	sb.WriteString(w.form.View())
	return sb.String()
}

// renderFieldErrors lists server errors for the current step's fields
func (w *Wizard) renderFieldErrors() string {
	var lines []string
	for _, f := range w.state.Step.Fields() {
		if msg := w.state.Errors[f]; msg != "" {
			lines = append(lines, styles.FieldError.Render(icons.Critical.String()+" "+msg))
		}
	}
	return strings.Join(lines, "\n")
}

// renderProgress renders the step progress indicator
func (w *Wizard) renderProgress() string {
	// Use width - 1 to ensure progress box fits within the frame
	width := w.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	current := w.state.Step
	var steps []string
	for s := registration.StepPersonal; s <= registration.LastStep; s++ {
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case s < current:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case s == current:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(s.String())))
	}

	stepsLine := strings.Join(steps, "    ")

	// Progress bar line format: "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	totalSteps := int(registration.LastStep) + 1
	filledWidth := ((int(current) + 1) * barWidth) / totalSteps
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := "Create Your Account"
	topFillWidth := max(0, width-5-lipgloss.Width(title))
	topBorder := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", topFillWidth) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + filledBar + emptyBar + " │"

	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}
