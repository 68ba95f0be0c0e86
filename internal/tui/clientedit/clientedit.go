// ABOUTME: Create and edit form for OAuth clients as a bubbletea model
// ABOUTME: Inline field validation in huh; the save call runs in a command

package clientedit

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/clientform"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// Mode selects between creating and editing
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// SaveFunc sends the form to the server
type SaveFunc func(ctx context.Context, req client.ClientRequest) (*client.ClientDetail, error)

// SavedMsg is sent after a successful save
type SavedMsg struct {
	Mode   Mode
	Detail *client.ClientDetail
}

// FailedMsg is sent after a failed save so the app can notify
type FailedMsg struct {
	Mode Mode
	Err  error
}

// CancelledMsg is sent when the user leaves the form
type CancelledMsg struct{}

type resultMsg struct {
	detail *client.ClientDetail
	err    error
}

// Form is the client create/edit screen
type Form struct {
	mode    Mode
	save    SaveFunc
	values  clientform.Values
	form    *huh.Form
	spinner spinner.Model
	saving  bool
	err     string
}

// NewCreate returns an empty create form. The client type must be chosen
// explicitly and starts as confidential.
func NewCreate(save SaveFunc) *Form {
	return newForm(ModeCreate, save, clientform.Values{})
}

// NewEdit returns an edit form seeded from rec
func NewEdit(save SaveFunc, rec client.OAuthClient) *Form {
	return newForm(ModeEdit, save, clientform.FromRecord(rec))
}

func newForm(mode Mode, save SaveFunc, v clientform.Values) *Form {
	f := &Form{
		mode:    mode,
		save:    save,
		values:  v,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	f.form = f.buildForm()
	return f
}

// Mode reports whether the form creates or edits
func (f *Form) Mode() Mode {
	return f.mode
}

func (f *Form) title() string {
	if f.mode == ModeEdit {
		return "Edit Client"
	}
	return "Create New OAuth Client"
}

func (f *Form) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("The name of your application as shown to users").
				Placeholder("My Application").
				CharLimit(200).
				Value(&f.values.Name).
				Validate(f.check("name", func(v *clientform.Values, s string) { v.Name = s })),
			huh.NewText().
				Title("Description").
				Description("Brief description of your application").
				Placeholder("Describe your application...").
				CharLimit(1000).
				Lines(3).
				Value(&f.values.Description).
				Validate(f.check("description", func(v *clientform.Values, s string) { v.Description = s })),
			huh.NewInput().
				Title("Website URL").
				Description("Your application's homepage").
				Placeholder("https://example.com").
				CharLimit(500).
				Value(&f.values.Website).
				Validate(f.check("website", func(v *clientform.Values, s string) { v.Website = s })),
			huh.NewInput().
				Title("Redirect URI").
				Description("Where users will be redirected after authorization").
				Placeholder("https://example.com/callback").
				CharLimit(500).
				Value(&f.values.RedirectURI).
				Validate(f.check("redirect_uri", func(v *clientform.Values, s string) { v.RedirectURI = s })),
			huh.NewConfirm().
				Title("Public Client").
				Description("Public clients cannot securely store secrets. Use this for single-page or mobile apps.").
				Affirmative("Public").
				Negative("Confidential").
				Value(&f.values.IsPublic),
		).Title(f.title()).
			Description("Register a new application to integrate with the API"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// check validates one field with the value being typed
func (f *Form) check(field string, set func(*clientform.Values, string)) func(string) error {
	return func(s string) error {
		v := f.values
		set(&v, s)
		if msg := v.FieldError(field); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		f.saving = false
		if msg.err != nil {
			action := "Failed to create client"
			if f.mode == ModeEdit {
				action = "Failed to update client"
			}
			f.err = clientform.ErrorMessage(action, msg.err)
			f.form = f.buildForm()
			mode, err := f.mode, msg.err
			return f, tea.Batch(f.form.Init(), func() tea.Msg { return FailedMsg{Mode: mode, Err: err} })
		}
		mode, detail := f.mode, msg.detail
		if f.mode == ModeEdit {
			// Edits stay on screen with the saved values
			f.form = f.buildForm()
			return f, tea.Batch(f.form.Init(), func() tea.Msg { return SavedMsg{Mode: mode, Detail: detail} })
		}
		return f, func() tea.Msg { return SavedMsg{Mode: mode, Detail: detail} }

	case spinner.TickMsg:
		if !f.saving {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case tea.KeyMsg:
		if f.saving {
			return f, nil
		}
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f.submit()
	}
	return f, cmd
}

func (f *Form) submit() (tea.Model, tea.Cmd) {
	if err := f.values.Validate(); err != nil {
		f.err = "Please fix the highlighted fields."
		f.form = f.buildForm()
		return f, f.form.Init()
	}

	f.err = ""
	f.saving = true
	req := f.values.Request()
	return f, tea.Batch(f.spinner.Tick, func() tea.Msg {
		d, err := f.save(context.Background(), req)
		return resultMsg{detail: d, err: err}
	})
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	if f.err != "" {
		sb.WriteString(styles.Banner.Render(f.err))
		sb.WriteString("\n")
	}
	if f.saving {
		label := " Creating client..."
		if f.mode == ModeEdit {
			label = " Saving changes..."
		}
		sb.WriteString(f.spinner.View() + label)
		return sb.String()
	}
	sb.WriteString(f.form.View())
	return sb.String()
}
