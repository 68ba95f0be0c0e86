// ABOUTME: Confirmation dialog for destructive client actions
// ABOUTME: huh confirm field; the answer is sent to the app as ResultMsg

package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// ResultMsg carries the user's answer
type ResultMsg struct {
	Confirmed bool
}

// Dialog asks one yes/no question
type Dialog struct {
	value bool
	form  *huh.Form
}

// New builds a dialog. The default answer is the negative one.
func New(title, description, affirmative string) *Dialog {
	d := &Dialog{}
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&d.value),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return d
}

// Regenerate is the dialog shown before issuing a new client secret
func Regenerate() *Dialog {
	return New(
		"Regenerate Client Secret?",
		"This will invalidate the current client secret and generate a new one. "+
			"Any applications using the current secret will need to be updated.\n\n"+
			"This action cannot be undone.",
		"Regenerate Secret",
	)
}

// Delete is the dialog shown before deleting a client
func Delete(name string) *Dialog {
	return New(
		"Delete Client?",
		fmt.Sprintf("This will permanently delete %q. Applications using its credentials will stop working.\n\n"+
			"This action cannot be undone.", name),
		"Delete Client",
	)
}

// WithWidth sizes the dialog, panel border included, to width columns
func (d *Dialog) WithWidth(width int) *Dialog {
	d.form = d.form.WithWidth(width - styles.ActivePanel.GetHorizontalFrameSize())
	return d
}

// Init implements tea.Model
func (d *Dialog) Init() tea.Cmd {
	return d.form.Init()
}

// Update implements tea.Model
func (d *Dialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return d, func() tea.Msg { return ResultMsg{Confirmed: false} }
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		confirmed := d.value
		return d, func() tea.Msg { return ResultMsg{Confirmed: confirmed} }
	}
	return d, cmd
}

// View implements tea.Model
func (d *Dialog) View() string {
	return styles.ActivePanel.Render(d.form.View())
}
