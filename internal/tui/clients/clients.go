// ABOUTME: OAuth client list screen as a bubbletea model
// ABOUTME: bubbles table of the user's clients with open, create, delete and reload keys

package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/tui/icons"
	"github.com/markalston/centralauth-console/internal/tui/styles"
)

// Loader fetches the client list
type Loader func(ctx context.Context) (*client.ClientList, error)

// OpenMsg asks the app to show one client
type OpenMsg struct {
	ID int64
}

// CreateMsg asks the app to show the create form
type CreateMsg struct{}

// DeleteMsg asks the app to confirm deleting a client
type DeleteMsg struct {
	Client client.OAuthClient
}

// ReloadMsg asks the app to drop cached data before reloading
type ReloadMsg struct{}

// BackMsg is sent when the user leaves the list
type BackMsg struct{}

type loadedMsg struct {
	list *client.ClientList
	err  error
}

// List is the client list screen
type List struct {
	load    Loader
	table   table.Model
	spinner spinner.Model
	clients []client.OAuthClient
	loading bool
	err     error
	width   int
	height  int
	now     func() time.Time
}

// New creates the list screen; Init starts loading
func New(load Loader, width, height int) *List {
	l := &List{
		load:    load,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
		loading: true,
		width:   width,
		height:  height,
		now:     time.Now,
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Surface).
		Bold(true)

	l.table = table.New(
		table.WithColumns(l.columns()),
		table.WithFocused(true),
		table.WithHeight(l.tableHeight()),
		table.WithStyles(s),
	)
	return l
}

func (l *List) columns() []table.Column {
	// Fixed columns; name and redirect URI share what is left
	const idW, typeW, updatedW = 24, 12, 14
	rest := l.width - idW - typeW - updatedW - 10
	if rest < 30 {
		rest = 30
	}
	return []table.Column{
		{Title: "Name", Width: rest * 2 / 5},
		{Title: "Client ID", Width: idW},
		{Title: "Type", Width: typeW},
		{Title: "Redirect URI", Width: rest - rest*2/5},
		{Title: "Updated", Width: updatedW},
	}
}

func (l *List) tableHeight() int {
	// Title, subtitle and help lines
	h := l.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

// SetSize resizes the table
func (l *List) SetSize(width, height int) {
	l.width, l.height = width, height
	l.table.SetColumns(l.columns())
	l.table.SetHeight(l.tableHeight())
	l.table.SetRows(l.rows())
}

// Init implements tea.Model
func (l *List) Init() tea.Cmd {
	return tea.Batch(l.spinner.Tick, l.fetch())
}

func (l *List) fetch() tea.Cmd {
	return func() tea.Msg {
		list, err := l.load(context.Background())
		return loadedMsg{list: list, err: err}
	}
}

// Reload fetches the list again
func (l *List) Reload() tea.Cmd {
	l.loading = true
	return tea.Batch(l.spinner.Tick, l.fetch())
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		l.loading = false
		l.err = msg.err
		if msg.err == nil && msg.list != nil {
			l.clients = msg.list.Clients
		}
		l.table.SetRows(l.rows())
		return l, nil

	case spinner.TickMsg:
		if !l.loading {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b":
			return l, func() tea.Msg { return BackMsg{} }
		case "n":
			return l, func() tea.Msg { return CreateMsg{} }
		case "r":
			return l, func() tea.Msg { return ReloadMsg{} }
		case "enter":
			if c, ok := l.Selected(); ok {
				return l, func() tea.Msg { return OpenMsg{ID: c.ID} }
			}
			return l, nil
		case "d":
			if c, ok := l.Selected(); ok {
				return l, func() tea.Msg { return DeleteMsg{Client: c} }
			}
			return l, nil
		}
	}

	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return l, cmd
}

// Selected returns the client under the cursor
func (l *List) Selected() (client.OAuthClient, bool) {
	i := l.table.Cursor()
	if l.loading || i < 0 || i >= len(l.clients) {
		return client.OAuthClient{}, false
	}
	return l.clients[i], true
}

func (l *List) rows() []table.Row {
	rows := make([]table.Row, 0, len(l.clients))
	for _, c := range l.clients {
		kind := "Confidential"
		if c.IsPublic {
			kind = "Public"
		}
		rows = append(rows, table.Row{c.Name, c.ClientID, kind, c.RedirectURI, l.since(c.UpdatedAt)})
	}
	return rows
}

func (l *List) since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, l.now(), "ago", "from now")
}

// View implements tea.Model
func (l *List) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Client.String() + " OAuth Clients"))
	sb.WriteString("\n")

	switch {
	case l.loading:
		sb.WriteString(l.spinner.View() + " Loading clients...")
		return sb.String()
	case l.err != nil:
		sb.WriteString(styles.Banner.Render("We couldn't load your clients. Please try again."))
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("r retry  b back"))
		return sb.String()
	case len(l.clients) == 0:
		sb.WriteString(styles.Subtitle.Render("You have no OAuth clients yet. Press n to create one."))
		return sb.String()
	}

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d %s", len(l.clients), plural(len(l.clients), "client", "clients"))))
	sb.WriteString("\n")
	sb.WriteString(l.table.View())
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
