// ABOUTME: OAuth client detail screen as a bubbletea model
// ABOUTME: Shows the record and its security panel; actions are sent to the app as messages

package clientview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/tui/icons"
	"github.com/markalston/centralauth-console/internal/tui/styles"
	"github.com/markalston/centralauth-console/internal/tui/widgets"
)

// Messages shown when the record cannot be loaded
const (
	MsgLoadFailed = "We couldn't load the client details. Please try again."
	MsgNotFound   = "The client you're looking for doesn't exist or you don't have permission to view it."
)

// Loader fetches one client
type Loader func(ctx context.Context, id int64) (*client.ClientDetail, error)

// EditMsg asks the app to open the edit form
type EditMsg struct{ Client client.OAuthClient }

// RegenerateMsg asks the app to confirm a secret regeneration
type RegenerateMsg struct{ Client client.OAuthClient }

// DeleteMsg asks the app to confirm deleting the client
type DeleteMsg struct{ Client client.OAuthClient }

// CopyMsg asks the app to copy text to the clipboard
type CopyMsg struct {
	Text string
	What string
}

// BackMsg is sent when the user leaves the screen
type BackMsg struct{}

type loadedMsg struct {
	detail *client.ClientDetail
	err    error
}

// Detail is the client detail screen
type Detail struct {
	id      int64
	load    Loader
	record  *client.ClientDetail
	spinner spinner.Model
	loading bool
	err     error
	width   int
	now     func() time.Time
}

// New creates the screen for client id; Init starts loading
func New(id int64, load Loader, width int) *Detail {
	return &Detail{
		id:      id,
		load:    load,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
		loading: true,
		width:   width,
		now:     time.Now,
	}
}

// ID returns the client being shown
func (d *Detail) ID() int64 {
	return d.id
}

// Record returns the loaded record, if any
func (d *Detail) Record() (client.OAuthClient, bool) {
	if d.record == nil {
		return client.OAuthClient{}, false
	}
	return d.record.OAuthClient, true
}

// SetRecord replaces the shown record, e.g. after a save
func (d *Detail) SetRecord(c client.OAuthClient) {
	d.record = &client.ClientDetail{OAuthClient: c}
	d.loading = false
	d.err = nil
}

// SetWidth updates the screen width
func (d *Detail) SetWidth(width int) {
	d.width = width
}

// Init implements tea.Model
func (d *Detail) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.fetch())
}

// Reload fetches the record again
func (d *Detail) Reload() tea.Cmd {
	d.loading = true
	return d.Init()
}

func (d *Detail) fetch() tea.Cmd {
	id := d.id
	return func() tea.Msg {
		detail, err := d.load(context.Background(), id)
		return loadedMsg{detail: detail, err: err}
	}
}

// Update implements tea.Model
func (d *Detail) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		d.loading = false
		d.err = msg.err
		if msg.err == nil {
			d.record = msg.detail
		}
		return d, nil

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "b":
			return d, func() tea.Msg { return BackMsg{} }
		case "r":
			return d, d.Reload()
		}

		c, ok := d.Record()
		if !ok || d.loading {
			return d, nil
		}
		switch key {
		case "e":
			return d, func() tea.Msg { return EditMsg{Client: c} }
		case "s":
			if !c.IsPublic {
				return d, func() tea.Msg { return RegenerateMsg{Client: c} }
			}
		case "d":
			return d, func() tea.Msg { return DeleteMsg{Client: c} }
		case "i":
			return d, func() tea.Msg { return CopyMsg{Text: c.ClientID, What: "Client ID"} }
		}
	}
	return d, nil
}

// LoadError returns the text shown for a failed load
func LoadError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Code == client.CodeNotFound) {
		return MsgNotFound
	}
	return MsgLoadFailed
}

// View implements tea.Model
func (d *Detail) View() string {
	switch {
	case d.loading:
		return d.spinner.View() + " Loading client..."
	case d.err != nil:
		return styles.Banner.Render(LoadError(d.err)) + "\n" + styles.Help.Render("r retry  b back")
	case d.record == nil:
		return styles.Banner.Render(MsgNotFound)
	}

	c := d.record.OAuthClient
	leftWidth := d.width * 3 / 5
	if d.width < 80 {
		leftWidth = d.width
	}
	left := styles.ActivePanel.Width(max(leftWidth-4, 30)).Render(d.viewInfo(c))
	right := styles.Panel.Width(max(d.width-leftWidth-4, 30)).Render(d.viewSecurity(c))

	if d.width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (d *Detail) viewInfo(c client.OAuthClient) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Client.String() + " " + c.Name))
	sb.WriteString("\n")
	if c.Description != "" {
		sb.WriteString(styles.Subtitle.Render(c.Description))
		sb.WriteString("\n")
	}

	website := c.Website
	if website == "" {
		website = "-"
	}
	rows := [][2]string{
		{"Client ID", c.ClientID},
		{"Website", website},
		{"Redirect URI", c.RedirectURI},
	}
	for _, r := range rows {
		sb.WriteString(styles.LabelStyle.Render(r[0]) + styles.ValueStyle.Render(r[1]) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Detail) viewSecurity(c client.OAuthClient) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Client Security"))
	sb.WriteString("\n")
	sb.WriteString(widgets.ClientTypeBadge(c.IsPublic))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(widgets.ClientTypeDescription(c.IsPublic)))
	sb.WriteString("\n")

	if !c.IsPublic {
		sb.WriteString(styles.Subtitle.Render("The client secret is only shown once when created or regenerated. Keep it secure."))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("%s%s\n", styles.LabelStyle.Render("Created"), d.when(c.CreatedAt)))
	sb.WriteString(fmt.Sprintf("%s%s", styles.LabelStyle.Render("Last Updated"), d.when(c.UpdatedAt)))
	return sb.String()
}

func (d *Detail) when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04") + " (" + humanize.RelTime(t, d.now(), "ago", "from now") + ")"
}
