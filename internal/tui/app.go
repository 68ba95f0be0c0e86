// ABOUTME: Root bubbletea model for the console application
// ABOUTME: Manages screen state, routes input to child screens and runs mutations as commands

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/clientform"
	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/query"
	"github.com/markalston/centralauth-console/internal/registration"
	"github.com/markalston/centralauth-console/internal/session"
	"github.com/markalston/centralauth-console/internal/signin"
	"github.com/markalston/centralauth-console/internal/tui/clientedit"
	"github.com/markalston/centralauth-console/internal/tui/clients"
	"github.com/markalston/centralauth-console/internal/tui/clientview"
	"github.com/markalston/centralauth-console/internal/tui/confirm"
	"github.com/markalston/centralauth-console/internal/tui/icons"
	"github.com/markalston/centralauth-console/internal/tui/login"
	"github.com/markalston/centralauth-console/internal/tui/menu"
	"github.com/markalston/centralauth-console/internal/tui/recentlogins"
	"github.com/markalston/centralauth-console/internal/tui/styles"
	"github.com/markalston/centralauth-console/internal/tui/widgets"
	"github.com/markalston/centralauth-console/internal/tui/wizard"
)

// Screen represents the current console screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenClients
	ScreenClientDetail
	ScreenClientEdit
	ScreenClientCreate
	ScreenConfirmRegenerate
	ScreenConfirmDelete
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before the frame stops shrinking
	trayInterval     = time.Second
)

// MsgSessionExpired is shown when the server rejects the stored token
const MsgSessionExpired = "Your session has expired. Please log in again."

// trayTickMsg prunes expired notifications
type trayTickMsg time.Time

// authChangedMsg is sent when the session store changes outside Update
type authChangedMsg struct{}

// regeneratedMsg is sent when a secret regeneration finishes
type regeneratedMsg struct {
	detail *client.ClientDetail
	err    error
}

// deletedMsg is sent when a client deletion finishes
type deletedMsg struct {
	id  int64
	err error
}

// loggedOutMsg is sent when logout finishes
type loggedOutMsg struct {
	err error
}

// refreshedMsg is sent when a session refresh finishes
type refreshedMsg struct {
	err error
}

// Deps are the services the console drives
type Deps struct {
	Hooks     *query.Hooks
	Store     *session.Store
	Tray      *notify.Tray
	Clipboard notify.Clipboard
	Recent    *recentlogins.Recent
	Logger    *slog.Logger
}

// App is the root model for the console
type App struct {
	hooks     *query.Hooks
	store     *session.Store
	tray      *notify.Tray
	clipboard notify.Clipboard
	recent    *recentlogins.Recent
	logger    *slog.Logger

	screen Screen
	width  int
	height int
	now    func() time.Time

	// busy names the running mutation; the spinner replaces the content
	busy    string
	spinner spinner.Model

	// pending is the client a confirmation dialog is about
	pending client.OAuthClient
	// lastEmail pre-fills the login form after registration
	lastEmail string

	// Child models
	menu       *menu.Menu
	login      *login.Login
	wizard     *wizard.Wizard
	clientList *clients.List
	detail     *clientview.Detail
	editor     *clientedit.Form
	dialog     *confirm.Dialog
}

// New creates the console application
func New(deps Deps) *App {
	if deps.Tray == nil {
		deps.Tray = notify.NewTray()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = notify.SystemClipboard{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Recent == nil {
		deps.Recent = recentlogins.New("")
	}
	if deps.Store == nil {
		deps.Store = session.NewStore(nil, deps.Logger)
	}

	a := &App{
		hooks:     deps.Hooks,
		store:     deps.Store,
		tray:      deps.Tray,
		clipboard: deps.Clipboard,
		recent:    deps.Recent,
		logger:    deps.Logger,
		screen:    ScreenMenu,
		now:       time.Now,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	a.menu = menu.New(a.authenticated())
	return a
}

func (a *App) authenticated() bool {
	return a.store.Snapshot().IsAuthenticated
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.menu.Init(), a.trayTick())
}

func (a *App) trayTick() tea.Cmd {
	return tea.Tick(trayInterval, func(t time.Time) tea.Msg { return trayTickMsg(t) })
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, redirected := a.guard(); redirected {
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.clientList != nil {
			a.clientList.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.detail != nil {
			a.detail.SetWidth(a.contentWidth())
		}
		if a.wizard != nil {
			a.wizard.SetWidth(a.frameWidth() - 1)
		}
		if a.dialog != nil {
			a.dialog.WithWidth(a.contentWidth())
		}
		return a.forward(msg)

	case authChangedMsg:
		// guard has already redirected if the session ended
		return a, nil

	case trayTickMsg:
		// Active prunes expired entries
		a.tray.Active()
		return a, a.trayTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		if a.busy != "" {
			a.spinner, cmd = a.spinner.Update(msg)
		}
		_, fwd := a.forward(msg)
		return a, tea.Batch(cmd, fwd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+y":
			a.copyLatestSecret()
			return a, nil
		}
		if a.busy != "" {
			return a, nil
		}
		return a.forward(msg)

	// Menu
	case menu.ActionSelectedMsg:
		return a.handleAction(msg.Action)
	case menu.CancelledMsg:
		return a, tea.Quit

	// Login
	case login.LoggedInMsg:
		a.login = nil
		if u := a.store.Snapshot().User; u != nil {
			a.tray.Notify(notify.Success("Welcome back, "+u.DisplayName(), ""))
			if err := a.recent.Add(u.Email); err != nil {
				a.logger.Warn("Could not save recent login", "error", err)
			}
		}
		return a.showClients()
	case login.CancelledMsg:
		a.login = nil
		return a.showMenu()

	// Registration
	case wizard.RegisteredMsg:
		if a.wizard != nil {
			a.lastEmail = a.wizard.State().Draft[registration.Email]
		}
		a.wizard = nil
		return a.showLogin()
	case wizard.CancelledMsg:
		a.wizard = nil
		return a.showMenu()

	// Client list
	case clients.OpenMsg:
		return a.showDetail(msg.ID)
	case clients.CreateMsg:
		return a.showCreate()
	case clients.DeleteMsg:
		return a.confirmDelete(msg.Client)
	case clients.ReloadMsg:
		a.hooks.Invalidate()
		if a.clientList != nil {
			return a, a.clientList.Reload()
		}
		return a, nil
	case clients.BackMsg:
		return a.showMenu()

	// Client detail
	case clientview.EditMsg:
		a.editor = clientedit.NewEdit(a.updateClient(msg.Client.ID), msg.Client)
		a.screen = ScreenClientEdit
		return a, a.editor.Init()
	case clientview.RegenerateMsg:
		a.pending = msg.Client
		a.dialog = confirm.Regenerate().WithWidth(a.contentWidth())
		a.screen = ScreenConfirmRegenerate
		return a, a.dialog.Init()
	case clientview.DeleteMsg:
		return a.confirmDelete(msg.Client)
	case clientview.CopyMsg:
		if err := notify.Copy(a.clipboard, a.tray, msg.Text, msg.What); err != nil {
			a.logger.Warn("Copy failed", "what", msg.What, "error", err)
		}
		return a, nil
	case clientview.BackMsg:
		a.detail = nil
		return a.showClients()

	// Create and edit
	case clientedit.SavedMsg:
		return a.handleSaved(msg)
	case clientedit.FailedMsg:
		if a.expireOn401(msg.Err) {
			return a.showLogin()
		}
		action := "Failed to create client"
		if msg.Mode == clientedit.ModeEdit {
			action = "Failed to update client"
		}
		a.logger.Error(action, "error", msg.Err)
		a.tray.Notify(notify.Error(clientform.ErrorMessage(action, msg.Err)))
		return a, nil
	case clientedit.CancelledMsg:
		editing := a.editor != nil && a.editor.Mode() == clientedit.ModeEdit
		a.editor = nil
		if editing && a.detail != nil {
			a.screen = ScreenClientDetail
			return a, nil
		}
		return a.showClients()

	// Confirmations
	case confirm.ResultMsg:
		return a.handleConfirm(msg.Confirmed)
	case regeneratedMsg:
		return a.handleRegenerated(msg)
	case deletedMsg:
		return a.handleDeleted(msg)

	// Session
	case loggedOutMsg:
		a.busy = ""
		a.tray.Notify(notify.Info("You have been logged out"))
		return a.showMenu()
	case refreshedMsg:
		a.busy = ""
		if msg.err != nil {
			if a.expireOn401(msg.err) {
				return a.showLogin()
			}
			a.tray.Notify(notify.Error("Could not refresh session: " + signin.ErrorMessage(msg.err)))
			return a, nil
		}
		a.tray.Notify(notify.Success("Session refreshed", ""))
		return a, nil
	}

	// Forward unknown messages to the active screen (needed for huh form internals)
	return a.forward(msg)
}

// guard sends signed-out users on client screens back to the login screen
func (a *App) guard() (tea.Cmd, bool) {
	switch a.screen {
	case ScreenClients, ScreenClientDetail, ScreenClientEdit, ScreenClientCreate,
		ScreenConfirmRegenerate, ScreenConfirmDelete:
	default:
		return nil, false
	}
	if a.authenticated() || a.busy != "" {
		return nil, false
	}
	a.resetClientScreens()
	_, cmd := a.showLogin()
	return cmd, true
}

// expireOn401 clears the session when the server rejected the token
func (a *App) expireOn401(err error) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != http.StatusUnauthorized && apiErr.Code != client.CodeUnauthorized {
		return false
	}
	a.logger.Warn("Session rejected by server", "error", err)
	a.store.ClearAuth()
	a.hooks.Invalidate()
	a.resetClientScreens()
	a.tray.Notify(notify.Error(MsgSessionExpired))
	return true
}

func (a *App) resetClientScreens() {
	a.clientList = nil
	a.detail = nil
	a.editor = nil
	a.dialog = nil
}

func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenMenu:
		_, cmd = a.menu.Update(msg)
	case ScreenLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ScreenRegister:
		if a.wizard != nil {
			_, cmd = a.wizard.Update(msg)
		}
	case ScreenClients:
		if a.clientList != nil {
			_, cmd = a.clientList.Update(msg)
		}
	case ScreenClientDetail:
		if a.detail != nil {
			_, cmd = a.detail.Update(msg)
		}
	case ScreenClientEdit, ScreenClientCreate:
		if a.editor != nil {
			_, cmd = a.editor.Update(msg)
		}
	case ScreenConfirmRegenerate, ScreenConfirmDelete:
		if a.dialog != nil {
			_, cmd = a.dialog.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) handleAction(action menu.Action) (tea.Model, tea.Cmd) {
	switch action {
	case menu.ActionLogin:
		return a.showLogin()
	case menu.ActionRegister:
		a.wizard = wizard.New(registration.RegistrarFunc(a.register), a.tray, a.logger)
		a.wizard.SetWidth(a.frameWidth() - 1)
		a.screen = ScreenRegister
		return a, a.wizard.Init()
	case menu.ActionClients:
		return a.showClients()
	case menu.ActionCreateClient:
		return a.showCreate()
	case menu.ActionRefresh:
		a.busy = "Refreshing session..."
		return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
			_, err := a.hooks.Refresh().Mutate(context.Background(), struct{}{})
			return refreshedMsg{err: err}
		})
	case menu.ActionLogout:
		a.busy = "Signing out..."
		return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
			_, err := a.hooks.Logout().Mutate(context.Background(), struct{}{})
			return loggedOutMsg{err: err}
		})
	case menu.ActionQuit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) showMenu() (tea.Model, tea.Cmd) {
	a.menu = menu.New(a.authenticated())
	a.screen = ScreenMenu
	return a, a.menu.Init()
}

func (a *App) showLogin() (tea.Model, tea.Cmd) {
	email := a.lastEmail
	if email == "" {
		email = a.recent.Latest()
	}
	a.login = login.New(a.signIn, email).WithSuggestions(a.recent.List())
	a.screen = ScreenLogin
	return a, a.login.Init()
}

func (a *App) showClients() (tea.Model, tea.Cmd) {
	if !a.authenticated() {
		return a.showLogin()
	}
	a.clientList = clients.New(a.loadClients, a.contentWidth(), a.contentHeight())
	a.screen = ScreenClients
	return a, a.clientList.Init()
}

func (a *App) showDetail(id int64) (tea.Model, tea.Cmd) {
	a.detail = clientview.New(id, a.loadClient, a.contentWidth())
	a.screen = ScreenClientDetail
	return a, a.detail.Init()
}

func (a *App) showCreate() (tea.Model, tea.Cmd) {
	if !a.authenticated() {
		return a.showLogin()
	}
	a.editor = clientedit.NewCreate(a.createClient)
	a.screen = ScreenClientCreate
	return a, a.editor.Init()
}

func (a *App) confirmDelete(c client.OAuthClient) (tea.Model, tea.Cmd) {
	a.pending = c
	a.dialog = confirm.Delete(c.Name).WithWidth(a.contentWidth())
	a.screen = ScreenConfirmDelete
	return a, a.dialog.Init()
}

func (a *App) handleSaved(msg clientedit.SavedMsg) (tea.Model, tea.Cmd) {
	if msg.Detail == nil {
		return a, nil
	}

	if msg.Mode == clientedit.ModeEdit {
		a.tray.Notify(notify.Success("Client updated successfully", ""))
		if a.detail != nil {
			a.detail.SetRecord(msg.Detail.OAuthClient)
		}
		return a, nil
	}

	// Created: show the one-time secret, then the new record
	if n, ok := clientform.CreatedNotice(msg.Detail); ok {
		a.tray.Notify(n)
	} else {
		a.tray.Notify(notify.Success("Client created successfully", ""))
	}
	a.editor = nil
	a.detail = clientview.New(msg.Detail.ID, a.loadClient, a.contentWidth())
	a.detail.SetRecord(msg.Detail.OAuthClient)
	a.screen = ScreenClientDetail
	return a, nil
}

func (a *App) handleConfirm(confirmed bool) (tea.Model, tea.Cmd) {
	screen := a.screen
	a.dialog = nil
	c := a.pending

	if !confirmed {
		return a.back(c.ID)
	}

	switch screen {
	case ScreenConfirmRegenerate:
		a.busy = "Regenerating secret..."
		a.screen = ScreenClientDetail
		return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
			d, err := a.hooks.RegenerateSecret(c.ID).Mutate(context.Background(), struct{}{})
			return regeneratedMsg{detail: d, err: err}
		})
	case ScreenConfirmDelete:
		a.busy = "Deleting client..."
		return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
			_, err := a.hooks.DeleteClient(c.ID).Mutate(context.Background(), struct{}{})
			return deletedMsg{id: c.ID, err: err}
		})
	}
	return a.back(c.ID)
}

// back returns from a dialog to the detail screen when it shows id, else the list
func (a *App) back(id int64) (tea.Model, tea.Cmd) {
	if a.detail != nil && a.detail.ID() == id {
		a.screen = ScreenClientDetail
		return a, nil
	}
	if a.clientList != nil {
		a.screen = ScreenClients
		return a, nil
	}
	return a.showClients()
}

func (a *App) handleRegenerated(msg regeneratedMsg) (tea.Model, tea.Cmd) {
	a.busy = ""
	if msg.err != nil {
		if a.expireOn401(msg.err) {
			return a.showLogin()
		}
		a.logger.Error("Failed to regenerate client secret", "client_id", a.pending.ID, "error", msg.err)
		a.tray.Notify(notify.Error(clientform.ErrorMessage("Failed to regenerate client secret", msg.err)))
		return a.back(a.pending.ID)
	}
	if n, ok := clientform.RegeneratedNotice(msg.detail); ok {
		a.tray.Notify(n)
	}
	if a.detail != nil && msg.detail != nil {
		a.detail.SetRecord(msg.detail.OAuthClient)
	}
	return a.back(a.pending.ID)
}

func (a *App) handleDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	a.busy = ""
	if msg.err != nil {
		if a.expireOn401(msg.err) {
			return a.showLogin()
		}
		a.logger.Error("Failed to delete client", "client_id", msg.id, "error", msg.err)
		a.tray.Notify(notify.Error(clientform.ErrorMessage("Failed to delete client", msg.err)))
		return a.back(msg.id)
	}
	a.tray.Notify(notify.Success("Client deleted", a.pending.Name))
	a.detail = nil
	return a.showClients()
}

func (a *App) copyLatestSecret() {
	n, ok := a.tray.LatestSecret()
	if !ok {
		return
	}
	if err := notify.CopySecret(a.clipboard, a.tray, n.Secret); err != nil {
		a.logger.Warn("Copy failed", "error", err)
	}
}

// Mutations and queries run inside commands, off the update loop

func (a *App) signIn(ctx context.Context, req client.LoginRequest) error {
	_, err := a.hooks.Login().Mutate(ctx, req)
	return err
}

func (a *App) register(ctx context.Context, req client.RegisterRequest) error {
	_, err := a.hooks.Register().Mutate(ctx, req)
	return err
}

func (a *App) loadClients(ctx context.Context) (*client.ClientList, error) {
	list, err := a.hooks.Clients(ctx)
	a.expireAsync(err)
	return list, err
}

func (a *App) loadClient(ctx context.Context, id int64) (*client.ClientDetail, error) {
	d, err := a.hooks.Client(ctx, id)
	a.expireAsync(err)
	return d, err
}

func (a *App) createClient(ctx context.Context, req client.ClientRequest) (*client.ClientDetail, error) {
	return a.hooks.CreateClient().Mutate(ctx, req)
}

func (a *App) updateClient(id int64) clientedit.SaveFunc {
	return func(ctx context.Context, req client.ClientRequest) (*client.ClientDetail, error) {
		return a.hooks.UpdateClient(id).Mutate(ctx, req)
	}
}

// expireAsync clears a rejected session from inside a command. The guard
// moves the user to the login screen on the next update.
func (a *App) expireAsync(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Code == client.CodeUnauthorized) {
		a.store.ClearAuth()
		a.tray.Notify(notify.Error(MsgSessionExpired))
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	if a.busy != "" {
		content = a.spinner.View() + " " + a.busy
	} else {
		switch a.screen {
		case ScreenLogin:
			content = viewOf(a.login)
		case ScreenRegister:
			content = viewOf(a.wizard)
		case ScreenClients:
			content = viewOf(a.clientList)
		case ScreenClientDetail:
			content = viewOf(a.detail)
		case ScreenClientEdit, ScreenClientCreate:
			content = viewOf(a.editor)
		case ScreenConfirmRegenerate, ScreenConfirmDelete:
			content = viewOf(a.dialog)
		default:
			content = a.menu.View()
		}
	}

	if tray := a.renderTray(); tray != "" {
		content += "\n\n" + tray
	}
	return a.wrapWithFrame(content)
}

// viewOf renders a child screen that may not exist yet
func viewOf[M interface {
	comparable
	View() string
}](m M) string {
	var zero M
	if m == zero {
		return ""
	}
	return m.View()
}

// renderTray renders active notifications, newest last
func (a *App) renderTray() string {
	active := a.tray.Active()
	if len(active) == 0 {
		return ""
	}

	var boxes []string
	for _, n := range active {
		level := widgets.LevelFor(n.Level)
		var sb strings.Builder
		sb.WriteString(widgets.StatusText(n.Title, level))
		if n.Body != "" {
			sb.WriteString("\n" + n.Body)
		}
		if n.Secret != "" {
			sb.WriteString("\n" + styles.Secret.Render(n.Secret))
			sb.WriteString("\n" + styles.Help.UnsetMarginTop().Render(icons.Copy.String()+" ctrl+y copy to clipboard"))
		}
		border := lipgloss.Color(styles.Muted)
		switch level {
		case widgets.StatusOK:
			border = styles.Secondary
		case widgets.StatusCritical:
			border = styles.Danger
		case widgets.StatusWarning:
			border = styles.Warning
		}
		boxes = append(boxes, styles.Toast.BorderForeground(border).Render(sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// frameWidth is the header and footer width. It stays one column short of
// the terminal to avoid wrapping on some terminals.
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// contentWidth is the width available inside the frame
func (a *App) contentWidth() int {
	return a.frameWidth() - 2
}

// contentHeight is the height available between header, footer and tray
func (a *App) contentHeight() int {
	// Header, footer and the blank lines around the content
	return max(a.height-4, 10)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("CentralAuth Console"))

	rightText := " " + lipgloss.NewStyle().Foreground(styles.Muted).Render("Signed out") + " "
	if u := a.store.Snapshot().User; u != nil {
		rightText = " " + contextStyle.Render(icons.User.String()+" "+u.DisplayName()) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(width-4-leftWidth-rightWidth, 0) // -4 for ╭─ and ─╮

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and session status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	if _, ok := a.tray.LatestSecret(); ok {
		shortcuts = append(shortcuts, "ctrl+y Copy secret")
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, styles.KeyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if exp := a.sessionExpiry(); exp != "" {
		rightText = " " + statusStyle.Render(exp) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		// Drop the status before letting the footer overflow
		rightText, fillWidth = "", max(width-4-leftWidth, 0)
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

func (a *App) shortcuts() []string {
	if a.busy != "" {
		return []string{"ctrl+c Quit"}
	}
	switch a.screen {
	case ScreenMenu:
		return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenLogin:
		return []string{"Tab Next", "Enter Submit", "Esc Back"}
	case ScreenRegister:
		return []string{"Tab Next", "Enter Continue", "ctrl+b Previous", "Esc Cancel"}
	case ScreenClients:
		return []string{"Enter Open", "n New", "d Delete", "r Reload", "b Back"}
	case ScreenClientDetail:
		return []string{"e Edit", "s Secret", "i Copy ID", "d Delete", "b Back"}
	case ScreenClientEdit, ScreenClientCreate:
		return []string{"Tab Next", "Enter Save", "Esc Cancel"}
	case ScreenConfirmRegenerate, ScreenConfirmDelete:
		return []string{"←→ Choose", "Enter Confirm", "Esc Cancel"}
	}
	return nil
}

// sessionExpiry describes when the access token expires
func (a *App) sessionExpiry() string {
	u := a.store.Snapshot().User
	if u == nil || u.ExpiresAt.IsZero() {
		return ""
	}
	if u.Expired(a.now()) {
		return "Session expired"
	}
	return "Session expires " + humanize.RelTime(u.ExpiresAt, a.now(), "ago", "from now")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the console
func Run(deps Deps) error {
	app := New(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Send blocks until the event loop reads it, and the store may change
	// from inside Update
	app.store.Subscribe(func(session.AuthSession) {
		go p.Send(authChangedMsg{})
	})
	_, err := p.Run()
	return err
}
