// ABOUTME: OAuth client commands for the centralauth CLI
// ABOUTME: list, get, create, update, regenerate-secret and delete

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/clientform"
	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/validate"
	"github.com/spf13/cobra"
)

// clientFlags are the create/update form fields. changed records which
// flags were given so update only touches those.
type clientFlags struct {
	name        string
	description string
	website     string
	redirectURI string
	public      bool
	changed     map[string]bool
}

var (
	createFlags clientFlags
	updateFlags clientFlags
	confirmed   bool
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage your OAuth clients",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your OAuth clients",
	Args:  cobra.NoArgs,
	Run:   runWithEnv(runClientsList),
}

var clientsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one OAuth client",
	Args:  cobra.ExactArgs(1),
	Run:   runWithEnv(runClientsGet),
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new OAuth client",
	Long: `Register a new OAuth client. The client secret of a confidential client is
printed once and cannot be shown again.`,
	Args: cobra.NoArgs,
	Run:  runWithEnv(runClientsCreate),
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Edit an OAuth client",
	Long:  `Edit an OAuth client. Only the flags given are changed.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		updateFlags.changed = changedFlags(cmd, "name", "description", "website", "redirect-uri", "public")
		runWithEnv(runClientsUpdate)(cmd, args)
	},
}

var clientsRegenerateCmd = &cobra.Command{
	Use:   "regenerate-secret ID",
	Short: "Issue a new client secret",
	Long: `Issue a new secret for a confidential client. The current secret stops
working immediately. Requires --yes.`,
	Args: cobra.ExactArgs(1),
	Run:  runWithEnv(runClientsRegenerate),
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an OAuth client",
	Long:  `Delete an OAuth client. Requires --yes.`,
	Args:  cobra.ExactArgs(1),
	Run:   runWithEnv(runClientsDelete),
}

func init() {
	bindClientFlags(clientsCreateCmd, &createFlags)
	bindClientFlags(clientsUpdateCmd, &updateFlags)
	clientsRegenerateCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm regenerating the secret")
	clientsDeleteCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")

	clientsCmd.AddCommand(clientsListCmd, clientsGetCmd, clientsCreateCmd, clientsUpdateCmd, clientsRegenerateCmd, clientsDeleteCmd)
	rootCmd.AddCommand(clientsCmd)
}

func bindClientFlags(cmd *cobra.Command, f *clientFlags) {
	cmd.Flags().StringVar(&f.name, "name", "", "Application name shown to users")
	cmd.Flags().StringVar(&f.description, "description", "", "Brief description of the application")
	cmd.Flags().StringVar(&f.website, "website", "", "Application homepage URL")
	cmd.Flags().StringVar(&f.redirectURI, "redirect-uri", "", "Where users are redirected after authorization")
	cmd.Flags().BoolVar(&f.public, "public", false, "Public client (single-page or mobile app, no secret)")
}

func changedFlags(cmd *cobra.Command, names ...string) map[string]bool {
	changed := make(map[string]bool, len(names))
	for _, n := range names {
		changed[n] = cmd.Flags().Changed(n)
	}
	return changed
}

// apply overlays the given flags onto v. A nil changed map applies all of them.
func (f clientFlags) apply(v clientform.Values) clientform.Values {
	set := func(name string) bool { return f.changed == nil || f.changed[name] }
	if set("name") {
		v.Name = f.name
	}
	if set("description") {
		v.Description = f.description
	}
	if set("website") {
		v.Website = f.website
	}
	if set("redirect-uri") {
		v.RedirectURI = f.redirectURI
	}
	if set("public") {
		v.IsPublic = f.public
	}
	return v
}

func parseClientID(w io.Writer, arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid client id %q\n", arg)
		return 0, false
	}
	return id, true
}

// runClientsList prints the caller's clients
func runClientsList(ctx context.Context, e *env, w io.Writer, _ []string) int {
	if !requireAuth(e, w) {
		return exitUsage
	}

	list, err := e.hooks.Clients(ctx)
	if err != nil {
		return failure(e, w, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(list, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}
	fmt.Fprintln(w, formatClientsTable(list.Clients, time.Now()))
	return exitOK
}

// runClientsGet prints one client
func runClientsGet(ctx context.Context, e *env, w io.Writer, args []string) int {
	id, ok := parseClientID(w, args[0])
	if !ok {
		return exitUsage
	}
	if !requireAuth(e, w) {
		return exitUsage
	}

	detail, err := e.hooks.Client(ctx, id)
	if err != nil {
		return failure(e, w, err)
	}
	printClient(w, detail, time.Now())
	return exitOK
}

// runClientsCreate validates the flags and creates a client
func runClientsCreate(ctx context.Context, e *env, w io.Writer, _ []string) int {
	if !requireAuth(e, w) {
		return exitUsage
	}

	values := createFlags.apply(clientform.Values{})
	if code, ok := checkValues(w, values); !ok {
		return code
	}

	detail, err := e.hooks.CreateClient().Mutate(ctx, values.Request())
	if err != nil {
		return report(e, w, clientform.ErrorMessage("Failed to create client", err), err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}
	if n, ok := clientform.CreatedNotice(detail); ok {
		notify.Writer{W: w}.Notify(n)
	} else {
		fmt.Fprintln(w, "Client created successfully")
	}
	printClient(w, detail, time.Now())
	return exitOK
}

// runClientsUpdate applies the changed flags on top of the current record
func runClientsUpdate(ctx context.Context, e *env, w io.Writer, args []string) int {
	id, ok := parseClientID(w, args[0])
	if !ok {
		return exitUsage
	}
	if !requireAuth(e, w) {
		return exitUsage
	}

	current, err := e.hooks.Client(ctx, id)
	if err != nil {
		return failure(e, w, err)
	}

	values := updateFlags.apply(clientform.FromRecord(current.OAuthClient))
	if code, ok := checkValues(w, values); !ok {
		return code
	}

	detail, err := e.hooks.UpdateClient(id).Mutate(ctx, values.Request())
	if err != nil {
		return report(e, w, clientform.ErrorMessage("Failed to update client", err), err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}
	fmt.Fprintln(w, "Client updated successfully")
	printClient(w, detail, time.Now())
	return exitOK
}

// runClientsRegenerate issues a new secret for a confidential client
func runClientsRegenerate(ctx context.Context, e *env, w io.Writer, args []string) int {
	id, ok := parseClientID(w, args[0])
	if !ok {
		return exitUsage
	}
	if !confirmed {
		fmt.Fprintln(w, "Error: this will invalidate the current client secret. Any applications using the current secret will stop working. Re-run with --yes to confirm.")
		return exitUsage
	}
	if !requireAuth(e, w) {
		return exitUsage
	}

	current, err := e.hooks.Client(ctx, id)
	if err != nil {
		return failure(e, w, err)
	}
	if current.IsPublic {
		fmt.Fprintln(w, "Error: public clients do not have a client secret")
		return exitUsage
	}

	detail, err := e.hooks.RegenerateSecret(id).Mutate(ctx, struct{}{})
	if err != nil {
		return report(e, w, clientform.ErrorMessage("Failed to regenerate client secret", err), err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}
	if n, ok := clientform.RegeneratedNotice(detail); ok {
		notify.Writer{W: w}.Notify(n)
	}
	return exitOK
}

// runClientsDelete removes a client
func runClientsDelete(ctx context.Context, e *env, w io.Writer, args []string) int {
	id, ok := parseClientID(w, args[0])
	if !ok {
		return exitUsage
	}
	if !confirmed {
		fmt.Fprintln(w, "Error: deleting a client cannot be undone. Re-run with --yes to confirm.")
		return exitUsage
	}
	if !requireAuth(e, w) {
		return exitUsage
	}

	if _, err := e.hooks.DeleteClient(id).Mutate(ctx, struct{}{}); err != nil {
		return report(e, w, clientform.ErrorMessage("Failed to delete client", err), err)
	}
	fmt.Fprintf(w, "Client %d deleted\n", id)
	return exitOK
}

// checkValues prints every invalid field
func checkValues(w io.Writer, v clientform.Values) (int, bool) {
	err := v.Validate()
	if err == nil {
		return exitOK, true
	}
	ve, ok := validate.AsValidationError(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage, false
	}
	fmt.Fprintln(w, "Error: please fix the following fields:")
	for _, f := range ve.Fields.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", f, ve.Fields[f])
	}
	return exitUsage, false
}

// formatClientsTable renders the client list as a borderless table
func formatClientsTable(clients []client.OAuthClient, now time.Time) string {
	if len(clients) == 0 {
		return "You have no OAuth clients yet. Create one with \"centralauth clients create\"."
	}

	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.ClientID,
			clientType(c.IsPublic),
			c.RedirectURI,
			since(c.UpdatedAt, now),
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				s = s.Bold(true)
			}
			return s
		}).
		Headers("ID", "NAME", "CLIENT ID", "TYPE", "REDIRECT URI", "UPDATED").
		Rows(rows...)
	return t.String()
}

// printClient prints one client for human readability, or as JSON
func printClient(w io.Writer, d *client.ClientDetail, now time.Time) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(d, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	lines := []string{
		"ID:            " + strconv.FormatInt(d.ID, 10),
		"Name:          " + d.Name,
		"Client ID:     " + d.ClientID,
		"Type:          " + clientType(d.IsPublic),
		"Description:   " + orDash(d.Description),
		"Website:       " + orDash(d.Website),
		"Redirect URI:  " + d.RedirectURI,
		"Created:       " + since(d.CreatedAt, now),
		"Last Updated:  " + since(d.UpdatedAt, now),
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func clientType(public bool) string {
	if public {
		return "Public"
	}
	return "Confidential"
}

func since(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
