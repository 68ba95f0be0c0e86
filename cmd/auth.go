// ABOUTME: Session commands for the centralauth CLI
// ABOUTME: login, logout, whoami and refresh against the saved session

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/markalston/centralauth-console/internal/query"
	"github.com/markalston/centralauth-console/internal/session"
	"github.com/markalston/centralauth-console/internal/signin"
	"github.com/markalston/centralauth-console/internal/validate"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	Long: `Sign in with your email and password. The session is saved in the config
directory and used by the other commands. The password is prompted for
without echo when --password is not given.`,
	Args: cobra.NoArgs,
	Run:  runWithEnv(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the access token and forget the session",
	Args:  cobra.NoArgs,
	Run:   runWithEnv(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run:   runWithEnv(runWhoami),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Args:  cobra.NoArgs,
	Run:   runWithEnv(runRefresh),
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when empty)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, refreshCmd)
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, e *env, w io.Writer, _ []string) int {
	values := signin.Values{Email: loginEmail, Password: loginPassword}
	if values.Password == "" && values.Email != "" {
		pw, err := promptSecret("Password")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitUsage
		}
		values.Password = pw
	}

	if err := values.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", signin.ErrorMessage(err))
		return exitUsage
	}

	if _, err := e.hooks.Login().Mutate(ctx, values.Request()); err != nil {
		fmt.Fprintf(w, "Error: %s\n", signin.ErrorMessage(err))
		if _, ok := validate.AsValidationError(err); ok {
			return exitUsage
		}
		return exitBackend
	}

	user := e.store.Snapshot().User
	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
	} else {
		fmt.Fprintf(w, "Signed in as %s <%s>\n", user.DisplayName(), user.Email)
		if exp := formatExpiry(user, time.Now()); exp != "" {
			fmt.Fprintln(w, exp)
		}
	}
	return exitOK
}

// runLogout clears the session. The local session is gone even when the
// server could not revoke the token.
func runLogout(ctx context.Context, e *env, w io.Writer, _ []string) int {
	if !e.store.Snapshot().IsAuthenticated {
		fmt.Fprintln(w, "Not signed in")
		return exitOK
	}

	if _, err := e.hooks.Logout().Mutate(ctx, struct{}{}); err != nil {
		fmt.Fprintf(w, "Signed out locally; the server could not revoke the token: %v\n", err)
		return exitOK
	}
	fmt.Fprintln(w, "Signed out")
	return exitOK
}

// runWhoami prints the decoded identity of the saved session
func runWhoami(_ context.Context, e *env, w io.Writer, _ []string) int {
	if !requireAuth(e, w) {
		return exitUsage
	}

	user := e.store.Snapshot().User
	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
	} else {
		fmt.Fprintln(w, formatUserHuman(user, time.Now()))
	}
	return exitOK
}

// runRefresh renews the access token
func runRefresh(ctx context.Context, e *env, w io.Writer, _ []string) int {
	if _, err := e.hooks.Refresh().Mutate(ctx, struct{}{}); err != nil {
		if errors.Is(err, query.ErrNoRefreshToken) {
			fmt.Fprintln(w, "Error: no refresh token saved. Run \"centralauth login\" first.")
			return exitUsage
		}
		return failure(e, w, err)
	}
	fmt.Fprintln(w, "Session refreshed")
	return exitOK
}

// formatUserHuman formats the decoded user for human readability
func formatUserHuman(u *session.DecodedUser, now time.Time) string {
	out := fmt.Sprintf(`Name:      %s
Username:  %s
Email:     %s
User ID:   %d
Verified:  email %s, phone %s`,
		u.DisplayName(), u.Username, u.Email, u.UserID, yesNo(u.EmailVerified), yesNo(u.PhoneVerified))
	if exp := formatExpiry(u, now); exp != "" {
		out += "\n" + exp
	}
	return out
}

// formatExpiry describes when the access token expires
func formatExpiry(u *session.DecodedUser, now time.Time) string {
	if u == nil || u.ExpiresAt.IsZero() {
		return ""
	}
	if u.Expired(now) {
		return "Session:   expired " + humanize.RelTime(u.ExpiresAt, now, "ago", "from now")
	}
	return "Session:   expires " + humanize.RelTime(u.ExpiresAt, now, "ago", "from now")
}

// formatUserJSON formats the decoded user as JSON
func formatUserJSON(u *session.DecodedUser) string {
	data, _ := json.MarshalIndent(u, "", "  ")
	return string(data)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
