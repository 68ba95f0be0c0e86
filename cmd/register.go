// ABOUTME: Register command for the centralauth CLI
// ABOUTME: Runs the three registration steps non-interactively and prints field errors

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/registration"
	"github.com/spf13/cobra"
)

var regFlags struct {
	firstName, lastName, phone string
	username, email            string
	password, confirm          string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a CentralAuth account",
	Long: `Create an account. The same three steps as the console wizard are checked in
order: personal info, account info, then credentials. The password is
prompted for without echo when --password is not given.`,
	Args: cobra.NoArgs,
	Run:  runWithEnv(runRegister),
}

func init() {
	f := registerCmd.Flags()
	f.StringVar(&regFlags.firstName, "first-name", "", "First name")
	f.StringVar(&regFlags.lastName, "last-name", "", "Last name")
	f.StringVar(&regFlags.phone, "phone", "", "Phone number (optional)")
	f.StringVar(&regFlags.username, "username", "", "Username (at least 3 characters)")
	f.StringVar(&regFlags.email, "email", "", "Email address")
	f.StringVar(&regFlags.password, "password", "", "Password (prompted when empty)")
	f.StringVar(&regFlags.confirm, "confirm-password", "", "Password confirmation (defaults to --password)")

	rootCmd.AddCommand(registerCmd)
}

// runRegister submits each step in turn and returns exit code
func runRegister(ctx context.Context, e *env, w io.Writer, _ []string) int {
	password, confirm := regFlags.password, regFlags.confirm
	if password == "" {
		var err error
		if password, err = promptSecret("Password"); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitUsage
		}
		if confirm, err = promptSecret("Confirm password"); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitUsage
		}
	} else if confirm == "" {
		confirm = password
	}

	steps := map[registration.Step]registration.StepValues{
		registration.StepPersonal: registration.PersonalInfo{
			FirstName:   regFlags.firstName,
			LastName:    regFlags.lastName,
			PhoneNumber: regFlags.phone,
		},
		registration.StepAccount: registration.AccountInfo{
			Username: regFlags.username,
			Email:    regFlags.email,
		},
		registration.StepCredentials: registration.Credentials{
			Password:        password,
			ConfirmPassword: confirm,
		},
	}

	registrar := registration.RegistrarFunc(func(ctx context.Context, req client.RegisterRequest) error {
		_, err := e.hooks.Register().Mutate(ctx, req)
		return err
	})
	wz := registration.NewWizard(registrar, notify.Writer{W: w}, e.logger)

	for i := 0; i < len(steps) && !wz.Done; i++ {
		if f := wz.Submit(ctx, steps[wz.Step]); f != nil {
			fmt.Fprint(w, formatFieldErrors(wz.Step, wz.Errors))
			return failureCode(f)
		}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{
			"username": regFlags.username,
			"email":    regFlags.email,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Account created for %s. Sign in with \"centralauth login --email %s\".\n", regFlags.username, regFlags.email)
	}
	return exitOK
}

// formatFieldErrors lists the wizard's errors, general first
func formatFieldErrors(step registration.Step, errs registration.FieldErrors) string {
	if len(errs) == 0 {
		return ""
	}

	out := fmt.Sprintf("Step %d: %s\n", int(step)+1, step)
	if msg, ok := errs[registration.General]; ok {
		out += "  " + msg + "\n"
	}
	for _, f := range slices.Sorted(maps.Keys(errs)) {
		if f == registration.General {
			continue
		}
		out += fmt.Sprintf("  %s: %s\n", f, errs[f])
	}
	return out
}

// failureCode maps a failure variant to an exit code
func failureCode(f registration.Failure) int {
	switch f.(type) {
	case registration.FieldValidationFailure, registration.DuplicateFailure, registration.SchemaFailure:
		return exitUsage
	}
	return exitBackend
}
