// ABOUTME: Health command for the centralauth CLI
// ABOUTME: Checks backend connectivity and service status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the CentralAuth backend and verify service status.`,
	Run:   runWithEnv(runHealth),
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, e *env, w io.Writer, _ []string) int {
	resp, err := e.api.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitBackend
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(e.url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(e.url, resp))
	}

	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	out := fmt.Sprintf(`Backend:   %s
Status:    %s`, url, resp.Status)
	if resp.Database != "" {
		out += "\nDatabase:  " + resp.Database
	}
	if resp.Version != "" {
		out += "\nVersion:   " + resp.Version
	}
	return out
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]any{
		"backend":  url,
		"status":   resp.Status,
		"database": resp.Database,
		"version":  resp.Version,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
