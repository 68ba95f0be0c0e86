// ABOUTME: Console command for the centralauth CLI
// ABOUTME: Launches the interactive terminal console with logs sent to the debug log file

package cmd

import (
	"fmt"
	"os"

	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/tui"
	"github.com/markalston/centralauth-console/internal/tui/debuglog"
	"github.com/markalston/centralauth-console/internal/tui/recentlogins"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	Long: `Open the full-screen console to sign in, create an account and manage your
OAuth clients. Logs are written to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("console requires a terminal; use the sub-commands from scripts")
		}

		cfg, dir, err := loadConfig()
		if err != nil {
			return err
		}

		logFile, err := debuglog.Open(dir)
		if err != nil {
			return err
		}
		defer logFile.Close()

		e, err := newEnv(cfg, dir, logFile)
		if err != nil {
			return err
		}
		defer e.close()

		e.logger.Info("Console started", "api_url", e.url)
		return tui.Run(tui.Deps{
			Hooks:     e.hooks,
			Store:     e.store,
			Tray:      notify.NewTray(),
			Clipboard: notify.SystemClipboard{},
			Recent:    recentlogins.New(dir),
			Logger:    e.logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
