// ABOUTME: Root command for the centralauth CLI
// ABOUTME: Handles global flags and wires config, logging, API client, session store and hooks

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/centralauth-console/internal/cache"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/config"
	"github.com/markalston/centralauth-console/internal/logger"
	"github.com/markalston/centralauth-console/internal/query"
	"github.com/markalston/centralauth-console/internal/session"
	"github.com/markalston/centralauth-console/internal/validate"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// Exit codes
const (
	exitOK      = 0
	exitUsage   = 1 // bad input, failed validation or not signed in
	exitBackend = 2 // server or transport failure
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "centralauth",
	Short: "Console and CLI for the CentralAuth identity server",
	Long: `centralauth manages your CentralAuth account and OAuth clients.

Run "centralauth console" for the interactive console, or use the sub-commands
from scripts and CI pipelines.

Environment Variables:
  CENTRALAUTH_API_URL     Backend API URL (default: http://localhost:8080/api/v1)
  CENTRALAUTH_CONFIG_DIR  Session and log directory (default: $XDG_CONFIG_HOME/centralauth)
  CENTRALAUTH_TIMEOUT     Per-request timeout (default: 30s)
  CENTRALAUTH_CACHE_TTL   Query cache lifetime in the console (default: 30s)
  CENTRALAUTH_ALL_PROXY   Optional ssh+socks5:// tunnel to reach the backend
  LOG_LEVEL               debug, info, warn or error (default: info)
  LOG_FORMAT              text or json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides CENTRALAUTH_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Session and log directory (overrides CENTRALAUTH_CONFIG_DIR)")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// env is everything a command needs to talk to the backend
type env struct {
	cfg    *config.Config
	url    string
	dir    string
	logger *slog.Logger
	api    *client.Client
	store  *session.Store
	cache  *cache.Cache
	hooks  *query.Hooks
}

// close stops the cache sweeper and drops session subscribers
func (e *env) close() {
	e.cache.Close()
	e.store.Close()
}

// loadConfig reads the environment and resolves the config directory
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	dir := cfg.ConfigDir
	if configDir != "" {
		dir = configDir
	}
	return cfg, dir, nil
}

// newEnv restores the saved session and builds the API client. Logs go to logOut.
func newEnv(cfg *config.Config, dir string, logOut io.Writer) (*env, error) {
	log := logger.Init(logOut, cfg.LogLevel, cfg.LogFormat)

	store := session.NewStore(session.NewFilePersister(dir), log)
	if err := store.Load(); err != nil {
		log.Warn("Could not restore session", "error", err)
	}

	opts := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithTokenSource(store),
		client.WithLogger(log),
	}
	if cfg.AllProxy != "" {
		proxy, err := client.WithProxy(cfg.AllProxy)
		if err != nil {
			return nil, fmt.Errorf("configure proxy: %w", err)
		}
		opts = append(opts, proxy)
	}

	url := cfg.WithAPIURL(apiURL)
	api := client.New(url, opts...)
	queries := cache.New(cfg.CacheTTL)

	return &env{
		cfg:    cfg,
		url:    url,
		dir:    dir,
		logger: log,
		api:    api,
		store:  store,
		cache:  queries,
		hooks:  query.New(api, store, queries, log),
	}, nil
}

// runFunc is the body of a command: it returns the process exit code
type runFunc func(ctx context.Context, e *env, w io.Writer, args []string) int

// runWithEnv adapts fn to a cobra Run: it builds the env, runs fn and exits
// with fn's code.
func runWithEnv(fn runFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, dir, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitUsage)
		}
		e, err := newEnv(cfg, dir, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitUsage)
		}

		code := fn(ctx, e, os.Stdout, args)
		e.close()
		if code != exitOK {
			os.Exit(code)
		}
	}
}

// requireAuth prints a hint and returns false when nobody is signed in
func requireAuth(e *env, w io.Writer) bool {
	if e.store.Snapshot().IsAuthenticated {
		return true
	}
	fmt.Fprintln(w, "Error: not signed in. Run \"centralauth login\" first.")
	return false
}

// failure prints err and maps it to an exit code. A rejected token clears
// the saved session.
func failure(e *env, w io.Writer, err error) int {
	return report(e, w, err.Error(), err)
}

// report is failure with a friendlier message than err's own text
func report(e *env, w io.Writer, msg string, err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Code == client.CodeUnauthorized) {
		e.store.ClearAuth()
		fmt.Fprintln(w, "Error: your session has expired. Please log in again.")
		return exitBackend
	}

	fmt.Fprintf(w, "Error: %s\n", msg)
	if _, ok := validate.AsValidationError(err); ok {
		return exitUsage
	}
	return exitBackend
}
