// ABOUTME: Configuration loader for the console and CLI commands
// ABOUTME: Loads optional .env files, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when neither flag nor environment names a backend
const DefaultAPIURL = "http://localhost:8080/api/v1"

type Config struct {
	// Backend
	APIURL   string        `env:"CENTRALAUTH_API_URL" envDefault:"http://localhost:8080/api/v1"`
	Timeout  time.Duration `env:"CENTRALAUTH_TIMEOUT" envDefault:"30s"`
	AllProxy string        `env:"CENTRALAUTH_ALL_PROXY"` // ssh+socks5://user@host:port?private-key=/path

	// Local state
	ConfigDir string        `env:"CENTRALAUTH_CONFIG_DIR"`
	CacheTTL  time.Duration `env:"CENTRALAUTH_CACHE_TTL" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env files (cwd first, then the config dir) and parses the
// environment into a Config. Variables already set in the environment win
// over .env entries.
func Load() (*Config, error) {
	if err := loadDotEnv(".env", filepath.Join(DefaultConfigDir(), ".env")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(ensureScheme(cfg.APIURL), "/")
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("CENTRALAUTH_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CENTRALAUTH_CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	}
	if cfg.AllProxy != "" && !strings.HasPrefix(cfg.AllProxy, "ssh+socks5://") {
		return nil, fmt.Errorf("CENTRALAUTH_ALL_PROXY must use the ssh+socks5:// scheme")
	}

	return &cfg, nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "centralauth")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "centralauth")
}

// WithAPIURL returns the URL to use given an explicit flag value.
// Priority: flag, then environment, then default.
func (c *Config) WithAPIURL(flagValue string) string {
	if flagValue != "" {
		return strings.TrimRight(ensureScheme(flagValue), "/")
	}
	return c.APIURL
}

func loadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
