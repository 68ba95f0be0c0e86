// ABOUTME: Tests for console configuration loading
// ABOUTME: Covers defaults, env overrides, .env files and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points XDG_CONFIG_HOME at a temp dir and clears console variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"CENTRALAUTH_API_URL", "CENTRALAUTH_TIMEOUT", "CENTRALAUTH_ALL_PROXY",
		"CENTRALAUTH_CONFIG_DIR", "CENTRALAUTH_CACHE_TTL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.ConfigDir != filepath.Join(dir, "centralauth") {
		t.Errorf("Expected config dir under XDG_CONFIG_HOME, got %s", cfg.ConfigDir)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected log defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CENTRALAUTH_API_URL", "auth.example.com/api/v1/")
	t.Setenv("CENTRALAUTH_TIMEOUT", "5s")
	t.Setenv("CENTRALAUTH_CACHE_TTL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != "http://auth.example.com/api/v1" {
		t.Errorf("Expected normalised URL, got %s", cfg.APIURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %s", cfg.Timeout)
	}
	if cfg.CacheTTL != 0 {
		t.Errorf("Expected cache disabled, got %s", cfg.CacheTTL)
	}
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "centralauth")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, ".env"), []byte("CENTRALAUTH_API_URL=https://from-dotenv.test/api/v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CENTRALAUTH_API_URL") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != "https://from-dotenv.test/api/v1" {
		t.Errorf("Expected URL from .env, got %s", cfg.APIURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable timeout", "CENTRALAUTH_TIMEOUT", "soon"},
		{"zero timeout", "CENTRALAUTH_TIMEOUT", "0s"},
		{"negative cache ttl", "CENTRALAUTH_CACHE_TTL", "-1s"},
		{"wrong proxy scheme", "CENTRALAUTH_ALL_PROXY", "socks5://jumpbox:1080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestWithAPIURL(t *testing.T) {
	cfg := &Config{APIURL: "http://env.test/api/v1"}

	if got := cfg.WithAPIURL(""); got != "http://env.test/api/v1" {
		t.Errorf("Expected env URL without flag, got %s", got)
	}
	if got := cfg.WithAPIURL("flag.test:9000/api/v1/"); got != "http://flag.test:9000/api/v1" {
		t.Errorf("Expected flag URL to win, got %s", got)
	}
}
