// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/config"
	"github.com/markalston/centralauth-console/internal/session"
	"github.com/markalston/centralauth-console/internal/validate"
)

func TestAPIURL_FromEnv(t *testing.T) {
	e := newTestEnv(t, "http://backend.example.com/api/v1")
	if e.url != "http://backend.example.com/api/v1" {
		t.Errorf("expected env URL, got %s", e.url)
	}
}

func TestAPIURL_FlagOverridesEnv(t *testing.T) {
	newTestEnv(t, "http://backend.example.com")
	apiURL = "flag-override.example.com"
	defer func() { apiURL = "" }()

	cfg, dir, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	e, err := newEnv(cfg, dir, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	if e.url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", e.url)
	}
}

func TestAPIURL_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CENTRALAUTH_API_URL", "")
	apiURL = ""

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WithAPIURL(apiURL) != config.DefaultAPIURL {
		t.Errorf("expected default URL, got %s", cfg.WithAPIURL(apiURL))
	}
}

func TestConfigDirFlag(t *testing.T) {
	newTestEnv(t, "http://localhost:8080")
	configDir = t.TempDir()
	defer func() { configDir = "" }()

	_, dir, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if dir != configDir {
		t.Errorf("expected flag dir %s, got %s", configDir, dir)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestFailureExitCodes(t *testing.T) {
	e := newTestEnv(t, "http://localhost:8080")
	signIn(t, e)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &validate.ValidationError{Fields: validate.FieldErrors{"name": "Name is required"}}, exitUsage},
		{"server", &client.APIError{Status: 500, Code: client.CodeInternalError, Message: "boom"}, exitBackend},
		{"transport", &client.TransportError{Err: errors.New("refused")}, exitBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := failure(e, &buf, tt.err); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
			if !bytes.Contains(buf.Bytes(), []byte("Error:")) {
				t.Error("expected error message in output")
			}
		})
	}

	if !e.store.Snapshot().IsAuthenticated {
		t.Fatal("non-401 failures must keep the session")
	}
}

func TestFailureClearsRejectedSession(t *testing.T) {
	e := newTestEnv(t, "http://localhost:8080")
	signIn(t, e)

	var buf bytes.Buffer
	code := failure(e, &buf, &client.APIError{Status: 401, Code: client.CodeUnauthorized, Message: "Invalid token"})
	if code != exitBackend {
		t.Errorf("expected exit code %d, got %d", exitBackend, code)
	}
	if e.store.Snapshot().IsAuthenticated {
		t.Error("expected session cleared")
	}
	if !bytes.Contains(buf.Bytes(), []byte("session has expired")) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestEnvClose(t *testing.T) {
	e := newTestEnv(t, "http://localhost:8080")

	notified := false
	e.store.Subscribe(func(session.AuthSession) { notified = true })
	e.close()
	e.close()

	signIn(t, e)
	if notified {
		t.Error("expected subscribers dropped after close")
	}
}
