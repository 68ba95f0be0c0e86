// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markalston/centralauth-console/internal/client"
)

func TestFormatHealthHuman(t *testing.T) {
	resp := &client.HealthResponse{Status: "ok", Database: "connected"}

	output := formatHealthHuman("http://localhost:8080/api/v1", resp)

	if !bytes.Contains([]byte(output), []byte("http://localhost:8080/api/v1")) {
		t.Error("expected output to contain backend URL")
	}
	if !bytes.Contains([]byte(output), []byte("Database:  connected")) {
		t.Error("expected output to contain database status")
	}
	if bytes.Contains([]byte(output), []byte("Version:")) {
		t.Error("empty version should be omitted")
	}
}

func TestFormatHealthJSON(t *testing.T) {
	resp := &client.HealthResponse{Status: "ok", Version: "1.4.0"}

	output := formatHealthJSON("http://localhost:8080", resp)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["backend"] != "http://localhost:8080" {
		t.Errorf("expected backend URL in JSON, got %v", parsed["backend"])
	}
	if parsed["version"] != "1.4.0" {
		t.Errorf("expected version in JSON, got %v", parsed["version"])
	}
}

func TestHealthCommand_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		writeData(w, map[string]any{"status": "ok", "database": "connected"})
	}))
	defer server.Close()

	e := newTestEnv(t, server.URL)

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), e, &buf, nil)

	if exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Status:    ok")) {
		t.Errorf("expected ok in output, got %q", buf.String())
	}
}

func TestHealthCommand_ConnectionError(t *testing.T) {
	e := newTestEnv(t, "http://localhost:99999")

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), e, &buf, nil)

	if exitCode != exitBackend {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Error:")) {
		t.Error("expected error message in output")
	}
}
