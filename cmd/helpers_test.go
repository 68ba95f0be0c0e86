// ABOUTME: Shared helpers for command tests
// ABOUTME: Fake backend envelopes, signed test tokens and an isolated env per test

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markalston/centralauth-console/internal/session"
)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "status": 200, "data": data})
}

func testToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    7,
		"username":   "ada",
		"email":      "ada@example.com",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// newTestEnv points the commands at url with a private config directory
func newTestEnv(t *testing.T, url string) *env {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CENTRALAUTH_CONFIG_DIR", t.TempDir())
	t.Setenv("CENTRALAUTH_API_URL", url)
	t.Setenv("CENTRALAUTH_ALL_PROXY", "")
	apiURL, configDir, jsonOutput = "", "", false

	cfg, dir, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	e, err := newEnv(cfg, dir, io.Discard)
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	t.Cleanup(e.close)
	return e
}

// signIn stores a session as if login had run
func signIn(t *testing.T, e *env) {
	t.Helper()
	tok := testToken(t)
	user, err := session.Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	e.store.SetLogin(user, tok, "refresh-1")
}
