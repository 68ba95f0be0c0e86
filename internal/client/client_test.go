// ABOUTME: Tests for the CentralAuth API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("expected path /auth/login, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Email != "ada@example.com" || req.Password != "secret1" {
			t.Errorf("unexpected request body: %+v", req)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"status":  200,
			"message": "Login successful",
			"data": map[string]any{
				"access_token":  "a.b.c",
				"refresh_token": "r-1",
				"user_id":       7,
				"expire_at":     1700000000,
			},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "a.b.c" {
		t.Errorf("expected access token a.b.c, got %s", resp.AccessToken)
	}
	if resp.RefreshToken != "r-1" {
		t.Errorf("expected refresh token r-1, got %s", resp.RefreshToken)
	}
	if resp.UserID != 7 {
		t.Errorf("expected user id 7, got %d", resp.UserID)
	}
}

func TestLogin_MissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Login(context.Background(), LoginRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil payload, got %+v", resp)
	}
}

func TestRegister_ValidationFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"status":  400,
			"message": "Validation failed",
			"error": map[string]any{
				"code":        "validation_failed",
				"description": "one or more fields are invalid",
				"details": map[string]any{
					"password": "Password must be at least 6 characters",
					"email":    []string{"Email is invalid", "second"},
				},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Register(context.Background(), RegisterRequest{Username: "ada"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != 400 {
		t.Errorf("expected status 400, got %d", apiErr.Status)
	}
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("expected code %s, got %s", CodeValidationFailed, apiErr.Code)
	}
	if apiErr.Details["password"] != "Password must be at least 6 characters" {
		t.Errorf("unexpected password detail: %q", apiErr.Details["password"])
	}
	if apiErr.Details["email"] != "Email is invalid" {
		t.Errorf("expected first list entry for email, got %q", apiErr.Details["email"])
	}
	if got := apiErr.DetailFields(); len(got) != 2 || got[0] != "email" || got[1] != "password" {
		t.Errorf("unexpected detail fields: %v", got)
	}
}

func TestRegister_SuccessFalseOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Registration is closed",
		})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Register(context.Background(), RegisterRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Registration is closed" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestNonOKStatus_WithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ListClients(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Structured() {
		t.Error("expected unstructured error")
	}
	if err.Error() != "backend returned status 502" {
		t.Errorf("unexpected error text %q", err.Error())
	}
}

func TestConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if !strings.HasPrefix(err.Error(), "cannot connect to backend at") {
		t.Errorf("unexpected error text %q", err.Error())
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(server.URL)
	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
	if err.Error() != "request canceled" {
		t.Errorf("expected 'request canceled', got %q", err.Error())
	}
}

func TestContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := New(server.URL)
	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if err.Error() != "request timed out" {
		t.Errorf("expected 'request timed out', got %q", err.Error())
	}
}

func TestBearerTokenAndRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected X-Request-ID header")
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"clients": []any{}, "total": 0},
		})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(staticToken("tok-1")))
	list, err := c.ListClients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("expected total 0, got %d", list.Total)
	}
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(staticToken("")))
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientEndpoints(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	record := map[string]any{
		"id":           int64(42),
		"client_id":    "cid-42",
		"name":         "Billing",
		"description":  "billing service",
		"website":      "https://billing.example.com",
		"redirect_uri": "https://billing.example.com/cb",
		"is_public":    false,
		"created_at":   created,
		"updated_at":   created,
	}
	withSecret := map[string]any{}
	for k, v := range record {
		withSecret[k] = v
	}
	withSecret["client_secret"] = "s3cret"

	type call struct {
		method string
		path   string
	}
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/clients":
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"clients": []any{record}, "total": 1},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/clients/42":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": record})
		case r.Method == http.MethodPost && r.URL.Path == "/clients":
			var req ClientRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Name != "Billing" || req.RedirectURI != "https://billing.example.com/cb" {
				t.Errorf("unexpected create body: %+v", req)
			}
			writeEnvelope(w, http.StatusCreated, map[string]any{"success": true, "data": withSecret})
		case r.Method == http.MethodPut && r.URL.Path == "/clients/42":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": record})
		case r.Method == http.MethodPost && r.URL.Path == "/clients/42/regenerate-secret":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": withSecret})
		case r.Method == http.MethodDelete && r.URL.Path == "/clients/42":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	list, err := c.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if list.Total != 1 || len(list.Clients) != 1 || list.Clients[0].ClientID != "cid-42" {
		t.Errorf("unexpected list: %+v", list)
	}

	got, err := c.GetClient(ctx, 42)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Name != "Billing" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected client: %+v", got)
	}
	if got.ClientSecret != "" {
		t.Errorf("expected no secret on get, got %q", got.ClientSecret)
	}

	req := ClientRequest{Name: "Billing", RedirectURI: "https://billing.example.com/cb"}
	detail, err := c.CreateClient(ctx, req)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if detail.ClientSecret != "s3cret" || detail.ID != 42 {
		t.Errorf("unexpected create result: %+v", detail)
	}

	if _, err := c.UpdateClient(ctx, 42, req); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	regen, err := c.RegenerateClientSecret(ctx, 42)
	if err != nil {
		t.Fatalf("RegenerateClientSecret: %v", err)
	}
	if regen.ClientSecret != "s3cret" {
		t.Errorf("expected secret after regenerate, got %q", regen.ClientSecret)
	}

	if err := c.DeleteClient(ctx, 42); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	if len(calls) != 6 {
		t.Errorf("expected 6 calls, got %d: %v", len(calls), calls)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	c := New("http://localhost:8080/api/v1/")
	if c.BaseURL() != "http://localhost:8080/api/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestParseProxyURL(t *testing.T) {
	cfg, err := ParseProxyURL("ssh+socks5://ops@jumpbox:22?private-key=/keys/id_rsa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Username != "ops" || cfg.Host != "jumpbox:22" || cfg.KeyPath != "/keys/id_rsa" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	tests := []struct {
		name  string
		proxy string
	}{
		{"missing key", "ssh+socks5://ops@jumpbox:22"},
		{"path traversal", "socks5://user@host:1080?private-key=../../../etc/passwd"},
		{"wrong scheme", "http://jumpbox:22?private-key=/keys/id_rsa"},
		{"no host", "ssh+socks5://?private-key=/keys/id_rsa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProxyURL(tt.proxy); err == nil {
				t.Errorf("ParseProxyURL(%q) should fail", tt.proxy)
			}
		})
	}
}

func TestWithProxy(t *testing.T) {
	opt, err := WithProxy("")
	if err != nil || opt == nil {
		t.Fatalf("empty proxy should be a no-op option, got %v", err)
	}

	if _, err := WithProxy("ssh+socks5://ops@jumpbox:22?private-key=/does/not/exist"); err == nil {
		t.Error("expected error for unreadable key")
	}

	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("not-a-real-key"), 0o600); err != nil {
		t.Fatal(err)
	}
	opt, err = WithProxy("ssh+socks5://ops@jumpbox:22?private-key=" + keyPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := New("http://localhost:8080", opt)
	lt, ok := c.httpClient.Transport.(*loggingTransport)
	if !ok {
		t.Fatalf("expected logging transport, got %T", c.httpClient.Transport)
	}
	if tr, ok := lt.next.(*http.Transport); !ok || tr.DialContext == nil {
		t.Error("expected proxy transport with DialContext")
	}
}
