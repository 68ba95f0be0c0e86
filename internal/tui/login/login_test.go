// ABOUTME: Tests for the login screen
// ABOUTME: Covers local validation, failed and successful sign-in

package login

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/signin"
)

func TestLoginRejectsInvalidEmail(t *testing.T) {
	called := false
	l := New(func(context.Context, client.LoginRequest) error {
		called = true
		return nil
	}, "not-an-email")
	l.values.Password = "pw"

	l.submit()
	if called {
		t.Error("login must not be called with invalid input")
	}
	if l.err != "Please enter a valid email address" {
		t.Errorf("unexpected error %q", l.err)
	}
}

func TestLoginFailureShowsMessageAndClearsPassword(t *testing.T) {
	l := New(func(context.Context, client.LoginRequest) error { return nil }, "ada@example.com")
	l.values.Password = "wrong"

	l.Update(resultMsg{err: &client.APIError{Status: 401, Message: "Invalid credentials"}})

	if l.err != "Invalid credentials" {
		t.Errorf("unexpected error %q", l.err)
	}
	if l.values.Password != "" {
		t.Error("expected password cleared after failure")
	}
	if l.values.Email != "ada@example.com" {
		t.Error("expected email kept after failure")
	}
	if !strings.Contains(l.View(), "Invalid credentials") {
		t.Error("expected banner in view")
	}
}

func TestLoginSuccess(t *testing.T) {
	var got client.LoginRequest
	l := New(func(_ context.Context, req client.LoginRequest) error {
		got = req
		return nil
	}, "ada@example.com")
	l.values.Password = "secret1"

	_, cmd := l.submit()
	if cmd == nil || !l.submitting {
		t.Fatal("expected sign-in in flight")
	}
	if !strings.Contains(l.View(), "Signing in") {
		t.Error("expected spinner text while submitting")
	}

	msg := resultMsg{err: l.login(context.Background(), l.values.Request())}
	if got.Email != "ada@example.com" || got.Password != "secret1" {
		t.Errorf("unexpected request %+v", got)
	}

	_, cmd = l.Update(msg)
	if _, ok := cmd().(LoggedInMsg); !ok {
		t.Error("expected LoggedInMsg")
	}
}

func TestLoginEsc(t *testing.T) {
	l := New(nil, "")
	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg")
	}
}

func TestLoginUnreachable(t *testing.T) {
	l := New(nil, "")
	l.Update(resultMsg{err: &client.TransportError{Reason: "cannot connect"}})
	if l.err != signin.MsgUnreachable {
		t.Errorf("unexpected error %q", l.err)
	}
}
