// ABOUTME: Tests for the console main menu
// ABOUTME: Validates the entries offered for each auth state and key handling

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMenuSignedOut(t *testing.T) {
	m := New(false)

	if len(m.options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(m.options))
	}
	if m.options[0].value != ActionLogin {
		t.Errorf("expected first option to be login, got %s", m.options[0].value)
	}
	for _, opt := range m.options {
		if opt.value == ActionClients || opt.value == ActionLogout {
			t.Errorf("signed-out menu must not offer %s", opt.value)
		}
	}
}

func TestMenuEntriesHaveIcons(t *testing.T) {
	for _, authenticated := range []bool{false, true} {
		m := New(authenticated)
		m.Init()
		view := m.View()
		for _, opt := range m.options {
			if opt.icon.Fallback == "" {
				t.Errorf("%q has no icon", opt.label)
			}
			if !strings.Contains(view, opt.label) {
				t.Errorf("expected %q in view", opt.label)
			}
		}
	}
}

func TestMenuSignedIn(t *testing.T) {
	m := New(true)

	if m.options[0].value != ActionClients {
		t.Errorf("expected first option to be clients, got %s", m.options[0].value)
	}
	for _, opt := range m.options {
		if opt.value == ActionLogin || opt.value == ActionRegister {
			t.Errorf("signed-in menu must not offer %s", opt.value)
		}
	}
	if m.selected != ActionClients {
		t.Errorf("expected default selection clients, got %s", m.selected)
	}
}

func TestMenuCancelKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
	} {
		m := New(false)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("expected command for %q", key.String())
		}
		if _, ok := cmd().(CancelledMsg); !ok {
			t.Errorf("expected CancelledMsg for %q", key.String())
		}
	}
}

func TestMenuRendersOptions(t *testing.T) {
	m := New(true)
	m.Init()
	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionLogin, "login"},
		{ActionRegister, "register"},
		{ActionClients, "clients"},
		{ActionCreateClient, "create-client"},
		{ActionRefresh, "refresh"},
		{ActionLogout, "logout"},
		{ActionQuit, "quit"},
		{Action(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.action.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
