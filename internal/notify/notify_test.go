// ABOUTME: Tests for the notification tray, writer and clipboard copy
// ABOUTME: Uses a fake clock and an in-memory clipboard

package notify

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type memClipboard struct {
	text string
	err  error
}

func (m *memClipboard) WriteAll(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func TestTray_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tray := &Tray{now: func() time.Time { return now }}

	tray.Notify(Success("short", ""))
	long := Info("long")
	long.Duration = 15 * time.Second
	tray.Notify(long)

	if got := len(tray.Active()); got != 2 {
		t.Fatalf("expected 2 active, got %d", got)
	}

	now = now.Add(DefaultDuration)
	active := tray.Active()
	if len(active) != 1 || active[0].Title != "long" {
		t.Fatalf("expected only the long notification, got %+v", active)
	}

	now = now.Add(15 * time.Second)
	if got := len(tray.Active()); got != 0 {
		t.Errorf("expected none active, got %d", got)
	}
}

func TestTray_DismissAndLatestSecret(t *testing.T) {
	tray := NewTray()
	tray.Notify(Notification{Title: "first", Secret: "a", Duration: time.Minute})
	tray.Notify(Notification{Title: "second", Secret: "b", Duration: time.Minute})

	n, ok := tray.LatestSecret()
	if !ok || n.Secret != "b" {
		t.Fatalf("expected latest secret b, got %+v", n)
	}

	tray.Dismiss(n.ID)
	n, ok = tray.LatestSecret()
	if !ok || n.Secret != "a" {
		t.Fatalf("expected secret a after dismiss, got %+v", n)
	}

	tray.Dismiss(n.ID)
	if _, ok := tray.LatestSecret(); ok {
		t.Error("expected no secret left")
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{W: &buf}
	w.Notify(Success("Registration successful!", "You can now log in to your account."))
	w.Notify(Notification{Level: LevelSuccess, Title: "Client created successfully", Secret: "s3cret"})

	out := buf.String()
	if !strings.Contains(out, "✓ Registration successful!: You can now log in to your account.") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "  s3cret\n") {
		t.Errorf("expected secret on its own line: %q", out)
	}
}

func TestCopySecret(t *testing.T) {
	var got []Notification
	n := Func(func(x Notification) { got = append(got, x) })

	cb := &memClipboard{}
	if err := CopySecret(cb, n, "s3cret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.text != "s3cret" {
		t.Errorf("expected secret on clipboard, got %q", cb.text)
	}
	if len(got) != 1 || got[0].Title != "Client secret copied to clipboard" {
		t.Errorf("unexpected notifications: %+v", got)
	}

	got = nil
	failing := &memClipboard{err: errors.New("no display")}
	if err := CopySecret(failing, n, "s3cret"); err == nil {
		t.Error("expected error from failing clipboard")
	}
	if len(got) != 1 || got[0].Level != LevelError {
		t.Errorf("expected error notification, got %+v", got)
	}

	if err := CopySecret(cb, n, ""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestCopyClientID(t *testing.T) {
	var got []Notification
	n := Func(func(x Notification) { got = append(got, x) })

	cb := &memClipboard{}
	if err := Copy(cb, n, "cid-123", "Client ID"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.text != "cid-123" || got[0].Title != "Client ID copied to clipboard" {
		t.Errorf("unexpected result %q %+v", cb.text, got)
	}

	got = nil
	if err := Copy(&memClipboard{err: errors.New("no display")}, n, "cid-123", "Client ID"); err == nil {
		t.Error("expected error")
	}
	if got[0].Title != "Could not copy client id" {
		t.Errorf("unexpected failure title %q", got[0].Title)
	}
}
