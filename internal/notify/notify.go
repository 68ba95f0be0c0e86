// ABOUTME: Transient notifications shown by the console and printed by the CLI
// ABOUTME: Tray keeps active notifications until their duration elapses

package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// DefaultDuration is how long a notification stays visible unless set.
const DefaultDuration = 4 * time.Second

// Notification is a transient message. Secret, when set, is shown with a
// copy action and never written anywhere else.
type Notification struct {
	ID        uint64
	Level     Level
	Title     string
	Body      string
	Secret    string
	Duration  time.Duration
	CreatedAt time.Time
}

// Expired reports whether n should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	d := n.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	return !now.Before(n.CreatedAt.Add(d))
}

// Info builds an informational notification.
func Info(title string) Notification {
	return Notification{Level: LevelInfo, Title: title}
}

// Success builds a success notification with an optional body.
func Success(title, body string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Body: body}
}

// Error builds an error notification.
func Error(title string) Notification {
	return Notification{Level: LevelError, Title: title}
}

// Notifier accepts notifications for display.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Tray holds the notifications currently on screen.
type Tray struct {
	mu     sync.Mutex
	items  []Notification
	nextID uint64
	now    func() time.Time
}

// NewTray returns an empty tray using the wall clock.
func NewTray() *Tray {
	return &Tray{now: time.Now}
}

// Notify adds n to the tray, stamping its ID and creation time.
func (t *Tray) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	n.ID = t.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = t.now()
	}
	t.items = append(t.items, n)
}

// Active drops expired notifications and returns the rest, oldest first.
func (t *Tray) Active() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kept := t.items[:0]
	for _, n := range t.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	t.items = kept
	return append([]Notification(nil), kept...)
}

// Dismiss removes the notification with the given ID.
func (t *Tray) Dismiss(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, n := range t.items {
		if n.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// LatestSecret returns the newest active notification carrying a secret.
func (t *Tray) LatestSecret() (Notification, bool) {
	active := t.Active()
	for i := len(active) - 1; i >= 0; i-- {
		if active[i].Secret != "" {
			return active[i], true
		}
	}
	return Notification{}, false
}

// Writer prints notifications as single lines, for non-interactive commands.
type Writer struct {
	W io.Writer
}

func (w Writer) Notify(n Notification) {
	prefix := map[Level]string{
		LevelInfo:    "i",
		LevelSuccess: "✓",
		LevelWarning: "!",
		LevelError:   "✗",
	}[n.Level]

	line := prefix + " " + n.Title
	if n.Body != "" {
		line += ": " + n.Body
	}
	fmt.Fprintln(w.W, line)
	if n.Secret != "" {
		fmt.Fprintln(w.W, "  "+n.Secret)
	}
}
