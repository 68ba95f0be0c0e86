// ABOUTME: Clipboard access for copying client secrets and identifiers
// ABOUTME: System clipboard via atotto/clipboard behind a small interface

package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// CopySecret copies secret to cb and confirms with a notification.
func CopySecret(cb Clipboard, n Notifier, secret string) error {
	return Copy(cb, n, secret, "Client secret")
}

// Copy writes text to cb and confirms with "<what> copied to clipboard".
func Copy(cb Clipboard, n Notifier, text, what string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	if err := cb.WriteAll(text); err != nil {
		n.Notify(Error("Could not copy " + strings.ToLower(what)))
		return fmt.Errorf("copy %s: %w", strings.ToLower(what), err)
	}
	n.Notify(Info(what + " copied to clipboard"))
	return nil
}
