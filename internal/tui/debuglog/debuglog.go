// ABOUTME: Debug log file for the console so logging never draws over the terminal UI
// ABOUTME: Opens debug.log in the config directory for the slog handler to write to

package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileName is the log file created inside the config directory.
const FileName = "debug.log"

// Open creates the config directory if needed and opens debug.log for
// appending. An empty configDir discards output.
func Open(configDir string) (io.WriteCloser, error) {
	if configDir == "" {
		return nopCloser{io.Discard}, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(configDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
