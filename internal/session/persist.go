// ABOUTME: File-backed persistence for the auth store
// ABOUTME: Stores one versioned JSON blob in the XDG config directory

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// StorageVersion is bumped whenever the persisted layout changes.
// Blobs written with another version are ignored on load.
const StorageVersion = 1

// StorageName is the namespaced key of the persisted blob
const StorageName = "auth-storage"

// FilePersister writes the session to <configDir>/auth-storage.json
type FilePersister struct {
	configDir string
}

type storedSession struct {
	State   AuthSession `json:"state"`
	Version int         `json:"version"`
}

// NewFilePersister creates a persister rooted at configDir
func NewFilePersister(configDir string) *FilePersister {
	return &FilePersister{configDir: configDir}
}

// Path returns the location of the persisted blob
func (p *FilePersister) Path() string {
	return filepath.Join(p.configDir, StorageName+".json")
}

// Load reads the persisted session. ok is false when nothing usable is stored.
func (p *FilePersister) Load() (AuthSession, bool, error) {
	data, err := os.ReadFile(p.Path())
	if os.IsNotExist(err) {
		return AuthSession{}, false, nil
	}
	if err != nil {
		return AuthSession{}, false, err
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// Invalid JSON, start fresh
		return AuthSession{}, false, nil
	}
	if stored.Version != StorageVersion {
		return AuthSession{}, false, nil
	}

	return stored.State, true, nil
}

// Save writes the session, replacing any previous blob atomically
func (p *FilePersister) Save(state AuthSession) error {
	// Tokens live here, keep the directory and file private
	if err := os.MkdirAll(p.configDir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(storedSession{State: state, Version: StorageVersion}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.configDir, StorageName+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.Path())
}
