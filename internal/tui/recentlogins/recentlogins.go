// ABOUTME: Remembers the emails recently used to sign in
// ABOUTME: Stored as JSON next to the session file to pre-fill the login screen

package recentlogins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MaxRecent is the maximum number of emails to keep
const MaxRecent = 5

// FileName is the file inside the config directory
const FileName = "recent-logins.json"

// Recent manages the list of recently used sign-in emails
type Recent struct {
	configDir string
	emails    []string
}

type recentData struct {
	Emails []string `json:"emails"`
}

// New creates a Recent manager with the given config directory.
// An empty directory keeps the list in memory only.
func New(configDir string) *Recent {
	return &Recent{configDir: configDir}
}

func (r *Recent) configFile() string {
	return filepath.Join(r.configDir, FileName)
}

// Load reads the list from disk. A missing or corrupt file is an empty list.
func (r *Recent) Load() ([]string, error) {
	r.emails = []string{}
	if r.configDir == "" {
		return r.emails, nil
	}

	data, err := os.ReadFile(r.configFile())
	if os.IsNotExist(err) {
		return r.emails, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		return r.emails, nil
	}

	for _, e := range recent.Emails {
		if e = normalize(e); e != "" && len(r.emails) < MaxRecent {
			r.emails = append(r.emails, e)
		}
	}
	return r.emails, nil
}

// Save writes the list to disk, trimmed to MaxRecent
func (r *Recent) Save(emails []string) error {
	if len(emails) > MaxRecent {
		emails = emails[:MaxRecent]
	}
	r.emails = emails

	if r.configDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.configDir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(recentData{Emails: emails}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.configFile(), data, 0o600)
}

// Add moves email to the front of the list
func (r *Recent) Add(email string) error {
	email = normalize(email)
	if email == "" {
		return nil
	}
	if r.emails == nil {
		if _, err := r.Load(); err != nil {
			r.emails = []string{}
		}
	}

	next := make([]string, 0, len(r.emails)+1)
	next = append(next, email)
	for _, e := range r.emails {
		if e != email {
			next = append(next, e)
		}
	}
	return r.Save(next)
}

// List returns the emails, most recent first
func (r *Recent) List() []string {
	if r.emails == nil {
		r.Load()
	}
	return r.emails
}

// Latest returns the most recently used email, or ""
func (r *Recent) Latest() string {
	if list := r.List(); len(list) > 0 {
		return list[0]
	}
	return ""
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
