package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/socialride/identity/internal/filex"
)

// sessionDir is the subdirectory (under the working directory) that holds
// the cached session.
const sessionDir = ".socialride"

const sessionFile = "session.json"

type storedSession struct {
	UserID       string `json:"user_id"`
	FirstName    string `json:"first_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// saveSession caches the token pair so the next CLI invocation can resume
// without a password prompt.
func saveSession(s *storedSession) error {
	dir, err := filex.EnsureSubdir(sessionDir)
	if err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionFile), b, 0o600)
}

// loadSession returns the cached session, or nil when none exists.
func loadSession() (*storedSession, error) {
	dir, err := filex.EnsureSubdir(sessionDir)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	s := &storedSession{}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// clearSession drops the cached session.
func clearSession() error {
	dir, err := filex.EnsureSubdir(sessionDir)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
