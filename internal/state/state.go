// Package state persists the greeter's small bits of memory between boots:
// the last user who logged in and the session they picked.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/validate"
)

// DefaultPath is where the greeter keeps its state. The directory must be
// writable by the user the broker runs the greeter as.
const DefaultPath = "/var/cache/vimgreet/state.json"

// Data is the structure of the state file.
type Data struct {
	LastUser    string `json:"last_user,omitempty"`
	LastSession string `json:"last_session,omitempty"`
	// HostUUID identifies this installation in logs across boots.
	HostUUID string `json:"host_uuid,omitempty" validate:"omitempty,uuid_rfc4122"`
}

// Store handles the loading and saving of the state file.
type Store struct {
	Path string `validate:"required,filepath"`
	Data Data
}

// NewOrExisting returns the store at path, loading the file if it exists and
// creating it otherwise. A HostUUID is generated on first use.
func NewOrExisting(path string) (*Store, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	s := &Store{Path: expandedPath}
	if err := s.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		s.Data.HostUUID = uuid.NewString()
		if err := s.Save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Load() error {
	logrus.Debug("Loading state file from: ", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &s.Data); err != nil {
		return err
	}

	// Self-heal a corrupt or missing host UUID.
	if s.Data.HostUUID == "" || validate.Var(s.Data.HostUUID, "uuid_rfc4122") != nil {
		s.Data.HostUUID = uuid.NewString()
		return s.Save()
	}
	return nil
}

// Save writes the state to the file.
func (s *Store) Save() error {
	logrus.Debug("Saving state file to: ", s.Path)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// RememberLogin records a successful login so the next boot preselects it.
func (s *Store) RememberLogin(username, sessionSlug string) error {
	s.Data.LastUser = username
	s.Data.LastSession = sessionSlug
	return s.Save()
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
