// Package identity tracks which user the CLI is acting as.
//
// The current user ID is kept in ~/.askcampus/current_user so that
// consecutive commands share an identity without repeating --user.
// Writes take a file lock: two concurrent invocations may both switch
// user, but neither can corrupt the state file.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/askcampus/askcampus/internal/history"
)

// Guest is the identity used when no user is signed in. Guest history
// stays on the local machine and is never mirrored.
const Guest = "guest"

const (
	stateFileName = "current_user"
	lockTimeout   = 5 * time.Second
)

// Manager reads and writes the current-user state file.
type Manager struct {
	dir string
}

// New creates a Manager storing state under dir (normally ~/.askcampus).
func New(dir string) *Manager {
	return &Manager{dir: dir}
}

// DefaultDir returns ~/.askcampus.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".askcampus"), nil
}

// Current returns the active user ID. When no user has been set, or the
// state file is unreadable, it returns Guest.
func (m *Manager) Current() string {
	data, err := os.ReadFile(m.statePath())
	if err != nil {
		return Guest
	}
	id := strings.TrimSpace(string(data))
	if id == "" || history.ValidateUserID(id) != nil {
		return Guest
	}
	return id
}

// SetCurrent records userID as the active user.
func (m *Manager) SetCurrent(userID string) error {
	if err := history.ValidateUserID(userID); err != nil {
		return err
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	path := m.statePath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(userID+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing user state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing user state: %w", err)
	}
	return nil
}

// Clear signs the current user out; subsequent commands run as Guest.
func (m *Manager) Clear() error {
	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(m.statePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing user state: %w", err)
	}
	return nil
}

func (m *Manager) statePath() string {
	return filepath.Join(m.dir, stateFileName)
}

// lock acquires the state file lock, giving up after lockTimeout.
func (m *Manager) lock() (func(), error) {
	fl := flock.New(m.statePath() + ".lock")

	deadline := time.Now().Add(lockTimeout)
	for {
		ok, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("locking user state: %w", err)
		}
		if ok {
			return func() { _ = fl.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("locking user state: timed out after %s", lockTimeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
