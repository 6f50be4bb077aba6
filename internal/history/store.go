package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/askcampus/askcampus/internal/record"
)

const (
	filePrefix = "chat_history_"
	fileSuffix = ".json"
)

// Store reads and writes per-user history files under a single directory.
//
// Store methods are safe for sequential use from one session; concurrent
// appends for the same user are not synchronized (see package doc).
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir. The directory is created on first
// write, not here, so constructing a Store never touches the filesystem.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory holding the history files.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the history file path for userID.
func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, filePrefix+userID+fileSuffix)
}

// Append loads the user's existing records, appends rec, and writes the
// full sequence back atomically.
//
// A missing file starts an empty history. A corrupt file is treated as
// empty and overwritten (logged at warn level). Read errors other than
// not-exist and all write errors are returned to the caller.
func (s *Store) Append(userID string, rec record.Record) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	records, err := s.readFile(userID)
	if err != nil {
		return err
	}
	records = append(records, rec)

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := record.EncodeList(records)
	if err != nil {
		return err
	}

	path := s.path(userID)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing history for %s: %w", userID, err)
	}

	s.logger.Debug("appended record", "user_id", userID, "total", len(records))
	return nil
}

// Replace overwrites userID's history with the given sequence. Used
// when reconstructing local state from the mirror.
func (s *Store) Replace(userID string, records []record.Record) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := record.EncodeList(records)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.path(userID), data); err != nil {
		return fmt.Errorf("writing history for %s: %w", userID, err)
	}

	s.logger.Debug("replaced history", "user_id", userID, "total", len(records))
	return nil
}

// Load returns the ordered record sequence for userID.
// A missing or unreadable file yields an empty slice, never an error.
func (s *Store) Load(userID string) ([]record.Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	records, err := s.readFile(userID)
	if err != nil {
		// Load is tolerant where Append is not: a history that cannot be
		// read right now still renders as empty rather than failing the
		// caller's read path.
		s.logger.Warn("unreadable history treated as empty", "user_id", userID, "error", err)
		return []record.Record{}, nil
	}
	return records, nil
}

// LoadAll scans the history directory and returns every user's records,
// keyed by user ID. Files that fail to parse are skipped. A missing
// directory yields an empty map.
func (s *Store) LoadAll() (map[string][]record.Record, error) {
	histories := make(map[string][]record.Record)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return histories, nil
		}
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		userID := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if ValidateUserID(userID) != nil {
			continue
		}

		records, err := s.readFile(userID)
		if err != nil {
			s.logger.Warn("skipping unreadable history file", "file", name, "error", err)
			continue
		}
		histories[userID] = records
	}

	return histories, nil
}

// DeleteAll removes the persisted history for userID.
// Idempotent: deleting a history that does not exist succeeds.
func (s *Store) DeleteAll(userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	err := os.Remove(s.path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting history for %s: %w", userID, err)
	}

	s.logger.Debug("deleted history", "user_id", userID)
	return nil
}

// readFile loads and decodes one history file. Missing file and corrupt
// content both yield an empty slice; only I/O errors on an existing file
// propagate.
func (s *Store) readFile(userID string) ([]record.Record, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return []record.Record{}, nil
		}
		return nil, fmt.Errorf("reading history for %s: %w", userID, err)
	}

	records, skipped, err := record.DecodeList(data)
	if err != nil {
		s.logger.Warn("corrupt history file treated as empty",
			"user_id", userID, "error", err)
		return []record.Record{}, nil
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed records in history",
			"user_id", userID, "skipped", skipped)
	}
	return records, nil
}

// writeFileAtomic writes data to path via a temp file and rename, so an
// interrupted write never leaves a truncated history behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
