// Package export writes analytics snapshots to disk.
//
// A snapshot is a self-contained JSON document carrying the aggregate
// statistics at a point in time, optionally with the full per-user
// histories, so it can be archived or fed to external tooling without
// access to the live stores.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/askcampus/askcampus/internal/record"
	"github.com/askcampus/askcampus/internal/stats"
)

// Snapshot is one exported analytics document.
type Snapshot struct {
	ID          uuid.UUID                  `json:"id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Statistics  stats.Stats                `json:"statistics"`
	Histories   map[string][]record.Record `json:"histories,omitempty"`
}

// New builds a snapshot from aggregated histories. When
// includeHistories is false the raw conversations are left out and only
// the aggregates are exported.
func New(histories map[string][]record.Record, includeHistories bool) Snapshot {
	s := Snapshot{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Statistics:  stats.Compute(histories),
	}
	if includeHistories {
		s.Histories = histories
	}
	return s
}

// Write stores the snapshot at path as indented JSON, atomically.
func (s Snapshot) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// DefaultFilename returns a timestamped snapshot filename such as
// askcampus_stats_20260301T120000Z.json.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("askcampus_stats_%s.json", now.UTC().Format("20060102T150405Z"))
}
