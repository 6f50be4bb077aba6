// Package recorder coordinates the local history store and the
// PostgreSQL mirror.
//
// Every record is written to the local file first; the mirror write is
// best-effort and its failure is logged, never propagated, so a dead
// database cannot lose a conversation. Reads prefer the mirror (it is
// shared across machines) and fall back to local files. Guest records
// are local-only.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askcampus/askcampus/internal/history"
	"github.com/askcampus/askcampus/internal/identity"
	"github.com/askcampus/askcampus/internal/mirror"
	"github.com/askcampus/askcampus/internal/record"
)

// Recorder writes conversation records to both stores and reads them
// back with mirror-preferred semantics.
type Recorder struct {
	local  *history.Store
	remote *mirror.Store
	logger *slog.Logger
}

// New creates a Recorder. remote may be a nil-pool mirror store; the
// recorder then operates on local files alone.
func New(local *history.Store, remote *mirror.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{local: local, remote: remote, logger: logger}
}

// MirrorAvailable reports whether records are being replicated.
func (r *Recorder) MirrorAvailable() bool {
	return r.remote != nil && r.remote.Available()
}

// Record persists one conversation record for userID.
//
// The local write must succeed; a failed local write is the only error
// this method returns. The mirror write is skipped for guests and its
// failure is only logged.
func (r *Recorder) Record(ctx context.Context, userID string, rec record.Record) error {
	if err := r.local.Append(userID, rec); err != nil {
		return fmt.Errorf("recording locally for %s: %w", userID, err)
	}

	if userID == identity.Guest || !r.MirrorAvailable() {
		return nil
	}

	if err := r.remote.Append(ctx, userID, rec); err != nil {
		r.logger.Warn("mirror write failed, record kept locally",
			"user_id", userID, "error", err)
	}
	return nil
}

// History returns userID's records in chronological order, from the
// mirror when it is reachable, otherwise from local files. Guests
// always read locally.
func (r *Recorder) History(ctx context.Context, userID string) ([]record.Record, error) {
	if userID != identity.Guest && r.MirrorAvailable() {
		records, err := r.remote.History(ctx, userID)
		if err == nil {
			return records, nil
		}
		r.logger.Warn("mirror read failed, falling back to local history",
			"user_id", userID, "error", err)
	}
	return r.local.Load(userID)
}

// AllHistories returns every user's history for aggregation. Mirror
// data wins for users present in both stores; local-only users (guests,
// records written while the mirror was down) are merged in.
func (r *Recorder) AllHistories(ctx context.Context) (map[string][]record.Record, error) {
	local, err := r.local.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading local histories: %w", err)
	}

	if !r.MirrorAvailable() {
		return local, nil
	}

	mirrored, err := r.remote.AllHistories(ctx)
	if err != nil {
		r.logger.Warn("mirror read failed, aggregating local histories only", "error", err)
		return local, nil
	}

	merged := make(map[string][]record.Record, len(mirrored)+len(local))
	for userID, records := range mirrored {
		merged[userID] = records
	}
	for userID, records := range local {
		if _, ok := merged[userID]; !ok {
			merged[userID] = records
		}
	}
	return merged, nil
}

// Restore rebuilds userID's local history file from the mirror copy,
// returning the number of records pulled. The mirror must be available
// and userID must not be the guest identity.
func (r *Recorder) Restore(ctx context.Context, userID string) (int, error) {
	if userID == identity.Guest {
		return 0, fmt.Errorf("restoring %s: guest history is local-only", userID)
	}
	if !r.MirrorAvailable() {
		return 0, fmt.Errorf("restoring %s: %w", userID, mirror.ErrUnavailable)
	}

	records, err := r.remote.History(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("restoring %s: %w", userID, err)
	}
	if err := r.local.Replace(userID, records); err != nil {
		return 0, fmt.Errorf("restoring %s: %w", userID, err)
	}

	r.logger.Info("restored local history from mirror",
		"user_id", userID, "records", len(records))
	return len(records), nil
}

// DeleteUser removes a user's data from both stores. The mirror delete
// runs first so that a failure leaves the local copy intact for retry.
func (r *Recorder) DeleteUser(ctx context.Context, userID string) error {
	if userID != identity.Guest && r.MirrorAvailable() {
		if err := r.remote.DeleteUser(ctx, userID); err != nil {
			return fmt.Errorf("deleting mirrored data for %s: %w", userID, err)
		}
	}
	if err := r.local.DeleteAll(userID); err != nil {
		return fmt.Errorf("deleting local history for %s: %w", userID, err)
	}
	return nil
}
