// Package mirror replicates conversation history to PostgreSQL.
//
// The mirror is the durable, queryable copy of the per-user history
// files: every record written locally is also upserted here, keyed by
// (user_id, recorded_at) so that replaying a record is idempotent and a
// timestamp collision overwrites the earlier row, matching the local
// file semantics. Writes to the mirror are best-effort; callers decide
// whether a mirror failure is fatal (it normally is not).
//
// Store is safe for concurrent use by multiple goroutines.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askcampus/askcampus/internal/record"
)

// Store persists conversation records and user profiles in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Profile is the per-user profile row.
type Profile struct {
	UserID           string         `json:"user_id"`
	Preferences      map[string]any `json:"preferences"`
	InteractionCount int64          `json:"interaction_count"`
}

// New creates a Store. pool may be nil, in which case the store reports
// itself unavailable and every operation returns ErrUnavailable; this
// lets callers hold a single *Store regardless of whether a database
// was configured.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Available reports whether the store has a database connection.
func (s *Store) Available() bool {
	return s.pool != nil
}

// Append upserts one conversation record and increments the owner's
// interaction counter. A record with the same (user_id, recorded_at)
// key replaces the stored one.
func (s *Store) Append(ctx context.Context, userID string, rec record.Record) error {
	if s.pool == nil {
		return ErrUnavailable
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (user_id, recorded_at, prompt, response, mode, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, recorded_at) DO UPDATE
		SET prompt = EXCLUDED.prompt,
		    response = EXCLUDED.response,
		    mode = EXCLUDED.mode,
		    language = EXCLUDED.language,
		    updated_at = now()`,
		userID, rec.Timestamp, rec.Prompt, rec.Response, rec.Mode, rec.Language)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (user_id, interaction_count)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET interaction_count = profiles.interaction_count + 1,
		    updated_at = now()`,
		userID)
	if err != nil {
		return fmt.Errorf("bump interaction count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	committed = true

	s.logger.Debug("mirrored conversation record",
		"user_id", userID, "recorded_at", rec.Timestamp)
	return nil
}

// History returns one user's records in chronological order. An unknown
// user yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, userID string) ([]record.Record, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	rows, err := s.pool.Query(ctx, `
		SELECT recorded_at, prompt, response, mode, language
		FROM conversations
		WHERE user_id = $1
		ORDER BY recorded_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", userID, err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var rec record.Record
		if err := rows.Scan(&rec.Timestamp, &rec.Prompt, &rec.Response, &rec.Mode, &rec.Language); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return records, nil
}

// AllHistories returns every user's records, each history in
// chronological order.
func (s *Store) AllHistories(ctx context.Context) (map[string][]record.Record, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	rows, err := s.pool.Query(ctx, `
		SELECT user_id, recorded_at, prompt, response, mode, language
		FROM conversations
		ORDER BY user_id, recorded_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all histories: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]record.Record)
	for rows.Next() {
		var userID string
		var rec record.Record
		if err := rows.Scan(&userID, &rec.Timestamp, &rec.Prompt, &rec.Response, &rec.Mode, &rec.Language); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		histories[userID] = append(histories[userID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return histories, nil
}

// Users lists the user IDs that have mirrored conversations.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT user_id FROM conversations ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// DeleteUser removes a user's conversations and profile. Deleting an
// unknown user is not an error.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if s.pool == nil {
		return ErrUnavailable
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM conversations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete conversations for %s: %w", userID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete profile for %s: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	committed = true

	s.logger.Info("deleted mirrored user data", "user_id", userID)
	return nil
}

// Profile returns a user's profile, or ErrNotFound.
func (s *Store) Profile(ctx context.Context, userID string) (*Profile, error) {
	if s.pool == nil {
		return nil, ErrUnavailable
	}

	var (
		p        Profile
		prefsRaw []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, preferences, interaction_count
		FROM profiles
		WHERE user_id = $1`,
		userID).Scan(&p.UserID, &prefsRaw, &p.InteractionCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile for %s: %w", userID, err)
	}

	if len(prefsRaw) > 0 {
		if err := json.Unmarshal(prefsRaw, &p.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
		}
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}

	return &p, nil
}

// SavePreferences merges the given preferences into a user's profile,
// creating the profile if needed. Existing keys not present in prefs
// are kept.
func (s *Store) SavePreferences(ctx context.Context, userID string, prefs map[string]any) error {
	if s.pool == nil {
		return ErrUnavailable
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, preferences)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = profiles.preferences || EXCLUDED.preferences,
		    updated_at = now()`,
		userID, raw)
	if err != nil {
		return fmt.Errorf("save preferences for %s: %w", userID, err)
	}

	return nil
}
