package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/askcampus/askcampus/internal/log"
	"github.com/askcampus/askcampus/internal/record"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), log.NewNop())
}

func testRecord(ts time.Time, prompt string) record.Record {
	return record.Record{
		Timestamp: ts,
		Prompt:    prompt,
		Response:  "response to " + prompt,
		Mode:      record.ModeChat,
		Language:  "en",
	}
}

func TestStore_AppendThenLoad(t *testing.T) {
	s := testStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	prompts := []string{"one", "two", "three"}
	for i, p := range prompts {
		if err := s.Append("alice", testRecord(base.Add(time.Duration(i)*time.Hour), p)); err != nil {
			t.Fatalf("Append(%q) error: %v", p, err)
		}
	}

	records, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != len(prompts) {
		t.Fatalf("len(records) = %d, want %d", len(records), len(prompts))
	}
	for i, p := range prompts {
		if records[i].Prompt != p {
			t.Errorf("records[%d].Prompt = %q, want %q", i, records[i].Prompt, p)
		}
	}
}

func TestStore_Load_MissingUser(t *testing.T) {
	s := testStore(t)

	records, err := s.Load("nobody")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestStore_Append_CorruptFileOverwritten(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, log.NewNop())

	path := filepath.Join(dir, "chat_history_bob.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	rec := testRecord(time.Now().UTC(), "after corruption")
	if err := s.Append("bob", rec); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	records, err := s.Load("bob")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Prompt != "after corruption" {
		t.Errorf("Prompt = %q, want %q", records[0].Prompt, "after corruption")
	}
}

func TestStore_Replace(t *testing.T) {
	s := testStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Append("alice", testRecord(base, "stale")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	fresh := []record.Record{
		testRecord(base.Add(time.Hour), "restored-one"),
		testRecord(base.Add(2*time.Hour), "restored-two"),
	}
	if err := s.Replace("alice", fresh); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	records, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Prompt != "restored-one" || records[1].Prompt != "restored-two" {
		t.Errorf("unexpected prompts after Replace: %q, %q", records[0].Prompt, records[1].Prompt)
	}
}

func TestStore_Replace_InvalidUserID(t *testing.T) {
	s := testStore(t)
	if err := s.Replace("../x", nil); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("Replace() error = %v, want ErrInvalidUserID", err)
	}
}

func TestStore_DeleteAll(t *testing.T) {
	s := testStore(t)

	if err := s.Append("carol", testRecord(time.Now().UTC(), "hello")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := s.DeleteAll("carol"); err != nil {
		t.Fatalf("DeleteAll() error: %v", err)
	}

	records, err := s.Load("carol")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d after delete, want 0", len(records))
	}

	// Idempotent: deleting again succeeds.
	if err := s.DeleteAll("carol"); err != nil {
		t.Errorf("second DeleteAll() error: %v", err)
	}
}

func TestStore_DeleteAll_NeverExisted(t *testing.T) {
	s := testStore(t)
	if err := s.DeleteAll("ghost"); err != nil {
		t.Errorf("DeleteAll() error: %v", err)
	}
}

func TestStore_LoadAll(t *testing.T) {
	s := testStore(t)
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	users := []string{"alice", "bob", "guest"}
	for _, u := range users {
		if err := s.Append(u, testRecord(ts, "from "+u)); err != nil {
			t.Fatalf("Append(%q) error: %v", u, err)
		}
	}

	histories, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(histories) != len(users) {
		t.Fatalf("len(histories) = %d, want %d", len(histories), len(users))
	}
	for _, u := range users {
		recs, ok := histories[u]
		if !ok {
			t.Errorf("missing user %q", u)
			continue
		}
		if len(recs) != 1 || recs[0].Prompt != "from "+u {
			t.Errorf("unexpected records for %q: %+v", u, recs)
		}
	}
}

func TestStore_LoadAll_MissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"), log.NewNop())

	histories, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(histories) != 0 {
		t.Errorf("len(histories) = %d, want 0", len(histories))
	}
}

func TestStore_LoadAll_SkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, log.NewNop())

	if err := s.Append("alice", testRecord(time.Now().UTC(), "fine")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chat_history_bad.json"), []byte("???"), 0o600); err != nil {
		t.Fatal(err)
	}

	histories, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if _, ok := histories["alice"]; !ok {
		t.Error("alice should be present")
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "alice", false},
		{"guest sentinel", "guest", false},
		{"uid with dash", "firebase-uid-123", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserID(tt.id)
			if tt.wantErr && !errors.Is(err, ErrInvalidUserID) {
				t.Errorf("ValidateUserID(%q) = %v, want ErrInvalidUserID", tt.id, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateUserID(%q) = %v, want nil", tt.id, err)
			}
		})
	}
}

func TestStore_Append_InvalidUserID(t *testing.T) {
	s := testStore(t)
	err := s.Append("../escape", testRecord(time.Now().UTC(), "nope"))
	if !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("Append() error = %v, want ErrInvalidUserID", err)
	}
}
