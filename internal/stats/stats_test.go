package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/askcampus/askcampus/internal/record"
)

func rec(ts time.Time, prompt, response, mode, language string) record.Record {
	return record.Record{
		Timestamp: ts,
		Prompt:    prompt,
		Response:  response,
		Mode:      mode,
		Language:  language,
	}
}

func TestComputeAt_Empty(t *testing.T) {
	st := ComputeAt(map[string][]record.Record{}, time.Now())

	if st.TotalUsers != 0 {
		t.Errorf("TotalUsers = %d, want 0", st.TotalUsers)
	}
	if st.TotalConversations != 0 {
		t.Errorf("TotalConversations = %d, want 0", st.TotalConversations)
	}
	if st.ActiveToday != 0 {
		t.Errorf("ActiveToday = %d, want 0", st.ActiveToday)
	}
	if len(st.LanguageDistribution) != 0 || len(st.ModeDistribution) != 0 {
		t.Error("distributions should be empty")
	}
}

func TestComputeAt_SingleUser(t *testing.T) {
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)
	histories := map[string][]record.Record{
		"alice": {
			rec(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "hi", "hello", record.ModeChat, "en"),
			rec(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "bye", "goodbye", record.ModeChat, "en"),
		},
	}

	st := ComputeAt(histories, now)

	if st.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", st.TotalUsers)
	}
	if st.TotalConversations != 2 {
		t.Errorf("TotalConversations = %d, want 2", st.TotalConversations)
	}
	if st.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", st.TotalMessages)
	}
	if got := st.LanguageDistribution["en"]; got != 2 {
		t.Errorf("LanguageDistribution[en] = %d, want 2", got)
	}
	if got := st.ModeDistribution[record.ModeChat]; got != 2 {
		t.Errorf("ModeDistribution[chat] = %d, want 2", got)
	}
}

func TestComputeAt_ActiveToday(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	histories := map[string][]record.Record{
		// Last record 2 hours ago: active.
		"fresh": {rec(now.Add(-2*time.Hour), "q", "a", record.ModeChat, "en")},
		// Last record 30 hours ago: not active.
		"stale": {rec(now.Add(-30*time.Hour), "q", "a", record.ModeChat, "en")},
		// Record in the future (clock skew): not counted as active.
		"skewed": {rec(now.Add(2*time.Hour), "q", "a", record.ModeChat, "en")},
	}

	st := ComputeAt(histories, now)
	if st.ActiveToday != 1 {
		t.Errorf("ActiveToday = %d, want 1", st.ActiveToday)
	}
	if st.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d, want 3", st.TotalUsers)
	}
}

func TestComputeAt_IgnoresEmptyHistories(t *testing.T) {
	histories := map[string][]record.Record{
		"empty": {},
		"real":  {rec(time.Now(), "q", "a", record.ModeQA, "es")},
	}

	st := Compute(histories)
	if st.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", st.TotalUsers)
	}
}

func TestComputeAt_AvgResponseLength(t *testing.T) {
	now := time.Now()
	histories := map[string][]record.Record{
		"u": {
			rec(now, "q1", "1234", record.ModeChat, "en"),
			rec(now, "q2", "123456", record.ModeChat, "en"),
		},
	}

	st := ComputeAt(histories, now)
	if st.AvgResponseLength != 5 {
		t.Errorf("AvgResponseLength = %d, want 5", st.AvgResponseLength)
	}
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1, t2, t3, t4, t5 := base, base.Add(1*time.Hour), base.Add(2*time.Hour),
		base.Add(3*time.Hour), base.Add(4*time.Hour)

	// Five users, one record each, interleaved timestamps.
	histories := map[string][]record.Record{
		"u1": {rec(t3, "p3", "r", record.ModeChat, "en")},
		"u2": {rec(t1, "p1", "r", record.ModeChat, "en")},
		"u3": {rec(t5, "p5", "r", record.ModeChat, "en")},
		"u4": {rec(t2, "p2", "r", record.ModeChat, "en")},
		"u5": {rec(t4, "p4", "r", record.ModeChat, "en")},
	}

	entries := RecentActivity(histories, 3)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	wantPrompts := []string{"p5", "p4", "p3"}
	wantUsers := []string{"u3", "u5", "u1"}
	for i := range entries {
		if entries[i].Record.Prompt != wantPrompts[i] {
			t.Errorf("entries[%d].Prompt = %q, want %q", i, entries[i].Record.Prompt, wantPrompts[i])
		}
		if entries[i].UserID != wantUsers[i] {
			t.Errorf("entries[%d].UserID = %q, want %q", i, entries[i].UserID, wantUsers[i])
		}
	}
}

func TestRecentActivity_NonPositiveLimit(t *testing.T) {
	histories := map[string][]record.Record{
		"u": {rec(time.Now(), "q", "a", record.ModeChat, "en")},
	}

	for _, limit := range []int{0, -1} {
		if got := RecentActivity(histories, limit); len(got) != 0 {
			t.Errorf("RecentActivity(limit=%d) returned %d entries, want 0", limit, len(got))
		}
	}
}

func TestRecentActivity_LimitBeyondTotal(t *testing.T) {
	histories := map[string][]record.Record{
		"u": {rec(time.Now(), "q", "a", record.ModeChat, "en")},
	}

	if got := RecentActivity(histories, 10); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestPerUser(t *testing.T) {
	now := time.Now()
	records := []record.Record{
		rec(now, "ab", "1234", record.ModeChat, "en"),
		rec(now, "cdef", "12", record.ModeQA, "es"),
		rec(now, "g", "123", record.ModeChat, "en"),
	}

	us := PerUser(records)

	if us.Conversations != 3 {
		t.Errorf("Conversations = %d, want 3", us.Conversations)
	}
	if us.TotalPromptChars != 7 {
		t.Errorf("TotalPromptChars = %d, want 7", us.TotalPromptChars)
	}
	if us.TotalResponseChars != 9 {
		t.Errorf("TotalResponseChars = %d, want 9", us.TotalResponseChars)
	}
	if us.AvgResponseLength != 3 {
		t.Errorf("AvgResponseLength = %d, want 3", us.AvgResponseLength)
	}
	if want := []string{"en", "es"}; !reflect.DeepEqual(us.Languages, want) {
		t.Errorf("Languages = %v, want %v", us.Languages, want)
	}
}

func TestPerUser_Empty(t *testing.T) {
	us := PerUser(nil)
	if us.Conversations != 0 || us.AvgResponseLength != 0 || len(us.Languages) != 0 {
		t.Errorf("unexpected stats for empty history: %+v", us)
	}
}

func TestPerUser_MultibyteResponse(t *testing.T) {
	us := PerUser([]record.Record{
		rec(time.Now(), "図書館は？", "図書館は8時から22時まで開いています", record.ModeQA, "ja"),
	})
	// Character count, not byte count.
	if us.TotalResponseChars != 19 {
		t.Errorf("TotalResponseChars = %d, want 19", us.TotalResponseChars)
	}
}
