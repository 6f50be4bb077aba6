// Package stats computes cross-user usage statistics from stored
// conversation records.
//
// Every call is a single full pass over the supplied histories; there is no
// incremental state. That keeps the aggregator trivially correct at the data
// volumes the stores hold (small per-user JSON documents) and would need
// revisiting beyond a few thousand users.
package stats

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/askcampus/askcampus/internal/record"
)

// activeWindow is how far back a record may be for its user to count as
// active "today".
const activeWindow = 24 * time.Hour

// Stats summarizes usage across all users.
type Stats struct {
	TotalUsers           int            `json:"total_users"`
	TotalConversations   int            `json:"total_conversations"`
	TotalMessages        int            `json:"total_messages"`
	ActiveToday          int            `json:"active_today"`
	AvgResponseLength    int            `json:"avg_response_length"`
	LanguageDistribution map[string]int `json:"languages"`
	ModeDistribution     map[string]int `json:"modes"`
}

// Entry is a record annotated with its owning user, as returned by
// RecentActivity.
type Entry struct {
	UserID string        `json:"user_id"`
	Record record.Record `json:"record"`
}

// UserStats summarizes one user's history.
type UserStats struct {
	Conversations      int      `json:"conversations"`
	AvgResponseLength  int      `json:"avg_response_length"`
	TotalPromptChars   int      `json:"total_prompt_chars"`
	TotalResponseChars int      `json:"total_response_chars"`
	Languages          []string `json:"languages"`
}

// Compute aggregates histories against the current clock.
func Compute(histories map[string][]record.Record) Stats {
	return ComputeAt(histories, time.Now())
}

// ComputeAt aggregates histories with an explicit reference time, so tests
// control what "today" means.
//
// Users with zero records do not count toward TotalUsers. TotalMessages
// equals TotalConversations: each record carries exactly one prompt.
func ComputeAt(histories map[string][]record.Record, now time.Time) Stats {
	st := Stats{
		LanguageDistribution: make(map[string]int),
		ModeDistribution:     make(map[string]int),
	}

	cutoff := now.Add(-activeWindow)
	responseChars := 0

	for _, records := range histories {
		if len(records) == 0 {
			continue
		}
		st.TotalUsers++
		st.TotalConversations += len(records)

		active := false
		for _, r := range records {
			st.LanguageDistribution[r.Language]++
			st.ModeDistribution[r.Mode]++
			responseChars += utf8.RuneCountInString(r.Response)
			if r.Timestamp.After(cutoff) && !r.Timestamp.After(now) {
				active = true
			}
		}
		if active {
			st.ActiveToday++
		}
	}

	st.TotalMessages = st.TotalConversations
	if st.TotalConversations > 0 {
		st.AvgResponseLength = responseChars / st.TotalConversations
	}
	return st
}

// RecentActivity returns the limit most recent records across all users,
// newest first, each annotated with its owner. A non-positive limit yields
// an empty slice.
//
// Ties on timestamp break by user ID, then prompt, so output is
// deterministic across calls.
func RecentActivity(histories map[string][]record.Record, limit int) []Entry {
	if limit <= 0 {
		return []Entry{}
	}

	entries := make([]Entry, 0, limit)
	for userID, records := range histories {
		for _, r := range records {
			entries = append(entries, Entry{UserID: userID, Record: r})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Record.Timestamp, entries[j].Record.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		if entries[i].UserID != entries[j].UserID {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].Record.Prompt < entries[j].Record.Prompt
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// PerUser summarizes a single user's records.
// Languages come back sorted for stable display and JSON output.
func PerUser(records []record.Record) UserStats {
	us := UserStats{Conversations: len(records)}

	langs := make(map[string]struct{})
	for _, r := range records {
		us.TotalPromptChars += utf8.RuneCountInString(r.Prompt)
		us.TotalResponseChars += utf8.RuneCountInString(r.Response)
		langs[r.Language] = struct{}{}
	}

	if len(records) > 0 {
		us.AvgResponseLength = us.TotalResponseChars / len(records)
	}

	us.Languages = make([]string, 0, len(langs))
	for l := range langs {
		us.Languages = append(us.Languages, l)
	}
	sort.Strings(us.Languages)
	return us
}
