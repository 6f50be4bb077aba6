// Package record defines the conversation record shared by the local history
// store, the remote mirror, and the aggregator.
//
// A record is one completed prompt/response exchange. Records are immutable
// after creation: stores append them and read them back, nothing edits them
// in place.
//
// Validation happens once, at the JSON parse boundary. A record missing a
// required field fails to decode with ErrMissingField; readers that tolerate
// bad data (the aggregator, the local store) use DecodeList and skip the
// offending elements instead of aborting.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Conversation modes. These match the tags the dashboard groups by.
const (
	ModeChat     = "chat"
	ModeQA       = "qa"
	ModeAnalysis = "analysis"
)

// Defaults applied when the caller (or a stored document) omits the field.
const (
	DefaultMode     = ModeChat
	DefaultLanguage = "en"
)

// Sentinel errors for parse-boundary validation. Check with errors.Is.
var (
	// ErrMissingField indicates a required field is absent or empty.
	ErrMissingField = errors.New("record missing required field")

	// ErrInvalidTimestamp indicates the timestamp string could not be parsed.
	ErrInvalidTimestamp = errors.New("invalid record timestamp")
)

// Record is one prompt/response exchange.
//
// Timestamp is set once at append time and doubles as the mirror's
// per-user uniqueness key, so two records created within the store's
// timestamp resolution overwrite each other remotely. That collision
// policy is documented behavior, not a bug to fix here.
type Record struct {
	Timestamp time.Time
	Prompt    string
	Response  string
	Mode      string
	Language  string
}

// New creates a record stamped with the current UTC time.
// Empty mode or language fall back to DefaultMode / DefaultLanguage.
func New(prompt, response, mode, language string) Record {
	if mode == "" {
		mode = DefaultMode
	}
	if language == "" {
		language = DefaultLanguage
	}
	return Record{
		Timestamp: time.Now().UTC(),
		Prompt:    prompt,
		Response:  response,
		Mode:      mode,
		Language:  language,
	}
}

// wireRecord is the JSON document shape: an object with ISO-8601 timestamp
// and flat string fields, matching the on-disk history files.
type wireRecord struct {
	Timestamp string `json:"timestamp"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	Mode      string `json:"mode,omitempty"`
	Language  string `json:"language,omitempty"`
}

// MarshalJSON serializes the record with an RFC 3339 timestamp.
func (r Record) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(wireRecord{
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
		Prompt:    r.Prompt,
		Response:  r.Response,
		Mode:      r.Mode,
		Language:  r.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes and validates a record.
//
// Required fields: timestamp, prompt, response. Missing values fail with
// ErrMissingField; an unparseable timestamp fails with ErrInvalidTimestamp.
// Mode and language default when absent (histories written by earlier
// versions of the system omitted them).
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	if w.Timestamp == "" {
		return fmt.Errorf("%w: timestamp", ErrMissingField)
	}
	if w.Prompt == "" {
		return fmt.Errorf("%w: prompt", ErrMissingField)
	}
	if w.Response == "" {
		return fmt.Errorf("%w: response", ErrMissingField)
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, w.Timestamp)
	}

	r.Timestamp = ts
	r.Prompt = w.Prompt
	r.Response = w.Response
	r.Mode = w.Mode
	r.Language = w.Language
	if r.Mode == "" {
		r.Mode = DefaultMode
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return nil
}

// timestampLayouts lists accepted formats, most specific first. The zoneless
// layouts cover histories written by the original system, which stamped
// records with naive local ISO-8601 strings; those parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DecodeList decodes a JSON array of records, skipping malformed elements.
//
// Returns the valid records in document order and the number skipped.
// Only a document that is not a JSON array at all produces an error.
func DecodeList(data []byte) ([]Record, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode record list: %w", err)
	}

	records := make([]Record, 0, len(raw))
	skipped := 0
	for _, elem := range raw {
		var r Record
		if err := json.Unmarshal(elem, &r); err != nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

// EncodeList serializes records as an indented JSON array, the on-disk and
// export document shape. An empty or nil slice encodes as "[]".
func EncodeList(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record list: %w", err)
	}
	return data, nil
}
