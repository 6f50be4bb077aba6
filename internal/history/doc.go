// Package history persists per-user conversation logs as local JSON files.
//
// Each user owns one file, <dir>/chat_history_<userID>.json, holding an
// ordered JSON array of records where insertion order is chronological
// order. Append performs a full read-modify-write of the file; cost is
// O(history size) per call, which is acceptable because per-user histories
// are small and a user is active in one session at a time.
//
// Writes go through a temp file and rename so a crash mid-write cannot
// truncate an existing history. There is no cross-process lock: two
// concurrent appends for the same user are last-writer-wins on the full
// file, a known and accepted limitation of the local store.
//
// A file that exists but cannot be parsed is treated as empty history; the
// corrupt content is overwritten on the next append. Data loss in that case
// is accepted and logged.
package history
