package history

import "errors"

// ErrInvalidUserID is returned when a user ID cannot be used as a file name
// component. Check with errors.Is.
var ErrInvalidUserID = errors.New("invalid user ID")

// maxUserIDLength bounds the ID so the resulting file name stays within
// common filesystem limits.
const maxUserIDLength = 200

// ValidateUserID checks that id is safe to embed in a history file name.
//
// Rules:
//   - Must not be empty
//   - Must not exceed maxUserIDLength bytes
//   - Must not contain path separators or null bytes
//   - Must not be "." or ".." (path traversal)
func ValidateUserID(id string) error {
	if id == "" {
		return ErrInvalidUserID
	}
	if len(id) > maxUserIDLength {
		return ErrInvalidUserID
	}
	for _, c := range id {
		if c == '/' || c == '\\' || c == '\x00' {
			return ErrInvalidUserID
		}
	}
	if id == "." || id == ".." {
		return ErrInvalidUserID
	}
	return nil
}
