package output

import (
	"strings"
	"unicode"
)

const (
	// DefaultFilename replaces names that sanitize to nothing.
	DefaultFilename = "converted"
	// MaxFilenameLength caps the sanitized name, in characters.
	MaxFilenameLength = 100
)

// SanitizeFilename makes a user-supplied name safe for a download header
// and a filesystem. Surrounding dots and whitespace are dropped, path
// separators, reserved punctuation and control characters become
// underscores, and the result is truncated to MaxFilenameLength
// characters. The extension is not included.
func SanitizeFilename(name string) string {
	name = strings.TrimFunc(name, isTrimmed)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/:*?"<>|`, r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)

	if runes := []rune(name); len(runes) > MaxFilenameLength {
		name = strings.TrimFunc(string(runes[:MaxFilenameLength]), isTrimmed)
	}
	if name == "" {
		return DefaultFilename
	}
	return name
}

func isTrimmed(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}
