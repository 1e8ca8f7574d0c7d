// Package access provides access levels and their resolution for applets.
package access

import "strings"

// Level is what a user may do with an applet.
type Level int

const (
	// None hides the applet.
	None Level = iota
	// Use allows running the applet on input the user supplies.
	Use
	// Files additionally allows reading files from the host's filesystem.
	Files
	// Admin allows everything, including the session and audit commands.
	Admin
)

// String returns the string representation of the access level.
func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Use:
		return "use"
	case Files:
		return "files"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

var levelNames = map[string]Level{
	"none":       None,
	"no-access":  None,
	"use":        Use,
	"read-only":  Use,
	"readonly":   Use,
	"ro":         Use,
	"files":      Files,
	"file":       Files,
	"read-write": Files,
	"readwrite":  Files,
	"rw":         Files,
	"admin":      Admin,
}

// ParseLevel parses a string into an access Level. Unknown values are None.
func ParseLevel(s string) Level {
	l, _ := LookupLevel(s)
	return l
}

// LookupLevel is ParseLevel that also reports whether s names a level.
func LookupLevel(s string) (Level, bool) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// CanUse returns true if the level allows running the applet.
func (l Level) CanUse() bool {
	return l >= Use
}

// CanReadFiles returns true if the level allows browsing host files.
func (l Level) CanReadFiles() bool {
	return l >= Files
}

// CanAdmin returns true if the level allows admin operations.
func (l Level) CanAdmin() bool {
	return l >= Admin
}
