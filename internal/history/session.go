package history

import (
	"time"

	"github.com/johan-st/toolbox/internal/access"
)

// Session modes.
const (
	ModeTUI = "tui"
	ModeCLI = "cli"
)

// Session represents a user session.
type Session struct {
	ID                   string
	UserName             string // Authenticated username or empty
	PublicKeyFingerprint string // SSH key fingerprint or empty
	AnonymousName        string // Generated name for anonymous users
	RemoteAddr           string
	Mode                 string
	CreatedAt            time.Time
	LastActiveAt         time.Time
	IsActive             bool
}

// Activity is one applet run. Hash inputs are never stored, only their size.
type Activity struct {
	ID          int64
	SessionID   string
	AppletPath  string
	Params      string // JSON
	ResultCount int
	InputBytes  int64
	Error       string
	CreatedAt   time.Time
}

// AuditRecord represents an audit log entry.
type AuditRecord struct {
	ID         int64
	SessionID  string
	Action     string
	AppletPath string
	Details    string // JSON with specifics
	CreatedAt  time.Time
}

// NewSession creates a new session from user info.
func NewSession(id string, user *access.UserInfo, remoteAddr, mode string) *Session {
	now := now()
	s := &Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		Mode:         mode,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}

	if user != nil {
		if user.IsAnonymous {
			s.AnonymousName = user.AnonymousName
		} else {
			s.UserName = user.Name
			s.PublicKeyFingerprint = user.PublicKeyFP
		}
	}

	return s
}

// DisplayName returns the display name for the session.
func (s *Session) DisplayName() string {
	if s.UserName != "" {
		return s.UserName
	}
	if s.AnonymousName != "" {
		return s.AnonymousName
	}
	return "unknown"
}

// IsAuthenticated returns true if the session has an authenticated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserName != ""
}

// Duration is the time between session start and last activity.
func (s *Session) Duration() time.Duration {
	return s.LastActiveAt.Sub(s.CreatedAt)
}

// Touch updates the last active time.
func (s *Session) Touch() {
	s.LastActiveAt = now()
}

// Audit actions
const (
	ActionCopy         = "copy"
	ActionReadFile     = "read_file"
	ActionDenied       = "denied"
	ActionReloadConfig = "reload_config"
)

// now strips the monotonic reading so times round-trip through sqlite.
func now() time.Time {
	return time.Now().UTC()
}
