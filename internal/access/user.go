package access

// UserInfo contains information about a connected user.
type UserInfo struct {
	Name          string
	IsAdmin       bool
	PublicKeyFP   string // SSH public key fingerprint
	IsAnonymous   bool
	AnonymousName string // Generated name for anonymous users (e.g., "brave-otter-42")
	RemoteAddr    string
	Local         bool // running in the local terminal, not over SSH
}

// DisplayName returns the name to display for the user.
func (u *UserInfo) DisplayName() string {
	if u == nil {
		return "unknown"
	}
	if u.IsAnonymous {
		return u.AnonymousName
	}
	return u.Name
}
