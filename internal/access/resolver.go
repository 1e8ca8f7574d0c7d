package access

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule grants a level for applet paths matching Pattern.
type Rule struct {
	Pattern string
	Level   Level
}

// Resolver resolves access levels for users and applets.
type Resolver struct {
	// Default access level for anonymous users
	AnonymousAccess Level

	// Public applet rules (apply to everyone without a user rule)
	PublicRules []Rule

	// User-specific rules (keyed by username)
	UserRules map[string][]Rule

	// Admin usernames (have full access to everything)
	Admins map[string]bool
}

// NewResolver creates a new access resolver.
func NewResolver() *Resolver {
	return &Resolver{
		AnonymousAccess: None,
		PublicRules:     make([]Rule, 0),
		UserRules:       make(map[string][]Rule),
		Admins:          make(map[string]bool),
	}
}

// LocalResolver grants every local user full access.
func LocalResolver() *Resolver {
	r := NewResolver()
	r.SetAnonymousAccess(Admin)
	return r
}

// SetAnonymousAccess sets the default access level for anonymous users.
func (r *Resolver) SetAnonymousAccess(level Level) {
	r.AnonymousAccess = level
}

// AddAdmin marks a user as admin.
func (r *Resolver) AddAdmin(username string) {
	r.Admins[username] = true
}

// AddPublicRule adds a public applet rule.
func (r *Resolver) AddPublicRule(pattern string, level Level) {
	r.PublicRules = append(r.PublicRules, Rule{Pattern: pattern, Level: level})
}

// AddUserRule adds an access rule for a specific user.
func (r *Resolver) AddUserRule(username, pattern string, level Level) {
	r.UserRules[username] = append(r.UserRules[username], Rule{Pattern: pattern, Level: level})
}

// Resolve determines the access level for a user to an applet path.
// The first matching rule wins, and an explicit None rule denies access.
func (r *Resolver) Resolve(user *UserInfo, appletPath string) Level {
	// 1. Local and admin users have full access
	if user != nil && (user.Local || user.IsAdmin) {
		return Admin
	}
	if user != nil && !user.IsAnonymous && r.Admins[user.Name] {
		return Admin
	}

	// 2. Check user-specific rules
	if user != nil && !user.IsAnonymous {
		if level, ok := matchRules(r.UserRules[user.Name], appletPath); ok {
			return level
		}
	}

	// 3. Check public rules
	if level, ok := matchRules(r.PublicRules, appletPath); ok {
		return level
	}

	// 4. Fall back to anonymous access level
	if user == nil || user.IsAnonymous {
		return r.AnonymousAccess
	}
	return None
}

// IsAdmin reports whether the user has admin rights regardless of applet.
func (r *Resolver) IsAdmin(user *UserInfo) bool {
	if user == nil {
		return false
	}
	return user.Local || user.IsAdmin || (!user.IsAnonymous && r.Admins[user.Name])
}

// matchRules finds the first matching rule and returns its level.
func matchRules(rules []Rule, appletPath string) (Level, bool) {
	for _, rule := range rules {
		if matchPattern(rule.Pattern, appletPath) {
			return rule.Level, true
		}
	}
	return None, false
}

// matchPattern checks if a pattern matches an applet path.
func matchPattern(pattern, appletPath string) bool {
	pattern = strings.TrimSpace(pattern)
	appletPath = strings.TrimSpace(appletPath)
	if pattern == "" || appletPath == "" {
		return false
	}
	if pattern == appletPath {
		return true
	}
	matched, _ := doublestar.Match(pattern, appletPath)
	return matched
}

// Holder guards a Resolver that may be swapped on config reload.
type Holder struct {
	mu       sync.RWMutex
	resolver *Resolver
}

// NewHolder wraps r.
func NewHolder(r *Resolver) *Holder {
	return &Holder{resolver: r}
}

// Get returns the current resolver.
func (h *Holder) Get() *Resolver {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.resolver
}

// Set replaces the current resolver.
func (h *Holder) Set(r *Resolver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolver = r
}

// Resolve resolves against the current resolver.
func (h *Holder) Resolve(user *UserInfo, appletPath string) Level {
	return h.Get().Resolve(user, appletPath)
}
