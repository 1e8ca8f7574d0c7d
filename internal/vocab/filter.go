package vocab

import "strings"

// AnyInitial disables the initial-letter filter.
const AnyInitial = ""

// Filter selects vocabulary entries.
type Filter struct {
	// Initial is a single letter, or AnyInitial.
	Initial string
	// WithEmoji restricts animals to those with an emoji.
	WithEmoji bool
}

// MatchWord reports whether w starts with the filter's initial, ignoring case.
func (f Filter) MatchWord(w string) bool {
	return strings.HasPrefix(strings.ToLower(w), strings.ToLower(f.Initial))
}

// MatchAnimal reports whether a passes both the initial and emoji checks.
func (f Filter) MatchAnimal(a Animal) bool {
	if f.WithEmoji && !a.HasEmoji() {
		return false
	}
	return f.MatchWord(a.Name)
}
