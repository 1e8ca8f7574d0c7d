// Package namegen builds adjective-animal names in several formatting styles.
package namegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Style is a rule for joining words into a single name.
type Style string

const (
	Space      Style = "Space"
	PascalCase Style = "PascalCase"
	CamelCase  Style = "camelCase"
	Underscore Style = "Underscore"
	Kebab      Style = "Kebab"
)

// Styles returns all styles in display order.
func Styles() []Style {
	return []Style{Space, PascalCase, CamelCase, Underscore, Kebab}
}

// String returns the display label of the style.
func (s Style) String() string {
	return string(s)
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case Space, PascalCase, CamelCase, Underscore, Kebab:
		return true
	}
	return false
}

// ParseStyle parses a style label or one of its short aliases.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "space":
		return Space, nil
	case "pascalcase", "pascal":
		return PascalCase, nil
	case "camelcase", "camel":
		return CamelCase, nil
	case "underscore", "snake":
		return Underscore, nil
	case "kebab", "dash":
		return Kebab, nil
	}
	return "", fmt.Errorf("%w: unknown style %q", ErrInvalidOptions, s)
}

// Capitalize upper-cases the first character and leaves the rest unchanged.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Format joins words according to style. Unknown styles fall back to Space.
func Format(style Style, words []string) string {
	switch style {
	case PascalCase:
		return strings.Join(mapWords(words, Capitalize), "")
	case CamelCase:
		if len(words) == 0 {
			return ""
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			b.WriteString(Capitalize(w))
		}
		return b.String()
	case Underscore:
		return strings.Join(mapWords(words, strings.ToLower), "_")
	case Kebab:
		return strings.Join(mapWords(words, strings.ToLower), "-")
	default:
		return strings.Join(mapWords(words, Capitalize), " ")
	}
}

func mapWords(words []string, fn func(string) string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = fn(w)
	}
	return out
}
