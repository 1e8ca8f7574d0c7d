package namegen

import (
	"errors"
	"fmt"

	"github.com/cohesivestack/valgo"
	"github.com/johan-st/toolbox/internal/valgoutil"
	"github.com/johan-st/toolbox/internal/vocab"
)

const (
	MaxCount          = 30
	MaxAdjectives     = 3
	DefaultCount      = 10
	DefaultAdjectives = 1
	DefaultStyle      = Space

	// RowWidth is the number of names per row in a result grid.
	RowWidth = 4
)

// ErrInvalidOptions is returned for out-of-range generation parameters.
var ErrInvalidOptions = errors.New("invalid generator options")

// Options are the parameters for one batch of names.
type Options struct {
	Initial       string // single letter or vocab.AnyInitial
	NumAdjectives int
	Count         int
	WithEmoji     bool
	Style         Style
}

// DefaultOptions returns the options a fresh form starts with.
func DefaultOptions() Options {
	return Options{
		Initial:       vocab.AnyInitial,
		NumAdjectives: DefaultAdjectives,
		Count:         DefaultCount,
		WithEmoji:     false,
		Style:         DefaultStyle,
	}
}

// Validate checks the options against the selectable ranges.
func (o Options) Validate() error {
	return valgoutil.ToError(valgo.Is(
		valgo.Int(o.Count, "count").
			Between(0, MaxCount, fmt.Sprintf("must be between 0 and %d", MaxCount)),
		valgo.Int(o.NumAdjectives, "adjectives").
			Between(0, MaxAdjectives, fmt.Sprintf("must be between 0 and %d", MaxAdjectives)),
		valgo.String(string(o.Style), "style").Passing(func(s string) bool {
			return Style(s).Valid()
		}, "must be one of Space, PascalCase, camelCase, Underscore or Kebab"),
		valgo.String(o.Initial, "initial").Passing(func(s string) bool {
			return s == vocab.AnyInitial || isLetter(s)
		}, "must be a single letter A-Z"),
	), ErrInvalidOptions)
}

// Filter returns the vocabulary filter for these options.
func (o Options) Filter() vocab.Filter {
	return vocab.Filter{Initial: o.Initial, WithEmoji: o.WithEmoji}
}

func isLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
