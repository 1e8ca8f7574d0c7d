package tui

import (
	"slices"

	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/vocab"
)

// initialChoices are the values of the letter selector: "any" first, then A-Z.
var initialChoices = append([]string{vocab.AnyInitial}, vocab.Letters()...)

// GeneratorState holds the generator form. It changes only through its
// setters; each setter reports whether the options changed.
type GeneratorState struct {
	opts  namegen.Options
	names []string
	err   error
}

// NewGeneratorState creates a form state starting from opts.
func NewGeneratorState(opts namegen.Options) *GeneratorState {
	return &GeneratorState{opts: opts}
}

func (s *GeneratorState) Options() namegen.Options { return s.opts }
func (s *GeneratorState) Names() []string { return s.names }
func (s *GeneratorState) Err() error { return s.err }

// SetInitial sets the letter filter. Anything but a letter A-Z means any.
func (s *GeneratorState) SetInitial(letter string) bool {
	if !slices.Contains(initialChoices, letter) {
		letter = vocab.AnyInitial
	}
	return s.set(func(o *namegen.Options) { o.Initial = letter })
}

// StepInitial moves the letter selector by delta, wrapping around.
func (s *GeneratorState) StepInitial(delta int) bool {
	i := slices.Index(initialChoices, s.opts.Initial)
	return s.SetInitial(initialChoices[wrap(i+delta, len(initialChoices))])
}

// SetAdjectives sets the number of adjectives, clamped to 0..MaxAdjectives.
func (s *GeneratorState) SetAdjectives(n int) bool {
	n = clamp(n, 0, namegen.MaxAdjectives)
	return s.set(func(o *namegen.Options) { o.NumAdjectives = n })
}

// SetCount sets how many names to generate, clamped to 0..MaxCount.
func (s *GeneratorState) SetCount(n int) bool {
	n = clamp(n, 0, namegen.MaxCount)
	return s.set(func(o *namegen.Options) { o.Count = n })
}

// SetStyle sets the formatting style. Unknown styles are ignored.
func (s *GeneratorState) SetStyle(style namegen.Style) bool {
	if !style.Valid() {
		return false
	}
	return s.set(func(o *namegen.Options) { o.Style = style })
}

// StepStyle moves the style selector by delta, wrapping around.
func (s *GeneratorState) StepStyle(delta int) bool {
	styles := namegen.Styles()
	i := slices.Index(styles, s.opts.Style)
	return s.SetStyle(styles[wrap(i+delta, len(styles))])
}

// SetEmoji sets whether only animals with an emoji are drawn.
func (s *GeneratorState) SetEmoji(on bool) bool {
	return s.set(func(o *namegen.Options) { o.WithEmoji = on })
}

// SetResult stores the outcome of a generation run.
func (s *GeneratorState) SetResult(names []string, err error) {
	s.names, s.err = names, err
}

func (s *GeneratorState) set(fn func(*namegen.Options)) bool {
	before := s.opts
	fn(&s.opts)
	return before != s.opts
}

// HashState holds the hash form. Text, Base64 and hex share one raw input so
// switching the type reinterprets the same text; File keeps its own payload.
type HashState struct {
	inputType digest.InputType
	text      string

	filePath    string
	filePayload string
	fileSize    int64
	fileSeq     uint64
	fileLoading bool

	results []digest.Result
	size    int64
	err     error
}

// NewHashState creates a form state with the given input type selected.
func NewHashState(t digest.InputType) *HashState {
	return &HashState{inputType: t}
}

func (s *HashState) InputType() digest.InputType { return s.inputType }
func (s *HashState) Text() string { return s.text }
func (s *HashState) FilePath() string { return s.filePath }
func (s *HashState) FileSize() int64 { return s.fileSize }
func (s *HashState) FileLoading() bool { return s.fileLoading }
func (s *HashState) Results() []digest.Result { return s.results }
func (s *HashState) Size() int64 { return s.size }
func (s *HashState) Err() error { return s.err }

// Input returns the string fed to the decoder for the current type.
func (s *HashState) Input() string {
	if s.inputType == digest.File {
		return s.filePayload
	}
	return s.text
}

// SetInputType selects how the input is decoded.
func (s *HashState) SetInputType(t digest.InputType) bool {
	if !slices.Contains(digest.InputTypes(), t) || t == s.inputType {
		return false
	}
	s.inputType = t
	return true
}

// StepInputType moves the type selector by delta, wrapping around.
func (s *HashState) StepInputType(delta int) bool {
	types := digest.InputTypes()
	i := slices.Index(types, s.inputType)
	return s.SetInputType(types[wrap(i+delta, len(types))])
}

// SetText replaces the raw text input.
func (s *HashState) SetText(text string) bool {
	if text == s.text {
		return false
	}
	s.text = text
	return true
}

// BeginFileRead records that path is being read and returns the sequence
// number its completion must carry.
func (s *HashState) BeginFileRead(path string) uint64 {
	s.fileSeq++
	s.filePath = path
	s.fileLoading = true
	return s.fileSeq
}

// FinishFileRead applies a completed read. It returns false, leaving the
// state untouched, when a newer read has started since.
func (s *HashState) FinishFileRead(seq uint64, encoded string, size int64, err error) bool {
	if seq != s.fileSeq {
		return false
	}
	s.fileLoading = false
	if err != nil {
		s.filePayload, s.fileSize = "", 0
		s.results, s.size, s.err = nil, 0, err
		return true
	}
	s.filePayload, s.fileSize = encoded, size
	return true
}

// SetResults stores the outcome of a digest run.
func (s *HashState) SetResults(results []digest.Result, size int64, err error) {
	s.results, s.size, s.err = results, size, err
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
