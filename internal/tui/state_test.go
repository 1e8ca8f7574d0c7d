package tui

import (
	"errors"
	"testing"

	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorState_Setters(t *testing.T) {
	s := NewGeneratorState(namegen.DefaultOptions())

	assert.True(t, s.SetInitial("B"))
	assert.Equal(t, "B", s.Options().Initial)
	assert.False(t, s.SetInitial("B"), "same value is not a change")

	assert.True(t, s.SetInitial("7"))
	assert.Equal(t, vocab.AnyInitial, s.Options().Initial, "non-letters mean any")

	s.SetAdjectives(99)
	assert.Equal(t, namegen.MaxAdjectives, s.Options().NumAdjectives)
	s.SetAdjectives(-2)
	assert.Equal(t, 0, s.Options().NumAdjectives)

	s.SetCount(31)
	assert.Equal(t, namegen.MaxCount, s.Options().Count)
	s.SetCount(-1)
	assert.Equal(t, 0, s.Options().Count)

	assert.False(t, s.SetStyle("Shouting"))
	assert.True(t, s.SetStyle(namegen.Kebab))
	assert.Equal(t, namegen.Kebab, s.Options().Style)

	assert.True(t, s.SetEmoji(true))
	assert.True(t, s.Options().WithEmoji)

	require.NoError(t, s.Options().Validate())
}

func TestGeneratorState_StepWraps(t *testing.T) {
	s := NewGeneratorState(namegen.DefaultOptions())

	s.StepInitial(-1)
	assert.Equal(t, "Z", s.Options().Initial)
	s.StepInitial(1)
	assert.Equal(t, vocab.AnyInitial, s.Options().Initial)
	s.StepInitial(1)
	assert.Equal(t, "A", s.Options().Initial)

	s.SetStyle(namegen.Kebab)
	s.StepStyle(1)
	assert.Equal(t, namegen.Space, s.Options().Style)
	s.StepStyle(-1)
	assert.Equal(t, namegen.Kebab, s.Options().Style)
}

func TestHashState_InputFollowsType(t *testing.T) {
	s := NewHashState(digest.Text)
	s.SetText("abc")
	assert.Equal(t, "abc", s.Input())

	assert.True(t, s.SetInputType(digest.HexBinary))
	assert.Equal(t, "abc", s.Input(), "text is reinterpreted, not cleared")
	assert.False(t, s.SetInputType(digest.HexBinary))
	assert.False(t, s.SetInputType("Morse"))

	s.SetInputType(digest.File)
	assert.Empty(t, s.Input(), "no file read yet")

	s.StepInputType(1)
	assert.Equal(t, digest.Text, s.InputType())
}

func TestHashState_StaleFileReadDropped(t *testing.T) {
	s := NewHashState(digest.File)

	first := s.BeginFileRead("a.bin")
	second := s.BeginFileRead("b.bin")
	assert.True(t, s.FileLoading())

	assert.True(t, s.FinishFileRead(second, "Ymk=", 2, nil))
	assert.False(t, s.FinishFileRead(first, "YWFh", 3, nil))

	assert.Equal(t, "b.bin", s.FilePath())
	assert.Equal(t, "Ymk=", s.Input())
	assert.Equal(t, int64(2), s.FileSize())
	assert.False(t, s.FileLoading())
}

func TestHashState_FileReadError(t *testing.T) {
	s := NewHashState(digest.File)
	seq := s.BeginFileRead("missing.bin")
	boom := errors.New("boom")

	assert.True(t, s.FinishFileRead(seq, "", 0, boom))
	assert.ErrorIs(t, s.Err(), boom)
	assert.Empty(t, s.Input())
	assert.Nil(t, s.Results())
}
