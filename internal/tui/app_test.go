package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/clipboard"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/testutil"
	"github.com/johan-st/toolbox/internal/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sha256Empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	sha256ABC   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	sha256Bytes = "40aff2e9d2d8922e47afd4648e6967497158785fbd1da870e7110266bf944880"
)

var (
	localUser    = &access.UserInfo{Name: "local", Local: true}
	errClipboard = errors.New("clipboard is gone")
)

func newLocalApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Hash.FileRoot = t.TempDir()
	m, err := toolbox.NewLocal(cfg)
	require.NoError(t, err)
	return NewApp(m, nil, localUser, 100, 40, opts...)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

func digestRow(a *App, algo digest.Algorithm) string {
	for _, row := range a.digests.Rows() {
		if row[0] == string(algo) {
			return row[1]
		}
	}
	return ""
}

func TestApp_HomeListsApplets(t *testing.T) {
	a := newLocalApp(t)

	require.Len(t, a.applets, 2)
	assert.Equal(t, home, a.active)

	view := a.View()
	assert.Contains(t, view, "Generators")
	assert.Contains(t, view, "Adjective Animal Generator")
	assert.Contains(t, view, "Hash Digest Generator")
	assert.Contains(t, view, "ADMIN")
}

func TestApp_Navigation(t *testing.T) {
	a := newLocalApp(t)

	press(a, "2")
	assert.Equal(t, applet.PathHashDigest, a.current().Path)

	press(a, "tab")
	assert.Equal(t, home, a.active, "tab wraps back to the menu")

	press(a, "tab")
	assert.Equal(t, applet.PathNameGenerator, a.current().Path)

	press(a, "shift+tab")
	assert.Equal(t, home, a.active)

	press(a, "down", "enter")
	assert.Equal(t, applet.PathHashDigest, a.current().Path)

	press(a, "esc")
	assert.Equal(t, home, a.active)
}

func TestApp_Quit(t *testing.T) {
	a := newLocalApp(t)
	cmd := press(a, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_GeneratorRegeneratesOnChange(t *testing.T) {
	a := newLocalApp(t)

	press(a, "1")
	assert.Len(t, a.genState.Names(), namegen.DefaultCount)

	// Count is the third field.
	press(a, "down", "down", "right")
	assert.Equal(t, namegen.DefaultCount+1, a.genState.Options().Count)
	assert.Len(t, a.genState.Names(), namegen.DefaultCount+1)

	for range namegen.MaxCount {
		press(a, "right")
	}
	assert.Len(t, a.genState.Names(), namegen.MaxCount)
	assert.Len(t, namegen.Grid(a.genState.Names()), 8)

	for range namegen.MaxCount + 1 {
		press(a, "left")
	}
	assert.Empty(t, a.genState.Names())
	assert.Contains(t, a.View(), "No names")
}

func TestApp_GeneratorLetterFilter(t *testing.T) {
	a := newLocalApp(t)
	press(a, "1")

	// Letter is the first field; one step right from Any is A.
	press(a, "right")
	require.Equal(t, "A", a.genState.Options().Initial)

	// Style is the fourth field; Kebab is one step left of Space.
	press(a, "down", "down", "down", "left")
	require.Equal(t, namegen.Kebab, a.genState.Options().Style)

	names := a.genState.Names()
	require.Len(t, names, namegen.DefaultCount)
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "a"), "%q should start with a", name)
	}
}

func TestApp_HashTextInput(t *testing.T) {
	a := newLocalApp(t)
	press(a, "2")

	assert.Equal(t, sha256Empty, digestRow(a, digest.SHA256), "empty input hashes the empty string")

	press(a, "enter")
	require.True(t, a.input.Focused())

	press(a, "abc")
	assert.Equal(t, "abc", a.hashState.Text())
	assert.Equal(t, sha256ABC, digestRow(a, digest.SHA256))

	// Keys go to the textarea while it has focus.
	press(a, "q")
	assert.Equal(t, "abcq", a.hashState.Text())

	press(a, "esc")
	assert.False(t, a.input.Focused())
	assert.Equal(t, applet.PathHashDigest, a.current().Path)
}

func TestApp_HashEncodingChangesDigests(t *testing.T) {
	a := newLocalApp(t)
	press(a, "2", "enter", "abcd", "esc")
	textDigest := digestRow(a, digest.SHA256)

	press(a, "right")
	require.Equal(t, digest.Base64Binary, a.hashState.InputType())
	assert.NotEqual(t, textDigest, digestRow(a, digest.SHA256))
	assert.Equal(t, int64(3), a.hashState.Size())

	press(a, "right")
	require.Equal(t, digest.HexBinary, a.hashState.InputType())
	assert.Equal(t, int64(2), a.hashState.Size())
}

func TestApp_HashMalformedInput(t *testing.T) {
	a := newLocalApp(t)
	press(a, "2", "right", "right")
	require.Equal(t, digest.HexBinary, a.hashState.InputType())

	press(a, "enter", "zz")
	assert.ErrorIs(t, a.hashState.Err(), digest.ErrMalformedInput)
	assert.Empty(t, digestRow(a, digest.SHA256))
	assert.Contains(t, a.View(), "malformed input")
}

func TestApp_CopyDigest(t *testing.T) {
	var copied []string
	clip := clipboard.WriterFunc(func(text string) error {
		copied = append(copied, text)
		return nil
	})
	a := newLocalApp(t, WithClipboard(clip))
	press(a, "2", "enter", "abc", "esc")

	cmd := press(a, "down", "down", "c")
	require.NotNil(t, cmd)
	assert.Empty(t, copied, "nothing is written until the command runs")

	msg := cmd()
	assert.Equal(t, StatusMsg{Text: "copied SHA256"}, msg)
	a.Update(msg)

	require.Len(t, copied, 1)
	assert.Equal(t, sha256ABC, copied[0])
	assert.Equal(t, "copied SHA256", a.status)
}

func TestApp_CopyDigestFailure(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"write fails", []Option{WithClipboard(clipboard.WriterFunc(func(string) error { return errClipboard }))}, errClipboard},
		{"no clipboard", nil, clipboard.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newLocalApp(t, tt.opts...)
			press(a, "2")

			cmd := press(a, "c")
			require.NotNil(t, cmd)
			msg := cmd()
			require.IsType(t, ErrorMsg{}, msg)
			a.Update(msg)

			assert.ErrorIs(t, a.err, tt.wantErr)
			assert.Empty(t, a.status)
		})
	}
}

func TestApp_FileInput(t *testing.T) {
	a := newLocalApp(t)
	path := testutil.Fixture(t, "bytes.bin")

	press(a, "2", "left")
	require.Equal(t, digest.File, a.hashState.InputType())

	cmd := a.startFileRead(path)
	assert.True(t, a.hashState.FileLoading())
	a.Update(cmd())

	assert.False(t, a.hashState.FileLoading())
	assert.Equal(t, int64(256), a.hashState.FileSize())
	assert.Equal(t, sha256Bytes, digestRow(a, digest.SHA256))
	assert.Contains(t, a.View(), "256 B")
}

func TestApp_FileInputStaleReadDropped(t *testing.T) {
	a := newLocalApp(t)
	first := testutil.TempFile(t, "first.txt", []byte("abc"))
	second := testutil.TempFile(t, "second.txt", nil)

	press(a, "2", "left")
	firstCmd := a.startFileRead(first)
	secondCmd := a.startFileRead(second)

	a.Update(secondCmd())
	a.Update(firstCmd())

	assert.Equal(t, second, a.hashState.FilePath())
	assert.Equal(t, sha256Empty, digestRow(a, digest.SHA256))
}

func TestApp_FilePickerRequiresFilesLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Hash.FileRoot = t.TempDir()
	cfg.AnonymousAccess = "use"
	m, err := toolbox.NewManager(cfg)
	require.NoError(t, err)

	anon := &access.UserInfo{IsAnonymous: true, AnonymousName: "odd-yak-07"}
	a := NewApp(m, nil, anon, 100, 40)
	press(a, "2", "left", "enter")

	assert.False(t, a.picking)
	assert.ErrorIs(t, a.err, toolbox.ErrAccessDenied)
	assert.True(t, strings.Contains(a.View(), "USE"))
}

func TestApp_FilePickerStaysInRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "elsewhere")))

	cfg := config.DefaultConfig()
	cfg.Hash.FileRoot = root
	cfg.Users = []config.User{
		{Name: "filer", Access: []config.AccessRule{{Pattern: "**", Level: "files"}}},
	}
	m, err := toolbox.NewManager(cfg)
	require.NoError(t, err)

	a := NewApp(m, nil, &access.UserInfo{Name: "filer"}, 100, 40)
	press(a, "2", "left", "enter")
	require.True(t, a.picking)
	require.Equal(t, m.FileRoot(), a.picker.CurrentDirectory)

	tests := []struct {
		name string
		keys []string
	}{
		{"backspace at root", []string{"backspace"}},
		{"h at root", []string{"h"}},
		{"repeated back", []string{"h", "h", "backspace"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			press(a, tt.keys...)
			assert.True(t, a.picking)
			assert.Equal(t, m.FileRoot(), a.picker.CurrentDirectory)
		})
	}

	t.Run("symlinked directory", func(t *testing.T) {
		a.picker.CurrentDirectory = filepath.Join(m.FileRoot(), "elsewhere")
		assert.NotNil(t, a.keepPickerInRoot(m.FileRoot()))
		assert.Equal(t, m.FileRoot(), a.picker.CurrentDirectory)
	})

	t.Run("local user is not confined", func(t *testing.T) {
		local := NewApp(m, nil, localUser, 100, 40)
		local.picker.CurrentDirectory = filepath.Dir(m.FileRoot())
		assert.Nil(t, local.keepPickerInRoot(m.FileRoot()))
		assert.Equal(t, filepath.Dir(m.FileRoot()), local.picker.CurrentDirectory)
	})
}

func TestApp_NoAccessShowsEmptyMenu(t *testing.T) {
	cfg := config.DefaultConfig()
	m, err := toolbox.NewManager(cfg)
	require.NoError(t, err)

	a := NewApp(m, nil, &access.UserInfo{IsAnonymous: true, AnonymousName: "quiet-owl-11"}, 100, 40)
	assert.Empty(t, a.applets)
	assert.Contains(t, a.View(), "No applets available")

	press(a, "1", "tab")
	assert.Equal(t, home, a.active)
}

func TestApp_TooSmall(t *testing.T) {
	a := newLocalApp(t)
	a.Update(tea.WindowSizeMsg{Width: 30, Height: 8})
	assert.Contains(t, a.View(), "Terminal too small")
}
