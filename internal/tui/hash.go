package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/clipboard"
	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/toolbox"
)

const algorithmColumnWidth = 8

func newDigestTable() table.Model {
	algos := digest.Algorithms()
	rows := make([]table.Row, len(algos))
	for i, algo := range algos {
		rows[i] = table.Row{string(algo), ""}
	}
	return table.New(
		table.WithColumns(digestColumns(80)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(algos)+2),
	)
}

func digestColumns(width int) []table.Column {
	return []table.Column{
		{Title: "Algorithm", Width: algorithmColumnWidth + 2},
		{Title: "Digest", Width: max(16, width-algorithmColumnWidth-6)},
	}
}

func (a *App) updateHash(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Left):
		if a.hashState.StepInputType(-1) {
			a.computeDigests()
		}
	case key.Matches(msg, a.keys.Right):
		if a.hashState.StepInputType(1) {
			a.computeDigests()
		}
	case key.Matches(msg, a.keys.Up):
		a.digests.MoveUp(1)
	case key.Matches(msg, a.keys.Down):
		a.digests.MoveDown(1)
	case key.Matches(msg, a.keys.Copy):
		return a.copyDigest()
	case key.Matches(msg, a.keys.Edit), key.Matches(msg, a.keys.Select):
		if a.hashState.InputType() == digest.File {
			return a.openPicker()
		}
		a.err = nil
		return a.input.Focus()
	}
	return nil
}

// updateHashInput routes keys to the focused textarea or the file picker.
func (a *App) updateHashInput(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.Back) {
		a.input.Blur()
		a.picking = false
		return nil
	}

	var cmd tea.Cmd
	if a.picking {
		prev := a.picker.CurrentDirectory
		a.picker, cmd = a.picker.Update(msg)
		if clamp := a.keepPickerInRoot(prev); clamp != nil {
			return clamp
		}
		if ok, path := a.picker.DidSelectFile(msg); ok {
			a.picking = false
			return tea.Batch(cmd, a.startFileRead(path))
		}
		return cmd
	}

	a.input, cmd = a.input.Update(msg)
	if a.hashState.SetText(a.input.Value()) {
		a.computeDigests()
	}
	return cmd
}

func (a *App) openPicker() tea.Cmd {
	level := a.manager.GetAccessLevel(a.user, applet.PathHashDigest)
	if !level.CanReadFiles() {
		a.err = fmt.Errorf("%w: reading files requires %s access", toolbox.ErrAccessDenied, access.Files)
		a.audit(history.ActionDenied, applet.PathHashDigest, map[string]any{"action": history.ActionReadFile})
		return nil
	}

	a.err = nil
	a.picking = true
	a.picker.CurrentDirectory = a.manager.FileRoot()
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(a.pickerSize())
	return tea.Batch(cmd, a.picker.Init())
}

// keepPickerInRoot moves a remote user's picker back to prev when the last
// key took it outside the file root, following symlinks. It returns the
// command that relists prev, or nil when the picker may stay.
func (a *App) keepPickerInRoot(prev string) tea.Cmd {
	dir := a.picker.CurrentDirectory
	if dir == prev || (a.user != nil && a.user.Local) || a.manager.Within(dir) {
		return nil
	}
	a.picker.CurrentDirectory = prev
	return a.picker.Init()
}

func (a *App) pickerSize() tea.WindowSizeMsg {
	// Leave room for the form header, help line and status bar.
	return tea.WindowSizeMsg{Width: a.width, Height: max(8, a.height-4)}
}

// startFileRead reads path in the background. Only the most recent read is
// applied when it completes.
func (a *App) startFileRead(path string) tea.Cmd {
	seq := a.hashState.BeginFileRead(path)
	manager, user := a.manager, a.user
	return func() tea.Msg {
		encoded, size, err := manager.ReadFileBase64(user, path)
		return FileReadMsg{Seq: seq, Path: path, Encoded: encoded, Size: size, Err: err}
	}
}

func (a *App) finishFileRead(msg FileReadMsg) {
	if !a.hashState.FinishFileRead(msg.Seq, msg.Encoded, msg.Size, msg.Err) {
		return
	}
	a.audit(history.ActionReadFile, applet.PathHashDigest, map[string]any{"path": msg.Path, "bytes": msg.Size})

	if msg.Err != nil {
		a.err = msg.Err
		a.updateDigestTable()
		a.recordRun(applet.PathHashDigest, hashParams(digest.File), 0, 0, msg.Err)
		return
	}
	if a.hashState.InputType() == digest.File {
		a.computeDigests()
		a.recordRun(applet.PathHashDigest, hashParams(digest.File),
			len(a.hashState.Results()), a.hashState.Size(), a.hashState.Err())
	}
}

// computeDigests runs every algorithm over the current input.
func (a *App) computeDigests() {
	results, n, err := a.manager.Hash(a.user, a.hashState.Input(), a.hashState.InputType())
	a.hashState.SetResults(results, n, err)
	a.err = err
	a.updateDigestTable()
}

func (a *App) updateDigestTable() {
	results := a.hashState.Results()
	rows := make([]table.Row, 0, len(digest.Algorithms()))
	for _, algo := range digest.Algorithms() {
		hex, _ := digest.Lookup(results, algo)
		rows = append(rows, table.Row{string(algo), hex})
	}
	a.digests.SetRows(rows)
}

// copyDigest copies the digest under the cursor. The clipboard write runs as
// a command so an OSC 52 sequence goes out between frames, not inside Update.
func (a *App) copyDigest() tea.Cmd {
	algos := digest.Algorithms()
	i := a.digests.Cursor()
	if i < 0 || i >= len(algos) {
		return nil
	}
	algo := algos[i]
	hex, ok := digest.Lookup(a.hashState.Results(), algo)
	if !ok || hex == "" {
		a.status = "nothing to copy"
		return nil
	}
	a.audit(history.ActionCopy, applet.PathHashDigest, map[string]any{"algorithm": string(algo)})

	clip := a.clip
	return func() tea.Msg {
		if err := clipboard.Copy(clip, hex); err != nil {
			return ErrorMsg{Error: fmt.Errorf("copy %s: %w", algo, err)}
		}
		return StatusMsg{Text: "copied " + string(algo)}
	}
}

func hashParams(t digest.InputType) map[string]string {
	return map[string]string{"type": string(t)}
}

func (a *App) renderHash() string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("Input type"))
	for _, t := range digest.InputTypes() {
		if t == a.hashState.InputType() {
			b.WriteString(selectedItemStyle.Render("[" + t.String() + "]"))
		} else {
			b.WriteString(dimItemStyle.Render(" " + t.String() + " "))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	if a.picking {
		b.WriteString(dimItemStyle.Render(a.picker.CurrentDirectory))
		b.WriteString("\n")
		b.WriteString(a.picker.View())
		return b.String()
	}

	if a.hashState.InputType() == digest.File {
		b.WriteString(a.renderFileInput())
	} else {
		b.WriteString(a.input.View())
	}
	b.WriteString("\n")

	if a.hashState.Err() != nil {
		b.WriteString(errorStyle.Render(a.hashState.Err().Error()))
	} else {
		b.WriteString(dimItemStyle.Render(fmt.Sprintf("%s hashed", humanize.Bytes(uint64(a.hashState.Size())))))
	}
	b.WriteString("\n\n")
	b.WriteString(a.digests.View())
	return b.String()
}

func (a *App) renderFileInput() string {
	s := a.hashState
	switch {
	case s.FileLoading():
		return dimItemStyle.Render("Reading " + s.FilePath() + "...")
	case s.FilePath() == "":
		return dimItemStyle.Render("No file selected. Press enter to pick one.")
	default:
		return fieldLabelStyle.Render("File") + fieldValueStyle.Render(s.FilePath()) +
			dimItemStyle.Render(" ("+humanize.Bytes(uint64(s.FileSize()))+")")
	}
}
