// Package tui is the interactive terminal front end of the toolbox, used both
// locally and for SSH sessions with a PTY.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/clipboard"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/johan-st/toolbox/internal/toolbox"
)

// home is the value of App.active while the applet menu is shown.
const home = -1

// App is the main TUI application model.
type App struct {
	manager      *toolbox.Manager
	historyStore *history.Store
	user         *access.UserInfo
	session      *server.Session
	clip         clipboard.Writer

	width  int
	height int
	keys   KeyMap
	help   help.Model

	applets []toolbox.AppletInfo
	active  int // index into applets, or home
	cursor  int // menu selection

	// generator applet
	gen      *namegen.Generator
	genState *GeneratorState
	genField generatorField

	// hash applet
	hashState *HashState
	input     textarea.Model
	picker    filepicker.Model
	picking   bool
	digests   table.Model

	status string
	err    error
}

// Option configures an App.
type Option func(*App)

// WithSession attaches the SSH session the app runs in, for activity
// tracking and history.
func WithSession(s *server.Session) Option {
	return func(a *App) { a.session = s }
}

// WithClipboard sets where copied digests go.
func WithClipboard(w clipboard.Writer) Option {
	return func(a *App) { a.clip = w }
}

// NewApp creates a new TUI application.
func NewApp(manager *toolbox.Manager, historyStore *history.Store, user *access.UserInfo, width, height int, opts ...Option) *App {
	input := textarea.New()
	input.Placeholder = "Type or paste input..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(4)

	picker := filepicker.New()
	picker.FileAllowed = true
	picker.DirAllowed = false
	picker.ShowPermissions = false

	app := &App{
		manager:      manager,
		historyStore: historyStore,
		user:         user,
		width:        width,
		height:       height,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		active:       home,
		gen:          manager.NewGenerator(),
		genState:     NewGeneratorState(manager.GeneratorDefaults()),
		hashState:    NewHashState(manager.HashDefault()),
		input:        input,
		picker:       picker,
		digests:      newDigestTable(),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.refreshApplets()
	app.updateSizes()
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.session != nil {
			a.session.Touch()
		}
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		if a.picking {
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Update(a.pickerSize())
			return a, cmd
		}
		return a, nil

	case FileReadMsg:
		a.finishFileRead(msg)
		return a, nil

	case StatusMsg:
		a.status = msg.Text
		return a, nil

	case ErrorMsg:
		a.err = msg.Error
		return a, nil
	}

	// Everything else belongs to the bubbles components (cursor blink,
	// directory listings).
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if a.picking {
		a.picker, cmd = a.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.input.Focused() {
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	// Text entry and the file picker own the keyboard until esc.
	if a.active != home && a.current().Path == applet.PathHashDigest && (a.input.Focused() || a.picking) {
		return a.updateHashInput(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.updateSizes()
		return nil
	case key.Matches(msg, a.keys.NextApplet):
		return a.switchApplet(1)
	case key.Matches(msg, a.keys.PrevApplet):
		return a.switchApplet(-1)
	}

	if n, ok := digitKey(msg); ok {
		if n == 0 {
			a.goHome()
			return nil
		}
		if n <= len(a.applets) {
			return a.open(n - 1)
		}
		return nil
	}

	if a.active == home {
		return a.updateHome(msg)
	}
	if key.Matches(msg, a.keys.Back) {
		a.goHome()
		return nil
	}

	switch a.current().Path {
	case applet.PathNameGenerator:
		return a.updateGenerator(msg)
	case applet.PathHashDigest:
		return a.updateHash(msg)
	}
	return nil
}

func (a *App) updateHome(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.applets)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Select), key.Matches(msg, a.keys.Right):
		if a.cursor < len(a.applets) {
			return a.open(a.cursor)
		}
	}
	return nil
}

// refreshApplets reloads the menu, which changes when access rules are reloaded.
func (a *App) refreshApplets() {
	a.applets = a.manager.ListApplets(a.user)
	if a.cursor >= len(a.applets) {
		a.cursor = max(0, len(a.applets)-1)
	}
	if a.active >= len(a.applets) {
		a.active = home
	}
}

func (a *App) current() toolbox.AppletInfo {
	return a.applets[a.active]
}

func (a *App) goHome() {
	a.input.Blur()
	a.picking = false
	a.active = home
	a.refreshApplets()
}

// switchApplet cycles through the applets; the menu sits before the first.
func (a *App) switchApplet(delta int) tea.Cmd {
	n := len(a.applets) + 1
	next := wrap(a.active+1+delta, n) - 1
	if next == home {
		a.goHome()
		return nil
	}
	return a.open(next)
}

// open shows the applet at index i, computing its initial output.
func (a *App) open(i int) tea.Cmd {
	a.refreshApplets()
	if i < 0 || i >= len(a.applets) {
		return nil
	}
	a.active = i
	a.cursor = i
	a.err = nil
	a.status = ""

	switch a.current().Path {
	case applet.PathNameGenerator:
		if a.genState.Names() == nil {
			a.generate()
		}
	case applet.PathHashDigest:
		a.computeDigests()
	}
	return nil
}

func (a *App) updateSizes() {
	a.help.Width = a.width
	a.input.SetWidth(max(10, a.width-8))
	a.digests.SetWidth(max(20, a.width-6))
	a.digests.SetColumns(digestColumns(a.width - 6))
}

// recordRun stores an applet run for SSH sessions. Denials go to the audit log.
func (a *App) recordRun(appletPath string, params any, resultCount int, inputBytes int64, runErr error) {
	if a.historyStore == nil || a.session == nil {
		return
	}
	if errors.Is(runErr, toolbox.ErrAccessDenied) {
		a.audit(history.ActionDenied, appletPath, nil)
		return
	}
	if err := a.historyStore.RecordRun(a.session.ID, appletPath, params, resultCount, inputBytes, runErr); err != nil {
		log.Warn("failed to record activity", "err", err)
	}
}

func (a *App) audit(action, appletPath string, details map[string]any) {
	if a.historyStore == nil || a.session == nil {
		return
	}
	if err := a.historyStore.RecordAuditSimple(a.session.ID, action, appletPath, details); err != nil {
		log.Warn("failed to record audit entry", "err", err)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width < 40 || a.height < 10 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			errorStyle.Render("Terminal too small\nMin: 40x10"))
	}

	helpView := a.help.View(a.keys)
	contentHeight := a.height - 1 - lipgloss.Height(helpView)

	var title, body string
	if a.active == home {
		title = "Toolbox"
		body = a.renderHome()
	} else {
		title = a.current().Title
		switch a.current().Path {
		case applet.PathNameGenerator:
			body = a.renderGenerator()
		case applet.PathHashDigest:
			body = a.renderHash()
		}
	}

	var b strings.Builder
	b.WriteString(renderPaneWithTitle(body, a.width, contentHeight, title, true))
	b.WriteString("\n")
	b.WriteString(helpView)
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a *App) renderHome() string {
	if len(a.applets) == 0 {
		return dimItemStyle.Render("No applets available to " + a.user.DisplayName())
	}

	var b strings.Builder
	group := ""
	for i, info := range a.applets {
		if info.Group != group {
			if group != "" {
				b.WriteString("\n")
			}
			group = info.Group
			b.WriteString(groupHeaderStyle.Render(group))
			b.WriteString("\n")
		}

		line := fmt.Sprintf("%d  %s", i+1, info.Title)
		if i == a.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(normalItemStyle.Render("  " + line))
		}
		b.WriteString(" ")
		b.WriteString(levelBadge(info.AccessLevel))
		b.WriteString("\n")
		b.WriteString(dimItemStyle.Render("     " + info.Description))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderStatusBar() string {
	leftParts := []string{
		titleStyle.Render("toolbox"),
		dimItemStyle.Render(a.user.DisplayName()),
	}

	var rightParts []string
	switch {
	case a.err != nil:
		rightParts = append(rightParts, errorStyle.Render(a.err.Error()))
	case a.status != "":
		rightParts = append(rightParts, successStyle.Render(a.status))
	}
	if a.active != home {
		info := a.current()
		rightParts = append(rightParts, statusKeyStyle.Render(info.Group), levelBadge(info.AccessLevel))
	}

	leftContent := strings.Join(leftParts, " ")
	rightContent := strings.Join(rightParts, " ")

	padding := a.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent) - 2
	if padding < 1 {
		padding = 1
	}
	return statusBarStyle.Width(a.width).Render(leftContent + strings.Repeat(" ", padding) + rightContent)
}

// buildBorderTitle renders a rounded top border with title set into it:
// ╭─ Title ───────╮
func buildBorderTitle(width int, title string, focused bool) string {
	border := lipgloss.RoundedBorder()
	borderColor, style := mutedColor, borderTitleStyle
	if focused {
		borderColor, style = primaryColor, focusedBorderTitleStyle
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	rendered := style.Render(title)
	remaining := max(0, width-5-lipgloss.Width(rendered))

	return borderStyle.Render(border.TopLeft+border.Top) + " " + rendered + " " +
		borderStyle.Render(strings.Repeat(border.Top, remaining)+border.TopRight)
}

// renderPaneWithTitle boxes content to exactly width x height, clipping
// lines that do not fit.
func renderPaneWithTitle(content string, width, height int, title string, focused bool) string {
	border := lipgloss.RoundedBorder()
	borderColor := mutedColor
	if focused {
		borderColor = primaryColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	lines = lines[:innerHeight]

	var b strings.Builder
	b.WriteString(buildBorderTitle(width, title, focused))
	b.WriteString("\n")
	for _, line := range lines {
		padded := " " + line
		if w := lipgloss.Width(padded); w < innerWidth {
			padded += strings.Repeat(" ", innerWidth-w)
		} else if w > innerWidth {
			padded = lipgloss.NewStyle().MaxWidth(innerWidth).Render(padded)
		}
		b.WriteString(borderStyle.Render(border.Left))
		b.WriteString(padded)
		b.WriteString(borderStyle.Render(border.Right))
		b.WriteString("\n")
	}
	b.WriteString(borderStyle.Render(border.BottomLeft + strings.Repeat(border.Bottom, innerWidth) + border.BottomRight))
	return b.String()
}

// digitKey reports the number of a bare digit key press.
func digitKey(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
