package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/johan-st/toolbox/internal/clipboard"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/johan-st/toolbox/internal/toolbox"
)

// Handler returns a bubbletea program handler for SSH sessions. The manager
// and store from the server middleware win over the arguments.
func Handler(manager *toolbox.Manager, historyStore *history.Store) bubbletea.ProgramHandler {
	return func(s ssh.Session) *tea.Program {
		manager, historyStore := manager, historyStore
		if m := server.GetManagerFromSSH(s); m != nil {
			manager = m
		}
		if store := server.GetHistoryFromSSH(s); store != nil {
			historyStore = store
		}

		user := server.GetUserFromContext(s.Context())
		pty, _, ok := s.Pty()
		if !ok {
			// This shouldn't happen as routing middleware checks for PTY
			return nil
		}

		// Frames and OSC 52 copies share one writer so neither splits the other.
		var out io.Writer = s
		if !s.EmulatedPty() {
			out = pty.Slave
		}
		term := &lockedWriter{w: out}

		app := NewApp(manager, historyStore, user, pty.Window.Width, pty.Window.Height,
			WithSession(server.GetSessionFromSSH(s)),
			WithClipboard(clipboard.OSC52(term, pty.Term)),
		)

		opts := append(bubbletea.MakeOptions(s), tea.WithOutput(term), tea.WithAltScreen())
		return tea.NewProgram(app, opts...)
	}
}

// lockedWriter serializes whole Write calls to the client terminal.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
