// Package server runs the toolbox as an SSH application.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/toolbox"
	"github.com/muesli/termenv"
)

// Server is the SSH server for the toolbox.
type Server struct {
	config        *config.Config
	manager       *toolbox.Manager
	historyStore  *history.Store
	sessionMgr    *SessionManager
	authenticator *Authenticator
	sshServer     *ssh.Server
	tuiHandler    bubbletea.ProgramHandler
	cliHandler    func(ssh.Session)
}

// NewServer creates a new SSH server.
func NewServer(cfg *config.Config, manager *toolbox.Manager, historyStore *history.Store) *Server {
	return &Server{
		config:        cfg,
		manager:       manager,
		historyStore:  historyStore,
		sessionMgr:    NewSessionManager(historyStore),
		authenticator: NewAuthenticator(cfg, historyStore),
	}
}

// SetTUIHandler sets the Bubble Tea program handler for interactive sessions.
func (s *Server) SetTUIHandler(handler bubbletea.ProgramHandler) {
	s.tuiHandler = handler
}

// SetCLIHandler sets the handler for CLI commands.
func (s *Server) SetCLIHandler(handler func(ssh.Session)) {
	s.cliHandler = handler
}

// build creates the wish server with the full middleware chain.
func (s *Server) build() (*ssh.Server, error) {
	keyDir := filepath.Dir(s.config.Server.SSH.HostKeyPath)
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create host key directory: %w", err)
	}

	// Last middleware wraps first
	middleware := []wish.Middleware{
		s.routingMiddleware(),
		SessionMiddleware(s.sessionMgr),
		ManagerMiddleware(s.manager),
		HistoryMiddleware(s.historyStore),
		LoggingMiddleware(),
	}

	opts := []ssh.Option{
		wish.WithAddress(s.config.Server.SSH.Listen),
		wish.WithHostKeyPath(s.config.Server.SSH.HostKeyPath),
		wish.WithPublicKeyAuth(s.authenticator.PublicKeyHandler()),
		wish.WithMiddleware(middleware...),
	}

	// The handler re-checks the config, so reloads can turn keyless off
	if s.config.KeylessAllowed() {
		opts = append(opts, wish.WithKeyboardInteractiveAuth(s.authenticator.KeyboardInteractiveHandler()))
	}

	if d := s.config.GetIdleTimeout(); d > 0 {
		opts = append(opts, wish.WithIdleTimeout(d))
	}
	if d := s.config.GetMaxTimeout(); d > 0 {
		opts = append(opts, wish.WithMaxTimeout(d))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.sshServer = server
	return server, nil
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	server, err := s.build()
	if err != nil {
		return err
	}

	log.Info("listening", "addr", s.GetAddr())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("SSH server error: %w", err)
	}

	log.Info("shutting down SSH server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

// ListenAndServe starts the server without signal handling (for embedding).
func (s *Server) ListenAndServe() error {
	server, err := s.build()
	if err != nil {
		return err
	}
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sshServer != nil {
		return s.sshServer.Shutdown(ctx)
	}
	return nil
}

// GetAddr returns the server's listen address string.
func (s *Server) GetAddr() string {
	if s.sshServer != nil {
		return s.sshServer.Addr
	}
	return ""
}

// routingMiddleware routes requests to either TUI or CLI handler.
func (s *Server) routingMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			if len(sess.Command()) > 0 {
				if s.cliHandler != nil {
					s.cliHandler(sess)
				} else {
					wish.Fatalln(sess, "CLI commands are not available")
				}
				return
			}

			_, _, hasPty := sess.Pty()
			if !hasPty {
				wish.Fatalln(sess, "PTY required for interactive mode. Use -t flag or provide a command.")
				return
			}

			if s.tuiHandler != nil {
				bubbletea.MiddlewareWithProgramHandler(s.tuiHandler, termenv.Ascii)(next)(sess)
			} else {
				wish.Fatalln(sess, "interactive mode is not available")
			}
		}
	}
}

// GetSessionManager returns the session manager.
func (s *Server) GetSessionManager() *SessionManager {
	return s.sessionMgr
}
