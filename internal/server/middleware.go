package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/toolbox"
)

// Context keys for middleware values
type ctxKey string

const (
	ctxKeySession    ctxKey = "session"
	ctxKeyUser       ctxKey = "user"
	ctxKeyManager    ctxKey = "manager"
	ctxKeyHistory    ctxKey = "history"
	ctxKeySessionMgr ctxKey = "session_mgr"
)

// SessionMiddleware creates sessions for each connection.
func SessionMiddleware(sessionMgr *SessionManager) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := GetUserFromContext(s.Context())
			if user == nil {
				user = &access.UserInfo{
					IsAnonymous:   true,
					AnonymousName: "unknown",
					RemoteAddr:    s.RemoteAddr().String(),
				}
				s.Context().SetValue(ctxKeyUser, user)
			}

			mode := history.ModeTUI
			if len(s.Command()) > 0 {
				mode = history.ModeCLI
			}

			session := sessionMgr.CreateSession(user, s.RemoteAddr().String(), mode)

			s.Context().SetValue(ctxKeySession, session)
			s.Context().SetValue(ctxKeySessionMgr, sessionMgr)

			defer sessionMgr.EndSession(session.ID)

			next(s)
		}
	}
}

// ManagerMiddleware injects the applet manager into the context.
func ManagerMiddleware(manager *toolbox.Manager) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			s.Context().SetValue(ctxKeyManager, manager)
			next(s)
		}
	}
}

// HistoryMiddleware injects the history store into the context.
func HistoryMiddleware(historyStore *history.Store) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			s.Context().SetValue(ctxKeyHistory, historyStore)
			next(s)
		}
	}
}

// LoggingMiddleware logs connections.
func LoggingMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := GetUserFromContext(s.Context())
			userName := "anonymous"
			if user != nil {
				userName = user.DisplayName()
			}

			start := time.Now()
			log.Info("connect", "remote", s.RemoteAddr(), "user", userName, "command", s.Command())

			next(s)

			log.Info("disconnect", "remote", s.RemoteAddr(), "user", userName, "duration", time.Since(start).Round(time.Millisecond))
		}
	}
}

// GetSessionFromSSH retrieves the session from the SSH session context.
func GetSessionFromSSH(s ssh.Session) *Session {
	if session, ok := s.Context().Value(ctxKeySession).(*Session); ok {
		return session
	}
	return nil
}

// GetManagerFromSSH retrieves the applet manager from the SSH session context.
func GetManagerFromSSH(s ssh.Session) *toolbox.Manager {
	if mgr, ok := s.Context().Value(ctxKeyManager).(*toolbox.Manager); ok {
		return mgr
	}
	return nil
}

// GetHistoryFromSSH retrieves the history store from the SSH session context.
func GetHistoryFromSSH(s ssh.Session) *history.Store {
	if store, ok := s.Context().Value(ctxKeyHistory).(*history.Store); ok {
		return store
	}
	return nil
}

// GetSessionMgrFromSSH retrieves the session manager from the SSH session context.
func GetSessionMgrFromSSH(s ssh.Session) *SessionManager {
	if mgr, ok := s.Context().Value(ctxKeySessionMgr).(*SessionManager); ok {
		return mgr
	}
	return nil
}
