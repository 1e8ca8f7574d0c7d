// Package cli implements the command-line interface for both SSH and local modes.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/johan-st/toolbox/internal/toolbox"
	"github.com/spf13/cobra"
)

// Handler handles CLI commands over SSH or locally.
type Handler struct {
	manager      *toolbox.Manager
	historyStore *history.Store
	version      string
	reload       func() error
}

// NewHandler creates a new CLI handler. historyStore may be nil.
func NewHandler(manager *toolbox.Manager, historyStore *history.Store, version string) *Handler {
	return &Handler{
		manager:      manager,
		historyStore: historyStore,
		version:      version,
	}
}

// SetReloadFunc sets the function reload-config calls.
func (h *Handler) SetReloadFunc(fn func() error) {
	h.reload = fn
}

// LocalContext wraps command execution for local (non-SSH) mode.
type LocalContext struct {
	User *access.UserInfo
	Args []string
	In   io.Reader
	Out  io.Writer
	Err  io.Writer
}

// NewLocalContext creates a context for local CLI execution.
func NewLocalContext(user *access.UserInfo, args []string, in io.Reader, out, errOut io.Writer) *LocalContext {
	return &LocalContext{
		User: user,
		Args: args,
		In:   in,
		Out:  out,
		Err:  errOut,
	}
}

// HandleLocal processes a CLI command in local mode (no SSH session).
func (h *Handler) HandleLocal(lctx *LocalContext) error {
	ctx := &CommandContext{
		User: lctx.User,
		In:   lctx.In,
		Out:  lctx.Out,
		Err:  lctx.Err,
	}

	if code := h.Execute(ctx, lctx.Args); code != 0 {
		return fmt.Errorf("command failed with exit code %d", code)
	}
	return nil
}

// Handle processes an SSH session with a CLI command. The manager and store
// injected by the server middleware take precedence over the handler's own.
func (h *Handler) Handle(s ssh.Session) {
	h = h.forSession(s)
	ctx := &CommandContext{
		Session:     s,
		User:        server.GetUserFromContext(s.Context()),
		SessionInfo: server.GetSessionFromSSH(s),
		In:          s,
		Out:         s,
		Err:         s.Stderr(),
	}

	if code := h.Execute(ctx, s.Command()); code != 0 {
		s.Exit(code)
	}
}

func (h *Handler) forSession(s ssh.Session) *Handler {
	sh := *h
	if m := server.GetManagerFromSSH(s); m != nil {
		sh.manager = m
	}
	if store := server.GetHistoryFromSSH(s); store != nil {
		sh.historyStore = store
	}
	return &sh
}

// Execute runs args against a fresh command tree and returns the exit code.
func (h *Handler) Execute(ctx *CommandContext, args []string) int {
	root := h.NewRootCommand(ctx)
	root.SetArgs(args)
	root.SetIn(ctx.In)
	root.SetOut(ctx.Out)
	root.SetErr(ctx.Err)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		ctx.Exit(1)
	}
	return ctx.exitCode
}

// NewRootCommand builds the command tree bound to ctx.
func (h *Handler) NewRootCommand(ctx *CommandContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "toolbox",
		Short:         "Name generator and hash digests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddGroup(
		&cobra.Group{ID: "applets", Title: "Applets:"},
		&cobra.Group{ID: "info", Title: "Information:"},
		&cobra.Group{ID: "admin", Title: "Admin (SSH server only):"},
	)

	for _, cmd := range []*cobra.Command{h.newGenerateCommand(ctx), h.newHashCommand(ctx)} {
		cmd.GroupID = "applets"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		h.newAppletsCommand(ctx),
		h.newStylesCommand(ctx),
		h.newWhoamiCommand(ctx),
		h.newVersionCommand(ctx),
	} {
		cmd.GroupID = "info"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		h.newSessionsCommand(ctx),
		h.newHistoryCommand(ctx),
		h.newAuditCommand(ctx),
		h.newReloadConfigCommand(ctx),
	} {
		cmd.GroupID = "admin"
		root.AddCommand(cmd)
	}

	return root
}

// CommandContext provides context for command execution.
type CommandContext struct {
	Session     ssh.Session // nil in local mode
	User        *access.UserInfo
	SessionInfo *server.Session
	Generator   *namegen.Generator // created on first use when nil
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	exitCode    int
}

// Exit sets the exit code (used instead of calling Session.Exit directly).
func (c *CommandContext) Exit(code int) {
	c.exitCode = code
}

// IsRemote reports whether the command came in over SSH.
func (c *CommandContext) IsRemote() bool {
	return c.Session != nil
}

// GetSessionID returns the session ID or empty string.
func (c *CommandContext) GetSessionID() string {
	if c.SessionInfo != nil {
		return c.SessionInfo.ID
	}
	return ""
}

func (c *CommandContext) generator(m *toolbox.Manager) *namegen.Generator {
	if c.Generator == nil {
		c.Generator = m.NewGenerator()
	}
	return c.Generator
}

// RequireAdmin checks if user has admin access.
func (h *Handler) RequireAdmin(ctx *CommandContext) error {
	if !h.manager.IsAdmin(ctx.User) {
		return fmt.Errorf("%w: admin access required", toolbox.ErrAccessDenied)
	}
	return nil
}

// recordRun stores an applet run in the history. Local mode has no store.
func (h *Handler) recordRun(ctx *CommandContext, appletPath string, params any, resultCount int, inputBytes int64, runErr error) {
	sessionID := ctx.GetSessionID()
	if h.historyStore == nil || sessionID == "" {
		return
	}
	if errors.Is(runErr, toolbox.ErrAccessDenied) {
		if err := h.historyStore.RecordAuditSimple(sessionID, history.ActionDenied, appletPath, nil); err != nil {
			log.Warn("failed to record audit entry", "err", err)
		}
		return
	}
	if err := h.historyStore.RecordRun(sessionID, appletPath, params, resultCount, inputBytes, runErr); err != nil {
		log.Warn("failed to record activity", "err", err)
	}
}
