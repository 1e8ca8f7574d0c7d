package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/spf13/cobra"
)

func (h *Handler) newSessionsCommand(ctx *CommandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List active SSH sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.RequireAdmin(ctx); err != nil {
				return err
			}

			// Session manager only exists in SSH mode
			if ctx.Session == nil {
				return errors.New("sessions command is only available in SSH server mode")
			}
			sessionMgr := server.GetSessionMgrFromSSH(ctx.Session)
			if sessionMgr == nil {
				return errors.New("session manager not available")
			}

			sessions := sessionMgr.ListActiveSessions()

			if format == formatJSON {
				result := make([]map[string]any, 0, len(sessions))
				for _, s := range sessions {
					result = append(result, map[string]any{
						"id":          s.ID,
						"user":        s.User.DisplayName(),
						"remote_addr": s.RemoteAddr,
						"mode":        s.Mode,
						"duration":    s.Duration().String(),
						"idle":        s.IdleTime().String(),
					})
				}
				printJSON(ctx.Out, result)
				return nil
			}

			if len(sessions) == 0 {
				fmt.Fprintln(ctx.Out, "No active sessions")
				return nil
			}

			fmt.Fprintln(ctx.Out, "ID\tUSER\tREMOTE\tMODE\tDURATION\tIDLE")
			for _, s := range sessions {
				fmt.Fprintf(ctx.Out, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID[:8],
					s.User.DisplayName(),
					s.RemoteAddr,
					s.Mode,
					formatDuration(s.Duration()),
					formatDuration(s.IdleTime()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (h *Handler) newHistoryCommand(ctx *CommandContext) *cobra.Command {
	var (
		limit      int
		userName   string
		appletPath string
		sessionID  string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show applet runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.RequireAdmin(ctx); err != nil {
				return err
			}
			if h.historyStore == nil {
				return errors.New("history not available in local mode")
			}

			var (
				records []*history.Activity
				err     error
			)
			if userName != "" {
				records, err = h.historyStore.ListActivityForUser(userName, limit)
			} else {
				records, err = h.historyStore.ListActivity(sessionID, appletPath, time.Time{}, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch history: %w", err)
			}

			if format == formatJSON {
				printJSON(ctx.Out, records)
				return nil
			}

			if len(records) == 0 {
				fmt.Fprintln(ctx.Out, "No history")
				return nil
			}

			fmt.Fprintln(ctx.Out, "WHEN\tAPPLET\tRESULTS\tINPUT\tERROR")
			for _, r := range records {
				input := "-"
				if r.InputBytes > 0 {
					input = humanize.Bytes(uint64(r.InputBytes))
				}
				fmt.Fprintf(ctx.Out, "%s\t%s\t%d\t%s\t%s\n",
					humanize.Time(r.CreatedAt),
					r.AppletPath,
					r.ResultCount,
					input,
					truncate(r.Error, 40))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "l", 50, "maximum number of entries")
	f.StringVarP(&userName, "user", "u", "", "only runs by this user")
	f.StringVar(&appletPath, "applet", "", "only runs of this applet path")
	f.StringVar(&sessionID, "session", "", "only runs in this session")
	f.StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (h *Handler) newAuditCommand(ctx *CommandContext) *cobra.Command {
	var (
		limit  int
		action string
		format string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.RequireAdmin(ctx); err != nil {
				return err
			}
			if h.historyStore == nil {
				return errors.New("audit log not available in local mode")
			}

			entries, err := h.historyStore.ListAuditLog("", action, time.Time{}, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch audit log: %w", err)
			}

			if format == formatJSON {
				printJSON(ctx.Out, entries)
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintln(ctx.Out, "No audit log entries")
				return nil
			}

			fmt.Fprintln(ctx.Out, "TIME\tACTION\tAPPLET\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(ctx.Out, "%s\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format("15:04:05"),
					e.Action,
					e.AppletPath,
					truncate(e.Details, 40))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "l", 50, "maximum number of entries")
	f.StringVar(&action, "action", "", "only entries with this action")
	f.StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (h *Handler) newReloadConfigCommand(ctx *CommandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload-config",
		Short: "Reload the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.RequireAdmin(ctx); err != nil {
				return err
			}
			if ctx.Session == nil || h.reload == nil {
				return errors.New("reload-config is only available in SSH server mode")
			}

			if err := h.reload(); err != nil {
				return fmt.Errorf("failed to reload config: %w", err)
			}
			if h.historyStore != nil {
				h.historyStore.RecordAuditSimple(ctx.GetSessionID(), history.ActionReloadConfig, "", nil)
			}
			fmt.Fprintln(ctx.Out, "Configuration reloaded")
			return nil
		},
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
