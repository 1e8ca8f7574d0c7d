package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatPlain = "plain"
)

// checkFormat rejects output formats a command does not support.
func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(allowed, ", "))
}

func (h *Handler) newWhoamiCommand(ctx *CommandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show current user information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.User == nil {
				fmt.Fprintln(ctx.Out, "Not authenticated")
				return nil
			}

			admin := h.manager.IsAdmin(ctx.User)

			if format == formatJSON {
				info := map[string]any{
					"name":       ctx.User.DisplayName(),
					"admin":      admin,
					"anonymous":  ctx.User.IsAnonymous,
					"session_id": ctx.GetSessionID(),
				}
				if ctx.User.PublicKeyFP != "" {
					info["public_key_fp"] = ctx.User.PublicKeyFP
				}
				printJSON(ctx.Out, info)
				return nil
			}

			fmt.Fprintf(ctx.Out, "User:\t%s\n", ctx.User.DisplayName())
			fmt.Fprintf(ctx.Out, "Admin:\t%v\n", admin)
			fmt.Fprintf(ctx.Out, "Anonymous:\t%v\n", ctx.User.IsAnonymous)
			if ctx.User.PublicKeyFP != "" {
				fmt.Fprintf(ctx.Out, "Key:\t%s\n", ctx.User.PublicKeyFP)
			}
			if id := ctx.GetSessionID(); id != "" {
				fmt.Fprintf(ctx.Out, "Session:\t%s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (h *Handler) newAppletsCommand(ctx *CommandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "applets",
		Aliases: []string{"ls", "list"},
		Short:   "List the applets you can use",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applets := h.manager.ListApplets(ctx.User)

			if format == formatJSON {
				result := make([]map[string]string, 0, len(applets))
				for _, a := range applets {
					result = append(result, map[string]string{
						"group":  a.Group,
						"title":  a.Title,
						"path":   a.Path,
						"access": a.AccessLevel.String(),
					})
				}
				printJSON(ctx.Out, result)
				return nil
			}

			if len(applets) == 0 {
				fmt.Fprintln(ctx.Out, "No applets available")
				return nil
			}

			fmt.Fprintln(ctx.Out, "PATH\tTITLE\tACCESS")
			for _, a := range applets {
				fmt.Fprintf(ctx.Out, "%s\t%s\t%s\n", a.Path, a.Title, a.AccessLevel)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (h *Handler) newVersionCommand(ctx *CommandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == formatJSON {
				printJSON(ctx.Out, map[string]string{"version": h.version})
				return nil
			}
			fmt.Fprintf(ctx.Out, "toolbox %s\n", h.version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

// printJSON writes JSON to a writer.
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
