package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/vocab"
	"github.com/spf13/cobra"
)

func (h *Handler) newGenerateCommand(ctx *CommandContext) *cobra.Command {
	defaults := h.manager.GeneratorDefaults()

	var (
		initial    string
		adjectives int
		count      int
		style      string
		emoji      bool
		format     string
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "names"},
		Short:   "Generate adjective animal names",
		Example: `  toolbox generate --count=8 --style=kebab
  toolbox generate --initial=b --adjectives=2 --emoji --format=json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := namegen.ParseStyle(style)
			if err != nil {
				return err
			}
			if strings.EqualFold(initial, "any") {
				initial = vocab.AnyInitial
			}
			if err := checkFormat(format, formatTable, formatJSON, formatPlain); err != nil {
				return err
			}

			opts := namegen.Options{
				Initial:       initial,
				NumAdjectives: adjectives,
				Count:         count,
				WithEmoji:     emoji,
				Style:         st,
			}
			names, err := h.manager.Generate(ctx.User, ctx.generator(h.manager), opts)
			h.recordRun(ctx, applet.PathNameGenerator, opts, len(names), 0, err)
			if err != nil {
				return err
			}

			switch format {
			case formatJSON:
				printJSON(ctx.Out, map[string]any{"names": names})
			case formatPlain:
				for _, name := range names {
					fmt.Fprintln(ctx.Out, name)
				}
			default:
				if len(names) > 0 {
					fmt.Fprintln(ctx.Out, renderGrid(namegen.Grid(names)))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&initial, "initial", "i", defaults.Initial, "only use words starting with this letter (or \"any\")")
	f.IntVarP(&adjectives, "adjectives", "a", defaults.NumAdjectives, fmt.Sprintf("number of adjectives (0-%d)", namegen.MaxAdjectives))
	f.IntVarP(&count, "count", "n", defaults.Count, fmt.Sprintf("number of names (0-%d)", namegen.MaxCount))
	f.StringVarP(&style, "style", "s", string(defaults.Style), "Space, PascalCase, camelCase, Underscore or Kebab")
	f.BoolVarP(&emoji, "emoji", "e", defaults.WithEmoji, "only use animals that have an emoji")
	f.StringVarP(&format, "format", "f", formatTable, "output format: table, json or plain")

	return cmd
}

func (h *Handler) newStylesCommand(ctx *CommandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List name formatting styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample := []string{"big", "red", "fox"}

			if format == formatJSON {
				result := make([]map[string]string, 0, len(namegen.Styles()))
				for _, s := range namegen.Styles() {
					result = append(result, map[string]string{
						"style":   string(s),
						"example": namegen.Format(s, sample),
					})
				}
				printJSON(ctx.Out, result)
				return nil
			}

			fmt.Fprintln(ctx.Out, "STYLE\tEXAMPLE")
			for _, s := range namegen.Styles() {
				fmt.Fprintf(ctx.Out, "%s\t%s\n", s, namegen.Format(s, sample))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

// renderGrid draws rows of names as a bordered table, padding the last row.
func renderGrid(rows [][]string) string {
	padded := make([][]string, len(rows))
	for i, row := range rows {
		padded[i] = append(make([]string, 0, namegen.RowWidth), row...)
		for len(padded[i]) < namegen.RowWidth {
			padded[i] = append(padded[i], "")
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Rows(padded...).
		Render()
}
