package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/vocab"
)

type generatorField int

const (
	fieldInitial generatorField = iota
	fieldAdjectives
	fieldCount
	fieldStyle
	fieldEmoji
	numGeneratorFields
)

var generatorFieldLabels = [numGeneratorFields]string{
	fieldInitial:    "Letter",
	fieldAdjectives: "Adjectives",
	fieldCount:      "Count",
	fieldStyle:      "Style",
	fieldEmoji:      "Emoji only",
}

func (a *App) updateGenerator(msg tea.KeyMsg) tea.Cmd {
	delta := 0
	switch {
	case key.Matches(msg, a.keys.Up):
		a.genField = generatorField(wrap(int(a.genField)-1, int(numGeneratorFields)))
		return nil
	case key.Matches(msg, a.keys.Down):
		a.genField = generatorField(wrap(int(a.genField)+1, int(numGeneratorFields)))
		return nil
	case key.Matches(msg, a.keys.Regenerate):
		a.generate()
		return nil
	case key.Matches(msg, a.keys.Left):
		delta = -1
	case key.Matches(msg, a.keys.Right):
		delta = 1
	case key.Matches(msg, a.keys.Select):
		if a.genField != fieldEmoji {
			return nil
		}
	default:
		return nil
	}

	// Every parameter change produces a fresh batch.
	if a.stepGeneratorField(delta) {
		a.generate()
	}
	return nil
}

func (a *App) stepGeneratorField(delta int) bool {
	s := a.genState
	opts := s.Options()
	switch a.genField {
	case fieldInitial:
		return s.StepInitial(delta)
	case fieldAdjectives:
		return s.SetAdjectives(opts.NumAdjectives + delta)
	case fieldCount:
		return s.SetCount(opts.Count + delta)
	case fieldStyle:
		return s.StepStyle(delta)
	case fieldEmoji:
		return s.SetEmoji(!opts.WithEmoji)
	}
	return false
}

// generate draws a new batch with the current options.
func (a *App) generate() {
	opts := a.genState.Options()
	names, err := a.manager.Generate(a.user, a.gen, opts)
	a.genState.SetResult(names, err)
	a.err = err
	a.recordRun(applet.PathNameGenerator, opts, len(names), 0, err)
}

func (a *App) renderGenerator() string {
	opts := a.genState.Options()

	values := [numGeneratorFields]string{
		fieldInitial:    initialLabel(opts.Initial),
		fieldAdjectives: fmt.Sprintf("%d", opts.NumAdjectives),
		fieldCount:      fmt.Sprintf("%d / %d", opts.Count, namegen.MaxCount),
		fieldStyle:      string(opts.Style),
		fieldEmoji:      checkbox(opts.WithEmoji),
	}

	var b strings.Builder
	for f := range numGeneratorFields {
		label := fieldLabelStyle.Render(generatorFieldLabels[f])
		value := fieldValueStyle.Render(values[f])
		if f == a.genField {
			label = focusedLabelStyle.Render(generatorFieldLabels[f])
			if f == fieldEmoji {
				value = selectedItemStyle.Render("< " + values[f] + " >")
			} else {
				value = selectedItemStyle.Render("‹ " + values[f] + " ›")
			}
		}
		b.WriteString(label)
		b.WriteString(value)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if err := a.genState.Err(); err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
		return b.String()
	}
	names := a.genState.Names()
	if len(names) == 0 {
		b.WriteString(dimItemStyle.Render("No names. Raise the count to generate some."))
		return b.String()
	}
	b.WriteString(renderNameGrid(namegen.Grid(names)))
	return b.String()
}

// renderNameGrid lays rows out in aligned columns.
func renderNameGrid(rows [][]string) string {
	widths := make([]int, namegen.RowWidth)
	for _, row := range rows {
		for i, name := range row {
			widths[i] = max(widths[i], lipgloss.Width(name))
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for i, name := range row {
			cells = append(cells, gridCellStyle.Width(widths[i]+2).Render(name))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func initialLabel(initial string) string {
	if initial == vocab.AnyInitial {
		return "Any"
	}
	return strings.ToUpper(initial)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
