package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/aperture/internal/prefs"
)

type gridMode int

const (
	gridIdle gridMode = iota
	gridEditing
)

const (
	gridPreviewWidth  = 28
	gridPreviewHeight = 9
)

// gridState holds the grid overlay editor. inputs[0] is the horizontal line,
// inputs[1] the vertical one.
type gridState struct {
	editing gridMode
	inputs  [2]textinput.Model
	focus   int
}

func newGridState(p prefs.Prefs) gridState {
	var g gridState
	for i := range g.inputs {
		ti := textinput.New()
		ti.CharLimit = 3
		ti.Width = 4
		ti.Prompt = ""
		g.inputs[i] = ti
	}
	g.setValues(p)
	return g
}

func (g *gridState) setValues(p prefs.Prefs) {
	g.inputs[0].SetValue(strconv.Itoa(p.HorizontalLine))
	g.inputs[1].SetValue(strconv.Itoa(p.VerticalLine))
}

// parseLine reads a percentage from an input. Blank or malformed text keeps
// the fallback; numbers are clamped to 0..100.
func parseLine(text string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%")))
	if err != nil {
		return fallback
	}
	return prefs.ClampLine(v)
}

func (m *Model) startGridEdit() tea.Cmd {
	m.grid.editing = gridEditing
	m.grid.focus = 0
	m.grid.inputs[1].Blur()
	return m.grid.inputs[0].Focus()
}

func (m *Model) stopGridEdit() {
	m.grid.editing = gridIdle
	for i := range m.grid.inputs {
		m.grid.inputs[i].Blur()
	}
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.grid.setValues(m.prefs)
		m.stopGridEdit()
		return m, nil
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab),
		msg.String() == "up", msg.String() == "down":
		m.grid.inputs[m.grid.focus].Blur()
		m.grid.focus = 1 - m.grid.focus
		return m, m.grid.inputs[m.grid.focus].Focus()
	case key.Matches(msg, m.keys.Confirm):
		next := m.prefs
		next.HorizontalLine = parseLine(m.grid.inputs[0].Value(), m.prefs.HorizontalLine)
		next.VerticalLine = parseLine(m.grid.inputs[1].Value(), m.prefs.VerticalLine)
		m.stopGridEdit()
		m.applyPrefs(next)
		return m, m.savePrefs()
	}

	var cmd tea.Cmd
	m.grid.inputs[m.grid.focus], cmd = m.grid.inputs[m.grid.focus].Update(msg)
	return m, cmd
}

func (m Model) renderGrid() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render("Grid overlay"))
	b.WriteString("\n")
	labels := [2]string{"Horizontal", "Vertical"}
	for i, in := range m.grid.inputs {
		label := fmt.Sprintf("  %-16s ", labels[i])
		if m.grid.editing == gridEditing {
			b.WriteString(styles.Text.Render(label) + in.View() + styles.FaintText.Render(" %") + "\n")
			continue
		}
		b.WriteString(styles.Text.Render(label + in.Value() + " %"))
		b.WriteString("\n")
	}
	if m.grid.editing == gridEditing {
		b.WriteString(styles.FaintText.Render("  enter save · tab switch · esc cancel"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(gridPreview(m.prefs.HorizontalLine, m.prefs.VerticalLine, gridPreviewWidth, gridPreviewHeight)))
	return b.String()
}

// gridPreview draws a w×h frame with one horizontal and one vertical guide
// at the given percentages of the interior.
func gridPreview(hPct, vPct, w, h int) string {
	if w < 3 || h < 3 {
		return ""
	}
	innerW, innerH := w-2, h-2
	row := min(innerH-1, hPct*innerH/100)
	col := min(innerW-1, vPct*innerW/100)

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", innerW) + "┐\n")
	for y := 0; y < innerH; y++ {
		b.WriteString("│")
		for x := 0; x < innerW; x++ {
			switch {
			case y == row && x == col:
				b.WriteString("┼")
			case y == row:
				b.WriteString("─")
			case x == col:
				b.WriteString("│")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("│\n")
	}
	b.WriteString("└" + strings.Repeat("─", innerW) + "┘")
	return b.String()
}
