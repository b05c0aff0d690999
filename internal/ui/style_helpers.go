package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bgPainter renders segments on a fixed background. Lipgloss resets the
// background after every styled segment, so the gaps between segments have
// to be painted separately.
type bgPainter struct {
	bg    lipgloss.Color
	space string
}

func newBgPainter(color string) bgPainter {
	bg := lipgloss.Color(color)
	return bgPainter{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

func (p bgPainter) render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	return style.Background(p.bg).Render(text)
}

func (p bgPainter) spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(p.space, n)
}

func (p bgPainter) join(parts []string, gap int) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, p.spaces(gap))
}

// renderBox draws a bordered panel of the given outer size with title set
// into the top border.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	innerW := max(0, width-2)
	innerH := max(0, height-2)

	body := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxHeight(innerH).
		Render(content)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Render(body)

	if title == "" {
		return box
	}
	label := " " + truncate(title, max(0, innerW-4)) + " "
	lines := strings.Split(box, "\n")
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	top := lipgloss.NewStyle().Foreground(lipgloss.Color(border)).Render("╭─") +
		titleStyle.Render(label) +
		lipgloss.NewStyle().Foreground(lipgloss.Color(border)).
			Render(strings.Repeat("─", max(0, innerW-1-lipgloss.Width(label)))+"╮")
	lines[0] = top
	return strings.Join(lines, "\n")
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// truncateMiddle keeps the start and the (longer) end of s.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 5 {
		return string(runes[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(runes[:startLen]) + "..." + string(runes[len(runes)-endLen:])
}
