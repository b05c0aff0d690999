package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/aperture/internal/logtail"
)

const (
	logBacklog     = 400
	logBufferLimit = 2000
)

// logState holds the tail of aperture's own log file.
type logState struct {
	follower *logtail.Follower
	lines    []string
	follow   bool
	err      error

	// Content caching: skip re-render when unchanged.
	version      uint64
	lastRendered uint64
}

type logLinesMsg struct {
	lines []string
	err   error
}

func newLogState(path string) logState {
	ls := logState{follow: true}
	if strings.TrimSpace(path) != "" {
		ls.follower = logtail.NewFollower(path)
	}
	return ls
}

// pollLogsCmd reads new lines off the main loop. Follower is not safe for
// concurrent use, so callers keep at most one poll outstanding.
func pollLogsCmd(f *logtail.Follower) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		lines, err := f.Poll(logBacklog)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logPolling = false
	m.logs.err = msg.err
	if len(msg.lines) == 0 {
		return
	}
	m.logs.lines = append(m.logs.lines, msg.lines...)
	if over := len(m.logs.lines) - logBufferLimit; over > 0 {
		m.logs.lines = append([]string(nil), m.logs.lines[over:]...)
	}
	m.logs.version++
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	w, h := max(0, m.width-2), max(0, m.contentHeight()-2)
	if m.logViewport.Width == 0 && m.logViewport.Height == 0 {
		m.logViewport = viewport.New(w, h)
	}
	m.logViewport.Width = w
	m.logViewport.Height = h

	if m.logs.version != m.logs.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logs.lastRendered = m.logs.version
	}
	if m.logs.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	var b strings.Builder
	for i, line := range m.logs.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		lvl := logtail.Level(line)
		if lvl == "" {
			b.WriteString(styles.Text.Render(line))
			continue
		}
		b.WriteString(styles.LevelStyle(lvl).Render(line))
	}
	return b.String()
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logs.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

func (m Model) renderLogs(width, height int) string {
	title := "Logs"
	if m.logs.follower != nil {
		title = "Logs · " + truncateMiddle(m.logs.follower.Path(), max(10, width-20))
	}
	if !m.logs.follow {
		title += " (paused)"
	}

	content := m.logViewport.View()
	if len(m.logs.lines) == 0 {
		styles := m.theme.Styles()
		switch {
		case m.logs.err != nil:
			content = styles.DangerText.Render(m.logs.err.Error())
		case m.logs.follower == nil:
			content = styles.FaintText.Render("No log file configured.")
		default:
			content = styles.FaintText.Render("Waiting for log output...")
		}
	}
	return m.renderBox(title, content, width, height, true)
}
