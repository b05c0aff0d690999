package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/aperture/internal/fetchsync"
)

// syncStatus is the header's view of one engine.
type syncStatus struct {
	name     string
	loading  bool
	updating bool
	err      error
	offline  bool
	updated  time.Time
}

func statusOf[T any](e *fetchsync.Engine[T]) func() syncStatus {
	return func() syncStatus {
		snap := e.Snapshot()
		return syncStatus{
			name:     e.Name(),
			loading:  snap.IsLoading,
			updating: snap.IsUpdating,
			err:      snap.LastError,
			offline:  snap.IsOffline(),
			updated:  snap.LastUpdated,
		}
	}
}

// label returns the short state word and whether it signals trouble.
func (s syncStatus) label() (string, bool) {
	switch {
	case s.updating:
		return "saving", false
	case s.loading:
		return "loading", false
	case s.offline:
		return classifyConnectionError(s.err), true
	case s.err != nil:
		return "retrying", true
	case s.updated.IsZero():
		return "waiting", false
	default:
		return "synced", false
	}
}

// renderHeader renders the status bar: logo, device, one chip per engine
// and the time of the most recent sync.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgPainter(m.theme.Surface)

	parts := []string{bg.render("aperture", styles.Logo)}
	if m.deviceAddr != "" {
		parts = append(parts, bg.render(truncateMiddle(m.deviceAddr, 32), styles.MutedText))
	}

	var newest time.Time
	for _, src := range m.sources {
		st := src()
		word, bad := st.label()
		style := styles.SuccessText
		switch {
		case bad:
			style = styles.DangerText
		case st.updating || st.loading:
			style = styles.WarningText
		}
		parts = append(parts, bg.render(st.name+":", styles.MutedText)+bg.render("● "+word, style))
		if st.updated.After(newest) {
			newest = st.updated
		}
	}
	if !newest.IsZero() {
		parts = append(parts, bg.render("updated "+newest.Format("15:04:05"), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.join(parts, 2))
}

// classifyConnectionError turns a transport error into a short header word.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, fetchsync.ErrReadOnly) {
		return "READ-ONLY"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "returned status"):
		return "HTTP ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgPainter(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewGallery:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"space", "Select"},
			{"d", "Delete"},
			{"r", "Refresh"},
		}
	case ViewLogs:
		follow := "Pause"
		if !m.logs.follow {
			follow = "Follow"
		}
		commands = []cmd{
			{"space", follow},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"h/l", "Change"},
			{"o", "Grid"},
			{"r", "Refresh"},
		}
	}
	commands = append(commands, cmd{"tab", "View"}, cmd{"?", "More"})

	colon := bg.render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments, bg.render(c.key, styles.AccentText)+colon+bg.render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.render("T", styles.AccentText)+colon+bg.render(m.theme.Name, styles.FaintText))

	if m.flash != "" {
		style := styles.InfoText
		if m.flashErr {
			style = styles.DangerText
		}
		segments = append(segments, bg.render(truncate(m.flash, max(10, m.width/3)), style))
	}

	return styles.Header.Width(m.width).Render(bg.join(segments, 2))
}
