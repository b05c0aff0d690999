package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/aperture/internal/device"
)

const deleteTimeout = 10 * time.Second

// galleryState tracks the cursor and the set of selected file names.
// Selection is keyed by name so it survives list refreshes.
type galleryState struct {
	cursor   int
	selected map[string]bool
	deleting bool
}

type deleteDoneMsg struct {
	count int
	err   error
}

// files returns the gallery newest first.
func (m Model) files() []device.File {
	if m.gallery == nil {
		return nil
	}
	files := append([]device.File(nil), m.gallery.Snapshot().Data...)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Date.Equal(files[j].Date) {
			return files[i].Name > files[j].Name
		}
		return files[i].Date.After(files[j].Date)
	})
	return files
}

// selectedNames returns the selected files still present, in display order.
func (m Model) selectedNames() []string {
	var names []string
	for _, f := range m.files() {
		if m.galleryState.selected[f.Name] {
			names = append(names, f.Name)
		}
	}
	return names
}

func (m Model) handleGalleryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.files()
	gs := &m.galleryState

	switch {
	case key.Matches(msg, m.keys.Refresh):
		if m.gallery != nil && !m.gallery.RefreshNow() {
			m.flash, m.flashErr = "refresh skipped", false
		}
		return m, nil
	case key.Matches(msg, m.keys.ClearSelect):
		gs.selected = map[string]bool{}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteSelected()
	}

	if len(files) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		gs.cursor = min(gs.cursor+1, len(files)-1)
	case key.Matches(msg, m.keys.Up):
		gs.cursor = max(gs.cursor-1, 0)
	case key.Matches(msg, m.keys.Top):
		gs.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		gs.cursor = len(files) - 1
	case key.Matches(msg, m.keys.ToggleSelect):
		gs.cursor = min(gs.cursor, len(files)-1)
		name := files[gs.cursor].Name
		if gs.selected[name] {
			delete(gs.selected, name)
		} else {
			gs.selected[name] = true
		}
		gs.cursor = min(gs.cursor+1, len(files)-1)
	case key.Matches(msg, m.keys.SelectAll):
		for _, f := range files {
			gs.selected[f.Name] = true
		}
	}
	return m, nil
}

func (m *Model) deleteSelected() tea.Cmd {
	names := m.selectedNames()
	if len(names) == 0 || m.galleryState.deleting || m.client == nil {
		return nil
	}
	m.galleryState.deleting = true
	client, parent := m.client, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, deleteTimeout)
		defer cancel()
		return deleteDoneMsg{count: len(names), err: client.DeleteFiles(ctx, names)}
	}
}

func (m *Model) handleDeleteDone(msg deleteDoneMsg) {
	m.galleryState.deleting = false
	if msg.err != nil {
		m.flash = fmt.Sprintf("delete failed: %v", msg.err)
		m.flashErr = true
		m.logger.Warn("delete failed", "files", msg.count, "error", msg.err)
	} else {
		m.flash = fmt.Sprintf("deleted %d file(s)", msg.count)
		m.flashErr = false
		m.galleryState.selected = map[string]bool{}
		m.logger.Info("files deleted", "files", msg.count)
	}
	if m.gallery != nil {
		m.gallery.RefreshNow()
	}
}

func (m Model) renderGallery(width, height int) string {
	styles := m.theme.Styles()
	files := m.files()
	selected := len(m.selectedNames())

	title := fmt.Sprintf("Gallery (%d)", len(files))
	if selected > 0 {
		title = fmt.Sprintf("Gallery (%d, %d selected)", len(files), selected)
	}

	var b strings.Builder
	b.WriteString(m.renderGalleryToolbar(selected))
	b.WriteString("\n\n")

	if len(files) == 0 {
		msg := "No photos on the device."
		if m.gallery != nil && m.gallery.Snapshot().IsLoading {
			msg = "Loading..."
		}
		b.WriteString(styles.FaintText.Render(msg))
		return m.renderBox(title, b.String(), width, height, true)
	}

	// Keep the cursor in view.
	visible := max(1, height-5)
	cursor := min(m.galleryState.cursor, len(files)-1)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(len(files), start+visible)

	nameW := max(10, width-2-4-20-12)
	for i := start; i < end; i++ {
		f := files[i]
		check := "[ ]"
		if m.galleryState.selected[f.Name] {
			check = "[x]"
		}
		date := "-"
		if !f.Date.IsZero() {
			date = f.Date.Local().Format("2006-01-02 15:04")
		}
		line := fmt.Sprintf("%s %-*s %16s %10s", check, nameW, truncateMiddle(f.Name, nameW), date, device.SizeLabel(f.Size))
		if i == cursor {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	return m.renderBox(title, b.String(), width, height, true)
}

func (m Model) renderGalleryToolbar(selected int) string {
	styles := m.theme.Styles()
	type action struct {
		key, label string
		enabled    bool
	}
	actions := []action{
		{"space", "Select", true},
		{"a", "All", true},
		{"c", "Clear", selected > 0},
		{"d", fmt.Sprintf("Delete (%d)", selected), selected > 0 && !m.galleryState.deleting},
		{"r", "Refresh", true},
	}
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.enabled {
			parts = append(parts, styles.AccentText.Render(a.key)+styles.MutedText.Render(":"+a.label))
		} else {
			parts = append(parts, styles.FaintText.Render(a.key+":"+a.label))
		}
	}
	return strings.Join(parts, "  ")
}
