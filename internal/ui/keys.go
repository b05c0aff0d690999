package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewSettings key.Binding
	ViewGallery  key.Binding
	ViewLogs     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Settings
	Decrease key.Binding
	Increase key.Binding
	Refresh  key.Binding
	EditGrid key.Binding

	// Gallery
	ToggleSelect key.Binding
	SelectAll    key.Binding
	ClearSelect  key.Binding
	Delete       key.Binding

	// Logs
	ToggleFollow key.Binding

	// Input
	Confirm key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to settings"),
		),

		ViewSettings: key.NewBinding(
			key.WithKeys("1", "s"),
			key.WithHelp("1/s", "Settings"),
		),
		ViewGallery: key.NewBinding(
			key.WithKeys("2", "f"),
			key.WithHelp("2/f", "Gallery"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("3", "L"),
			key.WithHelp("3/L", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),

		Decrease: key.NewBinding(
			key.WithKeys("h", "left", "-"),
			key.WithHelp("h/←", "Previous value"),
		),
		Increase: key.NewBinding(
			key.WithKeys("l", "right", "+", "="),
			key.WithHelp("l/→", "Next value"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		EditGrid: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Grid overlay"),
		),

		ToggleSelect: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "Select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Select all"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Clear selection"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete selected"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "Follow/pause"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}
