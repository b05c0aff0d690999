package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/aperture/internal/device"
	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewSettings View = iota
	ViewGallery
	ViewLogs
)

var viewOrder = []View{ViewSettings, ViewGallery, ViewLogs}

// Options configures the UI.
type Options struct {
	Context context.Context
	Client  *device.Client
	Camera  *fetchsync.Engine[device.CameraSettings]
	Photo   *fetchsync.Engine[device.PhotoSettings]
	Gallery *fetchsync.Engine[[]device.File]

	// Changes wakes the UI after an engine state change. See Notifier.
	Changes <-chan struct{}
	// PrefsUpdates delivers preferences reloaded from disk.
	PrefsUpdates <-chan prefs.Prefs

	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	Logger    *slog.Logger
	Tick      time.Duration
}

// Notifier coalesces engine change callbacks into a channel the UI waits on.
// Notify never blocks.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify records that something changed.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C returns the channel to pass as Options.Changes.
func (n *Notifier) C() <-chan struct{} { return n.ch }

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	client       *device.Client
	camera       *fetchsync.Engine[device.CameraSettings]
	photo        *fetchsync.Engine[device.PhotoSettings]
	gallery      *fetchsync.Engine[[]device.File]
	changes      <-chan struct{}
	prefsUpdates <-chan prefs.Prefs
	prefsPath    string
	logger       *slog.Logger
	tick         time.Duration
	deviceAddr   string
	keys         keyMap

	// UI state
	theme       Theme
	prefs       prefs.Prefs
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	flash       string
	flashErr    bool

	// Settings state
	rows        []settingRow
	sources     []func() syncStatus
	settingsRow int
	grid        gridState

	// Gallery state
	galleryState galleryState

	// Log state
	logs        logState
	logViewport viewport.Model
	logPolling  bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	p := opts.Prefs.Normalize()

	m := Model{
		ctx:          ctx,
		client:       opts.Client,
		camera:       opts.Camera,
		photo:        opts.Photo,
		gallery:      opts.Gallery,
		changes:      opts.Changes,
		prefsUpdates: opts.PrefsUpdates,
		prefsPath:    prefsPath,
		logger:       logger,
		tick:         tick,
		deviceAddr:   opts.Client.BaseURL(),
		keys:         defaultKeyMap(),
		theme:        GetTheme(p.Theme),
		prefs:        p,
		currentView:  ViewSettings,
		grid:         newGridState(p),
		galleryState: galleryState{selected: map[string]bool{}},
		logs:         newLogState(opts.LogPath),
	}
	m.rows = append(bindFields(opts.Camera, "Camera", cameraFields), bindFields(opts.Photo, "Photo", photoFields)...)
	if opts.Camera != nil {
		m.sources = append(m.sources, statusOf(opts.Camera))
	}
	if opts.Photo != nil {
		m.sources = append(m.sources, statusOf(opts.Photo))
	}
	if opts.Gallery != nil {
		m.sources = append(m.sources, statusOf(opts.Gallery))
	}
	m.logPolling = m.logs.follower != nil
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		waitForChange(m.changes),
		waitForPrefs(m.prefsUpdates),
		pollLogsCmd(m.logs.follower),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if !m.logPolling && m.logs.follower != nil {
			m.logPolling = true
			cmds = append(cmds, pollLogsCmd(m.logs.follower))
		}
		return m, tea.Batch(cmds...)

	case changedMsg:
		// Views read engine snapshots directly; the message only forces a redraw.
		return m, waitForChange(m.changes)

	case prefsMsg:
		m.applyPrefs(prefs.Prefs(msg))
		return m, waitForPrefs(m.prefsUpdates)

	case prefsSavedMsg:
		if msg.err != nil {
			m.flash = "save prefs: " + msg.err.Error()
			m.flashErr = true
		}
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case deleteDoneMsg:
		m.handleDeleteDone(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) contentHeight() int {
	return max(3, m.height-2)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewGallery:
		return m.renderGallery(m.width, m.contentHeight())
	case ViewLogs:
		return m.renderLogs(m.width, m.contentHeight())
	default:
		return m.renderSettings(m.width, m.contentHeight())
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.grid.editing == gridEditing {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleGridKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		next := m.prefs
		next.Theme = NextTheme(m.theme.Name)
		m.applyPrefs(next)
		return m, m.savePrefs()
	case key.Matches(msg, m.keys.Tab):
		m.switchView(m.cycleView(1))
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView(m.cycleView(-1))
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewSettings)
		return m, nil
	case key.Matches(msg, m.keys.ViewSettings):
		m.switchView(ViewSettings)
		return m, nil
	case key.Matches(msg, m.keys.ViewGallery):
		m.switchView(ViewGallery)
		return m, nil
	case key.Matches(msg, m.keys.ViewLogs):
		m.switchView(ViewLogs)
		return m, nil
	}

	switch m.currentView {
	case ViewGallery:
		return m.handleGalleryKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleSettingsKey(msg)
	}
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.settingsRow = min(m.settingsRow+1, max(0, len(m.rows)-1))
	case key.Matches(msg, m.keys.Up):
		m.settingsRow = max(m.settingsRow-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.settingsRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.settingsRow = max(0, len(m.rows)-1)
	case key.Matches(msg, m.keys.Increase):
		m.adjustSelected(1)
	case key.Matches(msg, m.keys.Decrease):
		m.adjustSelected(-1)
	case key.Matches(msg, m.keys.Refresh):
		var skipped []string
		if m.camera != nil && !m.camera.RefreshNow() {
			skipped = append(skipped, m.camera.Name())
		}
		if m.photo != nil && !m.photo.RefreshNow() {
			skipped = append(skipped, m.photo.Name())
		}
		m.flash, m.flashErr = "", false
		if len(skipped) > 0 {
			m.flash = "refresh skipped, edit pending: " + strings.Join(skipped, ", ")
		}
	case key.Matches(msg, m.keys.EditGrid):
		return m, m.startGridEdit()
	}
	return m, nil
}

func (m Model) cycleView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			n := len(viewOrder)
			return viewOrder[((i+step)%n+n)%n]
		}
	}
	return ViewSettings
}

func (m *Model) switchView(v View) {
	m.currentView = v
	if v == ViewLogs {
		m.updateLogViewport()
	}
}

// applyPrefs adopts p as the current preferences. The grid inputs are left
// alone while the user is typing in them.
func (m *Model) applyPrefs(p prefs.Prefs) {
	p = p.Normalize()
	m.prefs = p
	m.theme = GetTheme(p.Theme)
	if m.grid.editing == gridIdle {
		m.grid.setValues(p)
	}
	m.logs.version++
	if m.ready {
		m.updateLogViewport()
	}
}

func (m Model) savePrefs() tea.Cmd {
	path, p := m.prefsPath, m.prefs
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// Messages

type tickMsg time.Time

type changedMsg struct{}

type prefsMsg prefs.Prefs

type prefsSavedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func waitForPrefs(ch <-chan prefs.Prefs) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return prefsMsg(p)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
