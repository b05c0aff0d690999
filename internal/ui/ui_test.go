package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/aperture/internal/device"
	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/prefs"
	"github.com/five82/aperture/internal/testutil"
)

// echoTransport answers reads with a fixed value and writes with the body.
type echoTransport[T any] struct{ value T }

func (e echoTransport[T]) Fetch(context.Context) (T, error) { return e.value, nil }
func (e echoTransport[T]) Update(_ context.Context, v T) (T, error) { return v, nil }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

type testEngines struct {
	camera  *fetchsync.Engine[device.CameraSettings]
	photo   *fetchsync.Engine[device.PhotoSettings]
	gallery *fetchsync.Engine[[]device.File]
}

// newTestModel builds a model over engines that are never started. Edits stay
// pending because the virtual clock is never advanced.
func newTestModel(t *testing.T) (Model, testEngines) {
	t.Helper()
	clock := testutil.NewVirtualClock(time.Unix(0, 0))
	opts := fetchsync.Options{Clock: clock, UpdateDebounce: time.Second}

	cam := device.CameraSettings{ExposureMode: "auto", ISO: 100, AwbMode: "auto", ImageEffect: "none"}
	photo := device.PhotoSettings{Width: 1920, Height: 1080, Quality: 90}
	files := []device.File{
		{Name: "old.jpg", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Size: 1024},
		{Name: "new.jpg", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Size: 2048},
	}

	opts.Name = "camera"
	e := testEngines{camera: fetchsync.New[device.CameraSettings](echoTransport[device.CameraSettings]{cam}, cam, opts)}
	opts.Name = "photo"
	e.photo = fetchsync.New[device.PhotoSettings](echoTransport[device.PhotoSettings]{photo}, photo, opts)
	opts.Name = "gallery"
	e.gallery = fetchsync.New[[]device.File](fetchsync.FetchFunc[[]device.File](func(context.Context) ([]device.File, error) {
		return files, nil
	}), files, opts)
	t.Cleanup(func() {
		e.camera.Close()
		e.photo.Close()
		e.gallery.Close()
	})

	m := New(Options{
		Camera:    e.camera,
		Photo:     e.photo,
		Gallery:   e.gallery,
		Prefs:     prefs.Default(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	return m, e
}

func TestSettingsAdjustSubmitsEdit(t *testing.T) {
	m, e := newTestModel(t)
	require.Len(t, m.rows, len(cameraFields)+len(photoFields))
	assert.False(t, m.rows[0].pending())

	m, _ = press(t, m, runes("l"))

	snap := e.camera.Snapshot()
	assert.Equal(t, device.Cycle(device.ExposureModes, "auto", 1), snap.Data.ExposureMode)
	assert.True(t, snap.Input.Has("exposureMode"))
	assert.True(t, snap.IsUpdating)
	assert.True(t, m.rows[0].pending())
	assert.False(t, m.rows[1].pending())
	assert.Empty(t, m.flash)
}

func TestSettingsNavigationReachesPhotoRows(t *testing.T) {
	m, e := newTestModel(t)

	m, _ = press(t, m, runes("G"))
	assert.Equal(t, len(m.rows)-1, m.settingsRow)
	m, _ = press(t, m, runes("j"))
	assert.Equal(t, len(m.rows)-1, m.settingsRow, "cursor stays on the last row")

	// Last row is JPEG quality, stepped by 5.
	m, _ = press(t, m, runes("h"))
	assert.Equal(t, 85, e.photo.Snapshot().Data.Quality)
	assert.False(t, e.camera.Snapshot().IsUpdating)

	m, _ = press(t, m, runes("g"))
	assert.Equal(t, 0, m.settingsRow)
}

func TestAdjustSelectedReportsClosedEngine(t *testing.T) {
	m, e := newTestModel(t)
	e.camera.Close()

	m.adjustSelected(1)
	assert.True(t, m.flashErr)
	assert.Contains(t, m.flash, "Exposure mode")
	assert.Contains(t, m.flash, fetchsync.ErrClosed.Error())
}

func TestRefreshReportsSkippedResources(t *testing.T) {
	m, e := newTestModel(t)

	m, _ = press(t, m, runes("r"))
	assert.Empty(t, m.flash)

	m, _ = press(t, m, runes("l"))
	require.True(t, e.camera.Snapshot().IsUpdating)

	m, _ = press(t, m, runes("r"))
	assert.False(t, m.flashErr)
	assert.Contains(t, m.flash, "refresh skipped")
	assert.Contains(t, m.flash, "camera")
	assert.NotContains(t, m.flash, "photo")
}

func TestGalleryRejectsEdits(t *testing.T) {
	_, e := newTestModel(t)

	err := e.gallery.SubmitEdit([]byte(`{"name":"x.jpg"}`))
	assert.ErrorIs(t, err, fetchsync.ErrReadOnly)
	assert.False(t, e.gallery.Snapshot().IsUpdating)
	assert.Len(t, e.gallery.Snapshot().Data, 2)
}

func TestGallerySelection(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("2"))
	require.Equal(t, ViewGallery, m.currentView)

	files := m.files()
	require.Len(t, files, 2)
	assert.Equal(t, "new.jpg", files[0].Name, "newest first")

	m, _ = press(t, m, runes(" "))
	assert.Equal(t, []string{"new.jpg"}, m.selectedNames())
	assert.Equal(t, 1, m.galleryState.cursor)

	m, _ = press(t, m, runes("a"))
	assert.Equal(t, []string{"new.jpg", "old.jpg"}, m.selectedNames())

	m, _ = press(t, m, runes("c"))
	assert.Empty(t, m.selectedNames())
}

func TestDeleteWithoutClientIsNoop(t *testing.T) {
	m, _ := newTestModel(t)
	m.galleryState.selected["old.jpg"] = true
	assert.Nil(t, m.deleteSelected())
	assert.False(t, m.galleryState.deleting)
}

func TestHandleDeleteDone(t *testing.T) {
	m, _ := newTestModel(t)
	m.galleryState.selected["old.jpg"] = true
	m.galleryState.deleting = true

	m.handleDeleteDone(deleteDoneMsg{count: 1, err: errors.New("boom")})
	assert.True(t, m.flashErr)
	assert.Contains(t, m.flash, "boom")
	assert.Len(t, m.galleryState.selected, 1, "selection kept after failure")

	m.handleDeleteDone(deleteDoneMsg{count: 1})
	assert.False(t, m.flashErr)
	assert.Equal(t, "deleted 1 file(s)", m.flash)
	assert.Empty(t, m.galleryState.selected)
	assert.False(t, m.galleryState.deleting)
}

func TestViewCycling(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewGallery, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewLogs, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewSettings, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, ViewLogs, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewSettings, m.currentView)
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t)
	require.Equal(t, "Nightfox", m.theme.Name)

	m, cmd := press(t, m, runes("T"))
	assert.Equal(t, "Kanagawa", m.theme.Name)
	assert.Equal(t, "Kanagawa", m.prefs.Theme)
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(prefsSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	p, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", p.Theme)
}

func TestPrefsMsgAppliesTheme(t *testing.T) {
	m, _ := newTestModel(t)
	p := prefs.Default()
	p.Theme = "Slate"
	p.HorizontalLine = 20

	m, _ = press(t, m, prefsMsg(p))
	assert.Equal(t, "Slate", m.theme.Name)
	assert.Equal(t, "20", m.grid.inputs[0].Value())
}

func TestGridEditConfirm(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("o"))
	require.Equal(t, gridEditing, m.grid.editing)

	m.grid.inputs[0].SetValue("30")
	m.grid.inputs[1].SetValue("oops")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, gridIdle, m.grid.editing)
	assert.Equal(t, 30, m.prefs.HorizontalLine)
	assert.Equal(t, 50, m.prefs.VerticalLine, "malformed input keeps the old value")
	require.NotNil(t, cmd)
}

func TestGridEditEscapeRestores(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("o"))
	m.grid.inputs[0].SetValue("99")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, gridIdle, m.grid.editing)
	assert.Equal(t, "50", m.grid.inputs[0].Value())
	assert.Equal(t, 50, m.prefs.HorizontalLine)
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	m, _ = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	out := m.View()
	assert.Contains(t, out, "aperture")
	assert.Contains(t, out, "Exposure mode")
	assert.Contains(t, out, "Grid overlay")

	m, _ = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m, _ = press(t, m, runes("x"))
	assert.False(t, m.showHelp)
}

func TestChangedMsgRearmsWait(t *testing.T) {
	n := NewNotifier()
	m := New(Options{Changes: n.C()})

	n.Notify()
	n.Notify() // coalesced

	_, cmd := m.Update(changedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, changedMsg{}, cmd())

	select {
	case <-n.C():
		t.Fatal("second notification should have been coalesced")
	default:
	}
}

func TestGridPreview(t *testing.T) {
	want := strings.Join([]string{
		"┌────┐",
		"│  │ │",
		"│──┼─│",
		"│  │ │",
		"└────┘",
	}, "\n")
	assert.Equal(t, want, gridPreview(50, 50, 6, 5))
	assert.Empty(t, gridPreview(50, 50, 2, 5))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"25", 25},
		{" 30% ", 30},
		{"150", 100},
		{"-5", 0},
		{"", 42},
		{"abc", 42},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLine(tt.in, 42), "input %q", tt.in)
	}
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("update: %w", fetchsync.ErrReadOnly), "READ-ONLY"},
		{errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), "OFFLINE"},
		{errors.New("dial tcp: lookup camera.local: no such host"), "HOST NOT FOUND"},
		{errors.New("context deadline exceeded"), "TIMEOUT"},
		{errors.New("GET /api/settings/camera returned status 500"), "HTTP ERROR"},
		{errors.New("something else"), "ERROR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyConnectionError(tt.err))
	}
}

func TestSyncStatusLabel(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		st      syncStatus
		word    string
		trouble bool
	}{
		{"updating wins", syncStatus{updating: true, loading: true}, "saving", false},
		{"loading", syncStatus{loading: true}, "loading", false},
		{"offline", syncStatus{offline: true, err: errors.New("connection refused")}, "OFFLINE", true},
		{"single failure", syncStatus{err: errors.New("boom"), updated: now}, "retrying", true},
		{"never synced", syncStatus{}, "waiting", false},
		{"synced", syncStatus{updated: now}, "synced", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, trouble := tt.st.label()
			assert.Equal(t, tt.word, word)
			assert.Equal(t, tt.trouble, trouble)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "a...", truncate("abcdef", 4))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("abc", 0))

	assert.Equal(t, "ab...hij", truncateMiddle("abcdefghij", 8))
	assert.Equal(t, "short", truncateMiddle("short", 10))
}

func TestNextThemeWraps(t *testing.T) {
	names := ThemeNames()
	assert.Equal(t, names[0], NextTheme(names[len(names)-1]))
	assert.Equal(t, names[0], NextTheme("unknown"))
	assert.Equal(t, names[0], GetTheme("unknown").Name)
}
