package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/aperture/internal/device"
	"github.com/five82/aperture/internal/state"
	"github.com/five82/aperture/internal/telemetry"
)

// fakeCamera serves the camera settings resource and records every write.
type fakeCamera struct {
	mu       sync.Mutex
	settings device.CameraSettings
	writes   []device.CameraSettings
}

func (f *fakeCamera) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != device.CameraSettingsPath {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Method == http.MethodPost {
		var body device.CameraSettings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.writes = append(f.writes, body)
		f.settings = body
	}
	_ = json.NewEncoder(w).Encode(f.settings)
}

func (f *fakeCamera) recorded() []device.CameraSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.CameraSettings(nil), f.writes...)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSetupAppliesOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
api_bind = "camera.local:80"
poll_interval_ms = 1000
metrics_addr = "127.0.0.1:9100"
`)

	var logs bytes.Buffer
	rt, err := Setup(Options{
		ConfigPath:   path,
		Device:       "10.0.0.5:8080",
		PollInterval: 250 * time.Millisecond,
		LogWriter:    &logs,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Equal(t, "10.0.0.5:8080", rt.Config.APIBind)
	assert.Equal(t, 250*time.Millisecond, rt.Config.PollInterval())
	assert.Equal(t, 300*time.Millisecond, rt.Config.UpdateDebounce())
	assert.Equal(t, "127.0.0.1:9100", rt.Config.MetricsAddr)
	assert.Equal(t, "http://10.0.0.5:8080", rt.Client.BaseURL())
	assert.Equal(t, "camera", rt.Camera.Name())
	assert.Equal(t, "gallery", rt.Gallery.Name())
}

func TestSetupRejectsBadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `log_level = "loud"`)

	_, err := Setup(Options{ConfigPath: path, LogWriter: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRuntimeWritesEditBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cam := &fakeCamera{settings: device.CameraSettings{ExposureMode: "auto", ISO: 100, AwbMode: "auto"}}
	srv := httptest.NewServer(cam)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	rt, err := Setup(Options{
		ConfigPath:     filepath.Join(t.TempDir(), "missing.toml"),
		Device:         srv.Listener.Addr().String(),
		UpdateDebounce: 10 * time.Millisecond,
		LogWriter:      &logs,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rt.Camera.Start()
	snap, err := Await(ctx, rt.Camera, rt.Notifier.C(), Synced[device.CameraSettings])
	require.NoError(t, err)
	require.NoError(t, snap.LastError)
	assert.Equal(t, 100, snap.Data.ISO)

	p, err := state.Field("iso", 400)
	require.NoError(t, err)
	require.NoError(t, rt.Camera.SubmitEdit(p))

	snap, err = Await(ctx, rt.Camera, rt.Notifier.C(), Settled[device.CameraSettings])
	require.NoError(t, err)
	require.NoError(t, snap.LastError)
	assert.Equal(t, 400, snap.Data.ISO)
	assert.Equal(t, "auto", snap.Data.ExposureMode)

	writes := cam.recorded()
	require.Len(t, writes, 1)
	assert.Equal(t, 400, writes[0].ISO)
	assert.Equal(t, "auto", writes[0].AwbMode, "write carries the whole resource")
}

func TestAwaitHonoursContext(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	rt, err := Setup(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		LogWriter:  &bytes.Buffer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Never started, so never synced.
	_, err = Await(ctx, rt.Photo, rt.Notifier.C(), Synced[device.PhotoSettings])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOfferKeepsLatest(t *testing.T) {
	ch := make(chan int, 1)
	offer(ch, 1)
	offer(ch, 2)
	offer(ch, 3)

	assert.Equal(t, 3, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestServeMetricsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveMetrics(ctx, telemetry.NewMetrics(), "127.0.0.1:0", telemetry.NewLogger(nil, 0))
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveMetrics did not return")
	}
}

func TestLogPathFor(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	rt, err := Setup(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		LogWriter:  &bytes.Buffer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Empty(t, logPathFor(Options{LogWriter: &bytes.Buffer{}}, rt.Config))
	assert.Equal(t, rt.Config.LogPath(), logPathFor(Options{}, rt.Config))
}
