package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/aperture/internal/config"
	"github.com/five82/aperture/internal/device"
	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/prefs"
	"github.com/five82/aperture/internal/telemetry"
	"github.com/five82/aperture/internal/ui"
)

const shutdownTimeout = 2 * time.Second

// Options configure the aperture application. Zero values keep what the
// config file says.
type Options struct {
	ConfigPath     string
	PrefsPath      string // empty uses default ~/.config/aperture/prefs.toml
	Device         string // overrides api_bind
	PollInterval   time.Duration
	UpdateDebounce time.Duration
	MetricsAddr    string
	// LogWriter replaces the log file when set.
	LogWriter io.Writer
}

// Runtime holds everything built from the configuration. One engine exists
// per remote resource; all of them report to the same logger and metrics.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Client   *device.Client
	Metrics  *telemetry.Metrics
	Notifier *ui.Notifier

	Camera  *fetchsync.Engine[device.CameraSettings]
	Photo   *fetchsync.Engine[device.PhotoSettings]
	Gallery *fetchsync.Engine[[]device.File]

	closeLog func() error
}

// Setup loads configuration and builds the client, telemetry and engines.
// Engines are idle until Start. Callers must Close the runtime.
func Setup(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Device != "" {
		cfg.APIBind = opts.Device
	}
	if opts.PollInterval > 0 {
		cfg.PollIntervalMS = int(opts.PollInterval / time.Millisecond)
	}
	if opts.UpdateDebounce > 0 {
		cfg.UpdateDebounceMS = int(opts.UpdateDebounce / time.Millisecond)
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}

	client, err := device.NewClient(cfg.APIBind)
	if err != nil {
		return nil, fmt.Errorf("init device client: %w", err)
	}

	rt := &Runtime{
		Config:   cfg,
		Client:   client,
		Metrics:  telemetry.NewMetrics(),
		Notifier: ui.NewNotifier(),
		closeLog: func() error { return nil },
	}

	logOut := opts.LogWriter
	if logOut == nil {
		f, err := telemetry.OpenLogFile(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		logOut = f
		rt.closeLog = f.Close
	}
	rt.Logger = telemetry.NewLogger(logOut, cfg.SlogLevel())

	rt.Camera = fetchsync.New[device.CameraSettings](client.Camera(), device.CameraSettings{}, rt.engineOptions("camera"))
	rt.Photo = fetchsync.New[device.PhotoSettings](client.Photo(), device.PhotoSettings{}, rt.engineOptions("photo"))
	rt.Gallery = fetchsync.New[[]device.File](client.Gallery(), nil, rt.engineOptions("gallery"))
	return rt, nil
}

func (rt *Runtime) engineOptions(name string) fetchsync.Options {
	return fetchsync.Options{
		Name:           name,
		PollInterval:   rt.Config.PollInterval(),
		UpdateDebounce: rt.Config.UpdateDebounce(),
		Observer:       rt.Metrics,
		Logger:         rt.Logger.With("component", "sync"),
		OnChange:       rt.Notifier.Notify,
	}
}

// Start begins polling every resource.
func (rt *Runtime) Start() {
	rt.Camera.Start()
	rt.Photo.Start()
	rt.Gallery.Start()
}

// Close stops the engines and closes the log file.
func (rt *Runtime) Close() error {
	rt.Camera.Close()
	rt.Photo.Close()
	rt.Gallery.Close()
	return rt.closeLog()
}

// Run boots the aperture TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := Setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	prefsPath, err := prefs.Resolve(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	userPrefs, _ := prefs.Load(prefsPath)

	rt.Logger.Info("aperture starting",
		"device", rt.Client.BaseURL(),
		"poll", rt.Config.PollInterval(),
		"debounce", rt.Config.UpdateDebounce(),
	)
	rt.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if rt.Config.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, rt.Metrics, rt.Config.MetricsAddr, rt.Logger)
		})
	}

	updates := make(chan prefs.Prefs, 1)
	g.Go(func() error {
		err := prefs.Watch(gctx, prefsPath, func(p prefs.Prefs) { offer(updates, p) })
		if err != nil {
			// The UI still works without live reload.
			rt.Logger.Warn("prefs watcher stopped", "path", prefsPath, "error", err)
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:      gctx,
			Client:       rt.Client,
			Camera:       rt.Camera,
			Photo:        rt.Photo,
			Gallery:      rt.Gallery,
			Changes:      rt.Notifier.C(),
			PrefsUpdates: updates,
			Prefs:        userPrefs,
			PrefsPath:    prefsPath,
			LogPath:      logPathFor(opts, rt.Config),
			Logger:       rt.Logger.With("component", "ui"),
		})
	})

	err = g.Wait()
	rt.Logger.Info("aperture stopped", "error", err)
	return err
}

// serveMetrics exposes the metrics registry until ctx is done.
func serveMetrics(ctx context.Context, m *telemetry.Metrics, addr string, logger *slog.Logger) error {
	srv, errc := m.Serve(addr)
	logger.Info("metrics listening", "addr", addr)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		return nil
	}
}

// offer replaces any undelivered value in ch with p.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// logPathFor returns the file the logs view should tail. A custom LogWriter
// means there is no file.
func logPathFor(opts Options, cfg config.Config) string {
	if opts.LogWriter != nil {
		return ""
	}
	return cfg.LogPath()
}
