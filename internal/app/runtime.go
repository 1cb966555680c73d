package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/command"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/device"
	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/logging"
	"github.com/brewdash/brewdash/internal/persistence"
	"github.com/brewdash/brewdash/internal/platform"
	"github.com/brewdash/brewdash/internal/session"
)

const shutdownFlushTimeout = 3 * time.Second

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB

	SnapshotRepo *persistence.SnapshotRepo
	SettingsRepo *persistence.SettingsRepo
	WriterQueue  *persistence.WriterQueue

	Machine    *domain.MachineStore
	Buffer     *domain.TelemetryBuffer
	ShotTimer  *domain.ShotTimer
	Projection *domain.SnapshotProjection

	Stream     *SwitchableStream
	Device     *device.Client
	Dispatcher *command.Dispatcher
	Session    *session.Manager

	login          platform.LoginRegistrar
	offline        bool
	sessionStarted bool
	closeOnce      sync.Once
}

// Options tunes which parts of the runtime are started.
type Options struct {
	// Offline keeps the stream session off. Device commands still work.
	Offline bool
	// LogOutput receives console logs; stdout when nil.
	LogOutput io.Writer
	// Login keeps the login entry in line with ui.autostart. Nil leaves it alone.
	Login platform.LoginRegistrar
}

func Initialize(parent context.Context, opts Options) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}

	return InitializeWithPaths(parent, paths, opts)
}

// InitializeWithPaths builds the runtime around an explicit file layout.
// The session starts only once the device config is valid.
func InitializeWithPaths(parent context.Context, paths Paths, opts Options) (*Runtime, error) {
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:     ctx,
		cancel:  cancel,
		Paths:   paths,
		Config:  cfg,
		login:   opts.Login,
		offline: opts.Offline,
	}

	logMgr := logging.NewManager(opts.LogOutput)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting brewdash runtime", "version", BuildVersion(), "build_date", BuildDateYMD())

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()

		return nil, err
	}
	rt.DB = db
	rt.SnapshotRepo = persistence.NewSnapshotRepo(db, logMgr.Logger("persistence"))
	rt.SettingsRepo = persistence.NewSettingsRepo(db)

	rt.Machine = domain.NewMachineStore()
	rt.Buffer = domain.NewTelemetryBuffer(cfg.Sync.MaxSeriesPoints)
	rt.ShotTimer = domain.NewShotTimer(nil)
	if err := domain.LoadStoresFromRepositories(ctx, rt.Machine, rt.Buffer, rt.SnapshotRepo, rt.SettingsRepo); err != nil {
		_ = rt.Close()

		return nil, err
	}

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), WriterQueueSize)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue

	stream, err := NewConnectionStream(cfg.Device)
	if err != nil {
		_ = rt.Close()

		return nil, fmt.Errorf("initialize stream: %w", err)
	}
	rt.Stream = stream

	rt.Device = device.NewClient(device.ClientConfig{
		Host:      cfg.Device.Host,
		Port:      cfg.Device.HTTPPort,
		Brew:      device.BrewValues{On: cfg.Device.BrewOnValue, Off: cfg.Device.BrewOffValue},
		UserAgent: UserAgent(),
		Logger:    logMgr.Logger("device"),
	})
	rt.Dispatcher = command.NewDispatcher(rt.Device, rt.Machine, rt.SettingsRepo, writerQueue, b, command.Config{
		Debounce:     time.Duration(cfg.Sync.DebounceMS) * time.Millisecond,
		SingleFlight: cfg.Sync.SingleFlight,
		Logger:       logMgr.Logger("command"),
	})
	rt.Session = session.NewManager(stream, rt.Machine, rt.Buffer, b, session.Config{
		ReconnectDelay: time.Duration(cfg.Sync.ReconnectDelayMS) * time.Millisecond,
		MaxAttempts:    cfg.Sync.MaxReconnectAttempts,
		Logger:         logMgr.Logger("session"),
	})

	rt.Projection = domain.NewSnapshotProjection(
		rt.Machine,
		rt.Buffer,
		rt.SnapshotRepo,
		writerQueue,
		time.Duration(cfg.Sync.SnapshotIntervalMS)*time.Millisecond,
		logMgr.Logger("snapshot"),
	)
	rt.Projection.Start(ctx, b)
	go rt.followShotTimer(ctx, b.Subscribe(connectors.TopicMachineState))

	if err := rt.syncLogin(cfg.UI, "startup"); err != nil {
		slog.Warn("failed to sync login start", "error", err)
	}

	switch err := cfg.Validate(); {
	case opts.Offline:
		slog.Debug("offline runtime, stream stays off")
	case err != nil:
		slog.Warn("device is not configured, stream stays off", "error", err)
	default:
		rt.startSession()
	}

	return rt, nil
}

func (r *Runtime) startSession() {
	r.mu.Lock()
	started := r.sessionStarted
	r.sessionStarted = true
	r.mu.Unlock()

	if started {
		r.Session.Connect()

		return
	}
	r.Session.Start(r.Ctx)
}

// Toggle switches the stream on or off. Before the first start it opens the
// session, provided the device config is usable.
func (r *Runtime) Toggle() {
	r.mu.RLock()
	started := r.sessionStarted
	cfg := r.Config
	r.mu.RUnlock()

	if started {
		r.Session.Toggle()

		return
	}
	if r.offline {
		return
	}
	if err := cfg.Validate(); err != nil {
		slog.Warn("cannot connect: device is not configured", "error", err)

		return
	}
	r.startSession()
}

func (r *Runtime) ClearSeries() {
	if r.Session != nil {
		r.Session.ClearSeries()
	}
}

// followShotTimer drives the shot timer from the brew switch while the
// auto mode is on.
func (r *Runtime) followShotTimer(ctx context.Context, sub bus.Subscription) {
	defer r.Bus.Unsubscribe(sub, connectors.TopicMachineState)
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub:
			if !ok {
				return
			}
			update, ok := raw.(domain.MachineUpdate)
			if !ok {
				continue
			}
			if r.CurrentConfig().UI.AutoShotTimer {
				r.ShotTimer.Follow(update.State)
			}
		}
	}
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

// CurrentConnStatus returns the last status the session published, or one
// derived from config before the session has started.
func (r *Runtime) CurrentConnStatus() connectors.ConnectionStatus {
	r.mu.RLock()
	started := r.sessionStarted
	cfg := r.Config
	r.mu.RUnlock()

	if !started || r.Session == nil {
		status := ConnectionStatusFromConfig(cfg.Device)
		status.State = connectors.ConnectionStateDisconnected

		return status
	}

	return r.Session.Status()
}

func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	previous := r.Config
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()

		return err
	}
	r.Config = cfg
	r.mu.Unlock()

	if err := r.LogManager.Configure(cfg.Logging, r.Paths.LogFile); err != nil {
		return err
	}

	r.Device.SetEndpoint(cfg.Device.Host, cfg.Device.HTTPPort)
	r.Device.SetBrewValues(device.BrewValues{On: cfg.Device.BrewOnValue, Off: cfg.Device.BrewOffValue})
	if previous.Device != cfg.Device {
		if err := r.Stream.Apply(cfg.Device); err != nil {
			return err
		}
		if !r.offline {
			slog.Info("device config changed, reconnecting", "target", r.Stream.StatusTarget())
			r.startSession()
		}
	}
	if previous.UI.Autostart != cfg.UI.Autostart || previous.UI.StartMinimized != cfg.UI.StartMinimized {
		if err := r.syncLogin(cfg.UI, "config_save"); err != nil {
			return &LoginSyncWarning{Err: err}
		}
	}

	return nil
}

// ClearDatabase wipes the stored snapshot and settings cache and empties
// the chart. Live readings come back with the next stream message.
func (r *Runtime) ClearDatabase() error {
	if r.DB == nil {
		return fmt.Errorf("database is not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := persistence.ClearDatabase(ctx, r.DB); err != nil {
		return err
	}
	if r.Session != nil {
		r.Session.ClearSeries()
	}
	if r.ShotTimer != nil {
		r.ShotTimer.Reset()
	}
	slog.Info("database cleared")

	return nil
}

// Close stops producers before the bus so no publish can block on a
// shut-down bus, then flushes the final snapshot.
func (r *Runtime) Close() error {
	var errs []error
	r.closeOnce.Do(func() {
		if r.Dispatcher != nil {
			r.Dispatcher.Close()
		}
		if r.Session != nil {
			r.Session.Close()
		}
		if r.cancel != nil {
			r.cancel()
		}
		if r.WriterQueue != nil {
			select {
			case <-r.WriterQueue.Done():
			case <-time.After(shutdownFlushTimeout):
				slog.Warn("writer queue did not stop in time")
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			r.WriterQueue.Drain(flushCtx)
			if r.Projection != nil {
				r.Projection.Flush(flushCtx)
			}
			cancel()
		}
		if r.Bus != nil {
			r.Bus.Close()
		}
		if r.DB != nil {
			if err := r.DB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close db: %w", err))
			}
		}
		if r.LogManager != nil {
			if err := r.LogManager.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close log: %w", err))
			}
		}
	})

	return errors.Join(errs...)
}
