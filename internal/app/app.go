package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/spotter/internal/config"
	"github.com/five82/spotter/internal/kv"
	"github.com/five82/spotter/internal/logging"
	"github.com/five82/spotter/internal/platform"
	"github.com/five82/spotter/internal/prefs"
	"github.com/five82/spotter/internal/queue"
	"github.com/five82/spotter/internal/remote"
	"github.com/five82/spotter/internal/resttimer"
	"github.com/five82/spotter/internal/session"
	"github.com/five82/spotter/internal/state"
	"github.com/five82/spotter/internal/syncer"
	"github.com/five82/spotter/internal/ui"
	"github.com/five82/spotter/internal/workout"
)

// Options configure the spotter application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/spotter/prefs.toml
	Debug      bool
}

// App holds every long-lived component. Open builds it; Close releases it.
type App struct {
	Config    config.Config
	PrefsPath string
	Logger    *zap.Logger

	Store        kv.Store
	Client       *remote.Client
	Reachability *state.Store
	Inbox        *platform.Inbox
	Audio        *platform.Bell

	Session *session.Manager
	Timer   *resttimer.Engine
	Queue   *queue.Queue
	Syncer  *syncer.Coordinator
	Workout *workout.Coordinator

	prefsMu sync.Mutex
	prefs   prefs.Prefs
}

// Open loads configuration and wires the engine. Persisted session and
// timer state is restored as part of construction.
func Open(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, err := logging.New(cfg.LogPath(), opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := remote.NewClient(cfg.APIURL)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init workout client: %w", err)
	}

	a := &App{
		Config:       cfg,
		PrefsPath:    opts.PrefsPath,
		Logger:       logger,
		Client:       client,
		Reachability: &state.Store{},
		prefs:        userPrefs,
	}

	store, err := kv.Open(cfg.DBPath())
	if err != nil {
		// Degrade to memory so a workout can still be logged this run.
		logger.Error("open durable store, continuing in memory", zap.String("path", cfg.DBPath()), zap.Error(err))
		a.Store = kv.NewMemory()
	} else {
		a.Store = store
	}

	a.Inbox = platform.NewInbox(platform.ParsePermission(userPrefs.Notifications), a.savePermission)
	a.Audio = platform.NewBell(os.Stderr)

	a.Session = session.New(session.Options{
		Store:  a.Store,
		Logger: logger.Named("session"),
	})
	a.Timer = resttimer.New(resttimer.Options{
		Store:            a.Store,
		Logger:           logger.Named("resttimer"),
		Audio:            a.Audio,
		Vibrator:         platform.NewLogVibrator(logger.Named("haptics")),
		Notifier:         a.Inbox,
		DisableSound:     !userPrefs.Sound,
		DisableVibration: !userPrefs.Vibration,
	})
	a.Queue = queue.New(a.Store, nil, logger.Named("queue"))
	a.Syncer = syncer.New(a.Queue, logger.Named("sync"), a.reportSync)
	a.Syncer.Register(queue.TypePersistWorkout, persistExecutor(client))
	a.Workout = workout.New(workout.Options{
		Session:      a.Session,
		Timer:        a.Timer,
		Queue:        a.Queue,
		Saver:        client,
		Connectivity: a.Reachability,
		Syncer:       a.Syncer,
		Logger:       logger.Named("workout"),
		UserID:       cfg.UserID,
		RestSeconds:  cfg.RestSeconds,
	})

	logger.Info("spotter opened",
		zap.String("api_url", cfg.APIURL),
		zap.String("db", cfg.DBPath()),
		zap.Bool("session_active", a.Session.Active()),
		zap.Int("queued", a.Queue.Len()))
	return a, nil
}

// Prefs returns the current preferences.
func (a *App) Prefs() prefs.Prefs {
	a.prefsMu.Lock()
	defer a.prefsMu.Unlock()
	return a.prefs
}

// SetTheme records the theme choice.
func (a *App) SetTheme(name string) {
	a.prefsMu.Lock()
	a.prefs.Theme = name
	p := a.prefs
	a.prefsMu.Unlock()
	a.writePrefs(p)
}

func (a *App) savePermission(perm platform.Permission) {
	a.prefsMu.Lock()
	a.prefs.Notifications = string(perm)
	p := a.prefs
	a.prefsMu.Unlock()
	a.writePrefs(p)
}

func (a *App) writePrefs(p prefs.Prefs) {
	if err := prefs.Save(a.PrefsPath, p); err != nil {
		a.Logger.Warn("save prefs", zap.Error(err))
	}
}

func (a *App) reportSync(s syncer.Summary) {
	msg := s.Message()
	a.Reachability.RecordSync(msg)
	_ = a.Inbox.Notify("Sync", msg)
}

func persistExecutor(saver remote.WorkoutSaver) syncer.Executor {
	return func(ctx context.Context, payload json.RawMessage) error {
		w, err := remote.DecodeWorkout(payload)
		if err != nil {
			return fmt.Errorf("decode queued workout: %w", err)
		}
		if _, err := saver.PersistWorkout(ctx, w); err != nil {
			return err
		}
		return nil
	}
}

// Start launches the background parts: the reachability prober, the sync
// watcher, an initial drain pass and, when configured, the metrics
// endpoint. They all stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	online := make(chan bool, 1)
	StartProber(ctx, a.Reachability, a.Client, a.Config.ProbeEvery, online, a.Logger.Named("probe"))
	go a.Syncer.Watch(ctx, online)
	go a.Syncer.Drain(ctx)

	if a.Config.MetricsAddr != "" {
		a.serveMetrics(ctx, a.Config.MetricsAddr)
	}
}

func (a *App) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.Logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// Close stops the engine tickers and closes the durable store. Persisted
// session and timer state is kept for the next run.
func (a *App) Close() error {
	a.Timer.Close()
	a.Session.Close()
	err := a.Store.Close()
	_ = a.Logger.Sync()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Run opens the app, optionally loads a routine, starts the background
// parts and runs the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options, templatePath string) error {
	a, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if templatePath != "" {
		w, err := a.Workout.LoadTemplateFile(templatePath)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}
		a.Logger.Info("routine loaded", zap.String("path", templatePath), zap.String("name", w.Name))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Start(ctx)

	return ui.Run(ui.Options{
		Context:      ctx,
		Workout:      a.Workout,
		Session:      a.Session,
		Timer:        a.Timer,
		Queue:        a.Queue,
		Syncer:       a.Syncer,
		Reachability: a.Reachability,
		Inbox:        a.Inbox,
		ThemeName:    a.Prefs().Theme,
		OnTheme:      a.SetTheme,
	})
}
