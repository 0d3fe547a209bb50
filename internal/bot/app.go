// Package bot wires the application: config, logging, state stores, rate
// limiter, reaper, Telegram adapter, and the batch orchestrator, and
// dispatches inbound updates to handlers.
package bot

import (
	"context"
	"path/filepath"

	"gramgrab/internal/config"
	"gramgrab/internal/insta"
	"gramgrab/internal/ratelimit"
	"gramgrab/internal/reaper"
	rtsup "gramgrab/internal/runtime/supervisor"
	"gramgrab/internal/storage"
	"gramgrab/internal/store"
	kit "gramgrab/internal/transport"
	tgadapter "gramgrab/internal/transport/telegram/adapter"
	logx "gramgrab/pkg/logx"
)

type App struct {
	log    logx.Logger
	logSvc *logx.Service
	cfgMgr *config.Manager

	adapter kit.Adapter
	prefs   *store.Store
	stats   *store.Store
	limiter *ratelimit.Limiter
	reaper  *reaper.Service
	audit   storage.Store
	orch    *Orchestrator

	sup     *rtsup.Supervisor
	updates chan kit.Update
}

func New(cfgPath string) (*App, error) {
	cfgMgr := config.NewManager(cfgPath)
	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	prefs := store.Open(filepath.Join(cfg.Store.Dir, "preferences.json"), log.With(logx.String("comp", "store.prefs")))
	stats := store.Open(filepath.Join(cfg.Store.Dir, "stats.json"), log.With(logx.String("comp", "store.stats")))

	limiter := ratelimit.New(cfg.PerMinute())

	busy, _ := config.ParseDurationField("audit.busy_timeout", cfg.Audit.BusyTimeout)
	audit, err := storage.Open(storage.Config{
		Driver:      cfg.Audit.Driver,
		Path:        cfg.Audit.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("comp", "audit")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	adapter, err := tgadapter.New(tgadapter.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.PollTimeout(),
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	rp := reaper.New(reaper.Config{
		Root:   cfg.StagingRoot(),
		Prefix: cfg.StagingPrefix(),
		MaxAge: cfg.StagingMaxAge(),
		Every:  cfg.SweepEvery(),
	}, log.With(logx.String("comp", "reaper")))

	resolver := insta.NewExecResolver("", cfg.StagingRoot(), cfg.StagingPrefix())

	a := &App{
		log:     log,
		logSvc:  logSvc,
		cfgMgr:  cfgMgr,
		adapter: adapter,
		prefs:   prefs,
		stats:   stats,
		limiter: limiter,
		reaper:  rp,
		audit:   audit,
	}
	a.orch = NewOrchestrator(OrchestratorConfig{
		AlbumMax:    cfg.AlbumMax(),
		CollageSize: cfg.CollageSize(),
	}, adapter, prefs, stats, limiter, resolver, audit, log.With(logx.String("comp", "orchestrator")))

	return a, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log.With(logx.String("comp", "app"))))
	a.updates = make(chan kit.Update, 128)

	if err := a.reaper.Start(a.sup.Context()); err != nil {
		return err
	}
	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}

	// One handler goroutine per inbound update: handlers across chats run
	// concurrently; per-key serialization lives in the stores.
	a.sup.Go0("updates.dispatch", func(c context.Context) {
		for {
			select {
			case <-c.Done():
				return
			case up := <-a.updates:
				a.sup.Go0("update.handle", func(hc context.Context) {
					a.handleUpdate(hc, up)
				})
			}
		}
	})

	// Config hot reload: log level and rate quota apply live.
	reloads := a.cfgMgr.Subscribe(1)
	a.sup.Go("config.watch", a.cfgMgr.Watch)
	a.sup.Go0("config.apply", func(c context.Context) {
		for {
			select {
			case <-c.Done():
				return
			case cfg := <-reloads:
				a.applyReload(cfg)
			}
		}
	})

	a.log.Info("started")
	return nil
}

func (a *App) applyReload(cfg *config.Config) {
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.limiter.SetCapacity(cfg.PerMinute())
	a.log.Info("config reloaded", logx.Int("per_minute", cfg.PerMinute()))
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup != nil {
		a.sup.Cancel()
	}
	if a.adapter != nil {
		_ = a.adapter.Stop(ctx)
	}
	a.reaper.Stop()
	if a.sup != nil {
		_ = a.sup.Wait(ctx)
	}
	if a.audit != nil {
		_ = a.audit.Close()
	}
	if a.logSvc != nil {
		_ = a.logSvc.Close()
	}
	return nil
}
