package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"pewsched/internal/eventbus"
	"pewsched/internal/rules"
	"pewsched/internal/sampler"
	"pewsched/internal/storage"
	logx "pewsched/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *ConfigManager
	sup  *Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	sampler *sampler.Service
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	set, sc, err := validate(cfg)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	// Journal (optional)
	var store storage.Store
	if jc, rps, enabled, err := mapJournalConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(jc, log.With(logx.String("comp", "journal")))
		if err != nil {
			return nil, err
		}
		store = storage.Throttled(st, rps)
		log.Info("journal enabled", logx.String("driver", jc.Driver), logx.Int("rate_per_sec", rps))
	}

	smp := sampler.New(sc, set, log.With(logx.String("comp", "sampler")), bus, store)

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		sampler: smp,
	}, nil
}

func (a *App) Sampler() *sampler.Service { return a.sampler }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, WithLogger(a.log), WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *Config) error {
		_, _, err := validate(cfg)
		return err
	})

	if err := a.sampler.Seed(a.sup.Context()); err != nil {
		a.log.Warn("journal seed failed; starting without history", logx.Err(err))
	}

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if a.log.Enabled(logx.LevelDebug) {
					a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time), logx.Any("data", e.Data))
				}
			}
		}
	})

	if a.sampler.Enabled() {
		if err := a.sampler.Start(a.sup.Context()); err != nil {
			return err
		}
	} else {
		a.log.Info("sampler disabled via config")
	}

	sub := a.cfgm.Subscribe(8)
	// Captured before the goroutine runs: a reload committed in between must
	// still show up as a change.
	lastApplied := a.cfgm.Get()
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.GoRestart("config.watch", a.cfgm.Watch, time.Second, 30*time.Second)

	a.log.Info("app started", logx.Int("rules", len(a.cfgm.Get().Rules)))
	return nil
}

// applyConfig pushes newCfg into the running services. The diff against
// oldCfg only shapes the log output; the config is always applied.
func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *Config) {
	sections, attrs, ruleChanges := SummarizeConfigChange(oldCfg, newCfg)
	if len(ruleChanges) > 0 {
		a.log.Debug("rule changes detected", logx.Any("rules", ruleChanges))
	}
	if slices.Contains(sections, "journal") {
		a.log.Warn("journal config changed; restart required for changes to take effect")
	}

	a.logs.Apply(mapLoggingConfig(newCfg))

	// The validator already accepted newCfg; a failure here means it was
	// bypassed, so keep the running rules.
	set, sc, err := validate(newCfg)
	if err != nil {
		a.log.Warn("invalid config; keeping previous", logx.Err(err))
		return
	}
	wasEnabled := a.sampler.Enabled()
	if err := a.sampler.Apply(sc, set); err != nil {
		a.log.Warn("sampler apply failed", logx.Err(err))
	}
	switch {
	case wasEnabled && !sc.Enabled:
		a.log.Info("sampler disabled via config")
		a.sampler.Stop()
	case !wasEnabled && sc.Enabled:
		a.log.Info("sampler enabled via config")
		if err := a.sampler.Start(ctx); err != nil {
			a.log.Warn("sampler start failed", logx.Err(err))
		}
	case sc.Enabled:
		// Re-evaluate right away so edited rules take effect without
		// waiting for the next tick.
		a.sampler.Tick()
	}

	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return a.close()
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	a.sup.Cancel()

	a.sampler.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.sup.Wait(waitCtx); err != nil {
		a.log.Warn("supervisor wait", logx.Err(err))
	}
	if n := storage.Dropped(a.store); n > 0 {
		a.log.Warn("journal writes dropped by rate limit", logx.Uint64("dropped", n))
	}

	a.log.Info("stopped")
	return a.close()
}

func (a *App) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.logs != nil {
		a.logs.Close()
	}
	return err
}

// Evaluate loads the config at cfgPath and evaluates every rule at dt.
// Nothing is journaled or published.
func Evaluate(cfgPath string, dt civil.DateTime) ([]rules.State, error) {
	cfg, err := NewConfigManager(cfgPath).Parse()
	if err != nil {
		return nil, err
	}
	set, _, err := validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	return set.Eval(dt), nil
}

// Now returns the current civil date-time in the sampler's configured zone.
func Now(cfgPath string) (civil.DateTime, error) {
	cfg, err := NewConfigManager(cfgPath).Parse()
	if err != nil {
		return civil.DateTime{}, err
	}
	sc, err := mapSamplerConfig(cfg)
	if err != nil {
		return civil.DateTime{}, err
	}
	loc := sc.Location
	if loc == nil {
		loc = time.Local
	}
	return civil.DateTimeOf(time.Now().In(loc)), nil
}
