package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/infra/confloader"
	"github.com/yndnr/scenelink/internal/server/config"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
)

// App runs the roles selected by the configuration.
type App struct {
	cfg        *config.ScenelinkConfig
	configFile string
	log        logger.Logger
	metrics    *metric.Registry

	consumer *ConsumerRole
	producer *ProducerRole

	ready atomic.Bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(a *App) { a.metrics = m }
}

// WithConfigFile names the file cfg was loaded from. When set, a change to
// the file reloads the log level.
func WithConfigFile(path string) Option {
	return func(a *App) { a.configFile = path }
}

// New builds the roles for cfg. cfg must have passed config.Verify.
func New(cfg *config.ScenelinkConfig, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Component("app")
	}
	if a.metrics == nil {
		a.metrics = metric.NewRegistry()
	}

	role, err := config.ParseRole(cfg.Mode)
	if err != nil {
		return nil, err
	}

	gauges := metric.NewCollector()
	if role.Has(config.RoleServer) {
		a.consumer, err = NewConsumer(cfg, a.log.With("role", "consumer"), a.metrics)
		if err != nil {
			return nil, fmt.Errorf("consumer: %w", err)
		}
		a.consumer.queueGauges(gauges)
	}
	if role.Has(config.RoleClient) {
		a.producer, err = NewProducer(cfg, a.log.With("role", "producer"), a.metrics)
		if err != nil {
			return nil, fmt.Errorf("producer: %w", err)
		}
		a.producer.queueGauges(gauges)
	}
	a.metrics.MustRegister(gauges)
	return a, nil
}

// Consumer returns the consumer role, or nil when it is not enabled.
func (a *App) Consumer() *ConsumerRole { return a.consumer }

// Producer returns the producer role, or nil when it is not enabled.
func (a *App) Producer() *ProducerRole { return a.producer }

// Metrics returns the registry shared by all roles.
func (a *App) Metrics() *metric.Registry { return a.metrics }

// Ready reports whether the roles have started.
func (a *App) Ready() bool { return a.ready.Load() }

// ConsumerStatus returns the consumer status or scene.ErrRoleDisabled.
func (a *App) ConsumerStatus() (ConsumerStatus, error) {
	if a.consumer == nil {
		return ConsumerStatus{}, scene.ErrRoleDisabled.WithDetails("server")
	}
	return a.consumer.Status(), nil
}

// ProducerStatus returns the producer status or scene.ErrRoleDisabled.
func (a *App) ProducerStatus() (ProducerStatus, error) {
	if a.producer == nil {
		return ProducerStatus{}, scene.ErrRoleDisabled.WithDetails("client")
	}
	return a.producer.Status(), nil
}

// Run starts the roles and blocks until ctx is cancelled or a role fails.
// When both roles run in one process the producer dials the address the
// consumer actually bound.
func (a *App) Run(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Bind(); err != nil {
			return err
		}
		if a.producer != nil {
			a.producer.SetEndpoint(a.consumer.Endpoint())
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	watcher, err := a.startWatcher()
	if err != nil {
		return err
	}
	if watcher != nil {
		g.Go(func() error {
			<-gctx.Done()
			return watcher.Stop()
		})
	}

	if a.consumer != nil {
		g.Go(func() error { return a.consumer.Run(gctx) })
	}
	if a.producer != nil {
		g.Go(func() error { return a.producer.Run(gctx) })
	}
	a.ready.Store(true)
	a.log.Info("roles started", "mode", a.cfg.Mode)

	err = g.Wait()
	a.ready.Store(false)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startWatcher watches the config file and, when scene.watch is set, the
// producer scene file. It returns nil when there is nothing to watch.
func (a *App) startWatcher() (*confloader.Watcher, error) {
	sceneFile := ""
	if a.producer != nil && a.cfg.Scene.Watch {
		sceneFile = a.cfg.Scene.File
	}
	if a.configFile == "" && sceneFile == "" {
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(a.log.With("component", "watcher")))
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, path := range []string{a.configFile, sceneFile} {
		if path == "" {
			continue
		}
		if err := w.Watch(path); err != nil {
			w.Stop()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w.OnChange(func(path string) {
		switch {
		case samePath(path, sceneFile):
			if err := a.producer.ReloadScene(); err != nil {
				a.log.Warn("scene reload failed", "file", path, "error", err)
			}
		case samePath(path, a.configFile):
			a.reloadConfig()
		}
	})
	w.StartAsync()
	return w, nil
}

// reloadConfig applies the settings that can change at runtime. Only the
// log level is reloaded; everything else needs a restart.
func (a *App) reloadConfig() {
	cfg, err := config.Load(a.configFile, nil)
	if err != nil {
		a.log.Warn("config reload failed", "file", a.configFile, "error", err)
		return
	}
	if cfg.Log.Level != logger.GetLevel() {
		logger.SetLevel(cfg.Log.Level)
		a.log.Info("log level changed", "level", cfg.Log.Level)
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
