package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/scenelink/internal/app"
	"github.com/yndnr/scenelink/internal/infra/buildinfo"
	"github.com/yndnr/scenelink/internal/infra/shutdown"
	"github.com/yndnr/scenelink/internal/infra/tlsroots"
	"github.com/yndnr/scenelink/internal/server/config"
	"github.com/yndnr/scenelink/internal/server/httpserver"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		mode        = flag.String("mode", "", "Override mode: server, client or both")
		endpoint    = flag.String("endpoint", "", "Override the transport endpoint")
		sceneFile   = flag.String("scene", "", "Override the producer scene file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("scenelink-server %s\n", buildinfo.String())
		return nil
	}

	overrides := make(map[string]any)
	for key, v := range map[string]string{"mode": *mode, "endpoint": *endpoint, "scene.file": *sceneFile} {
		if v != "" {
			overrides[key] = v
		}
	}
	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting scenelink-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"mode", cfg.Mode)
	log.Debug("effective configuration", "config", config.Flatten(config.Sanitize(cfg)))

	metrics := metric.NewRegistry()
	a, err := app.New(cfg,
		app.WithLogger(log),
		app.WithMetrics(metrics),
		app.WithConfigFile(*configFile))
	if err != nil {
		return fmt.Errorf("init roles: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error { return a.Run(gctx) })

	if cfg.Admin.Addr != "" {
		var adminOpts []httpserver.Option
		if t := cfg.Admin.TLS; t.HasKeyPair() {
			tlsCfg, certs, err := tlsroots.NewServerConfig(tlsroots.Files{
				CertFile: t.CertFile,
				KeyFile:  t.KeyFile,
				CAFile:   t.CAFile,
			}, tlsroots.WithLogger(logger.Component("admin-tls")))
			if err != nil {
				return fmt.Errorf("admin tls: %w", err)
			}
			if err := certs.StartAsync(); err != nil {
				log.Warn("admin certificate rotation disabled", "error", err)
			}
			defer certs.Stop()
			adminOpts = append(adminOpts, httpserver.WithTLS(tlsCfg))
		}
		admin := httpserver.New(cfg.Admin.Addr, httpserver.NewRouter(httpserver.RouterConfig{
			Roles:     a,
			Metrics:   metrics.Handler(),
			Logger:    logger.Component("admin"),
			Token:     cfg.Admin.Token,
			RateLimit: cfg.Admin.RateLimit,
			RateBurst: cfg.Admin.RateBurst,
		}), adminOpts...)
		g.Go(func() error {
			log.Info("admin server listening", "addr", cfg.Admin.Addr,
				"auth", cfg.Admin.Token != "", "tls", len(adminOpts) > 0)
			if err := admin.Run(gctx, shutdown.DefaultTimeout); err != nil {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	sh := shutdown.NewHandler(shutdown.DefaultTimeout)
	sh.OnShutdown("roles", func(ctx context.Context) error {
		log.Info("stopping roles")
		cancel()
		done := make(chan error, 1)
		go func() { done <- g.Wait() }()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	// Returns on SIGINT/SIGTERM or as soon as a role or the admin server fails.
	if err := sh.Wait(gctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("scenelink-server stopped")
	return nil
}
