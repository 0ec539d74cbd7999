package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/pageflow"
	"github.com/aretw0/pageflow/internal/config"
	"github.com/aretw0/pageflow/internal/demo"
	"github.com/aretw0/pageflow/internal/logging"
	httpAdapter "github.com/aretw0/pageflow/pkg/adapters/http"
	"github.com/aretw0/pageflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/pageflow/pkg/adapters/redis"
	"github.com/aretw0/pageflow/pkg/manifest"
	"github.com/aretw0/pageflow/pkg/observability"
	"github.com/aretw0/pageflow/pkg/ports"
)

// app is the wired engine and its collaborators.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *pageflow.Engine
	metrics  *prometheus.Registry
	journal  ports.ErrorJournal
	closers  []io.Closer
	manifest *manifest.Manifest
}

// loadApp reads the config named by the command flags and wires the app.
func loadApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	if m, _ := cmd.Flags().GetString("manifest"); m != "" {
		cfg.Manifest = m
	}

	logger := logging.NewWithFormat(logOut, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	return newApp(cfg, logger)
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: prometheus.NewRegistry()}
	a.metrics.MustRegister(collectors.NewGoCollector())

	if cfg.Redis.Enabled {
		j := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithStream(cfg.Redis.Stream),
		)
		a.journal = j
		a.closers = append(a.closers, j)
		logger.Info("Journaling page errors to redis", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
	} else {
		a.journal = memory.NewJournal(memory.DefaultCapacity)
	}

	m, err := loadManifest(cfg.Manifest)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.manifest = m

	cat := demo.Catalog(a.journal, logger)
	globals, err := m.Globals(cat)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []pageflow.Option{
		pageflow.WithLogger(logger),
		pageflow.WithCacheSize(cfg.Cache.Size),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, pageflow.WithHooks(observability.NewMetrics(a.metrics).Hooks()))
	}
	for _, g := range globals {
		opts = append(opts, pageflow.WithGlobalFilter(g.Filter, g.Order))
	}

	eng, err := pageflow.New(opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if _, err := m.Apply(eng, cat); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to register pages: %w", err)
	}
	a.engine = eng
	return a, nil
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return demo.Manifest()
	}
	return manifest.Load(path)
}

// server returns the HTTP host of the engine.
func (a *app) server() *httpAdapter.Server {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, httpAdapter.WithMetrics(a.cfg.Metrics.Path,
			promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}),
		))
	}
	return httpAdapter.NewServer(a.engine, opts...)
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
