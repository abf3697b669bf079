package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/db"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/gemini"
	"github.com/zulandar/ensemble/internal/logger"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/settings"
)

// app is everything a command needs to work with one ensemble.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	store   *ensemble.Store
	svc     *ensemble.Service
	gemini  *gemini.Client
}

type appOpts struct {
	// LogOutput receives structured logs; defaults to the command's stderr.
	LogOutput io.Writer
}

// openApp loads the config, opens the database and wires the ensemble
// service to the Gemini backend.
func openApp(cmd *cobra.Command, configPath string, opts appOpts) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	out := opts.LogOutput
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: out,
	})

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	settingsLog := logger.Component(log, "settings")
	st, err := settings.New(settings.Opts{DB: gormDB, Logger: &settingsLog})
	if err != nil {
		return nil, err
	}

	storeLog := logger.Component(log, "store")
	store, err := ensemble.Open(cmd.Context(), ensemble.StoreOpts{Settings: st, Logger: &storeLog})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New("ensemble"),
		store:   store,
	}

	geminiLog := logger.Component(log, "gemini")
	a.gemini, err = gemini.New(gemini.Opts{
		APIKey:      a.apiKey,
		ReplyModel:  cfg.Gemini.ReplyModel,
		SpeechModel: cfg.Gemini.SpeechModel,
		LiveModel:   cfg.Gemini.LiveModel,
		Logger:      &geminiLog,
	})
	if err != nil {
		return nil, err
	}

	fetcherLog := logger.Component(log, "fetcher")
	fetcher, err := ensemble.NewFetcher(ensemble.FetcherOpts{
		Generator:    a.gemini,
		HistoryLimit: cfg.Turn.HistoryLimit,
		Timeout:      time.Duration(cfg.Turn.FetchTimeoutMS) * time.Millisecond,
		Metrics:      a.metrics,
		Logger:       &fetcherLog,
	})
	if err != nil {
		return nil, err
	}

	delays := ensemble.DelaysFromConfig(cfg.Turn)
	serviceLog := logger.Component(log, "service")
	a.svc, err = ensemble.NewService(ensemble.ServiceOpts{
		Store:   store,
		Fetcher: fetcher,
		Scheduler: ensemble.NewScheduler(ensemble.SchedulerOpts{
			Stage:   store,
			Delays:  &delays,
			Metrics: a.metrics,
		}),
		Synthesizer: a.gemini,
		APIKey:      a.apiKey,
		Metrics:     a.metrics,
		Logger:      &serviceLog,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// apiKey prefers the stored key and falls back to the configured
// environment variable.
func (a *app) apiKey() string {
	if key := a.store.APIKey(); key != "" {
		return key
	}
	return os.Getenv(a.cfg.Gemini.APIKeyEnv)
}

// keySource describes where the active API key comes from.
func (a *app) keySource() string {
	switch {
	case a.store.APIKey() != "":
		return "stored"
	case os.Getenv(a.cfg.Gemini.APIKeyEnv) != "":
		return "$" + a.cfg.Gemini.APIKeyEnv
	default:
		return ""
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
