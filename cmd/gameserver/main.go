// Command gameserver serves a small game whose outcomes are reported as
// typed errors and rendered by the error dispatcher.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/errdispatch/config"
	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
	"github.com/kbukum/errdispatch/observability"
	"github.com/kbukum/errdispatch/server"
	"github.com/kbukum/errdispatch/version"
)

const serviceName = "gameserver"

func main() {
	if err := run(); err != nil {
		logger.Error("gameserver failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var cfg config.ServiceConfig
	if err := config.LoadConfig(serviceName, &cfg, config.WithEnvPrefix(serviceName)); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging, cfg.Name)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []dispatch.Option{
		dispatch.WithRegistry(dispatch.NewRegistry()),
		dispatch.WithLogger(log),
		dispatch.WithReporter(observability.NewSpanReporter(dispatch.NewLogReporter(log))),
	}
	shutdownTelemetry, err := initTelemetry(ctx, cfg.Tracing, &opts)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	d, err := dispatch.FromConfig(cfg.Errors, opts...)
	if err != nil {
		return err
	}
	registerGameHandlers(d.Registry())

	srv := server.New(cfg.Server, log, d)
	registerGameRoutes(srv.GinEngine())
	srv.RegisterHealth(cfg.Name, cfg.Version)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("gameserver ready", logger.Fields(
		"addr", srv.Addr(),
		"environment", cfg.Environment,
		"debug", d.Debug(),
	))

	<-ctx.Done()
	log.Info("received shutdown signal, graceful shutdown starting")
	return srv.Stop(context.Background())
}

// initTelemetry installs the OTLP providers when tracing is enabled and adds
// the dispatch metrics observer to opts. The returned func flushes them.
func initTelemetry(ctx context.Context, cfg observability.Config, opts *[]dispatch.Option) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}
	tp, err := observability.InitTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp, err := observability.InitMeter(ctx, cfg)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, err
	}
	metrics, err := observability.NewDispatchMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
		return nil, err
	}
	*opts = append(*opts, dispatch.WithObserver(metrics))

	return func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn("meter shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}, nil
}
