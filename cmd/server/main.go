package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/hiroki-koketsu/tasklists/internal/config"
	"github.com/hiroki-koketsu/tasklists/internal/handler"
	"github.com/hiroki-koketsu/tasklists/internal/telemetry"
	"github.com/hiroki-koketsu/tasklists/internal/usecase"
)

func main() {
	// Create a basic logger for startup (before OTel is initialized)
	startupLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		startupLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	startupLogger.Info("starting application",
		slog.String("service", cfg.OTel.ServiceName),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.Server.Port),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("otel_enabled", cfg.OTel.Enabled),
	)

	ctx := context.Background()
	logger := telemetry.NewJSONLogger(os.Stdout, cfg.App.Debug)

	if cfg.OTel.Enabled {
		opts := telemetry.Options{
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTel.OTLPEndpoint,
		}

		tp, err := telemetry.InitTracerProvider(ctx, opts)
		if err != nil {
			startupLogger.Error("failed to initialize tracer provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown tracer provider", slog.Any("error", err))
			}
		}()

		mp, err := telemetry.InitMeterProvider(ctx, opts)
		if err != nil {
			startupLogger.Error("failed to initialize meter provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := mp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown meter provider", slog.Any("error", err))
			}
		}()

		// Initialized after the other providers for log-trace correlation
		lp, otelLogger, err := telemetry.InitLoggerProvider(ctx, opts)
		if err != nil {
			startupLogger.Error("failed to initialize logger provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := lp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown logger provider", slog.Any("error", err))
			}
		}()
		logger = otelLogger
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Falls back to the noop provider when telemetry is disabled
	meter := otel.Meter(cfg.OTel.ServiceName)
	metrics, err := telemetry.NewMetrics(meter, store.tasks.Count, store.lists.Count)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		os.Exit(1)
	}

	taskLists := usecase.NewTaskListUseCases(store.lists, store.tasks)
	tasks := usecase.NewTaskUseCases(store.tasks, store.lists)

	router := handler.NewRouter(
		handler.NewTaskListHandler(taskLists, logger, metrics),
		handler.NewTaskHandler(tasks, logger, metrics),
		handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, cfg.OTel.ServiceName),
		middleware.Logger,
	)

	otelHandler := otelhttp.NewHandler(router, "http-server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
