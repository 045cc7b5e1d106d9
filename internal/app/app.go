// Package app owns process-wide lifecycle: startup wiring of config,
// tracer, producer, and HTTP server, and graceful teardown on signal.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/healthpulse/ingestion-gateway/internal/config"
	"github.com/healthpulse/ingestion-gateway/internal/httpserver"
	"github.com/healthpulse/ingestion-gateway/internal/metrics"
	"github.com/healthpulse/ingestion-gateway/internal/publish"
	"github.com/healthpulse/ingestion-gateway/internal/routing"
	"github.com/healthpulse/ingestion-gateway/internal/tracing"
)

const version = "1.0.0"

// App holds the gateway's components. Everything is constructed in NewApp;
// any construction failure is fatal — the process never serves traffic
// half-initialized.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Sugar     *zap.SugaredLogger
	Metrics   *metrics.Metrics
	Publisher publish.Publisher

	tracerProvider *sdktrace.TracerProvider
	server         *http.Server
	level          zap.AtomicLevel
}

// initLogger builds a console logger writing to stdout. The returned
// atomic level is adjusted once config is loaded.
func initLogger() (*zap.Logger, zap.AtomicLevel) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), level
}

// NewApp initializes all components in dependency order:
// logger → config → tracer → producer → HTTP server.
func NewApp(ctx context.Context) (*App, error) {
	logger, level := initLogger()
	sugar := logger.Sugar()

	app := &App{
		Logger: logger,
		Sugar:  sugar,
		level:  level,
	}

	cfg, fileFound, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !fileFound {
		sugar.Warn("no config file found, using defaults and env vars")
	}
	app.Config = cfg

	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		level.SetLevel(lvl)
	} else {
		sugar.Warnf("unknown log level %q, keeping info", cfg.Log.Level)
	}

	tp, err := tracing.Init(ctx, cfg.Jaeger.Endpoint, httpserver.ServiceName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	app.tracerProvider = tp

	app.Metrics = metrics.New()
	router := routing.NewRouter(cfg.Kafka.Topics)

	publisher, err := publish.NewKafkaPublisher(cfg.Kafka.Brokers, router, app.Metrics, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}
	app.Publisher = publisher
	sugar.Infow("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: httpserver.NewRouter(publisher, app.Metrics, sugar),
	}

	return app, nil
}

// Start begins serving. The listener runs in its own goroutine; a listen
// failure at startup is fatal.
func (a *App) Start() {
	a.Sugar.Infof("starting %s on %s", httpserver.ServiceName, a.server.Addr)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Fatalw("server failed", "error", err)
		}
	}()
}

// WaitForShutdown blocks until an interrupt or termination signal arrives.
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// Shutdown stops accepting new requests, drains in-flight ones up to the
// configured timeout, closes the producer (flushing pending acks), and
// flushes buffered spans. Nothing is deliberately dropped beyond what the
// producer's close semantics allow.
func (a *App) Shutdown() {
	a.Sugar.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Sugar.Errorw("HTTP server shutdown", "error", err)
		}
	}

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Sugar.Errorw("failed to close Kafka producer", "error", err)
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.Sugar.Errorw("failed to flush tracer", "error", err)
		}
	}

	a.Sugar.Info("shutdown complete")
	_ = a.Logger.Sync()
}
