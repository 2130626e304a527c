package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/micaaprocofio/ut5-tfu/internal/config"
	"github.com/micaaprocofio/ut5-tfu/internal/health"
	"github.com/micaaprocofio/ut5-tfu/internal/products"
	"github.com/micaaprocofio/ut5-tfu/internal/server"
	"github.com/micaaprocofio/ut5-tfu/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("products", "8000")
	if err == nil {
		err = cfg.RequirePostgres()
	}
	if err != nil {
		telemetry.NewLogger(os.Stderr, slog.LevelInfo, "products").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := telemetry.NewLogger(os.Stdout, level, cfg.ServiceName)

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	r := telemetry.NewRouter(logger)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	health.NewHandler(cfg.ServiceName, db, logger).Register(r)
	products.NewHandler(products.NewProductRepository(db), logger).Register(r)

	srv := server.New(cfg.Port, cfg.ServiceName, r)
	if err := server.Run(ctx, srv, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
