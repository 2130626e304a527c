package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/micaaprocofio/ut5-tfu/internal/config"
	"github.com/micaaprocofio/ut5-tfu/internal/gateway"
	"github.com/micaaprocofio/ut5-tfu/internal/server"
	"github.com/micaaprocofio/ut5-tfu/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("gateway", "8000")
	if err != nil {
		telemetry.NewLogger(os.Stderr, slog.LevelInfo, "gateway").Error("failed to load config", "error", err)
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

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	handler := gateway.NewHandler(
		gateway.NewServiceProxy(cfg.ProductsServiceURL, httpClient),
		gateway.NewServiceProxy(cfg.CustomersServiceURL, httpClient),
		gateway.NewServiceProxy(cfg.OrdersServiceURL, httpClient),
		cfg.ServiceVersion,
		logger,
	)

	r := telemetry.NewRouter(logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	handler.Register(r)

	srv := server.New(cfg.Port, "gateway", r)
	if err := server.Run(ctx, srv, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
