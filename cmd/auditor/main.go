package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/micaaprocofio/ut5-tfu/internal/audit"
	"github.com/micaaprocofio/ut5-tfu/internal/config"
	"github.com/micaaprocofio/ut5-tfu/internal/existence"
	"github.com/micaaprocofio/ut5-tfu/internal/messaging"
	"github.com/micaaprocofio/ut5-tfu/internal/server"
	"github.com/micaaprocofio/ut5-tfu/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("auditor", "9100")
	if err != nil {
		telemetry.NewLogger(os.Stderr, slog.LevelInfo, "auditor").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := telemetry.NewLogger(os.Stdout, level, cfg.ServiceName)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

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

	client := existence.NewClient(
		cfg.CustomersServiceURL,
		&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		cfg.ExistenceTimeout,
	)
	auditor := audit.NewAuditor(client, logger)

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.AdmissionTopic, cfg.AuditorGroupID)
	defer func() { _ = consumer.Close() }()

	r := telemetry.NewRouter(logger)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	srv := server.New(cfg.Port, cfg.ServiceName, r)
	go func() {
		if err := server.Run(ctx, srv, logger); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("starting admission auditor", "topic", cfg.AdmissionTopic, "group", cfg.AuditorGroupID)

	if err := consumer.Consume(ctx, auditor.Handle); err != nil {
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
	logger.Info("consumer stopped")
}
