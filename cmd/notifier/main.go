package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emeraldlabs/storefront/internal/config"
	"github.com/emeraldlabs/storefront/internal/messaging"
	"github.com/emeraldlabs/storefront/internal/notifier"
	"github.com/emeraldlabs/storefront/internal/telemetry"
)

const (
	serviceName    = "notifier"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, "notifier")
	defer func() { _ = consumer.Close() }()

	handler := notifier.NewHandler(cfg.EmailServiceURL, logger)

	logger.Info("notifier consuming", "topic", messaging.Topic, "brokers", cfg.KafkaBrokers)
	return consumer.Consume(ctx, handler.Handle)
}
