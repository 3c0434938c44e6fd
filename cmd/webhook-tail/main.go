// Command webhook-tail печатает webhook уведомления Mercado Pago,
// которые relay публикует в Kafka (WEBHOOK_KAFKA_ENABLED=true).
//
// Переменные окружения:
//   - KAFKA_BROKERS (по умолчанию localhost:19092, в Docker kafka:9092)
//   - KAFKA_TOPIC (по умолчанию mercadopago.webhook.received)
//   - WEBHOOK_TAIL_GROUP_ID (пусто: читать с конца топика без consumer group)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"

	kafkaevent "github.com/ChristopherHoole/LavaLava-Payments/internal/event/kafka"
	platformkafka "github.com/ChristopherHoole/LavaLava-Payments/platform/kafka"
	platformlogging "github.com/ChristopherHoole/LavaLava-Payments/platform/logging"
)

type tailConfig struct {
	GroupID  string `env:"WEBHOOK_TAIL_GROUP_ID"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg tailConfig
	if err := env.Parse(&cfg); err != nil {
		os.Stderr.WriteString("Failed to parse env: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "webhook-tail",
		Env:         "local",
		Level:       cfg.LogLevel,
		Format:      "console",
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	var kafkaCfg platformkafka.Config
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}
	if err := kafkaCfg.Validate(); err != nil {
		logger.Error("invalid kafka config", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tail := kafkaevent.NewWebhookTail(logger, kafkaCfg, cfg.GroupID, func(e kafkaevent.WebhookReceivedEvent) {
		logger.Info("webhook",
			zap.String("event_id", e.EventID),
			zap.String("occurred_at", e.OccurredAt),
			zap.String("method", e.Method),
			zap.String("notification_type", e.NotificationType),
			zap.String("action", e.Action),
			zap.String("resource_id", e.ResourceID),
			zap.String("body", e.Body),
		)
	})
	defer func() {
		if err := tail.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	if err := tail.Start(ctx); err != nil {
		logger.Error("webhook tail stopped", zap.Error(err))
		os.Exit(1)
	}
}
