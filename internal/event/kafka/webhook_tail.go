package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	platformkafka "github.com/ChristopherHoole/LavaLava-Payments/platform/kafka"
)

// WebhookTail читает топик с webhook событиями и передаёт их в handler.
// Используется cmd/webhook-tail для просмотра уведомлений, которые публикует relay.
type WebhookTail struct {
	logger  *zap.Logger
	reader  *kafka.Reader
	handler func(WebhookReceivedEvent)
}

// NewWebhookTail создаёт consumer. groupID пустой: читаем без consumer group, с конца топика.
func NewWebhookTail(logger *zap.Logger, cfg platformkafka.Config, groupID string, handler func(WebhookReceivedEvent)) *WebhookTail {
	readerCfg := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  groupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	}
	if groupID == "" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return &WebhookTail{
		logger:  logger,
		reader:  kafka.NewReader(readerCfg),
		handler: handler,
	}
}

// Start читает сообщения до отмены ctx
func (t *WebhookTail) Start(ctx context.Context) error {
	t.logger.Info("starting webhook tail",
		zap.String("topic", t.reader.Config().Topic),
		zap.String("group_id", t.reader.Config().GroupID),
	)

	for {
		m, err := t.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.logger.Info("webhook tail context cancelled, stopping")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		event, err := DecodeWebhookReceived(m.Value)
		if err != nil {
			t.logger.Warn("skipping malformed webhook event",
				zap.Error(err),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
			continue
		}

		t.handler(event)
	}
}

// Close закрывает Kafka reader
func (t *WebhookTail) Close() error {
	return t.reader.Close()
}

// DecodeWebhookReceived разбирает payload, опубликованный KafkaWebhookPublisher
func DecodeWebhookReceived(value []byte) (WebhookReceivedEvent, error) {
	var event WebhookReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return WebhookReceivedEvent{}, fmt.Errorf("failed to unmarshal webhook event: %w", err)
	}
	if event.EventType != EventTypeWebhookReceived {
		return WebhookReceivedEvent{}, fmt.Errorf("unexpected event_type %q", event.EventType)
	}
	return event, nil
}
