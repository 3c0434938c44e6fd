package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
	platformkafka "github.com/ChristopherHoole/LavaLava-Payments/platform/kafka"
)

const (
	// EventTypeWebhookReceived тип события для принятого webhook уведомления
	EventTypeWebhookReceived = "mercadopago.webhook.received"
	// EventVersion версия схемы payload
	EventVersion = 1

	// writerBatchTimeout ожидание batch в kafka.Writer (по умолчанию 1s)
	writerBatchTimeout = 10 * time.Millisecond
)

// WebhookReceivedEvent payload сообщения в топике KAFKA_TOPIC
type WebhookReceivedEvent struct {
	EventID          string              `json:"event_id"`
	EventType        string              `json:"event_type"`
	EventVersion     int                 `json:"event_version"`
	OccurredAt       string              `json:"occurred_at"`
	Method           string              `json:"method"`
	Path             string              `json:"path"`
	Query            map[string][]string `json:"query"`
	Headers          map[string][]string `json:"headers"`
	Body             string              `json:"body"`
	NotificationType string              `json:"notification_type,omitempty"`
	Action           string              `json:"action,omitempty"`
	ResourceID       string              `json:"resource_id,omitempty"`
}

// NewWebhookReceivedEvent строит payload из входящего уведомления.
// Authorization и Cookie в события не попадают.
func NewWebhookReceivedEvent(event domain.WebhookEvent) WebhookReceivedEvent {
	occurredAt := event.ReceivedAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	headers := make(map[string][]string, len(event.Headers))
	for k, v := range event.Headers {
		if k == "Authorization" || k == "Cookie" {
			continue
		}
		headers[k] = v
	}

	query := map[string][]string(event.Query)
	if query == nil {
		query = map[string][]string{}
	}

	return WebhookReceivedEvent{
		EventID:          uuid.New().String(),
		EventType:        EventTypeWebhookReceived,
		EventVersion:     EventVersion,
		OccurredAt:       occurredAt.UTC().Format(time.RFC3339Nano),
		Method:           event.Method,
		Path:             event.Path,
		Query:            query,
		Headers:          headers,
		Body:             string(event.Body),
		NotificationType: event.Notification.Type,
		Action:           event.Notification.Action,
		ResourceID:       event.Notification.ResourceID,
	}
}

// messageKey ключ сообщения: id ресурса, чтобы уведомления одного платежа шли в одну партицию
func (e WebhookReceivedEvent) messageKey() []byte {
	if e.ResourceID != "" {
		return []byte(e.ResourceID)
	}
	return []byte(e.EventID)
}

// messageWriter часть kafka.Writer, которую использует publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWebhookPublisher реализует service.WebhookPublisher используя Kafka
type KafkaWebhookPublisher struct {
	logger       *zap.Logger
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
}

// NewKafkaWebhookPublisher создаёт новый Kafka publisher для webhook уведомлений
func NewKafkaWebhookPublisher(logger *zap.Logger, cfg platformkafka.Config) *KafkaWebhookPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: writerBatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &KafkaWebhookPublisher{
		logger:       logger,
		writer:       writer,
		topic:        cfg.Topic,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Close закрывает Kafka writer
func (p *KafkaWebhookPublisher) Close() error {
	return p.writer.Close()
}

// PublishWebhookReceived публикует уведомление в Kafka.
// Запись ограничена KAFKA_WRITE_TIMEOUT и не зависит от отмены входящего запроса.
func (p *KafkaWebhookPublisher) PublishWebhookReceived(ctx context.Context, event domain.WebhookEvent) error {
	payload := NewWebhookReceivedEvent(event)

	valueBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	ctx = context.WithoutCancel(ctx)
	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	message := kafka.Message{
		Key:   payload.messageKey(),
		Value: valueBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("failed to publish webhook event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_id", payload.EventID),
			zap.String("resource_id", payload.ResourceID),
		)
		return fmt.Errorf("failed to write message: %w", err)
	}

	p.logger.Info("webhook event published",
		zap.String("topic", p.topic),
		zap.String("event_id", payload.EventID),
		zap.String("resource_id", payload.ResourceID),
		zap.String("notification_type", payload.NotificationType),
	)

	return nil
}

// NoOpWebhookPublisher - no-op реализация (когда WEBHOOK_KAFKA_ENABLED=false)
type NoOpWebhookPublisher struct {
	logger *zap.Logger
}

// NewNoOpWebhookPublisher создаёт no-op publisher
func NewNoOpWebhookPublisher(logger *zap.Logger) *NoOpWebhookPublisher {
	return &NoOpWebhookPublisher{
		logger: logger,
	}
}

// PublishWebhookReceived ничего не делает, только логирует
func (p *NoOpWebhookPublisher) PublishWebhookReceived(ctx context.Context, event domain.WebhookEvent) error {
	p.logger.Debug("no-op publisher: webhook event not published",
		zap.String("resource_id", event.Notification.ResourceID),
	)
	return nil
}
