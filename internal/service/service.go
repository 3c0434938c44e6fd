package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

// RelayService содержит логику relay: проверки конфигурации, валидацию входа,
// выбор email плательщика и приём webhook. Состояния между запросами нет.
type RelayService struct {
	logger    *zap.Logger
	cfg       config.MercadoPago
	provider  ProviderClient
	publisher WebhookPublisher
}

// NewRelayService создаёт новый экземпляр RelayService
func NewRelayService(
	logger *zap.Logger,
	cfg config.MercadoPago,
	provider ProviderClient,
	publisher WebhookPublisher,
) *RelayService {
	return &RelayService{
		logger:    logger,
		cfg:       cfg,
		provider:  provider,
		publisher: publisher,
	}
}

// CreatePixPaymentInput вход создания платежа в том виде, в котором он пришёл от клиента.
// Amount остаётся сырым JSON: число или строка с числом.
type CreatePixPaymentInput struct {
	Amount            json.RawMessage
	Description       string
	ExternalReference string
	PayerEmail        string
}

// DebugInfo состояние конфигурации для /debug/env. Токен никогда не отдаётся целиком.
type DebugInfo struct {
	AccessTokenConfigured bool
	AccessTokenLength     int
	AccessTokenMasked     string
	PayerEmail            *string
	NotificationURL       string
}

// RequireToken возвращает ConfigurationError, если MP_ACCESS_TOKEN не задан
func (s *RelayService) RequireToken() error {
	return s.cfg.RequireToken()
}

// CreatePixPayment проверяет вход и создаёт PIX платёж у провайдера.
// Порядок проверок: токен, сумма, описание, email плательщика. Любая ошибка до вызова провайдера.
func (s *RelayService) CreatePixPayment(ctx context.Context, input CreatePixPaymentInput) (*domain.PaymentCreateResult, error) {
	if err := s.RequireToken(); err != nil {
		return nil, err
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.NewInvalidArgumentError(domain.MsgMissingDescription)
	}

	// Email из запроса имеет приоритет над MP_PAYER_EMAIL
	payerEmail := strings.TrimSpace(input.PayerEmail)
	if payerEmail == "" {
		payerEmail = s.cfg.PayerEmail
	}
	if payerEmail == "" {
		return nil, domain.NewConfigurationError(domain.MsgPayerEmailMissing)
	}

	log := platformobservability.L(ctx, s.logger)
	log.Info("creating pix payment",
		zap.String("amount", amount.String()),
		zap.String("external_reference", input.ExternalReference),
		zap.Bool("payer_email_override", strings.TrimSpace(input.PayerEmail) != ""),
	)

	result, err := s.provider.CreatePixPayment(ctx, domain.PaymentCreateRequest{
		Amount:            amount,
		Description:       input.Description,
		ExternalReference: input.ExternalReference,
		PayerEmail:        payerEmail,
	})
	if err != nil {
		log.Error("failed to create pix payment",
			zap.Error(err),
			zap.String("external_reference", input.ExternalReference),
		)
		return nil, err
	}

	return result, nil
}

// GetPaymentStatus возвращает снимок состояния платежа
func (s *RelayService) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentStatusResult, error) {
	if err := s.RequireToken(); err != nil {
		return nil, err
	}

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, domain.NewInvalidArgumentError(domain.MsgMissingPaymentID)
	}

	result, err := s.provider.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		platformobservability.L(ctx, s.logger).Error("failed to get payment status",
			zap.Error(err),
			zap.String("payment_id", paymentID),
		)
		return nil, err
	}

	return result, nil
}

// HandleWebhook логирует уведомление и публикует его дальше.
// Ошибка публикации только логируется: провайдер всегда должен получить 200.
func (s *RelayService) HandleWebhook(ctx context.Context, event domain.WebhookEvent) {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}

	log := platformobservability.L(ctx, s.logger)
	log.Info("mercadopago webhook received",
		zap.String("method", event.Method),
		zap.String("path", event.Path),
		zap.String("query", event.Query.Encode()),
		zap.Any("headers", redactHeaders(event.Headers)),
		zap.ByteString("body", event.Body),
		zap.String("notification_type", event.Notification.Type),
		zap.String("action", event.Notification.Action),
		zap.String("resource_id", event.Notification.ResourceID),
	)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishWebhookReceived(ctx, event); err != nil {
		log.Error("failed to publish webhook event",
			zap.Error(err),
			zap.String("resource_id", event.Notification.ResourceID),
		)
	}
}

// DebugEnv возвращает состояние конфигурации провайдера
func (s *RelayService) DebugEnv() DebugInfo {
	info := DebugInfo{
		AccessTokenConfigured: s.cfg.AccessToken != "",
		AccessTokenLength:     len(s.cfg.AccessToken),
		AccessTokenMasked:     config.MaskToken(s.cfg.AccessToken),
		NotificationURL:       s.cfg.NotificationURL,
	}
	if s.cfg.PayerEmail != "" {
		email := s.cfg.PayerEmail
		info.PayerEmail = &email
	}
	return info
}

// redactHeaders скрывает значения заголовков авторизации в логах
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch strings.ToLower(k) {
		case "authorization", "cookie":
			out[k] = "[REDACTED]"
		default:
			out[k] = strings.Join(v, ", ")
		}
	}
	return out
}
