package service

import (
	"context"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProviderClient --dir=. --output=./mocks --outpkg=mocks

// ProviderClient определяет интерфейс для работы с платёжным провайдером.
// Реализация: internal/client/mercadopago. Ошибки провайдера приходят как *mercadopago.ProviderError.
type ProviderClient interface {
	// CreatePixPayment создаёт PIX платёж, один исходящий запрос на вызов
	CreatePixPayment(ctx context.Context, req domain.PaymentCreateRequest) (*domain.PaymentCreateResult, error)
	// GetPaymentStatus получает текущее состояние платежа
	GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentStatusResult, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=WebhookPublisher --dir=. --output=./mocks --outpkg=mocks

// WebhookPublisher публикует принятые webhook уведомления (Kafka или no-op)
type WebhookPublisher interface {
	PublishWebhookReceived(ctx context.Context, event domain.WebhookEvent) error
}
