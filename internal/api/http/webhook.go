package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

// maxWebhookBodyBytes сколько тела уведомления читаем, остальное отбрасывается
const maxWebhookBodyBytes = 1 << 20

// Webhook обрабатывает любые методы на /webhook/mercadopago.
// Всегда отвечает 200 "OK": на не-2xx провайдер начинает повторять уведомления.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			platformobservability.LoggerFromContext(r.Context(), h.logger).Error("webhook processing panic",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		platformobservability.L(r.Context(), h.logger).Warn("failed to read webhook body", zap.Error(err))
	}

	query := r.URL.Query()
	event := domain.WebhookEvent{
		ReceivedAt:   time.Now().UTC(),
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        query,
		Headers:      r.Header.Clone(),
		Body:         body,
		Notification: domain.ParseWebhookNotification(query, body),
	}

	h.relay.HandleWebhook(context.WithoutCancel(r.Context()), event)
}
