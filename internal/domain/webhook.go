package domain

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// WebhookEvent входящее уведомление провайдера. Для сервиса непрозрачно:
// принимаем, логируем, (опционально) публикуем и отбрасываем.
type WebhookEvent struct {
	ReceivedAt time.Time
	Method     string
	Path       string
	Query      url.Values
	Headers    http.Header
	Body       []byte
	// Notification поля уведомления Mercado Pago, извлечённые best-effort
	Notification WebhookNotification
}

// WebhookNotification то, что удалось понять из уведомления.
// Пустые поля означают, что в запросе их не было.
type WebhookNotification struct {
	// Type тип ресурса: payment, merchant_order и т.п. (type или topic)
	Type string
	// Action действие: payment.created, payment.updated
	Action string
	// ResourceID id ресурса (data.id в body, data.id / id в query)
	ResourceID string
}

type webhookBody struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
	Resource string `json:"resource"`
}

// ParseWebhookNotification извлекает type/action/id из body (webhook v1)
// и из query string (IPN: ?topic=payment&id=123 или ?type=payment&data.id=123).
// Body имеет приоритет. Никогда не возвращает ошибку.
func ParseWebhookNotification(query url.Values, body []byte) WebhookNotification {
	var n WebhookNotification

	var b webhookBody
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &b) == nil {
		n.Type = firstNonEmpty(b.Type, b.Topic)
		n.Action = b.Action
		n.ResourceID = ScalarString(b.Data.ID)
		if n.ResourceID == "" {
			n.ResourceID = b.Resource
		}
	}

	if n.Type == "" {
		n.Type = firstNonEmpty(query.Get("type"), query.Get("topic"))
	}
	if n.ResourceID == "" {
		n.ResourceID = firstNonEmpty(query.Get("data.id"), query.Get("id"))
	}
	return n
}

// ScalarString приводит JSON строку или число к тексту, иначе ""
func ScalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return string(raw)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
