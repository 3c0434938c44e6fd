package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/client/mercadopago"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/service"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

// maxBodyBytes ограничение на тело запроса /pix/create
const maxBodyBytes = 1 << 20

// Handler содержит HTTP-обработчики relay.
// Проверки и вызовы провайдера в service, здесь только разбор запроса и формирование ответа.
type Handler struct {
	relay  *service.RelayService
	logger *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(relay *service.RelayService, logger *zap.Logger) *Handler {
	return &Handler{
		relay:  relay,
		logger: logger,
	}
}

// CreatePaymentRequest тело POST /pix/create.
// Поля сырые: amount может быть числом или строкой, остальное проверяет service.
type CreatePaymentRequest struct {
	Amount            json.RawMessage `json:"amount"`
	Description       json.RawMessage `json:"description"`
	ExternalReference json.RawMessage `json:"external_reference"`
	PayerEmail        json.RawMessage `json:"payer_email"`
}

// CreatePaymentResponse ответ на успешное создание платежа.
// payment_id / status / status_detail как у провайдера, QR поля null если их нет.
type CreatePaymentResponse struct {
	OK           bool            `json:"ok"`
	PaymentID    json.RawMessage `json:"payment_id"`
	Status       json.RawMessage `json:"status"`
	StatusDetail json.RawMessage `json:"status_detail,omitempty"`
	QRCode       *string         `json:"qr_code"`
	QRCodeBase64 *string         `json:"qr_code_base64"`
	TicketURL    *string         `json:"ticket_url"`
	Raw          *string         `json:"raw,omitempty"`
}

// PaymentStatusResponse снимок платежа для GET /pix/status/{id}
type PaymentStatusResponse struct {
	ID                json.RawMessage `json:"id"`
	Status            json.RawMessage `json:"status"`
	StatusDetail      json.RawMessage `json:"status_detail"`
	ExternalReference json.RawMessage `json:"external_reference"`
	TransactionAmount json.RawMessage `json:"transaction_amount"`
	PaymentMethodID   json.RawMessage `json:"payment_method_id"`
	Payer             json.RawMessage `json:"payer"`
	Raw               *string         `json:"raw,omitempty"`
}

// DebugEnvResponse ответ GET /debug/env. Токен только в маскированном виде.
type DebugEnvResponse struct {
	AccessTokenConfigured bool    `json:"access_token_configured"`
	AccessTokenLength     int     `json:"access_token_length"`
	AccessTokenMasked     string  `json:"access_token_masked"`
	PayerEmail            *string `json:"payer_email"`
	NotificationURL       string  `json:"notification_url"`
}

// ErrorResponse {"error": "..."}
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProviderErrorResponse ответ при не-2xx от провайдера, HTTP статус тот же, что у провайдера
type ProviderErrorResponse struct {
	Error          string              `json:"error"`
	ProviderStatus int                 `json:"provider_status"`
	Detail         domain.ProviderBody `json:"detail"`
}

// NotFoundResponse ответ для неизвестных маршрутов
type NotFoundResponse struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// CreatePixPayment обрабатывает POST /pix/create и POST /qr/create
func (h *Handler) CreatePixPayment(w http.ResponseWriter, r *http.Request) {
	// Отмена входящего запроса не прерывает вызов провайдера, его ограничивает MP_HTTP_TIMEOUT
	ctx := context.WithoutCancel(r.Context())

	// Без токена отвечаем 500 ещё до разбора тела
	if err := h.relay.RequireToken(); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	var reqBody CreatePaymentRequest
	if err := decodeJSONBody(w, r, &reqBody); err != nil {
		platformobservability.L(ctx, h.logger).Warn("invalid JSON body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	input := service.CreatePixPaymentInput{
		Amount:            reqBody.Amount,
		ExternalReference: domain.ScalarString(reqBody.ExternalReference),
	}
	if s := domain.OptionalString(reqBody.Description); s != nil {
		input.Description = *s
	}
	if s := domain.OptionalString(reqBody.PayerEmail); s != nil {
		input.PayerEmail = *s
	}

	result, err := h.relay.CreatePixPayment(ctx, input)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, CreatePaymentResponse{
		OK:           true,
		PaymentID:    result.PaymentID,
		Status:       result.Status,
		StatusDetail: result.StatusDetail,
		QRCode:       result.QRCode,
		QRCodeBase64: result.QRCodeBase64,
		TicketURL:    result.TicketURL,
		Raw:          result.Raw,
	})
}

// GetPaymentStatus обрабатывает GET /pix/status/{id}
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	// chi маршрутизирует по RawPath, если он задан (в пути был %2F и т.п.),
	// и тогда параметр приходит экранированным. Иначе он уже декодирован.
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}

	result, err := h.relay.GetPaymentStatus(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentStatusResponse{
		ID:                result.ID,
		Status:            result.Status,
		StatusDetail:      result.StatusDetail,
		ExternalReference: result.ExternalReference,
		TransactionAmount: result.TransactionAmount,
		PaymentMethodID:   result.PaymentMethodID,
		Payer:             result.Payer,
		Raw:               result.Raw,
	})
}

// DebugEnv обрабатывает GET /debug/env
func (h *Handler) DebugEnv(w http.ResponseWriter, r *http.Request) {
	info := h.relay.DebugEnv()
	writeJSON(w, http.StatusOK, DebugEnvResponse{
		AccessTokenConfigured: info.AccessTokenConfigured,
		AccessTokenLength:     info.AccessTokenLength,
		AccessTokenMasked:     info.AccessTokenMasked,
		PayerEmail:            info.PayerEmail,
		NotificationURL:       info.NotificationURL,
	})
}

// NotFound 404 с запрошенным путём в теле. Используется и для неподдерживаемых методов.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, NotFoundResponse{Error: "Not found", Path: r.URL.Path})
}

// writeError выбирает HTTP статус по виду ошибки
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	log := platformobservability.L(ctx, h.logger)

	var providerErr *mercadopago.ProviderError
	switch {
	case errors.As(err, &providerErr):
		log.Warn("provider request failed", zap.Int("provider_status", providerErr.StatusCode))
		writeJSON(w, providerErr.StatusCode, ProviderErrorResponse{
			Error:          "Mercado Pago request failed",
			ProviderStatus: providerErr.StatusCode,
			Detail:         providerErr.Body,
		})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConfiguration):
		log.Error("configuration error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// decodeJSONBody читает тело как JSON объект. Пустое тело считается {}.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
