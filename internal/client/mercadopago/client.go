package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
)

const instrumentationName = "github.com/ChristopherHoole/LavaLava-Payments/internal/client/mercadopago"

// Операции провайдера, идут в имя span и в атрибут метрики
const (
	OpCreatePayment = "create_payment"
	OpGetPayment    = "get_payment"
)

// IdempotencyHeader заголовок для дедупликации на стороне провайдера
const IdempotencyHeader = "X-Idempotency-Key"

// ProviderError провайдер ответил не-2xx. Статус и тело отдаются клиенту relay как есть.
type ProviderError struct {
	Operation  string
	StatusCode int
	Body       domain.ProviderBody
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mercadopago %s: status %d: %s", e.Operation, e.StatusCode, truncate(e.Body.String(), 200))
}

// Client HTTP клиент Mercado Pago REST API.
// Одна попытка на вызов, без retry. Каждый вызов ограничен MP_HTTP_TIMEOUT.
type Client struct {
	logger          *zap.Logger
	cfg        config.MercadoPago
	baseURL    string
	httpClient *http.Client
	tracer          trace.Tracer
	requests        metric.Int64Counter
}

// NewClient создаёт клиента. Пустой токен не ошибка: вызовы вернут ConfigurationError.
func NewClient(cfg config.MercadoPago, logger *zap.Logger) (*Client, error) {
	requests, err := otel.Meter(instrumentationName).Int64Counter(
		"relay.provider.requests",
		metric.WithDescription("Requests sent to Mercado Pago"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider requests counter: %w", err)
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		logger:  logger,
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
	}, nil
}

type createPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             payer   `json:"payer"`
	ExternalReference string  `json:"external_reference,omitempty"`
	NotificationURL   string  `json:"notification_url,omitempty"`
}

type payer struct {
	Email string `json:"email"`
}

// paymentResponse поля ресурса payment, которые relay отдаёт дальше.
// json.RawMessage сохраняет значение как есть (числовой id остаётся числом).
type paymentResponse struct {
	ID                 json.RawMessage `json:"id"`
	Status             json.RawMessage `json:"status"`
	StatusDetail       json.RawMessage `json:"status_detail"`
	ExternalReference  json.RawMessage `json:"external_reference"`
	TransactionAmount  json.RawMessage `json:"transaction_amount"`
	PaymentMethodID    json.RawMessage `json:"payment_method_id"`
	Payer              json.RawMessage `json:"payer"`
	PointOfInteraction *struct {
		TransactionData *struct {
			QRCode       json.RawMessage `json:"qr_code"`
			QRCodeBase64 json.RawMessage `json:"qr_code_base64"`
			TicketURL    json.RawMessage `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePixPayment создаёт PIX платёж: POST /v1/payments.
// Сумма, описание и email проверяются до обращения к сети.
func (c *Client) CreatePixPayment(ctx context.Context, req domain.PaymentCreateRequest) (*domain.PaymentCreateResult, error) {
	if err := c.cfg.RequireToken(); err != nil {
		return nil, err
	}
	amount, err := domain.ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.NewInvalidArgumentError(domain.MsgMissingDescription)
	}
	if req.PayerEmail == "" {
		return nil, domain.NewConfigurationError(domain.MsgPayerEmailMissing)
	}

	payload, err := json.Marshal(createPaymentRequest{
		TransactionAmount: amount,
		Description:       req.Description,
		PaymentMethodID:   domain.PaymentMethodPix,
		Payer:             payer{Email: req.PayerEmail},
		ExternalReference: req.ExternalReference,
		NotificationURL:   c.cfg.NotificationURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Новый ключ на каждый вызов: relay сам не повторяет запросы
	headers := http.Header{}
	headers.Set(IdempotencyHeader, uuid.NewString())

	body, err := c.do(ctx, OpCreatePayment, http.MethodPost, "/v1/payments", payload, headers)
	if err != nil {
		return nil, err
	}

	result := &domain.PaymentCreateResult{}
	structured, ok := body.Structured()
	if !ok {
		raw, _ := body.Raw()
		result.Raw = &raw
		return result, nil
	}

	var resp paymentResponse
	if err := json.Unmarshal(structured, &resp); err != nil {
		c.logger.Warn("mercadopago payment response is not an object", zap.Error(err))
		return result, nil
	}

	result.PaymentID = resp.ID
	result.Status = resp.Status
	result.StatusDetail = resp.StatusDetail
	if poi := resp.PointOfInteraction; poi != nil && poi.TransactionData != nil {
		result.QRCode = domain.OptionalString(poi.TransactionData.QRCode)
		result.QRCodeBase64 = domain.OptionalString(poi.TransactionData.QRCodeBase64)
		result.TicketURL = domain.OptionalString(poi.TransactionData.TicketURL)
	}

	c.logger.Info("mercadopago payment created",
		zap.ByteString("payment_id", resp.ID),
		zap.ByteString("status", resp.Status),
		zap.Bool("has_qr_code", result.QRCode != nil),
	)

	return result, nil
}

// GetPaymentStatus получает текущее состояние платежа: GET /v1/payments/{id}.
// Без кеширования, каждый вызов идёт к провайдеру.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentStatusResult, error) {
	if err := c.cfg.RequireToken(); err != nil {
		return nil, err
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, domain.NewInvalidArgumentError(domain.MsgMissingPaymentID)
	}

	body, err := c.do(ctx, OpGetPayment, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, nil)
	if err != nil {
		return nil, err
	}

	result := &domain.PaymentStatusResult{}
	structured, ok := body.Structured()
	if !ok {
		raw, _ := body.Raw()
		result.Raw = &raw
		return result, nil
	}

	var resp paymentResponse
	if err := json.Unmarshal(structured, &resp); err != nil {
		c.logger.Warn("mercadopago payment response is not an object", zap.Error(err))
		return result, nil
	}

	result.ID = resp.ID
	result.Status = resp.Status
	result.StatusDetail = resp.StatusDetail
	result.ExternalReference = resp.ExternalReference
	result.TransactionAmount = resp.TransactionAmount
	result.PaymentMethodID = resp.PaymentMethodID
	result.Payer = resp.Payer

	return result, nil
}

// do выполняет один запрос к провайдеру. Тело ответа читается целиком как текст
// и только потом разбирается как JSON. Не-2xx возвращается как *ProviderError.
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte, headers http.Header) (domain.ProviderBody, error) {
	ctx, span := c.tracer.Start(ctx, "mercadopago."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("mercadopago.operation", op),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create request")
		return domain.ProviderBody{}, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(ctx, op, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "send request")
		c.logger.Error("mercadopago request failed",
			zap.String("operation", op),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return domain.ProviderBody{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(ctx, op, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "read response")
		return domain.ProviderBody{}, fmt.Errorf("failed to read response: %w", err)
	}

	c.count(ctx, op, strconv.Itoa(resp.StatusCode))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body := domain.ParseProviderBody(data)
	if _, raw := body.Raw(); raw && len(data) > 0 {
		c.logger.Warn("mercadopago response is not JSON",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body_preview", truncate(string(data), 200)),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "provider status "+strconv.Itoa(resp.StatusCode))
		c.logger.Warn("mercadopago returned error status",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
		return domain.ProviderBody{}, &ProviderError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	c.logger.Debug("mercadopago request completed",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return body, nil
}

func (c *Client) count(ctx context.Context, op, status string) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
}

// truncate обрезает строку до указанной длины
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
