package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethodPix код метода оплаты PIX у провайдера
const PaymentMethodPix = "pix"

// Сообщения валидации, уходят клиенту в поле "error"
const (
	MsgInvalidAmount      = "Invalid amount"
	MsgMissingDescription = "Missing description"
	MsgMissingPaymentID   = "Missing payment id"
	MsgTokenMissing       = "MP_ACCESS_TOKEN missing"
	MsgPayerEmailMissing  = "MP_PAYER_EMAIL missing"
)

// PaymentCreateRequest запрос на создание PIX платежа
type PaymentCreateRequest struct {
	Amount            decimal.Decimal
	Description       string
	ExternalReference string
	// PayerEmail переопределяет MP_PAYER_EMAIL, если задан
	PayerEmail string
}

// PaymentCreateResult результат создания платежа.
// PaymentID, Status и StatusDetail передаются от провайдера без изменений (JSON как есть).
// QR поля nil, если провайдер их не вернул. Raw заполнен, если тело ответа не JSON.
type PaymentCreateResult struct {
	PaymentID    json.RawMessage
	Status       json.RawMessage
	StatusDetail json.RawMessage
	QRCode       *string
	QRCodeBase64 *string
	TicketURL    *string
	Raw          *string
}

// PaymentStatusResult снимок состояния платежа на момент запроса, без кеширования
type PaymentStatusResult struct {
	ID                json.RawMessage
	Status            json.RawMessage
	StatusDetail      json.RawMessage
	ExternalReference json.RawMessage
	TransactionAmount json.RawMessage
	PaymentMethodID   json.RawMessage
	Payer             json.RawMessage
	Raw               *string
}

// ParseAmount разбирает сумму из JSON: число или строка с числом ("10.50").
// Пустое значение, null и нечисловые значения дают ErrInvalidArgument.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, NewInvalidArgumentError(MsgInvalidAmount)
	}

	text := string(raw)
	if raw[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return decimal.Zero, NewInvalidArgumentError(MsgInvalidAmount)
		}
		text = strings.TrimSpace(unquoted)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, NewInvalidArgumentError(MsgInvalidAmount)
	}
	return amount, nil
}

// ValidateAmount проверяет, что сумма конечна и больше нуля, и возвращает её как float64
// (в таком виде transaction_amount уходит провайдеру).
func ValidateAmount(amount decimal.Decimal) (float64, error) {
	if !amount.IsPositive() {
		return 0, NewInvalidArgumentError(MsgInvalidAmount)
	}
	f := amount.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) || f <= 0 {
		return 0, NewInvalidArgumentError(MsgInvalidAmount)
	}
	return f, nil
}

// OptionalString возвращает строку из JSON значения, nil если его нет, оно пустое или не строка
func OptionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	return &s
}
