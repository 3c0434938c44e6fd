package domain

import (
	"bytes"
	"encoding/json"
)

// ProviderBody тело ответа платёжного провайдера.
// Два варианта: Structured (валидный JSON) и Raw (любой другой текст).
// Невалидный JSON не ошибка, вызывающий код обязан обработать Raw явно.
type ProviderBody struct {
	structured json.RawMessage
	raw        string
}

// ParseProviderBody разбирает тело, прочитанное целиком как текст
func ParseProviderBody(b []byte) ProviderBody {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		out := make(json.RawMessage, len(trimmed))
		copy(out, trimmed)
		return ProviderBody{structured: out}
	}
	return ProviderBody{raw: string(b)}
}

// Structured возвращает JSON, если тело было валидным JSON
func (b ProviderBody) Structured() (json.RawMessage, bool) {
	return b.structured, b.structured != nil
}

// Raw возвращает исходный текст, если тело не было JSON
func (b ProviderBody) Raw() (string, bool) {
	return b.raw, b.structured == nil
}

// MarshalJSON отдаёт JSON как есть, а текст оборачивает в {"raw": "..."}
func (b ProviderBody) MarshalJSON() ([]byte, error) {
	if b.structured != nil {
		return b.structured, nil
	}
	return json.Marshal(map[string]string{"raw": b.raw})
}

func (b ProviderBody) String() string {
	if b.structured != nil {
		return string(b.structured)
	}
	return b.raw
}
