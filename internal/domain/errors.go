package domain

import "errors"

// Виды ошибок, по которым HTTP слой выбирает статус ответа
var (
	// ErrConfiguration не хватает обязательной настройки (токен, email плательщика), HTTP 500
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidArgument вход от клиента не прошёл валидацию, HTTP 400
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error ошибка с сообщением для клиента и видом (ErrConfiguration / ErrInvalidArgument).
// Error() возвращает только сообщение: его отдаём в поле "error" ответа как есть.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewConfigurationError создаёт ошибку вида ErrConfiguration
func NewConfigurationError(message string) error {
	return &Error{Kind: ErrConfiguration, Message: message}
}

// NewInvalidArgumentError создаёт ошибку вида ErrInvalidArgument
func NewInvalidArgumentError(message string) error {
	return &Error{Kind: ErrInvalidArgument, Message: message}
}
