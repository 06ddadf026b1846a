// Package apperror описывает классы ошибок, которые обработчики возвращают клиенту.
//
// Каждый класс это сигнальная ошибка (ErrValidation, ErrConflict и т.д.),
// обёрнутая в *Error вместе с сообщением для клиента. Сопоставление классов
// с HTTP-статусами выполняется в пакете response.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrAuth        = errors.New("unauthorized")
	ErrNotFound    = errors.New("not found")
	ErrUpload      = errors.New("upload failed")
	ErrInternal    = errors.New("internal error")
	ErrRateLimited = errors.New("rate limited")
	ErrTooLarge    = errors.New("payload too large")
)

// Error ошибка с сообщением для клиента и необязательным списком деталей.
type Error struct {
	Kind    error    // Класс ошибки, один из Err*
	Message string   // Сообщение, которое увидит клиент
	Details []string // Подробности (например, ошибки валидации полей)
	Cause   error    // Исходная ошибка, только для логов
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Is позволяет сравнивать *Error с классом через errors.Is.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation возвращает ошибку валидации входных данных.
func Validation(msg string, details ...string) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Details: details}
}

// Conflict возвращает ошибку нарушения уникальности.
func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Unauthorized возвращает ошибку аутентификации.
func Unauthorized(msg string) *Error {
	return &Error{Kind: ErrAuth, Message: msg}
}

// NotFound возвращает ошибку отсутствия сущности.
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Upload возвращает ошибку загрузки файла во внешнее хранилище.
func Upload(msg string, cause error) *Error {
	return &Error{Kind: ErrUpload, Message: msg, Cause: cause}
}

// Internal возвращает внутреннюю ошибку сервера.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: cause}
}

// RateLimited возвращает ошибку превышения частоты запросов.
func RateLimited(msg string) *Error {
	return &Error{Kind: ErrRateLimited, Message: msg}
}

// TooLarge возвращает ошибку превышения размера тела запроса.
func TooLarge(msg string) *Error {
	return &Error{Kind: ErrTooLarge, Message: msg}
}

// HTTPStatus возвращает HTTP-статус для ошибки. Неизвестные ошибки считаются внутренними.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpload):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
