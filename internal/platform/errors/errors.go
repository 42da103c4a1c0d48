// internal/platform/errors/errors.go

// Package errors provee la taxonomía de errores compartida por los conectores
// y helpers finos de wrapping sobre la librería estándar.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Errores sentinela para fallos de archivos y fuentes OSINT.
var (
	// ErrTimeout indica que una petición superó su deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimit indica que la fuente respondió 429 (o 403 en GitHub).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrNotFound indica que la fuente no tiene datos para la consulta.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indica una entrada inválida.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectionFailed indica que no se pudo establecer la conexión.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnauthorized indica que se rechazó la API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indica un 5xx de la fuente.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse indica un body imposible de parsear o con forma inesperada.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrMissingCredential indica que el conector requiere una API key no configurada.
	ErrMissingCredential = errors.New("missing credential")
)

type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap anota err con msg. Wrap(nil, ...) retorna nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf anota err con un mensaje formateado. Wrapf(nil, ...) retorna nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is envuelve errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As envuelve errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap envuelve errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New envuelve errors.New.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf envuelve fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join envuelve errors.Join. Los errores nil se descartan.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// FromStatus traduce un status HTTP a la taxonomía de sentinelas.
// 2xx retorna nil; un no-2xx desconocido retorna un error de status simple.
func FromStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout || code == http.StatusBadGateway:
		return ErrServiceUnavailable
	default:
		return fmt.Errorf("HTTP %d: %s", code, http.StatusText(code))
	}
}

// IsTimeout reporta si el error es de timeout.
func IsTimeout(err error) bool { return Is(err, ErrTimeout) }

// IsRateLimit reporta si el error es de rate limit.
func IsRateLimit(err error) bool { return Is(err, ErrRateLimit) }

// IsNotFound reporta si el error es de not found.
func IsNotFound(err error) bool { return Is(err, ErrNotFound) }

// IsInvalidInput reporta si el error es de entrada inválida.
func IsInvalidInput(err error) bool { return Is(err, ErrInvalidInput) }

// IsConnectionFailed reporta si el error es de conexión fallida.
func IsConnectionFailed(err error) bool { return Is(err, ErrConnectionFailed) }

// IsUnauthorized reporta si el error es de autorización.
func IsUnauthorized(err error) bool { return Is(err, ErrUnauthorized) }

// IsServiceUnavailable reporta si el error es de servicio no disponible.
func IsServiceUnavailable(err error) bool { return Is(err, ErrServiceUnavailable) }

// IsInvalidResponse reporta si el error es de respuesta inválida.
func IsInvalidResponse(err error) bool { return Is(err, ErrInvalidResponse) }

// IsMissingCredential reporta si el error es de credencial ausente.
func IsMissingCredential(err error) bool { return Is(err, ErrMissingCredential) }
