package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autenticado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransport         = errors.New("servidor inalcanzable")
	ErrServer            = errors.New("error interno del servidor")
	ErrNotAuthenticated  = errors.New("no hay sesión activa")
	ErrStaleResponse     = errors.New("respuesta descartada: existe una consulta más reciente")
	ErrBusy              = errors.New("operación en curso")
)

// APIError error devuelto por la API remota. Error() es el detalle del servidor tal cual,
// para mostrarlo al usuario sin reescribirlo; Kind permite errors.Is contra los sentinelas.
type APIError struct {
	Kind   error
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error { return e.Kind }

// ValidationError validación local previa al envío; el mensaje se muestra textual.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// Is hace que errors.Is(err, ErrInvalidInput) sea cierto para toda validación local.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Detail devuelve el mensaje para el usuario: detalle del servidor, validación local
// o el texto genérico indicado cuando el error no trae uno propio.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}
