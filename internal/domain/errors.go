package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada operación del coordinador retorna uno de estos errores tipados;
// la capa HTTP los traduce a códigos de estado.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrIllegalTransition      = errors.New("transición de estado no permitida")
	ErrAlreadyResolved        = errors.New("la transacción ya fue resuelta")
	ErrRecallWindowExpired    = errors.New("la ventana de recall ha expirado")
	ErrInvalidStatusForRecall = errors.New("estado inválido para recall")
	ErrGenerationExhausted    = errors.New("espacio de códigos virtuales agotado")
	ErrSequenceConflict       = errors.New("conflicto de secuencia de lote")
	ErrLockTimeout            = errors.New("timeout adquiriendo lock de concurrencia")
)

// ValidationError es un error de validación con la razón específica.
// Unwrap retorna ErrInvalidInput para que errors.Is siga funcionando en los handlers.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "entrada inválida: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError construye un ValidationError con la razón indicada.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}
