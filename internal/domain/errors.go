package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	ErrStoreUnavailable    = errors.New("almacén no disponible")
	ErrCommitUnavailable   = errors.New("no fue posible confirmar la venta")
)

// ValidationError entrada malformada en un campo concreto. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError atajo para construir un *ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError stock disponible menor que el pedido para un producto.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CommitUnavailableError el almacén no pudo confirmar la venta tras agotar reintentos.
// El carrito se conserva; el usuario puede reintentar.
type CommitUnavailableError struct {
	Attempts int
	Cause    error
}

func (e *CommitUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s tras %d intentos", ErrCommitUnavailable, e.Attempts)
	}
	return fmt.Sprintf("%s tras %d intentos: %v", ErrCommitUnavailable, e.Attempts, e.Cause)
}

func (e *CommitUnavailableError) Is(target error) bool { return target == ErrCommitUnavailable }

func (e *CommitUnavailableError) Unwrap() error { return e.Cause }

// IsRetryable indica si el error proviene de una condición transitoria del almacén.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrStoreUnavailable)
}
