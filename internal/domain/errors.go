package domain

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("error de persistencia")
)

// ValidationError indica el campo de entrada que no cumple las reglas.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NotFoundError indica la entidad que no existe (producto, usuario, venta, movimiento).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError describe un producto cuyo stock no alcanza.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: producto %s (%s) disponible %d, requerido %d",
		e.ProductID, e.ProductName, e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// StockConflictError agrupa todos los productos sin stock suficiente de una operación.
// Se devuelve como un único conflicto, nunca como éxito parcial.
type StockConflictError struct {
	Items []InsufficientStockError
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		name := it.ProductName
		if name == "" {
			name = it.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s (disponible %d, requerido %d)", name, it.Available, it.Requested))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrConflict) y errors.Is(err, ErrInsufficientStock).
func (e *StockConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrInsufficientStock
}

// PersistenceError envuelve un fallo de almacenamiento. La causa se registra en logs;
// al cliente solo llega el mensaje genérico.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError envuelve err si no es ya un error de dominio conocido.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// IsDomainError indica si err pertenece a la taxonomía de dominio (no es un fallo técnico).
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrPersistence)
}
