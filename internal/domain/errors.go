package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOutOfStock        = errors.New("stock agotado")
	ErrOverReturn        = errors.New("la devolución excede lo entregado en la guía")
	ErrGuideNotFound     = errors.New("guía no encontrada")
	ErrAlreadyAnnulled   = errors.New("la guía ya fue anulada")
	ErrNothingToReturn   = errors.New("la guía no tiene ítems activos para devolver")
	ErrHasActiveReturns  = fmt.Errorf("%w: la guía tiene devoluciones activas", ErrConflict)
	ErrItemInUse         = fmt.Errorf("%w: el insumo tiene movimientos registrados", ErrConflict)
)

// InsufficientStockError detalla el faltante de un insumo. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ItemID    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.ItemID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OverReturnError detalla una devolución que supera lo pendiente de devolver.
type OverReturnError struct {
	GuideNumber string
	ItemID      string
	Remaining   int
	Requested   int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("devolución excedida en guía %s para %s: pendiente %d, solicitado %d",
		e.GuideNumber, e.ItemID, e.Remaining, e.Requested)
}

func (e *OverReturnError) Unwrap() error { return ErrOverReturn }

// ValidationError indica un campo obligatorio faltante o inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
