package entity

import (
	"time"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Categorías de insumo (conjunto cerrado; "Otro" es el punto de extensión).
const (
	CategoryTool      = "Herramienta"
	CategoryMaterial  = "Material"
	CategoryAccessory = "Accesorio"
	CategoryOther     = "Otro"
)

// Estados de insumo.
const (
	StateNew        = "Nuevo"
	StateUsed       = "Usado"
	StateWrittenOff = "Baja"
	StateLoaned     = "Prestado"
)

// ValidCategory indica si la categoría pertenece al conjunto cerrado.
func ValidCategory(c string) bool {
	switch c {
	case CategoryTool, CategoryMaterial, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}

// ValidState indica si el estado es uno de los permitidos.
func ValidState(s string) bool {
	switch s {
	case StateNew, StateUsed, StateWrittenOff, StateLoaned:
		return true
	}
	return false
}

// SupplyItem representa un insumo o herramienta del catálogo con cantidad en almacén.
// Quantity solo cambia a través de movimientos confirmados o anulados.
type SupplyItem struct {
	ID           string
	Name         string
	Category     string
	Quantity     int
	Unit         string
	State        string
	UnitValue    decimal.Decimal // valor referencial por unidad
	Location     string          // ubicación física
	Description  string
	Brand        string
	Model        string
	Serial       string
	AssetCode    string // código patrimonial
	AssetYear    int
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// IsTool indica si el insumo es una herramienta (se presta, no se consume).
func (s *SupplyItem) IsTool() bool {
	return s.Category == CategoryTool
}

// ApplyDelta aplica quantity += delta y recalcula el estado.
// Devuelve InsufficientStockError si el resultado sería negativo; en ese caso no modifica el insumo.
// Una herramienta que queda en 0 por una salida pasa a Prestado; si vuelve de 0 a positivo, a Nuevo.
func (s *SupplyItem) ApplyDelta(delta int) error {
	next := s.Quantity + delta
	if next < 0 {
		return &domain.InsufficientStockError{ItemID: s.ID, Available: s.Quantity, Requested: -delta}
	}
	prev := s.Quantity
	s.Quantity = next
	if s.IsTool() {
		switch {
		case delta < 0 && next == 0:
			s.State = StateLoaned
		case prev == 0 && next > 0:
			s.State = StateNew
		}
	}
	return nil
}

// StockValue valor referencial del stock actual (Quantity * UnitValue).
func (s *SupplyItem) StockValue() decimal.Decimal {
	return s.UnitValue.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
