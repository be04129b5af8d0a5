package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSupplyRequest entrada para registrar un insumo con su cantidad inicial.
type CreateSupplyRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Category    string          `json:"category" validate:"required,oneof=Herramienta Material Accesorio Otro"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	Unit        string          `json:"unit" validate:"required,max=50"`
	State       string          `json:"state" validate:"omitempty,oneof=Nuevo Usado Baja Prestado"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Location    string          `json:"location" validate:"max=200"`
	Description string          `json:"description"`
	Brand       string          `json:"brand" validate:"max=100"`
	Model       string          `json:"model" validate:"max=100"`
	Serial      string          `json:"serial" validate:"max=100"`
	AssetCode   string          `json:"asset_code" validate:"max=100"`
	AssetYear   int             `json:"asset_year" validate:"omitempty,min=1900,max=2100"`
}

// UpdateSupplyRequest edición parcial de un insumo: los campos ausentes (nil) no cambian.
// La cantidad no se edita; solo cambia con guías.
type UpdateSupplyRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" validate:"omitempty,oneof=Herramienta Material Accesorio Otro"`
	Unit        *string          `json:"unit" validate:"omitempty,min=1,max=50"`
	State       *string          `json:"state" validate:"omitempty,oneof=Nuevo Usado Baja"`
	UnitValue   *decimal.Decimal `json:"unit_value"`
	Location    *string          `json:"location" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Model       *string          `json:"model" validate:"omitempty,max=100"`
	Serial      *string          `json:"serial" validate:"omitempty,max=100"`
	AssetCode   *string          `json:"asset_code" validate:"omitempty,max=100"`
	AssetYear   *int             `json:"asset_year" validate:"omitempty,min=0,max=2100"`
}

// SupplyListRequest filtros del catálogo (query string).
type SupplyListRequest struct {
	Search   string `query:"search"`
	Category string `query:"category" validate:"omitempty,oneof=Herramienta Material Accesorio Otro"`
	PageRequest
}

// SupplyResponse salida de un insumo.
type SupplyResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	Unit         string          `json:"unit"`
	State        string          `json:"state"`
	UnitValue    decimal.Decimal `json:"unit_value"`
	StockValue   decimal.Decimal `json:"stock_value"`
	Location     string          `json:"location,omitempty"`
	Description  string          `json:"description,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	Serial       string          `json:"serial,omitempty"`
	AssetCode    string          `json:"asset_code,omitempty"`
	AssetYear    int             `json:"asset_year,omitempty"`
	RegisteredAt time.Time       `json:"registered_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SupplyListResponse lista paginada de insumos.
type SupplyListResponse struct {
	Items []SupplyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// LowStockResponse materiales por debajo del umbral.
type LowStockResponse struct {
	Threshold int              `json:"threshold"`
	Items     []SupplyResponse `json:"items"`
}

// CategoryValuationResponse valorización de una categoría.
type CategoryValuationResponse struct {
	Category   string          `json:"category"`
	Items      int             `json:"items"`
	Units      int             `json:"units"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ValuationResponse valorización referencial del almacén.
type ValuationResponse struct {
	Items      int                         `json:"items"`
	Units      int                         `json:"units"`
	TotalValue decimal.Decimal             `json:"total_value"`
	ByCategory []CategoryValuationResponse `json:"by_category"`
}
