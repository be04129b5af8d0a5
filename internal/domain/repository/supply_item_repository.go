package repository

import (
	"context"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// SupplyFilter filtros para listar insumos.
type SupplyFilter struct {
	Search        string // texto libre (ya normalizado con textsearch.Fold)
	Category      string
	BelowQuantity int // > 0: solo insumos con Quantity < BelowQuantity
	Limit         int
	Offset        int
}

// SupplyItemRepository define el puerto de persistencia para insumos (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el insumo no existe.
type SupplyItemRepository interface {
	Create(ctx context.Context, item *entity.SupplyItem) error
	GetByID(ctx context.Context, id string) (*entity.SupplyItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.SupplyItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.SupplyItem, error)
	List(ctx context.Context, filter SupplyFilter) ([]*entity.SupplyItem, error)
	// UpdateStock persiste cantidad y estado; solo lo usa el libro de movimientos.
	UpdateStock(ctx context.Context, item *entity.SupplyItem) error
	// Update persiste los datos descriptivos y el estado. Nunca toca la cantidad.
	Update(ctx context.Context, item *entity.SupplyItem) error
	// Delete elimina el insumo; ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
