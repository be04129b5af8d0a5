package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

// SupplyItemRepo implementa repository.SupplyItemRepository en memoria.
type SupplyItemRepo struct{ v view }

var _ repository.SupplyItemRepository = (*SupplyItemRepo)(nil)

// Create inserta el insumo; ErrConflict si el ID ya existe.
func (r *SupplyItemRepo) Create(_ context.Context, item *entity.SupplyItem) error {
	cp := cloneItem(item)
	return r.v.write(func(d *data) error {
		if _, ok := d.items[cp.ID]; ok {
			return fmt.Errorf("%w: insumo %s ya existe", domain.ErrConflict, cp.ID)
		}
		d.items[cp.ID] = cp
		return nil
	})
}

// GetByID retorna (nil, nil) si no existe.
func (r *SupplyItemRepo) GetByID(_ context.Context, id string) (*entity.SupplyItem, error) {
	var out *entity.SupplyItem
	r.v.read(func(d *data) {
		if it, ok := d.items[id]; ok {
			out = cloneItem(it)
		}
	})
	return out, nil
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya es exclusiva.
func (r *SupplyItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.SupplyItem, error) {
	return r.GetByID(ctx, id)
}

// ListByIDs insumos existentes entre ids (los faltantes se omiten).
func (r *SupplyItemRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.SupplyItem, error) {
	out := make([]*entity.SupplyItem, 0, len(ids))
	r.v.read(func(d *data) {
		for _, id := range ids {
			if it, ok := d.items[id]; ok {
				out = append(out, cloneItem(it))
			}
		}
	})
	return out, nil
}

// List filtra y ordena por nombre.
func (r *SupplyItemRepo) List(_ context.Context, f repository.SupplyFilter) ([]*entity.SupplyItem, error) {
	var all []*entity.SupplyItem
	r.v.read(func(d *data) {
		for _, it := range d.items {
			if f.Category != "" && it.Category != f.Category {
				continue
			}
			if f.BelowQuantity > 0 && it.Quantity >= f.BelowQuantity {
				continue
			}
			if !textsearch.Contains(f.Search, it.Name, it.Brand, it.Model, it.Serial, it.AssetCode, it.Location) {
				continue
			}
			all = append(all, cloneItem(it))
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, f.Limit, f.Offset), nil
}

// UpdateStock persiste cantidad, estado y fecha de actualización.
func (r *SupplyItemRepo) UpdateStock(_ context.Context, item *entity.SupplyItem) error {
	return r.v.write(func(d *data) error {
		cur, ok := d.items[item.ID]
		if !ok {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, item.ID)
		}
		if item.Quantity < 0 {
			return &domain.InsufficientStockError{ItemID: item.ID, Available: cur.Quantity, Requested: cur.Quantity - item.Quantity}
		}
		cur.Quantity = item.Quantity
		cur.State = item.State
		cur.UpdatedAt = item.UpdatedAt
		return nil
	})
}

// Update reemplaza los datos descriptivos y el estado; la cantidad se conserva.
func (r *SupplyItemRepo) Update(_ context.Context, item *entity.SupplyItem) error {
	return r.v.write(func(d *data) error {
		cur, ok := d.items[item.ID]
		if !ok {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, item.ID)
		}
		cp := cloneItem(item)
		cp.Quantity = cur.Quantity
		cp.RegisteredAt = cur.RegisteredAt
		d.items[cp.ID] = cp
		return nil
	})
}

// Delete elimina el insumo; ErrItemInUse si algún movimiento lo referencia.
func (r *SupplyItemRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.items[id]; !ok {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		for _, m := range d.movements {
			if m.ItemID == id {
				return fmt.Errorf("%w: %s", domain.ErrItemInUse, id)
			}
		}
		delete(d.items, id)
		return nil
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return []T{}
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
