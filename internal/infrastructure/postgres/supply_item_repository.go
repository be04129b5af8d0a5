package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

var _ repository.SupplyItemRepository = (*SupplyItemRepo)(nil)

// SupplyItemRepo implementación de SupplyItemRepository sobre PostgreSQL (usable con pool o tx).
type SupplyItemRepo struct {
	q Querier
}

// NewSupplyItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplyItemRepository(q Querier) *SupplyItemRepo {
	return &SupplyItemRepo{q: q}
}

const supplyItemColumns = `id, name, category, quantity, unit, state, unit_value, location, description,
	brand, model, serial, asset_code, asset_year, registered_at, updated_at`

func scanSupplyItem(row pgx.Row) (*entity.SupplyItem, error) {
	var it entity.SupplyItem
	err := row.Scan(
		&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit, &it.State, &it.UnitValue,
		&it.Location, &it.Description, &it.Brand, &it.Model, &it.Serial, &it.AssetCode,
		&it.AssetYear, &it.RegisteredAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func itemSearchText(it *entity.SupplyItem) string {
	return textsearch.Join(it.Name, it.Brand, it.Model, it.Serial, it.AssetCode, it.Location)
}

// Create inserta un insumo.
func (r *SupplyItemRepo) Create(ctx context.Context, it *entity.SupplyItem) error {
	query := `
		INSERT INTO supply_items (` + supplyItemColumns + `, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.Name, it.Category, it.Quantity, it.Unit, it.State, it.UnitValue,
		it.Location, it.Description, it.Brand, it.Model, it.Serial, it.AssetCode,
		it.AssetYear, it.RegisteredAt, it.UpdatedAt, itemSearchText(it),
	)
	if err != nil {
		return mapWriteError("create supply item", err)
	}
	return nil
}

// GetByID obtiene un insumo; (nil, nil) si no existe.
func (r *SupplyItemRepo) GetByID(ctx context.Context, id string) (*entity.SupplyItem, error) {
	return r.get(ctx, `SELECT `+supplyItemColumns+` FROM supply_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el insumo y bloquea la fila (SELECT FOR UPDATE).
func (r *SupplyItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.SupplyItem, error) {
	return r.get(ctx, `SELECT `+supplyItemColumns+` FROM supply_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *SupplyItemRepo) get(ctx context.Context, query, id string) (*entity.SupplyItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	it, err := scanSupplyItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply item: %w", err)
	}
	return it, nil
}

// ListByIDs insumos existentes entre ids.
func (r *SupplyItemRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.SupplyItem, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []*entity.SupplyItem{}, nil
	}
	query := `SELECT ` + supplyItemColumns + ` FROM supply_items WHERE id = ANY($1::uuid[]) ORDER BY name, id`
	return r.list(ctx, query, valid)
}

// List filtra por texto (search_text normalizado), categoría y umbral de cantidad.
func (r *SupplyItemRepo) List(ctx context.Context, f repository.SupplyFilter) ([]*entity.SupplyItem, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		where = append(where, "search_text LIKE "+arg(likePattern(f.Search)))
	}
	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.BelowQuantity > 0 {
		where = append(where, "quantity < "+arg(f.BelowQuantity))
	}

	query := `SELECT ` + supplyItemColumns + ` FROM supply_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}
	return r.list(ctx, query, args...)
}

func (r *SupplyItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SupplyItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list supply items: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.SupplyItem, 0)
	for rows.Next() {
		it, err := scanSupplyItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supply item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStock persiste cantidad y estado. El CHECK quantity >= 0 respalda la invariante.
func (r *SupplyItemRepo) UpdateStock(ctx context.Context, it *entity.SupplyItem) error {
	query := `UPDATE supply_items SET quantity = $2, state = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, it.ID, it.Quantity, it.State, it.UpdatedAt)
	if err != nil {
		return mapWriteError("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: insumo %s no existe", it.ID)
	}
	return nil
}

// Update persiste los datos descriptivos, el estado y el texto de búsqueda. La cantidad no se toca.
func (r *SupplyItemRepo) Update(ctx context.Context, it *entity.SupplyItem) error {
	query := `
		UPDATE supply_items
		SET name = $2, category = $3, unit = $4, state = $5, unit_value = $6, location = $7,
			description = $8, brand = $9, model = $10, serial = $11, asset_code = $12,
			asset_year = $13, updated_at = $14, search_text = $15
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		it.ID, it.Name, it.Category, it.Unit, it.State, it.UnitValue, it.Location,
		it.Description, it.Brand, it.Model, it.Serial, it.AssetCode,
		it.AssetYear, it.UpdatedAt, itemSearchText(it),
	)
	if err != nil {
		return mapWriteError("update supply item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update supply item: %w: insumo %s", domain.ErrNotFound, it.ID)
	}
	return nil
}

// Delete elimina el insumo. La FK de supply_movements lo impide si tiene movimientos (ErrItemInUse).
func (r *SupplyItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete supply item: %w: insumo %s", domain.ErrNotFound, id)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM supply_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete supply item: %w: %s", domain.ErrItemInUse, id)
		}
		return mapWriteError("delete supply item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete supply item: %w: insumo %s", domain.ErrNotFound, id)
	}
	return nil
}
