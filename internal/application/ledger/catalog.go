package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

// CatalogUseCase consultas, registro y mantenimiento del catálogo de insumos.
// La cantidad de un insumo existente solo cambia vía el libro de movimientos.
type CatalogUseCase struct {
	txRunner TxRunner
	items    repository.SupplyItemRepository
	opts     Options
}

// NewCatalogUseCase construye el caso de uso. txRunner se usa en edición y borrado.
func NewCatalogUseCase(txRunner TxRunner, items repository.SupplyItemRepository, opts Options) *CatalogUseCase {
	return &CatalogUseCase{txRunner: txRunner, items: items, opts: opts.withDefaults()}
}

// CategoryValuation valorización de una categoría.
type CategoryValuation struct {
	Category   string
	Items      int
	Units      int
	TotalValue decimal.Decimal
}

// Valuation valorización referencial del almacén (Quantity * UnitValue).
type Valuation struct {
	Items      int
	Units      int
	TotalValue decimal.Decimal
	ByCategory []CategoryValuation
}

// Get obtiene un insumo; ErrNotFound si no existe.
func (uc *CatalogUseCase) Get(ctx context.Context, id string) (*entity.SupplyItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalogo: obtener insumo: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
	}
	return item, nil
}

// List lista insumos; la búsqueda ignora mayúsculas y tildes.
func (uc *CatalogUseCase) List(ctx context.Context, in dto.SupplyListRequest) ([]*entity.SupplyItem, error) {
	if in.Category != "" && !entity.ValidCategory(in.Category) {
		return nil, domain.Invalid("category", "categoría desconocida")
	}
	in.DefaultPage()
	list, err := uc.items.List(ctx, repository.SupplyFilter{
		Search:   textsearch.Fold(in.Search),
		Category: in.Category,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("catalogo: listar: %w", err)
	}
	return list, nil
}

// Register registra un insumo con su cantidad inicial.
func (uc *CatalogUseCase) Register(ctx context.Context, in dto.CreateSupplyRequest) (*entity.SupplyItem, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, domain.Invalid("name", "requerido")
	case !entity.ValidCategory(in.Category):
		return nil, domain.Invalid("category", "categoría desconocida: "+in.Category)
	case in.Quantity < 0:
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	case strings.TrimSpace(in.Unit) == "":
		return nil, domain.Invalid("unit", "requerido")
	case in.UnitValue.IsNegative():
		return nil, domain.Invalid("unit_value", "no puede ser negativo")
	}
	state := in.State
	if state == "" {
		state = entity.StateNew
	}
	if !entity.ValidState(state) {
		return nil, domain.Invalid("state", "estado desconocido: "+state)
	}

	now := uc.opts.Now()
	item := &entity.SupplyItem{
		ID:           uuid.New().String(),
		Name:         name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		Unit:         strings.TrimSpace(in.Unit),
		State:        state,
		UnitValue:    in.UnitValue,
		Location:     in.Location,
		Description:  in.Description,
		Brand:        in.Brand,
		Model:        in.Model,
		Serial:       in.Serial,
		AssetCode:    in.AssetCode,
		AssetYear:    in.AssetYear,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("catalogo: registrar: %w", err)
	}
	return item, nil
}

// Update edita los datos descriptivos de un insumo. Bloquea la fila igual que una guía,
// así la edición no pisa una salida concurrente.
// Reglas: el estado Prestado lo maneja el libro de movimientos (no se asigna ni se quita a mano)
// y la categoría no cambia si el insumo ya tiene movimientos.
func (uc *CatalogUseCase) Update(ctx context.Context, id, actorID string, in dto.UpdateSupplyRequest) (*entity.SupplyItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	var out *entity.SupplyItem
	err := uc.txRunner.Run(ctx, func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		_ repository.GuideSequenceRepository,
		audit repository.AuditEventRepository,
	) error {
		item, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("catalogo: bloquear insumo: %w", err)
		}
		if item == nil {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		if err := uc.applyUpdate(ctx, movements, item, in); err != nil {
			return err
		}
		now := uc.opts.Now()
		item.UpdatedAt = now
		if err := items.Update(ctx, item); err != nil {
			return fmt.Errorf("catalogo: actualizar: %w", err)
		}
		if err := audit.Append(ctx, &entity.AuditEvent{
			ID:         uuid.New().String(),
			ActorID:    actorID,
			Action:     entity.AuditSupplyUpdated,
			TargetID:   item.ID,
			OccurredAt: now,
		}); err != nil {
			return fmt.Errorf("catalogo: auditar edición: %w", err)
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *CatalogUseCase) applyUpdate(ctx context.Context, movements repository.MovementRepository, item *entity.SupplyItem, in dto.UpdateSupplyRequest) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Invalid("name", "requerido")
		}
		item.Name = name
	}
	if in.Unit != nil {
		unit := strings.TrimSpace(*in.Unit)
		if unit == "" {
			return domain.Invalid("unit", "requerido")
		}
		item.Unit = unit
	}
	if in.UnitValue != nil {
		if in.UnitValue.IsNegative() {
			return domain.Invalid("unit_value", "no puede ser negativo")
		}
		item.UnitValue = *in.UnitValue
	}
	if in.State != nil && *in.State != item.State {
		switch {
		case !entity.ValidState(*in.State):
			return domain.Invalid("state", "estado desconocido: "+*in.State)
		case *in.State == entity.StateLoaned:
			return domain.Invalid("state", "el estado Prestado lo asigna una guía de salida")
		case item.State == entity.StateLoaned:
			return domain.Invalid("state", "el insumo está prestado; se libera con la devolución")
		}
		item.State = *in.State
	}
	if in.Category != nil && *in.Category != item.Category {
		if !entity.ValidCategory(*in.Category) {
			return domain.Invalid("category", "categoría desconocida: "+*in.Category)
		}
		n, err := movements.CountByItem(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("catalogo: contar movimientos: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: no se puede cambiar la categoría de %s", domain.ErrItemInUse, item.ID)
		}
		item.Category = *in.Category
	}
	if in.AssetYear != nil {
		if *in.AssetYear < 0 {
			return domain.Invalid("asset_year", "no puede ser negativo")
		}
		item.AssetYear = *in.AssetYear
	}
	setIf(&item.Location, in.Location)
	setIf(&item.Description, in.Description)
	setIf(&item.Brand, in.Brand)
	setIf(&item.Model, in.Model)
	setIf(&item.Serial, in.Serial)
	setIf(&item.AssetCode, in.AssetCode)
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// Delete elimina un insumo sin movimientos. Con historial (aun anulado) responde ErrItemInUse:
// para retirarlo del almacén se marca en estado Baja.
func (uc *CatalogUseCase) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("id", "requerido")
	}
	return uc.txRunner.Run(ctx, func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		_ repository.GuideSequenceRepository,
		audit repository.AuditEventRepository,
	) error {
		item, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("catalogo: bloquear insumo: %w", err)
		}
		if item == nil {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		n, err := movements.CountByItem(ctx, id)
		if err != nil {
			return fmt.Errorf("catalogo: contar movimientos: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s (%d movimientos)", domain.ErrItemInUse, id, n)
		}
		if err := items.Delete(ctx, id); err != nil {
			return fmt.Errorf("catalogo: eliminar: %w", err)
		}
		if err := audit.Append(ctx, &entity.AuditEvent{
			ID:         uuid.New().String(),
			ActorID:    actorID,
			Action:     entity.AuditSupplyDeleted,
			TargetID:   id,
			Reason:     item.Name,
			OccurredAt: uc.opts.Now(),
		}); err != nil {
			return fmt.Errorf("catalogo: auditar borrado: %w", err)
		}
		return nil
	})
}

// LowStock materiales con cantidad menor al umbral (threshold <= 0 usa el configurado).
func (uc *CatalogUseCase) LowStock(ctx context.Context, threshold int) ([]*entity.SupplyItem, int, error) {
	if threshold <= 0 {
		threshold = uc.opts.LowStockThreshold
	}
	list, err := uc.items.List(ctx, repository.SupplyFilter{
		Category:      entity.CategoryMaterial,
		BelowQuantity: threshold,
	})
	if err != nil {
		return nil, threshold, fmt.Errorf("catalogo: stock bajo: %w", err)
	}
	return list, threshold, nil
}

// Valuation suma unidades y valor referencial de todo el catálogo, por categoría.
func (uc *CatalogUseCase) Valuation(ctx context.Context) (*Valuation, error) {
	list, err := uc.items.List(ctx, repository.SupplyFilter{})
	if err != nil {
		return nil, fmt.Errorf("catalogo: valorizar: %w", err)
	}
	v := &Valuation{TotalValue: decimal.Zero}
	byCat := make(map[string]*CategoryValuation)
	for _, it := range list {
		value := it.StockValue()
		v.Items++
		v.Units += it.Quantity
		v.TotalValue = v.TotalValue.Add(value)

		c, ok := byCat[it.Category]
		if !ok {
			c = &CategoryValuation{Category: it.Category, TotalValue: decimal.Zero}
			byCat[it.Category] = c
		}
		c.Items++
		c.Units += it.Quantity
		c.TotalValue = c.TotalValue.Add(value)
	}
	for _, c := range byCat {
		v.ByCategory = append(v.ByCategory, *c)
	}
	sort.Slice(v.ByCategory, func(i, j int) bool { return v.ByCategory[i].Category < v.ByCategory[j].Category })
	return v, nil
}
