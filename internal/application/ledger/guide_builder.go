package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

// GuideBuilder arma el carrito de una guía validando contra el stock actual.
// No reserva ni modifica stock: el commit vuelve a validar dentro de la transacción.
type GuideBuilder struct {
	items repository.SupplyItemRepository
}

// NewGuideBuilder construye el armador de guías.
func NewGuideBuilder(items repository.SupplyItemRepository) *GuideBuilder {
	return &GuideBuilder{items: items}
}

// CartLineView línea del carrito con el insumo resuelto.
type CartLineView struct {
	Line entity.CartLine
	Item *entity.SupplyItem
}

// Add agrega el insumo al carrito (quantity <= 0 equivale a 1).
// ErrOutOfStock si el insumo no tiene stock. Si la línea ya existe se conserva sin cambios.
func (b *GuideBuilder) Add(ctx context.Context, cart *entity.Cart, itemID string, quantity int) (entity.CartLine, error) {
	if quantity <= 0 {
		quantity = 1
	}
	item, err := b.item(ctx, itemID)
	if err != nil {
		return entity.CartLine{}, err
	}
	if item.Quantity <= 0 {
		return entity.CartLine{}, fmt.Errorf("%w: %s", domain.ErrOutOfStock, item.Name)
	}
	if i := cart.Find(itemID); i >= 0 {
		return cart.Lines[i], nil
	}
	if quantity > item.Quantity {
		return entity.CartLine{}, &domain.InsufficientStockError{ItemID: itemID, Available: item.Quantity, Requested: quantity}
	}
	line := entity.CartLine{ItemID: itemID, Quantity: quantity}
	cart.Lines = append(cart.Lines, line)
	return line, nil
}

// SetQuantity cambia la cantidad de una línea existente.
func (b *GuideBuilder) SetQuantity(ctx context.Context, cart *entity.Cart, itemID string, quantity int) (entity.CartLine, error) {
	i := cart.Find(itemID)
	if i < 0 {
		return entity.CartLine{}, fmt.Errorf("%w: el insumo %s no está en el carrito", domain.ErrNotFound, itemID)
	}
	if quantity < 1 {
		return entity.CartLine{}, domain.Invalid("quantity", "debe ser al menos 1")
	}
	item, err := b.item(ctx, itemID)
	if err != nil {
		return entity.CartLine{}, err
	}
	if quantity > item.Quantity {
		return entity.CartLine{}, &domain.InsufficientStockError{ItemID: itemID, Available: item.Quantity, Requested: quantity}
	}
	cart.Lines[i].Quantity = quantity
	return cart.Lines[i], nil
}

// Remove quita la línea del insumo (no falla si no existe).
func (b *GuideBuilder) Remove(cart *entity.Cart, itemID string) {
	cart.Remove(itemID)
}

// View resuelve los insumos del carrito para mostrar nombre, unidad y disponible.
func (b *GuideBuilder) View(ctx context.Context, cart *entity.Cart) ([]CartLineView, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ItemID)
	}
	found, err := b.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("carrito: insumos: %w", err)
	}
	byID := make(map[string]*entity.SupplyItem, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	out := make([]CartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		out = append(out, CartLineView{Line: l, Item: byID[l.ItemID]})
	}
	return out, nil
}

func (b *GuideBuilder) item(ctx context.Context, itemID string) (*entity.SupplyItem, error) {
	if itemID == "" {
		return nil, domain.Invalid("item_id", "requerido")
	}
	item, err := b.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("carrito: obtener insumo: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, itemID)
	}
	return item, nil
}
