package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

// MovementLedger libro de movimientos: única vía que modifica la cantidad de los insumos.
type MovementLedger struct {
	txRunner  TxRunner
	items     repository.SupplyItemRepository
	movements repository.MovementRepository
	opts      Options
}

// NewMovementLedger construye el libro. items y movements se usan para lecturas fuera de transacción.
func NewMovementLedger(
	txRunner TxRunner,
	items repository.SupplyItemRepository,
	movements repository.MovementRepository,
	opts Options,
) *MovementLedger {
	return &MovementLedger{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		opts:      opts.withDefaults(),
	}
}

// GuideLine movimiento con su insumo (Item puede ser nil si el insumo ya no existe).
type GuideLine struct {
	Movement *entity.Movement
	Item     *entity.SupplyItem
}

// GuideView movimientos de una guía (o de un movimiento suelto "single-<id>") en orden de creación.
type GuideView struct {
	Key   string
	Lines []GuideLine
}

// Head primer movimiento de la guía; define fecha, dirección, destino y responsable.
func (g *GuideView) Head() *entity.Movement {
	if len(g.Lines) == 0 {
		return nil
	}
	return g.Lines[0].Movement
}

// Movements movimientos de la guía.
func (g *GuideView) Movements() []*entity.Movement {
	out := make([]*entity.Movement, 0, len(g.Lines))
	for _, l := range g.Lines {
		out = append(out, l.Movement)
	}
	return out
}

// Append aplica los borradores dentro de la transacción del caller.
// Bloquea cada insumo (en orden ascendente de id), aplica ±cantidad, registra el movimiento
// con la foto antes/después y persiste el stock. Cualquier error invalida todo el lote.
func (l *MovementLedger) Append(
	ctx context.Context,
	items repository.SupplyItemRepository,
	movements repository.MovementRepository,
	drafts []entity.MovementDraft,
	at time.Time,
) ([]*entity.Movement, error) {
	if len(drafts) == 0 {
		return nil, domain.Invalid("lines", "sin líneas")
	}
	for i, d := range drafts {
		if d.ItemID == "" {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].item_id", i), "requerido")
		}
		if d.Quantity < 1 {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if d.Direction != entity.DirectionOut && d.Direction != entity.DirectionIn {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].direction", i), "dirección desconocida: "+d.Direction)
		}
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.ItemID)
	}
	locked, err := lockItems(ctx, items, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Movement, 0, len(drafts))
	for _, d := range drafts {
		item := locked[d.ItemID]
		before := item.Quantity
		delta := d.Quantity
		if d.Direction == entity.DirectionOut {
			delta = -d.Quantity
		}
		if err := item.ApplyDelta(delta); err != nil {
			return nil, err
		}
		m := &entity.Movement{
			ID:                uuid.New().String(),
			ItemID:            d.ItemID,
			MovedAt:           at,
			Direction:         d.Direction,
			Quantity:          d.Quantity,
			QuantityBefore:    before,
			QuantityAfter:     item.Quantity,
			GuideNumber:       d.GuideNumber,
			OriginGuideNumber: d.OriginGuideNumber,
			ResponsibleID:     d.ResponsibleID,
			DestinationID:     d.DestinationID,
			ReceiverName:      d.ReceiverName,
			DelivererName:     d.DelivererName,
			Observation:       d.Observation,
			Status:            entity.MovementActive,
			CreatedAt:         at,
		}
		if err := movements.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("ledger: registrar movimiento: %w", err)
		}
		out = append(out, m)
	}
	if err := saveItems(ctx, items, locked, at); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByGuide movimientos de la guía en orden de creación; ErrGuideNotFound si no hay ninguno.
func (l *MovementLedger) FindByGuide(ctx context.Context, guideNumber string) ([]*entity.Movement, error) {
	guideNumber = ledger.NormalizeGuideNumber(guideNumber)
	if guideNumber == "" {
		return nil, domain.Invalid("guide_number", "requerido")
	}
	list, err := l.movements.ListByGuide(ctx, guideNumber)
	if err != nil {
		return nil, fmt.Errorf("ledger: buscar guía: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrGuideNotFound, guideNumber)
	}
	return list, nil
}

// Guide devuelve la guía con sus insumos.
func (l *MovementLedger) Guide(ctx context.Context, guideNumber string) (*GuideView, error) {
	list, err := l.FindByGuide(ctx, guideNumber)
	if err != nil {
		return nil, err
	}
	views, err := l.views(ctx, []string{list[0].GroupKey()}, list)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Annul revierte el efecto de todos los movimientos de la guía, una sola vez.
// Rechaza la anulación completa si alguna reversión dejaría stock negativo, o si la guía
// tiene devoluciones activas (deben anularse primero).
func (l *MovementLedger) Annul(ctx context.Context, guideNumber, authorizedBy, reason string) ([]*entity.Movement, error) {
	guideNumber = ledger.NormalizeGuideNumber(guideNumber)
	if guideNumber == "" {
		return nil, domain.Invalid("guide_number", "requerido")
	}
	var out []*entity.Movement
	err := l.txRunner.Run(ctx, func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		_ repository.GuideSequenceRepository,
		audit repository.AuditEventRepository,
	) error {
		// ── 1. Bloquear movimientos de la guía ───────────────────────────────
		list, err := movements.ListByGuideForUpdate(ctx, guideNumber)
		if err != nil {
			return fmt.Errorf("ledger: bloquear guía: %w", err)
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: %s", domain.ErrGuideNotFound, guideNumber)
		}
		for _, m := range list {
			if !m.IsActive() {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyAnnulled, guideNumber)
			}
		}

		// ── 2. Devoluciones activas contra esta guía ─────────────────────────
		returns, err := movements.ListReturnsOf(ctx, guideNumber)
		if err != nil {
			return fmt.Errorf("ledger: devoluciones de la guía: %w", err)
		}
		for _, r := range returns {
			if r.IsActive() {
				return fmt.Errorf("%w (%s)", domain.ErrHasActiveReturns, r.GuideNumber)
			}
		}

		// ── 3. Revertir stock ────────────────────────────────────────────────
		ids := make([]string, 0, len(list))
		for _, m := range list {
			ids = append(ids, m.ItemID)
		}
		locked, err := lockItems(ctx, items, ids)
		if err != nil {
			return err
		}
		for _, m := range list {
			if err := locked[m.ItemID].ApplyDelta(-m.StockDelta()); err != nil {
				return err
			}
		}
		now := l.opts.Now()
		if err := saveItems(ctx, items, locked, now); err != nil {
			return err
		}

		// ── 4. Marcar anulados y auditar ─────────────────────────────────────
		if err := movements.MarkAnnulled(ctx, guideNumber, authorizedBy, now); err != nil {
			return fmt.Errorf("ledger: marcar anulada: %w", err)
		}
		if err := audit.Append(ctx, &entity.AuditEvent{
			ID:         uuid.New().String(),
			ActorID:    authorizedBy,
			Action:     entity.AuditGuideAnnulled,
			TargetID:   guideNumber,
			Reason:     reason,
			OccurredAt: now,
		}); err != nil {
			return fmt.Errorf("ledger: auditar anulación: %w", err)
		}
		for _, m := range list {
			m.Status = entity.MovementAnnulled
			m.AnnulledBy = authorizedBy
			at := now
			m.AnnulledAt = &at
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AttachEvidence asigna la URL de evidencia a todos los movimientos activos de la guía.
func (l *MovementLedger) AttachEvidence(ctx context.Context, guideNumber, url, actor string) (int64, error) {
	guideNumber = ledger.NormalizeGuideNumber(guideNumber)
	url = strings.TrimSpace(url)
	if guideNumber == "" {
		return 0, domain.Invalid("guide_number", "requerido")
	}
	if url == "" {
		return 0, domain.Invalid("url", "requerido")
	}
	var updated int64
	err := l.txRunner.Run(ctx, func(
		_ repository.SupplyItemRepository,
		movements repository.MovementRepository,
		_ repository.GuideSequenceRepository,
		audit repository.AuditEventRepository,
	) error {
		n, err := movements.SetEvidence(ctx, guideNumber, url)
		if err != nil {
			return fmt.Errorf("ledger: asignar evidencia: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s sin movimientos activos", domain.ErrGuideNotFound, guideNumber)
		}
		updated = n
		return audit.Append(ctx, &entity.AuditEvent{
			ID:         uuid.New().String(),
			ActorID:    actor,
			Action:     entity.AuditGuideEvidenceAttached,
			TargetID:   guideNumber,
			Reason:     url,
			OccurredAt: l.opts.Now(),
		})
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// History historial agrupado por guía, de la más reciente a la más antigua.
func (l *MovementLedger) History(ctx context.Context, in dto.GuideHistoryRequest) ([]*GuideView, error) {
	in.DefaultPage()
	filter := repository.MovementFilter{
		Search:    textsearch.Fold(in.Search),
		Direction: in.Direction,
		Status:    in.Status,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if in.From != "" {
		from, err := time.ParseInLocation("2006-01-02", in.From, time.Local)
		if err != nil {
			return nil, domain.Invalid("from", "fecha inválida (YYYY-MM-DD)")
		}
		filter.From = &from
	}
	if in.To != "" {
		to, err := time.ParseInLocation("2006-01-02", in.To, time.Local)
		if err != nil {
			return nil, domain.Invalid("to", "fecha inválida (YYYY-MM-DD)")
		}
		// To es inclusivo: hasta el final del día
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	keys, err := l.movements.SearchGroupKeys(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ledger: historial: %w", err)
	}
	if len(keys) == 0 {
		return []*GuideView{}, nil
	}
	list, err := l.movements.ListByGroupKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("ledger: historial: %w", err)
	}
	return l.views(ctx, keys, list)
}

// views agrupa movimientos por clave respetando el orden de keys y resuelve sus insumos.
func (l *MovementLedger) views(ctx context.Context, keys []string, list []*entity.Movement) ([]*GuideView, error) {
	ids := make([]string, 0, len(list))
	seen := make(map[string]bool)
	for _, m := range list {
		if !seen[m.ItemID] {
			seen[m.ItemID] = true
			ids = append(ids, m.ItemID)
		}
	}
	found, err := l.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ledger: insumos de la guía: %w", err)
	}
	byID := make(map[string]*entity.SupplyItem, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}

	index := make(map[string]*GuideView, len(keys))
	views := make([]*GuideView, 0, len(keys))
	for _, k := range keys {
		v := &GuideView{Key: k}
		index[k] = v
		views = append(views, v)
	}
	for _, m := range list {
		if v, ok := index[m.GroupKey()]; ok {
			v.Lines = append(v.Lines, GuideLine{Movement: m, Item: byID[m.ItemID]})
		}
	}
	return views, nil
}

// lockItems bloquea los insumos en orden ascendente de id (evita deadlocks entre transacciones).
func lockItems(ctx context.Context, items repository.SupplyItemRepository, ids []string) (map[string]*entity.SupplyItem, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	locked := make(map[string]*entity.SupplyItem, len(unique))
	for _, id := range unique {
		item, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("ledger: bloquear insumo: %w", err)
		}
		if item == nil {
			return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		locked[id] = item
	}
	return locked, nil
}

func saveItems(ctx context.Context, items repository.SupplyItemRepository, locked map[string]*entity.SupplyItem, at time.Time) error {
	ids := make([]string, 0, len(locked))
	for id := range locked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		item := locked[id]
		item.UpdatedAt = at
		if err := items.UpdateStock(ctx, item); err != nil {
			return fmt.Errorf("ledger: actualizar stock: %w", err)
		}
	}
	return nil
}
