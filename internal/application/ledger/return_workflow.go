package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

// ReturnCandidate línea devolvible de una guía de salida.
type ReturnCandidate struct {
	Item                *entity.SupplyItem
	ItemID              string
	OriginalQuantity    int
	ReturnedQuantity    int
	RemainingReturnable int
}

// ReturnSelection cantidad a devolver de un insumo.
type ReturnSelection struct {
	ItemID   string
	Quantity int
}

// ReturnRequest devolución contra una guía de salida.
type ReturnRequest struct {
	Selections  []ReturnSelection
	DeliveredBy string // quien entrega (devuelve) los insumos
	ReceivedBy  string // quien los recibe en almacén
}

// ReturnWorkflow devoluciones parciales o totales de guías de salida.
type ReturnWorkflow struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	items     repository.SupplyItemRepository
	commit    *GuideCommitUseCase
	opts      Options
}

// NewReturnWorkflow construye el flujo de devolución.
func NewReturnWorkflow(
	txRunner TxRunner,
	movements repository.MovementRepository,
	items repository.SupplyItemRepository,
	commit *GuideCommitUseCase,
	opts Options,
) *ReturnWorkflow {
	return &ReturnWorkflow{
		txRunner:  txRunner,
		movements: movements,
		items:     items,
		commit:    commit,
		opts:      opts.withDefaults(),
	}
}

// ListReturnCandidates lo entregado por la guía y lo pendiente de devolver, por insumo.
// ErrGuideNotFound si la guía no existe; ErrNothingToReturn si no tiene salidas activas.
func (w *ReturnWorkflow) ListReturnCandidates(ctx context.Context, originGuideNumber string) ([]ReturnCandidate, error) {
	origin := ledger.NormalizeGuideNumber(originGuideNumber)
	if origin == "" {
		return nil, domain.Invalid("guide_number", "requerido")
	}
	issued, err := w.movements.ListByGuide(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("devolucion: movimientos de la guía: %w", err)
	}
	returns, err := w.movements.ListReturnsOf(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("devolucion: devoluciones previas: %w", err)
	}
	lines, err := returnableLines(origin, issued, returns)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	found, err := w.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("devolucion: insumos: %w", err)
	}
	byID := make(map[string]*entity.SupplyItem, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	out := make([]ReturnCandidate, 0, len(lines))
	for _, l := range lines {
		out = append(out, ReturnCandidate{
			Item:                byID[l.ItemID],
			ItemID:              l.ItemID,
			OriginalQuantity:    l.Original,
			ReturnedQuantity:    l.Returned,
			RemainingReturnable: l.Remaining,
		})
	}
	return out, nil
}

// ProceedReturn confirma una guía de devolución consolidada (Entrada, prefijo de devolución)
// que referencia a la guía origen. El tope por insumo se verifica dentro de la transacción.
func (w *ReturnWorkflow) ProceedReturn(ctx context.Context, originGuideNumber string, in ReturnRequest) (*CommitResult, error) {
	origin := ledger.NormalizeGuideNumber(originGuideNumber)
	switch {
	case origin == "":
		return nil, domain.Invalid("guide_number", "requerido")
	case strings.TrimSpace(in.DeliveredBy) == "":
		return nil, domain.Invalid("delivered_by", "requerido")
	case strings.TrimSpace(in.ReceivedBy) == "":
		return nil, domain.Invalid("received_by", "requerido")
	case len(in.Selections) == 0:
		return nil, domain.Invalid("selections", "seleccione al menos un insumo")
	}

	// Selecciones repetidas del mismo insumo se suman; el orden es el de primera aparición.
	cart := entity.Cart{}
	for i, s := range in.Selections {
		if s.ItemID == "" {
			return nil, domain.Invalid(fmt.Sprintf("selections[%d].item_id", i), "requerido")
		}
		if s.Quantity < 1 {
			return nil, domain.Invalid(fmt.Sprintf("selections[%d].quantity", i), "debe ser al menos 1")
		}
		if j := cart.Find(s.ItemID); j >= 0 {
			cart.Lines[j].Quantity += s.Quantity
			continue
		}
		cart.Lines = append(cart.Lines, entity.CartLine{ItemID: s.ItemID, Quantity: s.Quantity})
	}

	var result *CommitResult
	err := w.txRunner.Run(ctx, func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		sequences repository.GuideSequenceRepository,
		_ repository.AuditEventRepository,
	) error {
		// ── 1. Bloquear la guía origen y calcular lo pendiente ───────────────
		issued, err := movements.ListByGuideForUpdate(ctx, origin)
		if err != nil {
			return fmt.Errorf("devolucion: bloquear guía origen: %w", err)
		}
		returns, err := movements.ListReturnsOf(ctx, origin)
		if err != nil {
			return fmt.Errorf("devolucion: devoluciones previas: %w", err)
		}
		lines, err := returnableLines(origin, issued, returns)
		if err != nil {
			return err
		}
		remaining := make(map[string]int, len(lines))
		for _, l := range lines {
			remaining[l.ItemID] = l.Remaining
		}

		// ── 2. Tope por insumo ───────────────────────────────────────────────
		for _, l := range cart.Lines {
			if l.Quantity > remaining[l.ItemID] {
				return &domain.OverReturnError{
					GuideNumber: origin,
					ItemID:      l.ItemID,
					Remaining:   remaining[l.ItemID],
					Requested:   l.Quantity,
				}
			}
		}

		// ── 3. Guía de devolución con destino y responsable de la guía origen ─
		head := firstActiveOut(issued)
		meta := GuideMeta{
			Direction:     entity.DirectionIn,
			ResponsibleID: head.ResponsibleID,
			DestinationID: head.DestinationID,
			ReceiverName:  strings.TrimSpace(in.ReceivedBy),
			DelivererName: strings.TrimSpace(in.DeliveredBy),
			Observation:   "Devolución " + origin,
		}
		result, err = w.commit.commitInTx(ctx, items, movements, sequences,
			w.opts.ReturnPrefix, cart, entity.GuideModeConsolidated, meta, origin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func returnableLines(origin string, issued, returns []*entity.Movement) ([]ledger.ReturnLine, error) {
	if len(issued) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrGuideNotFound, origin)
	}
	lines := ledger.ReturnableByItem(issued, returns)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNothingToReturn, origin)
	}
	return lines, nil
}

func firstActiveOut(list []*entity.Movement) *entity.Movement {
	for _, m := range list {
		if m.IsActive() && m.Direction == entity.DirectionOut {
			return m
		}
	}
	return list[0]
}
