package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

// GuideMeta datos de cabecera de la guía.
type GuideMeta struct {
	Direction      string // Salida por defecto
	ResponsibleID  string // obligatorio
	DestinationID  string
	ReceiverName   string
	DelivererName  string
	Observation    string
	IdempotencyKey string // opcional: una clave repetida dentro del TTL retorna ErrConflict
}

// CommitResult números de guía emitidos y movimientos creados, en orden.
type CommitResult struct {
	GuideNumbers []string
	Movements    []*entity.Movement
}

// GuideCommitUseCase numera y confirma un carrito como una o varias guías.
type GuideCommitUseCase struct {
	txRunner    TxRunner
	ledger      *MovementLedger
	idempotency IdempotencyStore
	opts        Options
}

// NewGuideCommitUseCase construye el caso de uso. idempotency puede ser nil.
func NewGuideCommitUseCase(txRunner TxRunner, l *MovementLedger, idempotency IdempotencyStore, opts Options) *GuideCommitUseCase {
	return &GuideCommitUseCase{
		txRunner:    txRunner,
		ledger:      l,
		idempotency: idempotency,
		opts:        opts.withDefaults(),
	}
}

// Commit confirma el carrito en una sola transacción.
// CONSOLIDADO: un número de guía para todas las líneas. INDIVIDUAL: una guía por línea,
// "<base>-<i>" con i desde 1 en el orden del carrito. Si algo falla no se emite ningún número.
func (uc *GuideCommitUseCase) Commit(ctx context.Context, cart entity.Cart, mode string, meta GuideMeta) (*CommitResult, error) {
	if mode == "" {
		mode = entity.GuideModeConsolidated
	}
	if mode != entity.GuideModeConsolidated && mode != entity.GuideModeIndividual {
		return nil, domain.Invalid("mode", "modo desconocido: "+mode)
	}
	if meta.Direction == "" {
		meta.Direction = entity.DirectionOut
	}
	if err := validateCommit(cart, meta); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(meta.IdempotencyKey)
	if key != "" && uc.idempotency != nil {
		ok, err := uc.idempotency.Reserve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("commit: reservar clave de idempotencia: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: la clave de idempotencia %q ya fue utilizada", domain.ErrConflict, key)
		}
	}

	var result *CommitResult
	err := uc.txRunner.Run(ctx, func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		sequences repository.GuideSequenceRepository,
		_ repository.AuditEventRepository,
	) error {
		var err error
		result, err = uc.commitInTx(ctx, items, movements, sequences, uc.opts.GuidePrefix, cart, mode, meta, "")
		return err
	})
	if err != nil {
		if key != "" && uc.idempotency != nil {
			// el commit no ocurrió: liberar la clave para permitir el reintento
			if rerr := uc.idempotency.Release(ctx, key); rerr != nil {
				err = errors.Join(err, fmt.Errorf("commit: liberar clave de idempotencia %q: %w", key, rerr))
			}
		}
		return nil, err
	}
	return result, nil
}

// commitInTx genera el número y registra los movimientos usando los repos de la transacción del caller.
func (uc *GuideCommitUseCase) commitInTx(
	ctx context.Context,
	items repository.SupplyItemRepository,
	movements repository.MovementRepository,
	sequences repository.GuideSequenceRepository,
	prefix string,
	cart entity.Cart,
	mode string,
	meta GuideMeta,
	originGuideNumber string,
) (*CommitResult, error) {
	now := uc.opts.Now()
	seq, err := sequences.Next(ctx, prefix, now.Year())
	if err != nil {
		return nil, fmt.Errorf("commit: numerar guía: %w", err)
	}
	base := ledger.FormatGuideNumber(prefix, now.Year(), seq)

	draft := func(l entity.CartLine, number string) entity.MovementDraft {
		return entity.MovementDraft{
			ItemID:            l.ItemID,
			Direction:         meta.Direction,
			Quantity:          l.Quantity,
			GuideNumber:       number,
			OriginGuideNumber: originGuideNumber,
			ResponsibleID:     meta.ResponsibleID,
			DestinationID:     meta.DestinationID,
			ReceiverName:      meta.ReceiverName,
			DelivererName:     meta.DelivererName,
			Observation:       meta.Observation,
		}
	}

	// un solo Append en ambos modos: los insumos se bloquean en orden ascendente de id
	// aunque el carrito venga en otro orden.
	result := &CommitResult{}
	drafts := make([]entity.MovementDraft, 0, len(cart.Lines))
	for i, l := range cart.Lines {
		number := base
		if mode == entity.GuideModeIndividual {
			number = ledger.IndividualGuideNumber(base, i+1)
			result.GuideNumbers = append(result.GuideNumbers, number)
		}
		drafts = append(drafts, draft(l, number))
	}
	if mode != entity.GuideModeIndividual {
		result.GuideNumbers = []string{base}
	}
	movs, err := uc.ledger.Append(ctx, items, movements, drafts, now)
	if err != nil {
		return nil, err
	}
	result.Movements = movs
	return result, nil
}

func validateCommit(cart entity.Cart, meta GuideMeta) error {
	if strings.TrimSpace(meta.ResponsibleID) == "" {
		return domain.Invalid("responsible_id", "requerido")
	}
	if meta.Direction != entity.DirectionOut && meta.Direction != entity.DirectionIn {
		return domain.Invalid("direction", "dirección desconocida: "+meta.Direction)
	}
	if cart.IsEmpty() {
		return domain.Invalid("lines", "el carrito está vacío")
	}
	seen := make(map[string]bool, len(cart.Lines))
	for i, l := range cart.Lines {
		if l.ItemID == "" {
			return domain.Invalid(fmt.Sprintf("lines[%d].item_id", i), "requerido")
		}
		if seen[l.ItemID] {
			return domain.Invalid(fmt.Sprintf("lines[%d].item_id", i), "insumo repetido en el carrito")
		}
		seen[l.ItemID] = true
		if l.Quantity < 1 {
			return domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "debe ser al menos 1")
		}
	}
	return nil
}
