package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	Search    string // texto libre normalizado: guía, fecha, dirección, insumo, destino, responsable
	Direction string
	Status    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository define el puerto de persistencia del libro de movimientos.
// Los listados devuelven los movimientos en orden de creación (Sequence ascendente).
type MovementRepository interface {
	// Create asigna ID (si falta) y Sequence.
	Create(ctx context.Context, m *entity.Movement) error
	ListByGuide(ctx context.Context, guideNumber string) ([]*entity.Movement, error)
	// ListByGuideForUpdate bloquea los movimientos de la guía (SELECT FOR UPDATE).
	ListByGuideForUpdate(ctx context.Context, guideNumber string) ([]*entity.Movement, error)
	// ListReturnsOf devuelve los movimientos cuyo OriginGuideNumber es la guía indicada.
	ListReturnsOf(ctx context.Context, originGuideNumber string) ([]*entity.Movement, error)
	// CountByItem cuenta los movimientos del insumo, activos o anulados.
	CountByItem(ctx context.Context, itemID string) (int, error)
	MarkAnnulled(ctx context.Context, guideNumber, annulledBy string, at time.Time) error
	// SetEvidence actualiza la evidencia de los movimientos activos de la guía y devuelve cuántos cambió.
	SetEvidence(ctx context.Context, guideNumber, url string) (int64, error)
	// SearchGroupKeys devuelve claves de grupo (guía o "single-<id>") que cumplen el filtro,
	// de la más reciente a la más antigua, paginadas.
	SearchGroupKeys(ctx context.Context, filter MovementFilter) ([]string, error)
	ListByGroupKeys(ctx context.Context, keys []string) ([]*entity.Movement, error)
}
