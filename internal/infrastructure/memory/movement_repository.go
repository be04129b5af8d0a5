package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

// MovementRepo implementa repository.MovementRepository en memoria.
type MovementRepo struct{ v view }

var _ repository.MovementRepository = (*MovementRepo)(nil)

// Create asigna ID (si falta) y Sequence, y agrega el movimiento.
func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return r.v.write(func(d *data) error {
		if _, ok := d.items[m.ItemID]; !ok {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, m.ItemID)
		}
		d.nextSeq++
		m.Sequence = d.nextSeq
		d.movements = append(d.movements, cloneMovement(m))
		return nil
	})
}

func (r *MovementRepo) filter(keep func(m *entity.Movement) bool) []*entity.Movement {
	var out []*entity.Movement
	r.v.read(func(d *data) {
		for _, m := range d.movements {
			if keep(m) {
				out = append(out, cloneMovement(m))
			}
		}
	})
	return out
}

// ListByGuide movimientos de la guía en orden de creación.
func (r *MovementRepo) ListByGuide(_ context.Context, guideNumber string) ([]*entity.Movement, error) {
	if guideNumber == "" {
		return nil, nil
	}
	return r.filter(func(m *entity.Movement) bool { return m.GuideNumber == guideNumber }), nil
}

// ListByGuideForUpdate en memoria equivale a ListByGuide.
func (r *MovementRepo) ListByGuideForUpdate(ctx context.Context, guideNumber string) ([]*entity.Movement, error) {
	return r.ListByGuide(ctx, guideNumber)
}

// ListReturnsOf movimientos que referencian a la guía como origen.
func (r *MovementRepo) ListReturnsOf(_ context.Context, origin string) ([]*entity.Movement, error) {
	if origin == "" {
		return nil, nil
	}
	return r.filter(func(m *entity.Movement) bool { return m.OriginGuideNumber == origin }), nil
}

// CountByItem movimientos del insumo, sin importar su estado.
func (r *MovementRepo) CountByItem(_ context.Context, itemID string) (int, error) {
	n := 0
	r.v.read(func(d *data) {
		for _, m := range d.movements {
			if m.ItemID == itemID {
				n++
			}
		}
	})
	return n, nil
}

// MarkAnnulled marca como anulados los movimientos activos de la guía.
func (r *MovementRepo) MarkAnnulled(_ context.Context, guideNumber, annulledBy string, at time.Time) error {
	return r.v.write(func(d *data) error {
		for _, m := range d.movements {
			if m.GuideNumber == guideNumber && m.IsActive() {
				m.Status = entity.MovementAnnulled
				m.AnnulledBy = annulledBy
				t := at
				m.AnnulledAt = &t
			}
		}
		return nil
	})
}

// SetEvidence asigna la evidencia a los movimientos activos de la guía.
func (r *MovementRepo) SetEvidence(_ context.Context, guideNumber, url string) (int64, error) {
	var n int64
	err := r.v.write(func(d *data) error {
		for _, m := range d.movements {
			if m.GuideNumber == guideNumber && m.IsActive() {
				m.EvidenceURL = url
				n++
			}
		}
		return nil
	})
	return n, err
}

// SearchGroupKeys claves de grupo que cumplen el filtro, de la más reciente a la más antigua.
func (r *MovementRepo) SearchGroupKeys(_ context.Context, f repository.MovementFilter) ([]string, error) {
	latest := make(map[string]int64)
	r.v.read(func(d *data) {
		for _, m := range d.movements {
			if !matchesMovement(d, m, f) {
				continue
			}
			k := m.GroupKey()
			if m.Sequence > latest[k] {
				latest[k] = m.Sequence
			}
		}
	})
	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return latest[keys[i]] > latest[keys[j]] })
	return paginate(keys, f.Limit, f.Offset), nil
}

// ListByGroupKeys movimientos de los grupos indicados en orden de creación.
func (r *MovementRepo) ListByGroupKeys(_ context.Context, keys []string) ([]*entity.Movement, error) {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return r.filter(func(m *entity.Movement) bool { return set[m.GroupKey()] }), nil
}

func matchesMovement(d *data, m *entity.Movement, f repository.MovementFilter) bool {
	if f.Direction != "" && m.Direction != f.Direction {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.From != nil && m.MovedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.MovedAt.Before(*f.To) {
		return false
	}
	if f.Search == "" {
		return true
	}
	itemName := ""
	if it, ok := d.items[m.ItemID]; ok {
		itemName = it.Name
	}
	return textsearch.Contains(f.Search, m.GuideNumber, m.Date(), m.Direction, itemName, m.DestinationID, m.ResponsibleID)
}
