// Package memory implementa los repositorios del libro de movimientos en memoria
// (STORE_DRIVER=memory y tests).
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

// data estado completo del store; cada transacción trabaja sobre una copia.
type data struct {
	items     map[string]*entity.SupplyItem
	movements []*entity.Movement // orden de Sequence
	nextSeq   int64
	sequences map[string]int64 // prefijo|año
	audit     []*entity.AuditEvent
}

func newData() *data {
	return &data{
		items:     make(map[string]*entity.SupplyItem),
		sequences: make(map[string]int64),
	}
}

func (d *data) clone() *data {
	c := &data{
		items:     make(map[string]*entity.SupplyItem, len(d.items)),
		movements: make([]*entity.Movement, 0, len(d.movements)),
		nextSeq:   d.nextSeq,
		sequences: make(map[string]int64, len(d.sequences)),
		audit:     append([]*entity.AuditEvent(nil), d.audit...),
	}
	for k, v := range d.items {
		c.items[k] = cloneItem(v)
	}
	for _, m := range d.movements {
		c.movements = append(c.movements, cloneMovement(m))
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con txMu y trabajan sobre
// una copia del estado que reemplaza al original solo si fn no retorna error.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	d    *data
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// view da acceso al estado: dentro de una transacción (tx != nil) o al estado confirmado.
type view struct {
	s  *Store
	tx *data
}

func (v view) read(fn func(d *data)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.d)
}

// write fuera de transacción toma txMu para no perder la escritura cuando una tx confirme su copia.
func (v view) write(fn func(d *data) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.txMu.Lock()
	defer v.s.txMu.Unlock()
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.d)
}

// Items repositorio de insumos sobre el estado confirmado.
func (s *Store) Items() repository.SupplyItemRepository { return &SupplyItemRepo{v: view{s: s}} }

// Movements repositorio de movimientos sobre el estado confirmado.
func (s *Store) Movements() repository.MovementRepository { return &MovementRepo{v: view{s: s}} }

// Sequences repositorio de numeración sobre el estado confirmado.
func (s *Store) Sequences() repository.GuideSequenceRepository { return &GuideSequenceRepo{v: view{s: s}} }

// Audit repositorio de auditoría sobre el estado confirmado.
func (s *Store) Audit() repository.AuditEventRepository { return &AuditEventRepo{v: view{s: s}} }

// Run implementa ledger.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	items repository.SupplyItemRepository,
	movements repository.MovementRepository,
	sequences repository.GuideSequenceRepository,
	audit repository.AuditEventRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.d.clone()
	s.mu.RUnlock()

	v := view{s: s, tx: work}
	if err := fn(&SupplyItemRepo{v: v}, &MovementRepo{v: v}, &GuideSequenceRepo{v: v}, &AuditEventRepo{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.d = work
	s.mu.Unlock()
	return nil
}

// GuideSequenceRepo implementa repository.GuideSequenceRepository.
type GuideSequenceRepo struct{ v view }

var _ repository.GuideSequenceRepository = (*GuideSequenceRepo)(nil)

// Next incrementa y devuelve el correlativo de (prefix, year).
func (r *GuideSequenceRepo) Next(_ context.Context, prefix string, year int) (int64, error) {
	var n int64
	err := r.v.write(func(d *data) error {
		k := prefix + "|" + strconv.Itoa(year)
		d.sequences[k]++
		n = d.sequences[k]
		return nil
	})
	return n, err
}

// AuditEventRepo implementa repository.AuditEventRepository.
type AuditEventRepo struct{ v view }

var _ repository.AuditEventRepository = (*AuditEventRepo)(nil)

// Append agrega el evento.
func (r *AuditEventRepo) Append(_ context.Context, e *entity.AuditEvent) error {
	cp := *e
	return r.v.write(func(d *data) error {
		d.audit = append(d.audit, &cp)
		return nil
	})
}

// ListByTarget eventos de una guía o insumo en orden de registro.
func (r *AuditEventRepo) ListByTarget(_ context.Context, targetID string) ([]*entity.AuditEvent, error) {
	var out []*entity.AuditEvent
	r.v.read(func(d *data) {
		for _, e := range d.audit {
			if e.TargetID == targetID {
				cp := *e
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}

func cloneItem(it *entity.SupplyItem) *entity.SupplyItem {
	cp := *it
	return &cp
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	cp := *m
	if m.AnnulledAt != nil {
		at := *m.AnnulledAt
		cp.AnnulledAt = &at
	}
	return &cp
}
