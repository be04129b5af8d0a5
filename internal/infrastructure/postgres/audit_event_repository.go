package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

var _ repository.AuditEventRepository = (*AuditEventRepo)(nil)

// AuditEventRepo log de auditoría en audit_events.
type AuditEventRepo struct {
	q Querier
}

// NewAuditEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditEventRepository(q Querier) *AuditEventRepo {
	return &AuditEventRepo{q: q}
}

// Append inserta el evento.
func (r *AuditEventRepo) Append(ctx context.Context, e *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, actor_id, action, target_id, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, e.ID, e.ActorID, e.Action, e.TargetID, e.Reason, e.OccurredAt); err != nil {
		return mapWriteError("append audit event", err)
	}
	return nil
}

// ListByTarget eventos de una guía en orden cronológico.
func (r *AuditEventRepo) ListByTarget(ctx context.Context, targetID string) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, actor_id, action, target_id, reason, occurred_at
		FROM audit_events WHERE target_id = $1 ORDER BY occurred_at, id`
	rows, err := r.q.Query(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.AuditEvent, 0)
	for rows.Next() {
		var e entity.AuditEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetID, &e.Reason, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
