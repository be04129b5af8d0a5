package repository

import (
	"context"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// AuditEventRepository log de auditoría append-only.
type AuditEventRepository interface {
	Append(ctx context.Context, e *entity.AuditEvent) error
	ListByTarget(ctx context.Context, targetID string) ([]*entity.AuditEvent, error)
}
