package entity

import "time"

// Acciones auditadas sobre guías e insumos.
const (
	AuditGuideAnnulled         = "guide.annulled"
	AuditGuideEvidenceAttached = "guide.evidence_attached"
	AuditSupplyUpdated         = "supply.updated"
	AuditSupplyDeleted         = "supply.deleted"
)

// AuditEvent registro inmutable de quién hizo qué sobre una guía o un insumo.
// El estado observable (Anulado, evidencia) sigue en Movement; este log permite reconstruir la traza.
type AuditEvent struct {
	ID         string
	ActorID    string
	Action     string
	TargetID   string // número de guía o ID de insumo
	Reason     string
	OccurredAt time.Time
}
