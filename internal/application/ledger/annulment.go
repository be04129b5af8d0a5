package ledger

import (
	"context"
	"strings"

	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// AnnulmentUseCase fachada de anulación de guías.
type AnnulmentUseCase struct {
	ledger *MovementLedger
}

// NewAnnulmentUseCase construye la fachada.
func NewAnnulmentUseCase(l *MovementLedger) *AnnulmentUseCase {
	return &AnnulmentUseCase{ledger: l}
}

// Annul anula la guía a nombre del responsable que la autoriza.
func (uc *AnnulmentUseCase) Annul(ctx context.Context, guideNumber, responsibleID, reason string) ([]*entity.Movement, error) {
	responsibleID = strings.TrimSpace(responsibleID)
	if responsibleID == "" {
		return nil, domain.Invalid("responsible_id", "se requiere el responsable que autoriza la anulación")
	}
	return uc.ledger.Annul(ctx, guideNumber, responsibleID, strings.TrimSpace(reason))
}
