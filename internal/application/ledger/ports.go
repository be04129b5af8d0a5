package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn retorna error se hace rollback; ningún número de guía ni movimiento queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.SupplyItemRepository,
		movements repository.MovementRepository,
		sequences repository.GuideSequenceRepository,
		audit repository.AuditEventRepository,
	) error) error
}

// IdempotencyStore reserva claves de idempotencia para evitar commits duplicados.
// Reserve retorna false si la clave ya estaba reservada y vigente.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Options parámetros del libro de movimientos (ver pkg/config).
type Options struct {
	GuidePrefix       string // prefijo de guías de salida/entrada (por defecto "G")
	ReturnPrefix      string // prefijo de guías de devolución (por defecto "DEV")
	LowStockThreshold int    // umbral de stock bajo para materiales (por defecto 10)
	Now               func() time.Time
}

const (
	defaultGuidePrefix       = "G"
	defaultReturnPrefix      = "DEV"
	defaultLowStockThreshold = 10
)

func (o Options) withDefaults() Options {
	if o.GuidePrefix == "" {
		o.GuidePrefix = defaultGuidePrefix
	}
	if o.ReturnPrefix == "" {
		o.ReturnPrefix = defaultReturnPrefix
	}
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = defaultLowStockThreshold
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
